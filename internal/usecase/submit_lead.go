package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xavierca1/visa-leads/internal/entity"
)

const DefaultUploadTimeout = 30 * time.Second

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type SubmitLeadUseCase struct {
	Repo          entity.LeadRepositoryInterface
	Storage       FileStorage
	Publisher     EventPublisher
	Rules         ValidationRules
	UploadTimeout time.Duration
	Log           zerolog.Logger
}

func NewSubmitLeadUseCase(
	repo entity.LeadRepositoryInterface,
	storage FileStorage,
	publisher EventPublisher,
	rules ValidationRules,
	uploadTimeout time.Duration,
	log zerolog.Logger,
) *SubmitLeadUseCase {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if uploadTimeout <= 0 {
		uploadTimeout = DefaultUploadTimeout
	}
	return &SubmitLeadUseCase{
		Repo:          repo,
		Storage:       storage,
		Publisher:     publisher,
		Rules:         rules,
		UploadTimeout: uploadTimeout,
		Log:           log.With().Str("component", "submit_lead").Logger(),
	}
}

// Execute validates the submission, uploads the resume when there is one and
// stores the lead. Either every step succeeds or nothing is left behind.
func (uc *SubmitLeadUseCase) Execute(ctx context.Context, input SubmitLeadInput) (*entity.Lead, error) {
	input = input.Normalize()

	if errs := ValidateLeadInput(input, uc.Rules); len(errs) > 0 {
		return nil, &ValidationFailedError{Errors: errs}
	}

	country := input.Country
	if country == "" {
		country = entity.UnknownCountry
	}

	lead := &entity.Lead{
		FirstName:             input.FirstName,
		LastName:              input.LastName,
		Email:                 input.Email,
		LinkedInProfile:       input.LinkedInProfile,
		VisasOfInterest:       input.VisasOfInterest,
		AdditionalInformation: input.AdditionalInformation,
		Country:               country,
	}

	txn := NewTransaction(uc.Log)

	if input.Resume != nil {
		if uc.Storage == nil {
			return nil, &DomainError{Code: CodeUploadFailed, Message: "resume upload is not available"}
		}
		key := resumeKey(input.Resume.Name)
		txn.AddStep("upload_resume",
			func(ctx context.Context) error {
				url, err := uc.upload(ctx, key, *input.Resume)
				if err != nil {
					return err
				}
				lead.ResumeURL = url
				return nil
			},
			func(ctx context.Context) error {
				return uc.Storage.Delete(ctx, key)
			},
		)
	}

	txn.AddStep("create_lead", func(ctx context.Context) error {
		return uc.Repo.Create(ctx, lead)
	}, nil)

	if err := txn.Execute(ctx); err != nil {
		var de *DomainError
		if errors.As(err, &de) {
			return nil, de
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to store lead", Err: err}
	}

	uc.Log.Info().
		Str("lead_id", lead.ID).
		Bool("resume", lead.ResumeURL != "").
		Msg("lead submitted")

	uc.publish(ctx, entity.NewLeadEvent(entity.LeadSubmitted, *lead, time.Now().UTC()))

	return lead, nil
}

func (uc *SubmitLeadUseCase) upload(ctx context.Context, key string, file entity.Attachment) (string, error) {
	uploadCtx, cancel := context.WithTimeout(ctx, uc.UploadTimeout)
	defer cancel()

	url, err := uc.Storage.Upload(uploadCtx, key, file)
	if err == nil {
		return url, nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(uploadCtx.Err(), context.DeadlineExceeded) {
		return "", &DomainError{Code: CodeUploadTimeout, Message: "resume upload timed out", Err: err}
	}
	return "", &DomainError{Code: CodeUploadFailed, Message: "resume upload failed", Err: err}
}

// publish never fails the caller: the lead is already stored.
func (uc *SubmitLeadUseCase) publish(ctx context.Context, event entity.LeadEvent) {
	if err := uc.Publisher.PublishLeadEvent(ctx, event); err != nil {
		uc.Log.Warn().Err(err).Str("lead_id", event.LeadID).Str("event", string(event.Type)).Msg("lead stored but event not published")
	}
}

func resumeKey(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeKeyChars.ReplaceAllString(base, "_")
	// Leading dots would let "." or ".." escape the per-upload prefix.
	base = strings.TrimLeft(base, ".")
	if base == "" || base == "_" {
		base = "resume"
	}
	return "resumes/" + uuid.New().String() + "/" + base
}
