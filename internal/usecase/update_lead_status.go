package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/xavierca1/visa-leads/internal/entity"
)

type UpdateLeadStatusUseCase struct {
	Repo      entity.LeadRepositoryInterface
	Publisher EventPublisher
	Log       zerolog.Logger
}

func NewUpdateLeadStatusUseCase(repo entity.LeadRepositoryInterface, publisher EventPublisher, log zerolog.Logger) *UpdateLeadStatusUseCase {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &UpdateLeadStatusUseCase{
		Repo:      repo,
		Publisher: publisher,
		Log:       log.With().Str("component", "update_lead_status").Logger(),
	}
}

// Execute returns entity.ErrInvalidStatus, entity.ErrLeadNotFound or
// entity.ErrIllegalTransition (wrapped) for the expected failures.
func (uc *UpdateLeadStatusUseCase) Execute(ctx context.Context, input UpdateLeadStatusInput) (*entity.Lead, error) {
	status, err := entity.ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	updated, err := uc.Repo.UpdateStatus(ctx, input.ID, status)
	if err != nil {
		return nil, err
	}

	uc.Log.Info().Str("lead_id", updated.ID).Str("status", string(updated.Status)).Msg("lead status updated")

	event := entity.NewLeadEvent(entity.LeadStatusChanged, *updated, time.Now().UTC())
	if err := uc.Publisher.PublishLeadEvent(ctx, event); err != nil {
		uc.Log.Warn().Err(err).Str("lead_id", updated.ID).Msg("status updated but event not published")
	}

	return updated, nil
}
