package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xavierca1/visa-leads/internal/entity"
)

const pgUniqueViolation = "23505"

const leadColumns = `id, first_name, last_name, email, linkedin_profile, visas_of_interest,
	resume_url, additional_information, status, country, submitted_at`

// LeadRepository stores leads in Postgres.
type LeadRepository struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db, Now: time.Now}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	visas, err := json.Marshal(visasOrEmpty(lead.VisasOfInterest))
	if err != nil {
		return fmt.Errorf("encode visas: %w", err)
	}

	query := `
		INSERT INTO leads (id, first_name, last_name, email, linkedin_profile, visas_of_interest,
			resume_url, additional_information, status, country, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	submittedAt := stamp(r.Now())

	// A fresh id is drawn once more if the first one is already taken.
	for attempt := 0; attempt < 2; attempt++ {
		id := uuid.New().String()
		_, err = r.DB.ExecContext(ctx, query,
			id,
			lead.FirstName,
			lead.LastName,
			lead.Email,
			lead.LinkedInProfile,
			string(visas),
			lead.ResumeURL,
			lead.AdditionalInformation,
			entity.StatusPending,
			lead.Country,
			submittedAt,
		)
		if err == nil {
			lead.ID = id
			lead.Status = entity.StatusPending
			lead.SubmittedAt = submittedAt
			return nil
		}

		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
			break
		}
	}
	return fmt.Errorf("insert lead: %w", err)
}

func (r *LeadRepository) FindAll(ctx context.Context) ([]entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("select leads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	leads := make([]entity.Lead, 0)
	for rows.Next() {
		lead, err := scanPostgresLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrLeadNotFound
	}
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanPostgresLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return lead, err
}

// UpdateStatus locks the row so the transition check and the write see the same state.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status entity.Status) (_ *entity.Lead, retErr error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrLeadNotFound
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1 FOR UPDATE`, id)
	lead, err := scanPostgresLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := lead.TransitionTo(status); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE leads SET status = $1 WHERE id = $2`, lead.Status, id); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgresLead(s rowScanner) (*entity.Lead, error) {
	var (
		lead  entity.Lead
		visas []byte
	)
	err := s.Scan(
		&lead.ID,
		&lead.FirstName,
		&lead.LastName,
		&lead.Email,
		&lead.LinkedInProfile,
		&visas,
		&lead.ResumeURL,
		&lead.AdditionalInformation,
		&lead.Status,
		&lead.Country,
		&lead.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(visas, &lead.VisasOfInterest); err != nil {
		return nil, fmt.Errorf("decode visas of lead %s: %w", lead.ID, err)
	}
	lead.SubmittedAt = lead.SubmittedAt.UTC()
	return &lead, nil
}

func visasOrEmpty(v []entity.VisaType) []entity.VisaType {
	if v == nil {
		return []entity.VisaType{}
	}
	return v
}
