package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/visa-leads/internal/entity"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS leads (
	seq                    INTEGER PRIMARY KEY AUTOINCREMENT,
	id                     TEXT NOT NULL UNIQUE,
	first_name             TEXT NOT NULL,
	last_name              TEXT NOT NULL,
	email                  TEXT NOT NULL,
	linkedin_profile       TEXT NOT NULL,
	visas_of_interest      TEXT NOT NULL DEFAULT '[]',
	resume_url             TEXT NOT NULL DEFAULT '',
	additional_information TEXT NOT NULL DEFAULT '',
	status                 TEXT NOT NULL DEFAULT 'Pending',
	country                TEXT NOT NULL DEFAULT 'Unknown',
	submitted_at           TEXT NOT NULL
)`

// SQLiteLeadRepository persists leads in a single SQLite table. Writes are
// serialized by mu and run inside a transaction.
type SQLiteLeadRepository struct {
	db  *sql.DB
	mu  sync.Mutex
	Now func() time.Time
}

func NewSQLiteLeadRepository(db *sql.DB) (*SQLiteLeadRepository, error) {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("create leads table: %w", err)
	}
	return &SQLiteLeadRepository{db: db, Now: time.Now}, nil
}

func (r *SQLiteLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	visas, err := json.Marshal(visasOrEmpty(lead.VisasOfInterest))
	if err != nil {
		return fmt.Errorf("encode visas: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	submittedAt := stamp(r.Now())

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO leads (id, first_name, last_name, email, linkedin_profile, visas_of_interest,
			resume_url, additional_information, status, country, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		lead.FirstName,
		lead.LastName,
		lead.Email,
		lead.LinkedInProfile,
		string(visas),
		lead.ResumeURL,
		lead.AdditionalInformation,
		string(entity.StatusPending),
		lead.Country,
		submittedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}

	lead.ID = id
	lead.Status = entity.StatusPending
	lead.SubmittedAt = submittedAt
	return nil
}

func (r *SQLiteLeadRepository) FindAll(ctx context.Context) ([]entity.Lead, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("select leads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	leads := make([]entity.Lead, 0)
	for rows.Next() {
		lead, err := scanSQLiteLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

func (r *SQLiteLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	lead, err := scanSQLiteLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return lead, err
}

func (r *SQLiteLeadRepository) UpdateStatus(ctx context.Context, id string, status entity.Status) (_ *entity.Lead, retErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	lead, err := scanSQLiteLead(tx.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := lead.TransitionTo(status); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE leads SET status = ? WHERE id = ?`, string(lead.Status), id); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return lead, nil
}

func (r *SQLiteLeadRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanSQLiteLead(s rowScanner) (*entity.Lead, error) {
	var (
		lead        entity.Lead
		visas       string
		submittedAt string
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
		&submittedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(visas), &lead.VisasOfInterest); err != nil {
		return nil, fmt.Errorf("decode visas of lead %s: %w", lead.ID, err)
	}
	lead.SubmittedAt, err = time.Parse(time.RFC3339Nano, submittedAt)
	if err != nil {
		return nil, fmt.Errorf("decode submitted_at of lead %s: %w", lead.ID, err)
	}
	return &lead, nil
}
