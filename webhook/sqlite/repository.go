package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/moverly/leadgate/provider"
	"github.com/moverly/leadgate/webhook"
)

/* SQLite implementation of webhook.FailureRepository
 * Failure records are append-mostly: the verification path only ever
 * inserts, and only the manual replay tooling updates status.
 */

const schema = `
CREATE TABLE IF NOT EXISTS failed_webhooks (
	id         TEXT PRIMARY KEY,
	provider   TEXT NOT NULL,
	reason     TEXT NOT NULL,
	request    TEXT NOT NULL,
	config     TEXT NOT NULL,
	status     TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_failed_webhooks_status ON failed_webhooks(status);
CREATE INDEX IF NOT EXISTS idx_failed_webhooks_created_at ON failed_webhooks(created_at);
`

type Repository struct {
	DB *sql.DB
}

// NewRepository opens the SQLite database and ensures the schema exists
func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Repository{DB: db}, nil
}

// NewRepositoryWithDB wraps an existing database handle, used by tests
func NewRepositoryWithDB(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// Store persists a failure record and returns its ID
func (r *Repository) Store(ctx context.Context, failed webhook.FailedWebhook) (string, error) {
	query := `
		INSERT INTO failed_webhooks (id, provider, reason, request, config, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.DB.ExecContext(ctx, query,
		failed.ID,
		failed.Provider.String(),
		failed.Reason,
		string(failed.Request),
		string(failed.Config),
		failed.Status.String(),
		failed.CreatedAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting failed webhook: %w", err)
	}
	return failed.ID, nil
}

// Get retrieves a failure record by ID
func (r *Repository) Get(ctx context.Context, id string) (webhook.FailedWebhook, error) {
	query := `
		SELECT id, provider, reason, request, config, status, created_at
		FROM failed_webhooks WHERE id = ?
	`
	row := r.DB.QueryRowContext(ctx, query, id)

	failed, err := scanFailedWebhook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return webhook.FailedWebhook{}, webhook.ErrNotFound
	}
	if err != nil {
		return webhook.FailedWebhook{}, fmt.Errorf("selecting failed webhook: %w", err)
	}
	return failed, nil
}

// List returns the most recent failure records, newest first
func (r *Repository) List(ctx context.Context, limit int) ([]webhook.FailedWebhook, error) {
	query := `
		SELECT id, provider, reason, request, config, status, created_at
		FROM failed_webhooks ORDER BY created_at DESC LIMIT ?
	`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("selecting failed webhooks: %w", err)
	}
	defer rows.Close()

	var failed []webhook.FailedWebhook
	for rows.Next() {
		f, err := scanFailedWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning failed webhook: %w", err)
		}
		failed = append(failed, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating failed webhooks: %w", err)
	}
	return failed, nil
}

// CountByStatus returns record counts grouped by lifecycle status
func (r *Repository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM failed_webhooks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting failed webhooks: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status counts: %w", err)
	}
	return counts, nil
}

// UpdateStatus updates the lifecycle status of a failure record
func (r *Repository) UpdateStatus(ctx context.Context, id string, status webhook.Status) error {
	if err := status.Validate(); err != nil {
		return fmt.Errorf("validating status: %w", err)
	}

	result, err := r.DB.ExecContext(ctx,
		`UPDATE failed_webhooks SET status = ? WHERE id = ?`,
		status.String(), id,
	)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if affected == 0 {
		return webhook.ErrNotFound
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close(ctx context.Context) error {
	return r.DB.Close()
}

// scanner is satisfied by both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanFailedWebhook(s scanner) (webhook.FailedWebhook, error) {
	var f webhook.FailedWebhook
	var providerName, request, config, status string
	var createdAt int64

	if err := s.Scan(&f.ID, &providerName, &f.Reason, &request, &config, &status, &createdAt); err != nil {
		return webhook.FailedWebhook{}, err
	}

	f.Provider = provider.New(providerName)
	f.Request = []byte(request)
	f.Config = []byte(config)
	f.Status = webhook.NewStatus(status)
	f.CreatedAt = time.Unix(createdAt, 0).UTC()
	return f, nil
}
