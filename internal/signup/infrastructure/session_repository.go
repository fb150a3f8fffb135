package infrastructure

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	"time"
)

// PostgresSessionRepository shares drafts between instances behind a load
// balancer. Same contract as MemorySessionStore.
type PostgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) EnsureSchema() error {
	query := `
        CREATE TABLE IF NOT EXISTS signup_sessions (
            id              TEXT PRIMARY KEY,
            link_state      TEXT NOT NULL,
            link_attempt_id TEXT NOT NULL DEFAULT '',
            linked          JSONB,
            submitting      BOOLEAN NOT NULL DEFAULT FALSE,
            completed       BOOLEAN NOT NULL DEFAULT FALSE,
            created_at      TIMESTAMPTZ NOT NULL,
            expires_at      TIMESTAMPTZ NOT NULL
        )`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("could not create signup_sessions table: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) Create(ttl time.Duration) (*domain.Draft, error) {
	now := time.Now().UTC()
	draft := &domain.Draft{
		ID:        uuid.NewString(),
		LinkState: domain.LinkIdle,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	query := `
        INSERT INTO signup_sessions (id, link_state, created_at, expires_at)
        VALUES ($1, $2, $3, $4)`
	if _, err := r.db.Exec(query, draft.ID, string(draft.LinkState), draft.CreatedAt, draft.ExpiresAt); err != nil {
		return nil, fmt.Errorf("could not create signup session: %w", err)
	}
	return draft, nil
}

func (r *PostgresSessionRepository) Get(id string) (*domain.Draft, error) {
	query := `
        SELECT id, link_state, link_attempt_id, linked, submitting, completed, created_at, expires_at
        FROM signup_sessions
        WHERE id = $1`

	var (
		draft  domain.Draft
		linked sql.NullString
	)
	err := r.db.QueryRow(query, id).Scan(
		&draft.ID, &draft.LinkState, &draft.LinkAttemptID, &linked,
		&draft.Submitting, &draft.Completed, &draft.CreatedAt, &draft.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("could not load signup session: %w", err)
	}
	if time.Now().After(draft.ExpiresAt) {
		return nil, domain.ErrDraftExpired
	}
	if linked.Valid {
		var token domain.LinkedAccountToken
		if err := json.Unmarshal([]byte(linked.String), &token); err != nil {
			return nil, fmt.Errorf("could not decode linked account: %w", err)
		}
		draft.Linked = &token
	}
	return &draft, nil
}

// Save never touches the submitting column.
func (r *PostgresSessionRepository) Save(draft *domain.Draft) error {
	var linked interface{}
	if draft.Linked != nil {
		raw, err := json.Marshal(draft.Linked)
		if err != nil {
			return fmt.Errorf("could not encode linked account: %w", err)
		}
		linked = string(raw)
	}

	query := `
        UPDATE signup_sessions
        SET link_state = $2, link_attempt_id = $3, linked = $4, completed = $5
        WHERE id = $1`
	result, err := r.db.Exec(query, draft.ID, string(draft.LinkState), draft.LinkAttemptID, linked, draft.Completed)
	if err != nil {
		return fmt.Errorf("could not save signup session: %w", err)
	}
	return requireOneRow(result)
}

func (r *PostgresSessionRepository) MarkCompleted(id string) error {
	result, err := r.db.Exec(`UPDATE signup_sessions SET completed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("could not mark signup session completed: %w", err)
	}
	return requireOneRow(result)
}

// BeginSubmission flips the flag only if nobody else holds it.
func (r *PostgresSessionRepository) BeginSubmission(id string) error {
	query := `
        UPDATE signup_sessions
        SET submitting = TRUE
        WHERE id = $1 AND submitting = FALSE AND expires_at > NOW()`
	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("could not begin submission: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	draft, err := r.Get(id)
	if err != nil {
		return err
	}
	if draft.Submitting {
		return domain.ErrSubmissionInProgress
	}
	return domain.ErrDraftNotFound
}

func (r *PostgresSessionRepository) EndSubmission(id string) error {
	result, err := r.db.Exec(`UPDATE signup_sessions SET submitting = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("could not end submission: %w", err)
	}
	return requireOneRow(result)
}

func (r *PostgresSessionRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM signup_sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func requireOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrDraftNotFound
	}
	return nil
}
