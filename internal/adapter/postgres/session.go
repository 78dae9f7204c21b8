package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepo struct {
	db *pgxpool.Pool
}

func NewSessionRepo(db *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{db: db}
}

const sessionColumns = `id, user_id, user_name, status, started_at, last_ping_at, last_check_in_at, ends_at,
	duration, route, preset, ping_interval, check_in_interval, contact_ids, last_location,
	prompt, prompt_deadline, expired, ended_at, updated_at`

type sessionJSON struct {
	route    []byte
	preset   []byte
	contacts []byte
	location []byte
}

func encodeSession(s *models.Session) (sessionJSON, error) {
	var (
		out sessionJSON
		err error
	)
	if out.route, err = jsonb(s.Route); err != nil {
		return out, fmt.Errorf("marshal route: %w", err)
	}
	if out.preset, err = jsonb(s.Preset); err != nil {
		return out, fmt.Errorf("marshal preset: %w", err)
	}
	if out.contacts, err = jsonb(s.ContactIDs); err != nil {
		return out, fmt.Errorf("marshal contacts: %w", err)
	}
	if out.contacts == nil {
		out.contacts = []byte(`[]`)
	}
	if out.location, err = jsonb(s.LastLocation); err != nil {
		return out, fmt.Errorf("marshal location: %w", err)
	}
	return out, nil
}

func (r *SessionRepo) Create(ctx context.Context, s *models.Session) (err error) {
	const op = "SessionRepo.Create"
	defer observe("session_create", time.Now(), &err)

	j, err := encodeSession(s)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	q := `INSERT INTO sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);`

	_, err = TxorDB(ctx, r.db).Exec(ctx, q,
		s.ID, s.UserID, s.UserName, string(s.Status), s.StartedAt, s.LastPingAt, s.LastCheckInAt, s.EndsAt,
		s.Duration, j.route, j.preset, s.BaseIntervals.PingInterval, s.BaseIntervals.CheckInInterval, j.contacts, j.location,
		string(s.Prompt), s.PromptDeadline, s.Expired, s.EndedAt, s.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return types.ErrSessionAlreadyActive
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Update writes the mutable state of a session. A write older than the stored row is skipped.
func (r *SessionRepo) Update(ctx context.Context, s *models.Session) (err error) {
	const op = "SessionRepo.Update"
	defer observe("session_update", time.Now(), &err)

	j, err := encodeSession(s)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	const q = `
		UPDATE sessions SET
			status = $2,
			last_ping_at = $3,
			last_check_in_at = $4,
			ends_at = $5,
			last_location = $6,
			prompt = $7,
			prompt_deadline = $8,
			expired = $9,
			ended_at = $10,
			updated_at = $11
		WHERE id = $1 AND updated_at <= $11;
	`

	_, err = TxorDB(ctx, r.db).Exec(ctx, q,
		s.ID, string(s.Status), s.LastPingAt, s.LastCheckInAt, s.EndsAt, j.location,
		string(s.Prompt), s.PromptDeadline, s.Expired, s.EndedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1;`

	s, err := scanSession(TxorDB(ctx, r.db).QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrSessionNotFound
		}
		return nil, fmt.Errorf("SessionRepo.Get: %w", err)
	}
	return s, nil
}

// ListActive loads every active session, used to restore the engine after a restart.
func (r *SessionRepo) ListActive(ctx context.Context) ([]*models.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE status = $1 ORDER BY started_at;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, q, string(types.SessionActive))
	if err != nil {
		return nil, fmt.Errorf("SessionRepo.ListActive: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("SessionRepo.ListActive: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SessionRepo.ListActive: %w", err)
	}
	return sessions, nil
}

func scanSession(row pgx.Row) (*models.Session, error) {
	var (
		s              models.Session
		status, prompt string
		j              sessionJSON
	)
	err := row.Scan(
		&s.ID, &s.UserID, &s.UserName, &status, &s.StartedAt, &s.LastPingAt, &s.LastCheckInAt, &s.EndsAt,
		&s.Duration, &j.route, &j.preset, &s.BaseIntervals.PingInterval, &s.BaseIntervals.CheckInInterval,
		&j.contacts, &j.location, &prompt, &s.PromptDeadline, &s.Expired, &s.EndedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Status = types.SessionStatus(status)
	s.Prompt = types.PromptKind(prompt)

	if err := fromJSONB(j.route, &s.Route); err != nil {
		return nil, fmt.Errorf("decode route: %w", err)
	}
	if err := fromJSONB(j.preset, &s.Preset); err != nil {
		return nil, fmt.Errorf("decode preset: %w", err)
	}
	if err := fromJSONB(j.contacts, &s.ContactIDs); err != nil {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}
	if err := fromJSONB(j.location, &s.LastLocation); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}
	return &s, nil
}
