package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionEventRepo struct {
	db *pgxpool.Pool
}

func NewSessionEventRepo(db *pgxpool.Pool) *SessionEventRepo {
	return &SessionEventRepo{db: db}
}

// Create inserts a new session event. payload is stored as JSON.
func (r *SessionEventRepo) Create(ctx context.Context, sessionID uuid.UUID, eventType types.SessionEvent, payload any) (err error) {
	defer observe("session_event_create", time.Now(), &err)

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("SessionEventRepo.Create: marshal payload: %w", err)
	}
	if string(data) == "null" {
		data = []byte(`{}`)
	}

	const q = `INSERT INTO session_events (session_id, event_type, payload) VALUES ($1, $2, $3);`

	if _, err = TxorDB(ctx, r.db).Exec(ctx, q, sessionID, eventType.String(), data); err != nil {
		return fmt.Errorf("SessionEventRepo.Create: %w", err)
	}
	return nil
}

// List returns a page of the session's events sorted by the filter's sort column.
func (r *SessionEventRepo) List(ctx context.Context, sessionID uuid.UUID, filters models.Filters) ([]models.SessionEventRecord, models.Metadata, error) {
	q := fmt.Sprintf(`
		SELECT count(*) OVER(), id, session_id, event_type, payload, created_at
		FROM session_events
		WHERE session_id = $1
		ORDER BY %s %s, id %s
		LIMIT $2 OFFSET $3;`, filters.SortColumn(), filters.SortDirection(), filters.SortDirection())

	rows, err := TxorDB(ctx, r.db).Query(ctx, q, sessionID, filters.Limit(), filters.Offset())
	if err != nil {
		return nil, models.Metadata{}, fmt.Errorf("SessionEventRepo.List: %w", err)
	}
	defer rows.Close()

	var (
		total  int
		events = []models.SessionEventRecord{}
	)
	for rows.Next() {
		var (
			e         models.SessionEventRecord
			eventType string
			payload   []byte
		)
		if err := rows.Scan(&total, &e.ID, &e.SessionID, &eventType, &payload, &e.CreatedAt); err != nil {
			return nil, models.Metadata{}, fmt.Errorf("SessionEventRepo.List: %w", err)
		}
		e.Type = types.SessionEvent(eventType)
		e.Payload = json.RawMessage(payload)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, models.Metadata{}, fmt.Errorf("SessionEventRepo.List: %w", err)
	}

	return events, models.CalculateMetadata(total, filters.Page, filters.PageSize), nil
}
