package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PresetRepo struct {
	db *pgxpool.Pool
}

func NewPresetRepo(db *pgxpool.Pool) *PresetRepo {
	return &PresetRepo{db: db}
}

const presetColumns = `id, user_id, name, description, ping_interval, check_in_interval, duration,
	selected_contacts, route, auto_start, created_at, last_used_at`

func (r *PresetRepo) Create(ctx context.Context, p *models.CustomSession) (err error) {
	defer observe("preset_create", time.Now(), &err)

	contacts, err := jsonb(p.SelectedContacts)
	if err != nil {
		return fmt.Errorf("PresetRepo.Create: marshal contacts: %w", err)
	}
	if contacts == nil {
		contacts = []byte(`[]`)
	}
	route, err := jsonb(p.Route)
	if err != nil {
		return fmt.Errorf("PresetRepo.Create: marshal route: %w", err)
	}

	const q = `
		INSERT INTO custom_sessions (id, user_id, name, description, ping_interval, check_in_interval,
			duration, selected_contacts, route, auto_start)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at;
	`

	err = TxorDB(ctx, r.db).QueryRow(ctx, q,
		p.ID, p.UserID, p.Name, p.Description, p.PingInterval, p.CheckInInterval,
		p.Duration, contacts, route, p.AutoStart,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("PresetRepo.Create: %w", err)
	}
	return nil
}

func (r *PresetRepo) Get(ctx context.Context, userID, id uuid.UUID) (*models.CustomSession, error) {
	q := `SELECT ` + presetColumns + ` FROM custom_sessions WHERE id = $1 AND user_id = $2;`

	p, err := scanPreset(TxorDB(ctx, r.db).QueryRow(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrPresetNotFound
		}
		return nil, fmt.Errorf("PresetRepo.Get: %w", err)
	}
	return p, nil
}

func (r *PresetRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CustomSession, error) {
	q := `SELECT ` + presetColumns + ` FROM custom_sessions WHERE user_id = $1
		ORDER BY last_used_at DESC NULLS LAST, created_at DESC;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("PresetRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	presets := []models.CustomSession{}
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("PresetRepo.ListByUser: %w", err)
		}
		presets = append(presets, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("PresetRepo.ListByUser: %w", err)
	}
	return presets, nil
}

func (r *PresetRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := TxorDB(ctx, r.db).Exec(ctx, `DELETE FROM custom_sessions WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return fmt.Errorf("PresetRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrPresetNotFound
	}
	return nil
}

func (r *PresetRepo) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := TxorDB(ctx, r.db).Exec(ctx, `UPDATE custom_sessions SET last_used_at = $2 WHERE id = $1;`, id, at); err != nil {
		return fmt.Errorf("PresetRepo.Touch: %w", err)
	}
	return nil
}

func scanPreset(row pgx.Row) (*models.CustomSession, error) {
	var (
		p        models.CustomSession
		contacts []byte
		route    []byte
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.PingInterval, &p.CheckInInterval, &p.Duration,
		&contacts, &route, &p.AutoStart, &p.CreatedAt, &p.LastUsedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := fromJSONB(contacts, &p.SelectedContacts); err != nil {
		return nil, fmt.Errorf("decode selected contacts: %w", err)
	}
	if err := fromJSONB(route, &p.Route); err != nil {
		return nil, fmt.Errorf("decode route: %w", err)
	}
	if p.SelectedContacts == nil {
		p.SelectedContacts = []uuid.UUID{}
	}
	return &p, nil
}
