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

type ContactRepo struct {
	db *pgxpool.Pool
}

func NewContactRepo(db *pgxpool.Pool) *ContactRepo {
	return &ContactRepo{db: db}
}

const contactColumns = `id, user_id, name, phone, email, relationship, created_at, updated_at`

func (r *ContactRepo) Create(ctx context.Context, c *models.TrustedContact) (err error) {
	defer observe("contact_create", time.Now(), &err)

	const q = `
		INSERT INTO trusted_contacts (id, user_id, name, phone, email, relationship)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at;
	`

	err = TxorDB(ctx, r.db).QueryRow(ctx, q, c.ID, c.UserID, c.Name, c.Phone, c.Email, c.Relationship).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ContactRepo.Create: %w", err)
	}
	return nil
}

func (r *ContactRepo) Update(ctx context.Context, c *models.TrustedContact) (err error) {
	defer observe("contact_update", time.Now(), &err)

	const q = `
		UPDATE trusted_contacts
		SET name = $3, phone = $4, email = $5, relationship = $6, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at;
	`

	err = TxorDB(ctx, r.db).QueryRow(ctx, q, c.ID, c.UserID, c.Name, c.Phone, c.Email, c.Relationship).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.ErrContactNotFound
		}
		return fmt.Errorf("ContactRepo.Update: %w", err)
	}
	return nil
}

func (r *ContactRepo) Get(ctx context.Context, userID, id uuid.UUID) (*models.TrustedContact, error) {
	q := `SELECT ` + contactColumns + ` FROM trusted_contacts WHERE id = $1 AND user_id = $2;`

	c, err := scanContact(TxorDB(ctx, r.db).QueryRow(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrContactNotFound
		}
		return nil, fmt.Errorf("ContactRepo.Get: %w", err)
	}
	return c, nil
}

func (r *ContactRepo) ListByUser(ctx context.Context, userID uuid.UUID) (_ []models.TrustedContact, err error) {
	defer observe("contact_list", time.Now(), &err)

	q := `SELECT ` + contactColumns + ` FROM trusted_contacts WHERE user_id = $1 ORDER BY created_at;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("ContactRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	contacts := []models.TrustedContact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("ContactRepo.ListByUser: %w", err)
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ContactRepo.ListByUser: %w", err)
	}
	return contacts, nil
}

func (r *ContactRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := TxorDB(ctx, r.db).Exec(ctx, `DELETE FROM trusted_contacts WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return fmt.Errorf("ContactRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrContactNotFound
	}
	return nil
}

func scanContact(row pgx.Row) (*models.TrustedContact, error) {
	var c models.TrustedContact
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.Email, &c.Relationship, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
