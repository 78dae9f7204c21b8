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

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
	}
}

// Create inserts a user. The password hash must already be set.
func (r *UserRepo) Create(ctx context.Context, u *models.User) (err error) {
	const op = "UserRepo.Create"
	defer observe("user_create", time.Now(), &err)

	if u == nil {
		return fmt.Errorf("%s: nil user", op)
	}

	const q = `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at;
	`

	err = TxorDB(ctx, r.db).QueryRow(ctx, q, u.ID, u.Name, u.Email, u.GetPassword(), u.Role.String()).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return types.ErrEmailTaken
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetByEmail fetches by email (unique).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE email = $1;
	`
	return r.get(ctx, "UserRepo.GetByEmail", q, email)
}

func (r *UserRepo) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE id = $1;
	`
	return r.get(ctx, "UserRepo.Get", q, id)
}

func (r *UserRepo) get(ctx context.Context, op, q string, arg any) (*models.User, error) {
	var (
		u    models.User
		hash string
		role string
	)

	err := TxorDB(ctx, r.db).QueryRow(ctx, q, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&hash,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u.Role = types.UserRole(role)
	u.SetPassword(hash)
	return &u, nil
}
