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

type RouteRepo struct {
	db *pgxpool.Pool
}

func NewRouteRepo(db *pgxpool.Pool) *RouteRepo {
	return &RouteRepo{db: db}
}

const routeColumns = `id, user_id, name, description, waypoints, estimated_time, created_at, last_used_at`

func (r *RouteRepo) Create(ctx context.Context, route *models.SavedRoute) (err error) {
	defer observe("route_create", time.Now(), &err)

	waypoints, err := jsonb(route.Waypoints)
	if err != nil {
		return fmt.Errorf("RouteRepo.Create: marshal waypoints: %w", err)
	}
	if waypoints == nil {
		waypoints = []byte(`[]`)
	}

	const q = `
		INSERT INTO saved_routes (id, user_id, name, description, waypoints, estimated_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at;
	`

	err = TxorDB(ctx, r.db).QueryRow(ctx, q, route.ID, route.UserID, route.Name, route.Description, waypoints, route.EstimatedTime).
		Scan(&route.CreatedAt)
	if err != nil {
		return fmt.Errorf("RouteRepo.Create: %w", err)
	}
	return nil
}

func (r *RouteRepo) Get(ctx context.Context, userID, id uuid.UUID) (*models.SavedRoute, error) {
	q := `SELECT ` + routeColumns + ` FROM saved_routes WHERE id = $1 AND user_id = $2;`

	route, err := scanRoute(TxorDB(ctx, r.db).QueryRow(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrRouteNotFound
		}
		return nil, fmt.Errorf("RouteRepo.Get: %w", err)
	}
	return route, nil
}

// ListByUser returns the user's routes, most recently used first.
func (r *RouteRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SavedRoute, error) {
	q := `SELECT ` + routeColumns + ` FROM saved_routes WHERE user_id = $1
		ORDER BY last_used_at DESC NULLS LAST, created_at DESC;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("RouteRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	routes := []models.SavedRoute{}
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("RouteRepo.ListByUser: %w", err)
		}
		routes = append(routes, *route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("RouteRepo.ListByUser: %w", err)
	}
	return routes, nil
}

func (r *RouteRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := TxorDB(ctx, r.db).Exec(ctx, `DELETE FROM saved_routes WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return fmt.Errorf("RouteRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrRouteNotFound
	}
	return nil
}

// Touch sets last_used_at. A deleted route is ignored.
func (r *RouteRepo) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := TxorDB(ctx, r.db).Exec(ctx, `UPDATE saved_routes SET last_used_at = $2 WHERE id = $1;`, id, at); err != nil {
		return fmt.Errorf("RouteRepo.Touch: %w", err)
	}
	return nil
}

func scanRoute(row pgx.Row) (*models.SavedRoute, error) {
	var (
		route     models.SavedRoute
		waypoints []byte
	)
	err := row.Scan(&route.ID, &route.UserID, &route.Name, &route.Description, &waypoints, &route.EstimatedTime, &route.CreatedAt, &route.LastUsedAt)
	if err != nil {
		return nil, err
	}
	if err := fromJSONB(waypoints, &route.Waypoints); err != nil {
		return nil, fmt.Errorf("decode waypoints: %w", err)
	}
	if route.Waypoints == nil {
		route.Waypoints = []models.Waypoint{}
	}
	return &route, nil
}
