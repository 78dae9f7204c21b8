package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Temutjin2k/niva/pkg/metrics"
	"github.com/Temutjin2k/niva/pkg/trm"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const serviceLabel = "postgres"

type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

// TxorDB returns the transaction stored in ctx by trm, or the pool.
func TxorDB(ctx context.Context, db *pgxpool.Pool) Querier {
	tx, ok := ctx.Value(trm.TxKey).(pgx.Tx)
	if !ok {
		return db
	}
	return tx
}

// observe records a query in the database metrics. Call as defer observe("op", time.Now(), &err).
func observe(operation string, start time.Time, err *error) {
	metrics.RecordDatabaseQuery(serviceLabel, operation, *err, time.Since(start))
}

// jsonb marshals v for a JSONB column. Nil pointers and empty values become SQL NULL.
func jsonb(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	return b, nil
}

// fromJSONB unmarshals a nullable JSONB column into dst.
func fromJSONB(b []byte, dst any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}
