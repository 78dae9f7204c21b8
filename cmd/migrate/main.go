package main

import (
	"context"
	"flag"
	"io/fs"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/Temutjin2k/niva/config"
	"github.com/Temutjin2k/niva/migrations"
	"github.com/Temutjin2k/niva/pkg/configparser"
	"github.com/Temutjin2k/niva/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var (
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
	seedFlag   = flag.Bool("seed", false, "Insert demo users after migrating")
)

func main() {
	flag.Parse()

	ctx := context.Background()

	// the mode flag is not needed here, so the yaml is parsed directly
	var cfg config.Config
	if err := configparser.LoadAndParseYaml(*configPath, &cfg); err != nil {
		log.Fatal(err)
	}

	client, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	if err := migrate(ctx, client.Pool); err != nil {
		log.Fatal(err)
	}

	if *seedFlag {
		seedDefaultUsers(client.Pool)
	}
}

// migrate applies every embedded .sql file not yet recorded in schema_migrations, in name order.
func migrate(ctx context.Context, db *pgxpool.Pool) error {
	const createTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	if _, err := db.Exec(ctx, createTable); err != nil {
		return err
	}

	files, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, name := range files {
		version := strings.TrimSuffix(name, ".sql")

		var applied bool
		if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&applied); err != nil {
			return err
		}
		if applied {
			continue
		}

		script, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return err
		}

		err = pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(script)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version)
			return err
		})
		if err != nil {
			return err
		}
		log.Printf("migrate: applied %s", name)
	}

	return nil
}

func seedDefaultUsers(db *pgxpool.Pool) {
	// short timeout for seed operations
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type defaultUser struct {
		Name      string
		Email     string
		Role      string
		PlainPass string
	}

	users := []defaultUser{
		{
			Name:      "Aigerim",
			Email:     "aigerim@niva.kz",
			Role:      "USER",
			PlainPass: "password",
		},
		{
			Name:      "Temirlan",
			Email:     "temu@niva.kz",
			Role:      "ADMIN",
			PlainPass: "password",
		},
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		log.Fatalf("seedDefaultUsers: begin tx: %v", err)
	}
	// ensure rollback if commit doesn't happen
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const q = `
INSERT INTO users (id, name, email, password_hash, role)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (email) DO NOTHING;
`

	for _, u := range users {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.PlainPass), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("seedDefaultUsers: hash password: %v", err)
		}

		if _, err := tx.Exec(ctx, q, uuid.New(), u.Name, u.Email, string(hashed), u.Role); err != nil {
			log.Fatalf("seedDefaultUsers: insert user %s: %v", u.Email, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("seedDefaultUsers: commit: %v", err)
	}

	log.Printf("seedDefaultUsers: inserted/ensured %d default users", len(users))
}
