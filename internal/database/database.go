package database

import (
	"context"
	"database/sql"
	"log"
	"time"

	"npo-crm/internal/config"

	_ "github.com/lib/pq"
	"go.uber.org/fx"
)

// PostgresDB wraps the shared *sql.DB handle injected into repositories.
type PostgresDB struct {
	DB *sql.DB
}

// NewDatabase opens the PostgreSQL connection, runs pending migrations and
// registers a lifecycle hook to close the pool on shutdown.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*PostgresDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Connected to PostgreSQL!")

	if err := RunMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("Closing PostgreSQL connection pool...")
			return db.Close()
		},
	})

	return &PostgresDB{DB: db}, nil
}
