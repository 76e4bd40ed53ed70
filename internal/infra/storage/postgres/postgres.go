// Package postgres provides the relational storage used by the bot roles:
// the client registry the producer reads from and the billing-period
// counters the consumer increments.
package postgres

import (
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Use pgx via database/sql
	"github.com/jmoiron/sqlx"
)

// Config holds database connection configuration.
type Config struct {
	DSN string `yaml:"dsn"`
}

// DB wraps the sqlx connection.
type DB struct {
	conn *sqlx.DB
}

// NewDB opens a database connection and verifies it.
func NewDB(cfg Config) (*DB, error) {
	conn, err := sqlx.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure pool
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
