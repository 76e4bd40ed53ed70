package postgres

import (
	"context"
	"fmt"
)

// Client is one entry of the client registry.
type Client struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
}

// ClientRepo reads the client registry.
type ClientRepo struct {
	db *DB
}

// NewClientRepo creates a client repository.
func NewClientRepo(db *DB) *ClientRepo {
	return &ClientRepo{db: db}
}

// ActiveClients returns all active clients ordered by id.
func (r *ClientRepo) ActiveClients(ctx context.Context) ([]Client, error) {
	var clients []Client
	err := r.db.conn.SelectContext(ctx, &clients,
		`SELECT id, name, email FROM clients WHERE active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active clients: %w", err)
	}
	return clients, nil
}
