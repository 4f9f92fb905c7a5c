package db

import (
	"context"
	"database/sql"
)

// Provider hands repositories a live pool. The Manager is the production
// implementation; Static wraps an already open pool.
type Provider interface {
	Get(ctx context.Context) (*sql.DB, error)
}

type staticProvider struct {
	db *sql.DB
}

func Static(db *sql.DB) Provider {
	return staticProvider{db: db}
}

func (p staticProvider) Get(context.Context) (*sql.DB, error) {
	return p.db, nil
}
