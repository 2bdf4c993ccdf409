// internal/kpi/store.go

// Package kpi computes maintenance KPIs over the work order history in
// PostgreSQL. Every query accepts the slots extracted from a message and
// applies them as filters in a fixed order.
package kpi

import (
	"context"
	"database/sql"
	"fmt"

	"mat-bot/internal/common/logger"
)

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, logger: log}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS assets (
		asset_id TEXT PRIMARY KEY,
		name     TEXT NOT NULL,
		site     TEXT,
		area     TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS work_orders (
		wo_id          TEXT PRIMARY KEY,
		asset_id       TEXT,
		type           TEXT,
		status         TEXT,
		technician     TEXT,
		opened_at      TIMESTAMPTZ,
		closed_at      TIMESTAMPTZ,
		due_date       DATE,
		labor_hours    DOUBLE PRECISION,
		mttr_hours     DOUBLE PRECISION,
		downtime_hours DOUBLE PRECISION,
		cost_parts     DOUBLE PRECISION,
		cost_labor     DOUBLE PRECISION,
		cost_total     DOUBLE PRECISION
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wo_asset ON work_orders(asset_id)`,
}

// EnsureSchema creates the asset and work order tables when missing.
// Safe to run on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// DB returns the underlying connection for packages that share it.
func (s *Store) DB() *sql.DB {
	return s.db
}
