// Package history persists emitted trade plans and manages their lifecycle
// (OPEN -> TP1 HIT -> TP2 HIT / SL HIT).
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"crypto-signal-scanner/models"
)

// Store is a PostgreSQL-backed signal history.
type Store struct {
	db *sql.DB
}

// New opens a connection and bootstraps the schema.
func New(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS signal_history (
			id SERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			symbol TEXT NOT NULL,
			mode TEXT NOT NULL,
			direction TEXT NOT NULL,
			phase TEXT NOT NULL,
			regime TEXT NOT NULL,
			score INTEGER NOT NULL,
			entry DOUBLE PRECISION NOT NULL,
			sl DOUBLE PRECISION NOT NULL,
			sl_invalidation DOUBLE PRECISION,
			tp1 DOUBLE PRECISION NOT NULL,
			tp2 DOUBLE PRECISION NOT NULL,
			position_size DOUBLE PRECISION,
			status TEXT NOT NULL DEFAULT 'OPEN',
			closed_at TIMESTAMPTZ
		)
	`)
	return err
}

// OpenSignal is a persisted signal still awaiting TP or SL.
type OpenSignal struct {
	ID        int64
	Symbol    string
	Mode      models.Mode
	Direction models.Direction
	Entry     float64
	SL        float64
	TP1       float64
	TP2       float64
	Status    string
}

// Save inserts an emitted plan. A plan for a symbol/mode/direction that
// already has an open signal is skipped (anti-spam), reported via the
// returned flag.
func (s *Store) Save(plan *models.TradePlan) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM signal_history
			WHERE symbol = $1 AND mode = $2 AND direction = $3
			  AND status IN ($4, $5)
		)
	`, plan.Symbol, plan.Mode, plan.Direction, models.StatusOpen, models.StatusTP1Hit).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking open signals: %w", err)
	}
	if exists {
		return false, nil
	}

	_, err = s.db.Exec(`
		INSERT INTO signal_history (
			created_at, symbol, mode, direction, phase, regime, score,
			entry, sl, sl_invalidation, tp1, tp2, position_size, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		plan.CreatedAt, plan.Symbol, plan.Mode, plan.Direction, plan.Phase,
		plan.Regime, plan.Score.Total, plan.Entry, plan.SL,
		nullFloat(plan.SLInvalidation), plan.TP1, plan.TP2,
		nullFloat(plan.PositionSize), models.StatusOpen,
	)
	if err != nil {
		return false, fmt.Errorf("inserting signal: %w", err)
	}
	return true, nil
}

// Open lists signals still in play (OPEN or TP1 HIT).
func (s *Store) Open() ([]OpenSignal, error) {
	rows, err := s.db.Query(`
		SELECT id, symbol, mode, direction, entry, sl, tp1, tp2, status
		FROM signal_history
		WHERE status IN ($1, $2)
		ORDER BY created_at
	`, models.StatusOpen, models.StatusTP1Hit)
	if err != nil {
		return nil, fmt.Errorf("querying open signals: %w", err)
	}
	defer rows.Close()

	var out []OpenSignal
	for rows.Next() {
		var sig OpenSignal
		if err := rows.Scan(
			&sig.ID, &sig.Symbol, &sig.Mode, &sig.Direction,
			&sig.Entry, &sig.SL, &sig.TP1, &sig.TP2, &sig.Status,
		); err != nil {
			return nil, fmt.Errorf("scanning signal row: %w", err)
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

// SetStatus advances a signal's lifecycle; terminal statuses also record
// the close time.
func (s *Store) SetStatus(id int64, status string) error {
	var closedAt any
	if status == models.StatusTP2Hit || status == models.StatusSLHit {
		closedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		UPDATE signal_history SET status = $1, closed_at = $2 WHERE id = $3
	`, status, closedAt, id)
	if err != nil {
		return fmt.Errorf("updating signal %d: %w", id, err)
	}
	return nil
}

// Resolve returns the next status for an open signal at the given price,
// or "" when nothing was hit. TP2 outranks TP1 when both are through.
func Resolve(sig OpenSignal, price float64) string {
	if sig.Direction == models.DirectionLong {
		switch {
		case price <= sig.SL:
			return models.StatusSLHit
		case price >= sig.TP2:
			return models.StatusTP2Hit
		case price >= sig.TP1 && sig.Status == models.StatusOpen:
			return models.StatusTP1Hit
		}
		return ""
	}
	switch {
	case price >= sig.SL:
		return models.StatusSLHit
	case price <= sig.TP2:
		return models.StatusTP2Hit
	case price <= sig.TP1 && sig.Status == models.StatusOpen:
		return models.StatusTP1Hit
	}
	return ""
}

func nullFloat(v float64) any {
	if v == 0 {
		return nil
	}
	return v
}
