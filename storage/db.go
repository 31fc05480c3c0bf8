// Package storage persists commit-run outcomes in a local SQLite file. The
// records are what makes a re-run safe: they tell the engine which recipients
// were already paid and what amount a failed recipient is still owed.
package storage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/EssncDev/Solana-SPL-Distributor/models"

	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers as "sqlite"; teach sqlx its bind style.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

var migrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "0001_transfer_outcomes",
			Up: []string{
				`CREATE TABLE IF NOT EXISTS transfer_outcomes (
					id          INTEGER PRIMARY KEY AUTOINCREMENT,
					run_id      TEXT    NOT NULL,
					mint        TEXT    NOT NULL,
					recipient   TEXT    NOT NULL,
					amount      INTEGER NOT NULL,
					resolved    INTEGER NOT NULL,
					transferred INTEGER NOT NULL,
					signature   TEXT    NOT NULL DEFAULT '',
					created_at  INTEGER NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_outcomes_mint_recipient
					ON transfer_outcomes(mint, recipient)`,
			},
			Down: []string{`DROP TABLE transfer_outcomes`},
		},
	},
}

// DB wraps the SQLite run ledger.
type DB struct {
	*sqlx.DB
}

// NewDB opens (or creates) the run ledger database and applies migrations.
func NewDB(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run ledger %s: %w", path, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	n, err := migrate.Exec(db.DB, "sqlite3", migrations, migrate.Up)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	if n > 0 {
		log.Printf("[INFO] run ledger: applied %d migration(s)", n)
	}

	return &DB{db}, nil
}

// SaveOutcome appends one outcome row. Existing rows are never updated; the
// ledger is an append-only audit trail.
func (d *DB) SaveOutcome(rec models.OutcomeRecord) error {
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().Unix()
	}
	_, err := d.Exec(`INSERT INTO transfer_outcomes
		(run_id, mint, recipient, amount, resolved, transferred, signature, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		rec.RunID, rec.Mint, rec.Recipient, rec.Amount,
		rec.Resolved, rec.Transferred, rec.Signature, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save outcome for %s: %w", rec.Recipient, err)
	}
	return nil
}

// PriorOutcomes returns the decisive prior record per recipient for a mint:
// once a confirmed transfer exists for a recipient it wins over every later
// attempt; otherwise the most recent attempt wins.
func (d *DB) PriorOutcomes(mint string) (map[string]models.OutcomeRecord, error) {
	var rows []models.OutcomeRecord
	err := d.Select(&rows, `SELECT id, run_id, mint, recipient, amount, resolved, transferred, signature, created_at
		FROM transfer_outcomes WHERE mint = ? ORDER BY id ASC`, mint)
	if err != nil {
		return nil, fmt.Errorf("load outcomes for mint %s: %w", mint, err)
	}

	prior := make(map[string]models.OutcomeRecord, len(rows))
	for _, r := range rows {
		if p, ok := prior[r.Recipient]; ok && p.Transferred {
			continue
		}
		prior[r.Recipient] = r
	}
	return prior, nil
}
