package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/jusunglee/manchuscript/internal/db"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Repository implements db.Repository using SQLite
type Repository struct {
	db *sql.DB
	tx *sql.Tx
}

// New creates a new SQLite repository
func New(ctx context.Context, dbPath string) (*Repository, error) {
	// Strip sqlite:// prefix if present
	dbPath = strings.TrimPrefix(dbPath, "sqlite://")

	sqliteDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := sqliteDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Schema statements are IF NOT EXISTS, safe to run on every open
	if _, err := sqliteDB.ExecContext(ctx, schemaSQL); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Repository{db: sqliteDB}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// querier routes statements through the transaction when one is open.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *Repository) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Conversion methods

func (r *Repository) UpsertConversion(ctx context.Context, arg db.UpsertConversionParams) (db.Conversion, error) {
	_, err := r.q().ExecContext(ctx, `
		INSERT INTO conversions (romanized, script, source)
		VALUES (?, ?, ?)
		ON CONFLICT (romanized) DO UPDATE SET script = ?, source = ?
	`, arg.Romanized, arg.Script, arg.Source, arg.Script, arg.Source)
	if err != nil {
		return db.Conversion{}, err
	}

	return r.GetConversion(ctx, arg.Romanized)
}

func (r *Repository) GetConversion(ctx context.Context, romanized string) (db.Conversion, error) {
	row := r.q().QueryRowContext(ctx, `
		SELECT id, romanized, script, source, created_at
		FROM conversions WHERE romanized = ?
	`, romanized)

	return scanConversion(row)
}

func (r *Repository) ListRecentConversions(ctx context.Context, limit int32) ([]db.Conversion, error) {
	rows, err := r.q().QueryContext(ctx, `
		SELECT id, romanized, script, source, created_at
		FROM conversions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanConversions(rows)
}

func (r *Repository) CountConversions(ctx context.Context) (int64, error) {
	var count int64
	err := r.q().QueryRowContext(ctx, `SELECT COUNT(*) FROM conversions`).Scan(&count)
	return count, err
}

func (r *Repository) DeleteOldConversions(ctx context.Context, before time.Time) (int64, error) {
	// created_at is stored in datetime('now') layout; the cutoff must use the
	// same layout or the string comparison is meaningless.
	result, err := r.q().ExecContext(ctx, `
		DELETE FROM conversions WHERE created_at < ?
	`, before.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Gloss methods

func (r *Repository) UpsertGloss(ctx context.Context, arg db.UpsertGlossParams) (db.Gloss, error) {
	_, err := r.q().ExecContext(ctx, `
		INSERT INTO glosses (romanized, gloss, provider, model)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (romanized) DO UPDATE SET gloss = ?, provider = ?, model = ?
	`, arg.Romanized, arg.Gloss, arg.Provider, arg.Model, arg.Gloss, arg.Provider, arg.Model)
	if err != nil {
		return db.Gloss{}, err
	}

	return r.GetGloss(ctx, arg.Romanized)
}

func (r *Repository) GetGloss(ctx context.Context, romanized string) (db.Gloss, error) {
	var g db.Gloss
	var createdAtStr string
	err := r.q().QueryRowContext(ctx, `
		SELECT id, romanized, gloss, provider, model, created_at
		FROM glosses WHERE romanized = ?
	`, romanized).Scan(&g.ID, &g.Romanized, &g.Gloss, &g.Provider, &g.Model, &createdAtStr)
	if err == sql.ErrNoRows {
		return db.Gloss{}, db.ErrNoRows
	}
	if err != nil {
		return db.Gloss{}, err
	}
	g.CreatedAt = parseTime(createdAtStr)
	return g, nil
}

// Transaction support

func (r *Repository) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	if r.tx != nil {
		return fmt.Errorf("nested transactions are not supported")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	txRepo := &Repository{db: r.db, tx: tx}
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Helper functions

// sqliteTimeLayout is the layout datetime('now') produces.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// parseTime accepts both RFC3339 and SQLite's default datetime() layout.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	t, _ := time.Parse(sqliteTimeLayout, s)
	return t
}

func scanConversion(row *sql.Row) (db.Conversion, error) {
	var c db.Conversion
	var createdAtStr string
	err := row.Scan(&c.ID, &c.Romanized, &c.Script, &c.Source, &createdAtStr)
	if err == sql.ErrNoRows {
		return db.Conversion{}, db.ErrNoRows
	}
	if err != nil {
		return db.Conversion{}, err
	}
	c.CreatedAt = parseTime(createdAtStr)
	return c, nil
}

func scanConversions(rows *sql.Rows) ([]db.Conversion, error) {
	var conversions []db.Conversion
	for rows.Next() {
		var c db.Conversion
		var createdAtStr string
		if err := rows.Scan(&c.ID, &c.Romanized, &c.Script, &c.Source, &createdAtStr); err != nil {
			return nil, err
		}
		c.CreatedAt = parseTime(createdAtStr)
		conversions = append(conversions, c)
	}
	return conversions, rows.Err()
}
