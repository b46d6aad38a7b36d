package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jusunglee/manchuscript/internal/db"
)

//go:embed schema.sql
var schemaSQL string

// Repository implements db.Repository using PostgreSQL via pgx
type Repository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

// New creates a new PostgreSQL repository
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	config.MaxConns = 5
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 30 * time.Second
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// Pool exposes the underlying pool for stats export.
func (r *Repository) Pool() *pgxpool.Pool { return r.pool }

// PoolStats returns connection pool statistics for metric gauges.
func (r *Repository) PoolStats() *pgxpool.Stat { return r.pool.Stat() }

// row/query/exec route statements through the transaction when one is open.

func (r *Repository) row(ctx context.Context, sql string, args ...any) pgx.Row {
	if r.tx != nil {
		return r.tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if r.tx != nil {
		return r.tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *Repository) exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if r.tx != nil {
		tag, err := r.tx.Exec(ctx, sql, args...)
		return tag.RowsAffected(), err
	}
	tag, err := r.pool.Exec(ctx, sql, args...)
	return tag.RowsAffected(), err
}

// Conversion methods

func (r *Repository) UpsertConversion(ctx context.Context, arg db.UpsertConversionParams) (db.Conversion, error) {
	var c db.Conversion
	err := r.row(ctx, `
		INSERT INTO conversions (romanized, script, source)
		VALUES ($1, $2, $3)
		ON CONFLICT (romanized) DO UPDATE SET script = $2, source = $3
		RETURNING id, romanized, script, source, created_at
	`, arg.Romanized, arg.Script, arg.Source).Scan(&c.ID, &c.Romanized, &c.Script, &c.Source, &c.CreatedAt)
	if err != nil {
		return db.Conversion{}, err
	}
	return c, nil
}

func (r *Repository) GetConversion(ctx context.Context, romanized string) (db.Conversion, error) {
	var c db.Conversion
	err := r.row(ctx, `
		SELECT id, romanized, script, source, created_at
		FROM conversions WHERE romanized = $1
	`, romanized).Scan(&c.ID, &c.Romanized, &c.Script, &c.Source, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return db.Conversion{}, db.ErrNoRows
	}
	if err != nil {
		return db.Conversion{}, err
	}
	return c, nil
}

func (r *Repository) ListRecentConversions(ctx context.Context, limit int32) ([]db.Conversion, error) {
	rows, err := r.query(ctx, `
		SELECT id, romanized, script, source, created_at
		FROM conversions
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversions []db.Conversion
	for rows.Next() {
		var c db.Conversion
		if err := rows.Scan(&c.ID, &c.Romanized, &c.Script, &c.Source, &c.CreatedAt); err != nil {
			return nil, err
		}
		conversions = append(conversions, c)
	}
	return conversions, rows.Err()
}

func (r *Repository) CountConversions(ctx context.Context) (int64, error) {
	var count int64
	err := r.row(ctx, `SELECT COUNT(*) FROM conversions`).Scan(&count)
	return count, err
}

func (r *Repository) DeleteOldConversions(ctx context.Context, before time.Time) (int64, error) {
	return r.exec(ctx, `DELETE FROM conversions WHERE created_at < $1`, before)
}

// Gloss methods

func (r *Repository) UpsertGloss(ctx context.Context, arg db.UpsertGlossParams) (db.Gloss, error) {
	var g db.Gloss
	err := r.row(ctx, `
		INSERT INTO glosses (romanized, gloss, provider, model)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (romanized) DO UPDATE SET gloss = $2, provider = $3, model = $4
		RETURNING id, romanized, gloss, provider, model, created_at
	`, arg.Romanized, arg.Gloss, arg.Provider, arg.Model).Scan(&g.ID, &g.Romanized, &g.Gloss, &g.Provider, &g.Model, &g.CreatedAt)
	if err != nil {
		return db.Gloss{}, err
	}
	return g, nil
}

func (r *Repository) GetGloss(ctx context.Context, romanized string) (db.Gloss, error) {
	var g db.Gloss
	err := r.row(ctx, `
		SELECT id, romanized, gloss, provider, model, created_at
		FROM glosses WHERE romanized = $1
	`, romanized).Scan(&g.ID, &g.Romanized, &g.Gloss, &g.Provider, &g.Model, &g.CreatedAt)
	if err == pgx.ErrNoRows {
		return db.Gloss{}, db.ErrNoRows
	}
	if err != nil {
		return db.Gloss{}, err
	}
	return g, nil
}

// Transaction support

func (r *Repository) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	if r.tx != nil {
		return fmt.Errorf("nested transactions are not supported")
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	// If fn() panics, the normal err-check rollback below won't run.
	// recover() catches the panic so we can roll back the tx (releasing
	// the db connection), then re-panic.
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback(ctx)
			panic(p)
		}
	}()

	txRepo := &Repository{pool: r.pool, tx: tx}
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
