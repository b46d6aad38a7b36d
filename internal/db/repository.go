package db

import (
	"context"
	"time"
)

// Conversion is one recorded romanized→script conversion.
type Conversion struct {
	ID        int64
	Romanized string
	Script    string
	Source    string // "api", "cli", or "discord"
	CreatedAt time.Time
}

// Gloss is a cached English gloss for a romanized Manchu word or phrase.
type Gloss struct {
	ID        int64
	Romanized string
	Gloss     string
	Provider  string
	Model     string
	CreatedAt time.Time
}

type UpsertConversionParams struct {
	Romanized string
	Script    string
	Source    string
}

type UpsertGlossParams struct {
	Romanized string
	Gloss     string
	Provider  string
	Model     string
}

// Repository defines the interface for database operations
type Repository interface {
	// Conversions
	UpsertConversion(ctx context.Context, arg UpsertConversionParams) (Conversion, error)
	GetConversion(ctx context.Context, romanized string) (Conversion, error)
	ListRecentConversions(ctx context.Context, limit int32) ([]Conversion, error)
	CountConversions(ctx context.Context) (int64, error)
	DeleteOldConversions(ctx context.Context, before time.Time) (int64, error)

	// Glosses
	UpsertGloss(ctx context.Context, arg UpsertGlossParams) (Gloss, error)
	GetGloss(ctx context.Context, romanized string) (Gloss, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	// Lifecycle
	Close() error
}
