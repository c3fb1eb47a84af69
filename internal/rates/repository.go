package rates

import (
	"context"

	"github.com/digitalogic/catalog/internal/database/postgres"
)

// SettingsRepository is a flat key-value store. The service layer owns which
// keys exist and how legacy aliases are handled.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type repository struct {
	db postgres.DBTX
}

func NewSettingsRepository(db postgres.DBTX) SettingsRepository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, "SELECT value FROM settings WHERE key = $1", key).Scan(&value)
	return value, err
}

func (r *repository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	return err
}
