package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/duespay/internal/models"
)

// GetSetting retrieves a setting by key.
func (s *PostgresStore) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	setting := &models.Setting{}
	err := s.q.QueryRow(ctx,
		`SELECT key, value, description, updated_at FROM settings WHERE key = $1`, key,
	).Scan(&setting.Key, &setting.Value, &setting.Description, &setting.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "setting", key)
	}
	return setting, nil
}

// ListSettings retrieves all settings ordered by key.
func (s *PostgresStore) ListSettings(ctx context.Context) ([]*models.Setting, error) {
	rows, err := s.q.Query(ctx, `SELECT key, value, description, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var settings []*models.Setting
	for rows.Next() {
		setting := &models.Setting{}
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.Description, &setting.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}
	return settings, nil
}

// UpsertSetting creates or updates a setting in one statement.
func (s *PostgresStore) UpsertSetting(ctx context.Context, setting *models.Setting) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO settings (key, value, description, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			description = CASE WHEN EXCLUDED.description <> '' THEN EXCLUDED.description ELSE settings.description END,
			updated_at = EXCLUDED.updated_at
		RETURNING key, value, description, updated_at`,
		setting.Key, setting.Value, setting.Description, time.Now().Unix(),
	).Scan(&setting.Key, &setting.Value, &setting.Description, &setting.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}
