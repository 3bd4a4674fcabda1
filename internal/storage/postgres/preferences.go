package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"feed_digest/internal/domain"
)

// PreferencesStore keeps each user's preference bag as one JSONB document.
type PreferencesStore struct {
	db *sqlx.DB
}

func NewPreferencesStore(db *sqlx.DB) *PreferencesStore {
	return &PreferencesStore{db: db}
}

func (s *PreferencesStore) UserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &ids,
		`SELECT user_id FROM user_preferences ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Get returns an empty bag for unknown users. Inside a transaction the
// row is locked until commit so a read-modify-write cannot lose updates.
func (s *PreferencesStore) Get(ctx context.Context, userID string) (domain.RawPreferences, error) {
	query := `SELECT preferences FROM user_preferences WHERE user_id = $1`
	if GetTxFromContext(ctx) != nil {
		query += ` FOR UPDATE`
	}

	var data []byte
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &data, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RawPreferences{}, nil
	}
	if err != nil {
		return nil, err
	}

	prefs := domain.RawPreferences{}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, nil
}

func (s *PreferencesStore) Save(ctx context.Context, userID string, prefs domain.RawPreferences) error {
	if prefs == nil {
		prefs = domain.RawPreferences{}
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	query := `
		INSERT INTO user_preferences (user_id, preferences, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			preferences = EXCLUDED.preferences,
			updated_at = EXCLUDED.updated_at`

	_, err = GetExecutor(ctx, s.db).ExecContext(ctx, query, userID, data)
	return err
}
