package store

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/BernieSumption/webcam-wave/internal/wave"
)

// paramsKey is the settings row holding the JSON-encoded detection
// parameters.
const paramsKey = "detector_params"

// SettingsRepository provides access to persisted application settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Set stores a setting, replacing any existing value for the key.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Get retrieves a setting by key. Returns ErrNotFound if the key has
// never been set.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// SaveParams persists the detection parameters.
func (r *SettingsRepository) SaveParams(p wave.Params) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.Set(paramsKey, string(data))
}

// LoadParams retrieves the persisted detection parameters. Returns
// ErrNotFound when none have been saved yet; callers fall back to
// wave.DefaultParams.
func (r *SettingsRepository) LoadParams() (wave.Params, error) {
	value, err := r.Get(paramsKey)
	if err != nil {
		return wave.Params{}, err
	}

	var p wave.Params
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return wave.Params{}, err
	}
	return p, nil
}
