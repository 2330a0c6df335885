package store

import (
	"database/sql"
	"errors"
)

// ActiveProfileKey holds the ID of the profile applied at startup.
const ActiveProfileKey = "active_profile"

// SettingRepository stores key/value settings.
type SettingRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingRepository {
	return &SettingRepository{db: s.db}
}

// Get returns the value stored under key.
func (r *SettingRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// Set stores value under key, replacing any previous value.
func (r *SettingRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Delete removes key.
func (r *SettingRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return affected(result)
}

// ActiveProfile returns the profile marked active.
func (s *Store) ActiveProfile() (*Profile, error) {
	id, err := s.Settings().Get(ActiveProfileKey)
	if err != nil {
		return nil, err
	}
	return s.Profiles().GetByID(id)
}

// SetActiveProfile marks an existing profile active.
func (s *Store) SetActiveProfile(id string) error {
	if _, err := s.Profiles().GetByID(id); err != nil {
		return err
	}
	return s.Settings().Set(ActiveProfileKey, id)
}
