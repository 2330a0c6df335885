package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/google/uuid"
)

// Profile is a named set of pipeline and machine parameters.
type Profile struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Tuning      app.Tuning `json:"tuning"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ProfileRepository provides CRUD operations for profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

const profileColumns = `id, name, description, tuning, created_at, updated_at`

// Create inserts p, assigning an ID when it has none.
func (r *ProfileRepository) Create(p *Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	tuning, err := json.Marshal(p.Tuning)
	if err != nil {
		return fmt.Errorf("failed to encode tuning: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, string(tuning), p.CreatedAt, p.UpdatedAt,
	)
	return conflict(err)
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	return r.scanOne(r.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
}

// GetByName retrieves a profile by its name.
func (r *ProfileRepository) GetByName(name string) (*Profile, error) {
	return r.scanOne(r.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE name = ?`, name))
}

// List retrieves all profiles, newest first.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(`SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Update replaces name, description and tuning of an existing profile.
func (r *ProfileRepository) Update(p *Profile) error {
	p.UpdatedAt = time.Now()

	tuning, err := json.Marshal(p.Tuning)
	if err != nil {
		return fmt.Errorf("failed to encode tuning: %w", err)
	}

	result, err := r.db.Exec(
		`UPDATE profiles SET name = ?, description = ?, tuning = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Description, string(tuning), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return conflict(err)
	}
	return affected(result)
}

// Delete removes a profile by its ID.
func (r *ProfileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}

func (r *ProfileRepository) scanOne(row *sql.Row) (*Profile, error) {
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*Profile, error) {
	p := &Profile{}
	var tuning string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &tuning, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Tuning = app.DefaultTuning()
	if err := json.Unmarshal([]byte(tuning), &p.Tuning); err != nil {
		return nil, fmt.Errorf("profile %s: failed to decode tuning: %w", p.ID, err)
	}
	return p, nil
}

// conflict maps a unique constraint violation to ErrConflict.
func conflict(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
