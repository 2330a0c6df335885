package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/ayusman/mudra/internal/interaction"
	"github.com/google/uuid"
)

// Binding routes one intent kind to an action of an external hook.
type Binding struct {
	ID         string                 `json:"id"`
	Intent     interaction.IntentKind `json:"intent"`
	HookName   string                 `json:"hook_name"`
	ActionName string                 `json:"action_name"`
	Config     json.RawMessage        `json:"config,omitempty"`
	Enabled    bool                   `json:"enabled"`
	CreatedAt  time.Time              `json:"created_at"`
}

// BindingRepository provides CRUD operations for bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

const bindingColumns = `id, intent, hook_name, action_name, config, enabled, created_at`

// Create inserts b, assigning an ID when it has none.
func (r *BindingRepository) Create(b *Binding) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO bindings (`+bindingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Intent.String(), b.HookName, b.ActionName, string(rawConfig(b.Config)), b.Enabled, b.CreatedAt,
	)
	return err
}

// GetByID retrieves a binding by its ID.
func (r *BindingRepository) GetByID(id string) (*Binding, error) {
	b, err := scanBinding(r.db.QueryRow(`SELECT `+bindingColumns+` FROM bindings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// List retrieves all bindings, newest first.
func (r *BindingRepository) List() ([]*Binding, error) {
	return r.query(`SELECT ` + bindingColumns + ` FROM bindings ORDER BY created_at DESC`)
}

// ForIntent retrieves the enabled bindings for kind, oldest first.
func (r *BindingRepository) ForIntent(kind interaction.IntentKind) ([]*Binding, error) {
	return r.query(
		`SELECT `+bindingColumns+` FROM bindings WHERE intent = ? AND enabled = 1 ORDER BY created_at, rowid`,
		kind.String(),
	)
}

// Update replaces every field of an existing binding.
func (r *BindingRepository) Update(b *Binding) error {
	enabled := 0
	if b.Enabled {
		enabled = 1
	}

	result, err := r.db.Exec(
		`UPDATE bindings SET intent = ?, hook_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		b.Intent.String(), b.HookName, b.ActionName, string(rawConfig(b.Config)), enabled, b.ID,
	)
	if err != nil {
		return err
	}
	return affected(result)
}

// Delete removes a binding by its ID.
func (r *BindingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM bindings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}

func (r *BindingRepository) query(q string, args ...any) ([]*Binding, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bindings, nil
}

func scanBinding(row scanner) (*Binding, error) {
	b := &Binding{}
	var intent, config string
	var enabled int

	if err := row.Scan(&b.ID, &intent, &b.HookName, &b.ActionName, &config, &enabled, &b.CreatedAt); err != nil {
		return nil, err
	}
	if err := b.Intent.UnmarshalText([]byte(intent)); err != nil {
		return nil, err
	}
	b.Config = json.RawMessage(config)
	b.Enabled = enabled != 0
	return b, nil
}

func rawConfig(c json.RawMessage) json.RawMessage {
	if len(c) == 0 {
		return json.RawMessage("{}")
	}
	return c
}
