package store

import (
	"context"
	"fmt"
	"time"
)

// Trait is one facet of Luna's behavioral disposition.
type Trait struct {
	Name      string
	Weight    float64
	UpdatedAt time.Time
	Note      string
}

// GetTraits returns the current trait weights keyed by name.
func (s *Store) GetTraits(ctx context.Context) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT name, weight FROM traits`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	traits := make(map[string]float64)
	for rows.Next() {
		var name string
		var weight float64
		if err := rows.Scan(&name, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan trait: %w", err)
		}
		traits[name] = weight
	}

	return traits, rows.Err()
}

// ListTraits returns full trait rows ordered by name.
func (s *Store) ListTraits(ctx context.Context) ([]Trait, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, weight, updated_at, note FROM traits ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	traits := make([]Trait, 0)
	for rows.Next() {
		var t Trait
		if err := rows.Scan(&t.Name, &t.Weight, &t.UpdatedAt, &t.Note); err != nil {
			return nil, fmt.Errorf("failed to scan trait: %w", err)
		}
		traits = append(traits, t)
	}

	return traits, rows.Err()
}

// UpsertTrait inserts or replaces a trait. The weight is clamped into [0,1]
// before writing. Trait names are open vocabulary: a name the store has never
// seen is simply created.
func (s *Store) UpsertTrait(ctx context.Context, name string, weight float64, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO traits (name, weight, updated_at, note)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			weight = excluded.weight,
			updated_at = excluded.updated_at,
			note = excluded.note
	`

	_, err := s.db.ExecContext(ctx, query, name, clamp01(weight), time.Now(), note)
	if err != nil {
		return fmt.Errorf("failed to upsert trait %q: %w", name, err)
	}
	return nil
}
