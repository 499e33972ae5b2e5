package store

import (
	"context"
	"fmt"
	"time"
)

// Preference is a learned user preference, keyed by (type, value).
type Preference struct {
	Type         string
	Value        string
	Confidence   float64
	LastObserved time.Time
	Count        int
}

// Pattern is a conversation pattern keyed by its description.
type Pattern struct {
	Description   string
	Effectiveness float64
	LastUsed      time.Time
	Count         int
}

// UserModelEntry is one aspect of Luna's understanding of the user.
type UserModelEntry struct {
	ID            int64
	Aspect        string
	Understanding string
	Confidence    float64
	UpdatedAt     time.Time
	Note          string
}

// SynthesisAspect marks rows that are journal-style synthesis entries.
// Unlike other aspects, synthesis rows are always appended, never replaced.
const SynthesisAspect = "evolved_synthesis"

// RecordPreference upserts a preference. Repeated observation of the same
// (type, value) increments the observation count and refreshes confidence
// and timestamp instead of duplicating the row.
func (s *Store) RecordPreference(ctx context.Context, prefType, value string, confidence float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO preferences (type, value, confidence, last_observed, count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(type, value) DO UPDATE SET
			confidence = excluded.confidence,
			last_observed = excluded.last_observed,
			count = count + 1
	`

	_, err := s.db.ExecContext(ctx, query, prefType, value, clamp01(confidence), time.Now())
	if err != nil {
		return fmt.Errorf("failed to record preference: %w", err)
	}
	return nil
}

// TopPreferences returns preferences ranked by confidence then count.
func (s *Store) TopPreferences(ctx context.Context, limit int) ([]Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT type, value, confidence, last_observed, count
		 FROM preferences
		 ORDER BY confidence DESC, count DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	prefs := make([]Preference, 0, limit)
	for rows.Next() {
		var p Preference
		if err := rows.Scan(&p.Type, &p.Value, &p.Confidence, &p.LastObserved, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}

	return prefs, rows.Err()
}

// GetPreference looks up a single preference row.
func (s *Store) GetPreference(ctx context.Context, prefType, value string) (*Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p Preference
	err := s.db.QueryRowContext(ctx,
		`SELECT type, value, confidence, last_observed, count
		 FROM preferences WHERE type = ? AND value = ?`,
		prefType, value,
	).Scan(&p.Type, &p.Value, &p.Confidence, &p.LastObserved, &p.Count)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RecordPattern upserts a conversation pattern keyed by description,
// incrementing its usage count on repeat.
func (s *Store) RecordPattern(ctx context.Context, description string, effectiveness float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO patterns (description, effectiveness, last_used, count)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(description) DO UPDATE SET
			effectiveness = excluded.effectiveness,
			last_used = excluded.last_used,
			count = count + 1
	`

	_, err := s.db.ExecContext(ctx, query, description, clamp01(effectiveness), time.Now())
	if err != nil {
		return fmt.Errorf("failed to record pattern: %w", err)
	}
	return nil
}

// TopPatterns returns patterns ranked by effectiveness then usage count.
func (s *Store) TopPatterns(ctx context.Context, limit int) ([]Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT description, effectiveness, last_used, count
		 FROM patterns
		 ORDER BY effectiveness DESC, count DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	patterns := make([]Pattern, 0, limit)
	for rows.Next() {
		var p Pattern
		if err := rows.Scan(&p.Description, &p.Effectiveness, &p.LastUsed, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		patterns = append(patterns, p)
	}

	return patterns, rows.Err()
}

// UpsertUserModel records an understanding of one aspect of the user. A later
// entry for the same aspect replaces the prior one (last write wins). The
// synthesis aspect is append-only journal data and is routed to
// AppendSynthesis so a replace can never rewrite existing journal rows.
func (s *Store) UpsertUserModel(ctx context.Context, aspect, understanding string, confidence float64, note string) error {
	if aspect == SynthesisAspect {
		return s.AppendSynthesis(ctx, understanding, confidence, note)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_model SET understanding = ?, confidence = ?, updated_at = ?, note = ?
		 WHERE aspect = ?`,
		understanding, clamp01(confidence), now, note, aspect,
	)
	if err != nil {
		return fmt.Errorf("failed to update user model: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_model (aspect, understanding, confidence, updated_at, note)
		 VALUES (?, ?, ?, ?, ?)`,
		aspect, understanding, clamp01(confidence), now, note,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user model entry: %w", err)
	}
	return nil
}

// AppendSynthesis appends a synthesis entry as a new row. Synthesis rows are
// a running journal of Luna's evolved understanding, not a replaceable fact.
func (s *Store) AppendSynthesis(ctx context.Context, understanding string, confidence float64, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_model (aspect, understanding, confidence, updated_at, note)
		 VALUES (?, ?, ?, ?, ?)`,
		SynthesisAspect, understanding, clamp01(confidence), time.Now(), note,
	)
	if err != nil {
		return fmt.Errorf("failed to append synthesis: %w", err)
	}
	return nil
}

// UserModel returns entries with usable confidence, ranked by confidence
// then recency.
func (s *Store) UserModel(ctx context.Context) ([]UserModelEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, aspect, understanding, confidence, updated_at, note
		 FROM user_model
		 WHERE confidence > 0.3
		 ORDER BY confidence DESC, updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	entries := make([]UserModelEntry, 0)
	for rows.Next() {
		var e UserModelEntry
		if err := rows.Scan(&e.ID, &e.Aspect, &e.Understanding, &e.Confidence, &e.UpdatedAt, &e.Note); err != nil {
			return nil, fmt.Errorf("failed to scan user model entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
