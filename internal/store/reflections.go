package store

import (
	"context"
	"fmt"
	"time"
)

// Mood sentinels. Reflections carrying either are skipped when building
// prompt context.
const (
	MoodNoShift = "No shift"
	MoodUnknown = "Unknown"
)

// Reflection is one appended record of a reflection cycle.
type Reflection struct {
	ID         int64
	Timestamp  time.Time
	Context    string
	Content    string
	DeltasJSON string
	Mood       string
}

// AppendReflection appends one reflection record. Timestamp is stamped here
// if unset. Every reflection cycle writes exactly one of these, structured
// or not.
func (s *Store) AppendReflection(ctx context.Context, r *Reflection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	if r.Mood == "" {
		r.Mood = MoodNoShift
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reflections (timestamp, context, content, deltas_json, mood)
		 VALUES (?, ?, ?, ?, ?)`,
		r.Timestamp, r.Context, r.Content, r.DeltasJSON, r.Mood,
	)
	if err != nil {
		return fmt.Errorf("failed to append reflection: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		r.ID = id
	}
	return nil
}

// RecentMoodShifts returns the most recent non-trivial mood labels, newest
// first, excluding the sentinel values.
func (s *Store) RecentMoodShifts(ctx context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT mood FROM reflections
		 WHERE mood != ? AND mood != ''
		 AND mood != ?
		 ORDER BY timestamp DESC
		 LIMIT ?`,
		MoodNoShift, MoodUnknown, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	moods := make([]string, 0, limit)
	for rows.Next() {
		var mood string
		if err := rows.Scan(&mood); err != nil {
			return nil, err
		}
		moods = append(moods, mood)
	}

	return moods, rows.Err()
}

// RecentReflections returns the most recent reflection records, newest first.
func (s *Store) RecentReflections(ctx context.Context, limit int) ([]Reflection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, context, content, deltas_json, mood
		 FROM reflections
		 ORDER BY timestamp DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	refs := make([]Reflection, 0, limit)
	for rows.Next() {
		var r Reflection
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Context, &r.Content, &r.DeltasJSON, &r.Mood); err != nil {
			return nil, fmt.Errorf("failed to scan reflection: %w", err)
		}
		refs = append(refs, r)
	}

	return refs, rows.Err()
}

// CountReflections returns the total number of reflection records.
func (s *Store) CountReflections(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reflections`).Scan(&count)
	return count, err
}

// AppendJournal appends a free-form journal entry (nightly deep reflections).
func (s *Store) AppendJournal(ctx context.Context, entry string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal (timestamp, entry) VALUES (?, ?)`,
		time.Now(), entry,
	)
	if err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	return nil
}

// JournalEntries returns journal entries since a given time, oldest first.
func (s *Store) JournalEntries(ctx context.Context, since time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT entry FROM journal WHERE timestamp >= ? ORDER BY timestamp`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	entries := make([]string, 0)
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
