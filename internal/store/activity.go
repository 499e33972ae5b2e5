package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ActivitySnapshot is one timestamped observation of the user's foreground
// context.
type ActivitySnapshot struct {
	ID          int64
	Timestamp   time.Time
	Processes   []string
	WindowTitle string
}

// Interaction is one logged exchange (ping or chat turn).
type Interaction struct {
	ID        int64
	Timestamp time.Time
	Message   string
	Response  string
}

// AppendActivity appends one activity snapshot.
func (s *Store) AppendActivity(ctx context.Context, processes []string, windowTitle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity (timestamp, processes_csv, window_title) VALUES (?, ?, ?)`,
		time.Now(), strings.Join(processes, ", "), windowTitle,
	)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

// RecentActivity returns snapshots since the given time, newest first,
// capped at limit.
func (s *Store) RecentActivity(ctx context.Context, since time.Time, limit int) ([]ActivitySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, processes_csv, window_title
		 FROM activity
		 WHERE timestamp >= ?
		 ORDER BY timestamp DESC
		 LIMIT ?`,
		since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	snaps := make([]ActivitySnapshot, 0, limit)
	for rows.Next() {
		var snap ActivitySnapshot
		var csv string
		if err := rows.Scan(&snap.ID, &snap.Timestamp, &csv, &snap.WindowTitle); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if csv != "" {
			snap.Processes = strings.Split(csv, ", ")
		}
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

// LogInteraction appends one interaction record.
func (s *Store) LogInteraction(ctx context.Context, message, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (timestamp, message, response) VALUES (?, ?, ?)`,
		time.Now(), message, response,
	)
	if err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}
	return nil
}

// InteractionsSince returns interactions since the given time, oldest first.
func (s *Store) InteractionsSince(ctx context.Context, since time.Time) ([]Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, message, response
		 FROM interactions
		 WHERE timestamp >= ?
		 ORDER BY timestamp`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	items := make([]Interaction, 0)
	for rows.Next() {
		var it Interaction
		if err := rows.Scan(&it.ID, &it.Timestamp, &it.Message, &it.Response); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		items = append(items, it)
	}

	return items, rows.Err()
}
