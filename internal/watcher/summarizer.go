package watcher

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/normanking/luna/internal/store"
)

// NoActivitySentinel is returned by RecentSummary when the window is empty.
const NoActivitySentinel = "No recent activity detected"

// activityCategories maps a category name to its title keywords. Matching is
// case-insensitive; the first matching category wins; unmatched titles fall
// into "work".
var activityCategories = []struct {
	name     string
	keywords []string
}{
	{"coding", []string{"code", "vim", "terminal", "intellij", "pycharm", "goland", "vscode", "emacs"}},
	{"browsing", []string{"chrome", "firefox", "safari", "edge", "browser"}},
	{"entertainment", []string{"youtube", "netflix", "spotify", "twitch", "steam", "game"}},
	{"communication", []string{"slack", "discord", "telegram", "zoom", "teams", "mail"}},
}

const defaultCategory = "work"

// PatternAggregate is a coarse picture of the user's recent activity.
type PatternAggregate struct {
	DominantProcesses  []string
	ActivityCategories []string
	SampleCount        int
}

// Summarizer turns stored snapshots into digests and aggregates.
type Summarizer struct {
	store *store.Store
}

// NewSummarizer creates a summarizer over the given store.
func NewSummarizer(s *store.Store) *Summarizer {
	return &Summarizer{store: s}
}

// RecentSummary renders up to 5 snapshots inside the window as a
// semicolon-joined digest, most recent first. Snapshots with no window title
// fall back to their process list. An empty window yields the sentinel
// string, never an error.
func (s *Summarizer) RecentSummary(ctx context.Context, window time.Duration) string {
	snaps, err := s.store.RecentActivity(ctx, time.Now().Add(-window), 5)
	if err != nil || len(snaps) == 0 {
		return NoActivitySentinel
	}

	parts := make([]string, 0, len(snaps))
	for _, snap := range snaps {
		switch {
		case strings.TrimSpace(snap.WindowTitle) != "":
			if len(snap.Processes) > 0 {
				parts = append(parts, fmt.Sprintf("%s (%s)", snap.WindowTitle, strings.Join(snap.Processes, ", ")))
			} else {
				parts = append(parts, snap.WindowTitle)
			}
		case len(snap.Processes) > 0:
			parts = append(parts, strings.Join(snap.Processes, ", "))
		}
	}
	if len(parts) == 0 {
		return NoActivitySentinel
	}

	return strings.Join(parts, "; ")
}

// DetectPatterns aggregates snapshots inside the window into dominant
// processes (top 3 by frequency) and activity categories (top 2). Returns
// nil when the window holds no snapshots.
func (s *Summarizer) DetectPatterns(ctx context.Context, window time.Duration) (*PatternAggregate, error) {
	snaps, err := s.store.RecentActivity(ctx, time.Now().Add(-window), 2000)
	if err != nil {
		return nil, fmt.Errorf("failed to read activity: %w", err)
	}
	if len(snaps) == 0 {
		return nil, nil
	}

	procCounts := make(map[string]int)
	catCounts := make(map[string]int)
	for _, snap := range snaps {
		for _, p := range snap.Processes {
			procCounts[p]++
		}
		catCounts[Categorize(snap.WindowTitle)]++
	}

	return &PatternAggregate{
		DominantProcesses:  topKeys(procCounts, 3),
		ActivityCategories: topKeys(catCounts, 2),
		SampleCount:        len(snaps),
	}, nil
}

// Categorize classifies a window title into a coarse activity category.
func Categorize(title string) string {
	lower := strings.ToLower(title)
	for _, cat := range activityCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return cat.name
			}
		}
	}
	return defaultCategory
}

// topKeys returns the n most frequent keys, ties broken alphabetically for
// deterministic output.
func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// String renders the aggregate for prompt injection.
func (p *PatternAggregate) String() string {
	if p == nil {
		return "no activity patterns"
	}
	return fmt.Sprintf("dominant processes: %s; activity: %s; samples: %d",
		strings.Join(p.DominantProcesses, ", "),
		strings.Join(p.ActivityCategories, ", "),
		p.SampleCount,
	)
}
