package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// time0 is a zero-ish lower bound for "since" queries.
func time0() time.Time {
	return time.Unix(0, 0)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "luna-test.db")
	s, err := Open(path)
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_SeedsDefaultTraits(t *testing.T) {
	s := openTestStore(t)

	traits, err := s.GetTraits(context.Background())
	require.NoError(t, err)

	assert.Len(t, traits, len(defaultTraits))
	assert.Equal(t, 0.7, traits["sarcasm"])
	assert.Equal(t, 0.9, traits["mischief"])
}

func TestSeedTraits_Idempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "luna-test.db")

	s, err := Open(path)
	require.NoError(t, err)

	// Evolve a weight, then re-open (which re-runs the seed path).
	require.NoError(t, s.UpsertTrait(ctx, "sarcasm", 0.25, "toned down"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	traits, err := s.GetTraits(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.25, traits["sarcasm"], "re-initialization must not reset evolved weights")
}

func TestUpsertTrait_ClampsWeight(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	tests := []struct {
		name     string
		proposed float64
		want     float64
	}{
		{"above range", 1.7, 1.0},
		{"below range", -0.3, 0.0},
		{"in range", 0.42, 0.42},
		{"exact upper bound", 1.0, 1.0},
		{"exact lower bound", 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.UpsertTrait(ctx, "chaos", tt.proposed, "test"))

			traits, err := s.GetTraits(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, traits["chaos"])
		})
	}
}

func TestUpsertTrait_OpenVocabulary(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.UpsertTrait(ctx, "wistfulness", 0.6, "emerged during reflection"))

	traits, err := s.GetTraits(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.6, traits["wistfulness"], "unknown trait names are created, not rejected")
}

func TestAppendReflection_AndMoodShifts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	refs := []*Reflection{
		{Context: "interaction 1", Content: "raw text", Mood: "melancholic"},
		{Context: "interaction 2", Content: "raw text", Mood: MoodNoShift},
		{Context: "interaction 3", Content: "raw text", Mood: MoodUnknown},
		{Context: "interaction 4", Content: "raw text", Mood: "hyperactive"},
	}
	for _, r := range refs {
		require.NoError(t, s.AppendReflection(ctx, r))
	}

	count, err := s.CountReflections(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	moods, err := s.RecentMoodShifts(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"hyperactive", "melancholic"}, moods,
		"sentinel moods are excluded, newest first")
}

func TestAppendReflection_DefaultsMood(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	r := &Reflection{Context: "ctx", Content: "text"}
	require.NoError(t, s.AppendReflection(ctx, r))
	assert.Equal(t, MoodNoShift, r.Mood)
	assert.NotZero(t, r.ID)
	assert.False(t, r.Timestamp.IsZero())
}

func TestRecordPreference_IncrementsOnRepeat(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.RecordPreference(ctx, "topic", "chess", 0.5))
	require.NoError(t, s.RecordPreference(ctx, "topic", "chess", 0.8))

	p, err := s.GetPreference(ctx, "topic", "chess")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Count, "repeat observation increments the count")
	assert.Equal(t, 0.8, p.Confidence, "confidence refreshed by latest observation")

	// Distinct value under the same type is a separate row.
	require.NoError(t, s.RecordPreference(ctx, "topic", "go", 0.6))
	prefs, err := s.TopPreferences(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, prefs, 2)
}

func TestRecordPattern_IncrementsOnRepeat(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.RecordPattern(ctx, "dry humor lands well", 0.7))
	require.NoError(t, s.RecordPattern(ctx, "dry humor lands well", 0.9))

	patterns, err := s.TopPatterns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, 2, patterns[0].Count)
	assert.Equal(t, 0.9, patterns[0].Effectiveness)
}

func TestUserModel_LastWriteWinsPerAspect(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.UpsertUserModel(ctx, "interests", "likes chess", 0.6, "observed"))
	require.NoError(t, s.UpsertUserModel(ctx, "interests", "likes chess and go", 0.8, "revised"))

	entries, err := s.UserModel(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1, "same aspect replaces rather than duplicates")
	assert.Equal(t, "likes chess and go", entries[0].Understanding)
	assert.Equal(t, 0.8, entries[0].Confidence)
}

func TestAppendSynthesis_AlwaysAppends(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.AppendSynthesis(ctx, "first synthesis", 0.8, "deep reflection"))
	require.NoError(t, s.AppendSynthesis(ctx, "second synthesis", 0.8, "deep reflection"))

	entries, err := s.UserModel(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "synthesis rows are a running journal")
	for _, e := range entries {
		assert.Equal(t, SynthesisAspect, e.Aspect)
	}
}

func TestUpsertUserModel_SynthesisAspectAppendsInsteadOfReplacing(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.AppendSynthesis(ctx, "first synthesis", 0.8, "deep reflection"))
	require.NoError(t, s.AppendSynthesis(ctx, "second synthesis", 0.8, "deep reflection"))

	// An upsert under the synthesis aspect must not rewrite the journal.
	require.NoError(t, s.UpsertUserModel(ctx, SynthesisAspect, "late echo", 0.9, "model-supplied aspect"))

	entries, err := s.UserModel(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	understandings := make([]string, 0, len(entries))
	for _, e := range entries {
		assert.Equal(t, SynthesisAspect, e.Aspect)
		understandings = append(understandings, e.Understanding)
	}
	assert.Contains(t, understandings, "first synthesis")
	assert.Contains(t, understandings, "second synthesis")
	assert.Contains(t, understandings, "late echo")
}

func TestUserModel_FiltersLowConfidence(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.UpsertUserModel(ctx, "mood", "seems tired", 0.2, "weak signal"))
	require.NoError(t, s.UpsertUserModel(ctx, "interests", "likes chess", 0.7, "observed"))

	entries, err := s.UserModel(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "interests", entries[0].Aspect)
}

func TestActivityRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.AppendActivity(ctx, []string{"code", "chrome"}, "VSCode - main.go"))
	require.NoError(t, s.AppendActivity(ctx, nil, ""))

	snaps, err := s.RecentActivity(ctx, time0(), 10)
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	// Newest first; the second insert has no title or processes.
	assert.Empty(t, snaps[0].WindowTitle)
	assert.Nil(t, snaps[0].Processes)
	assert.Equal(t, "VSCode - main.go", snaps[1].WindowTitle)
	assert.Equal(t, []string{"code", "chrome"}, snaps[1].Processes)
}

func TestInteractionsAndJournal(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.LogInteraction(ctx, "[SYSTEM_PING] Context: coding", "still at it, I see"))

	items, err := s.InteractionsSince(ctx, time0())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Message, "[SYSTEM_PING]")

	require.NoError(t, s.AppendJournal(ctx, "tonight I noticed..."))
	entries, err := s.JournalEntries(ctx, time0())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
