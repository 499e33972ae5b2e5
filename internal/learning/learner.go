// Package learning extracts durable knowledge about the user from
// interactions and periodically synthesizes it into evolved understanding.
package learning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/normanking/luna/internal/brain"
	"github.com/normanking/luna/internal/logging"
	"github.com/normanking/luna/internal/store"
)

// NoContextSentinel is returned by ContextDigest when nothing has been
// learned yet.
const NoContextSentinel = "No learned context yet"

const (
	rawInsightLimit      = 500
	rawInsightConfidence = 0.3
	synthesisConfidence  = 0.8
)

// payload is the structured learning analysis embedded in generated text.
type payload struct {
	LearnedPreferences []struct {
		Type       string  `json:"type"`
		Value      string  `json:"value"`
		Confidence float64 `json:"confidence"`
	} `json:"learned_preferences"`
	EffectivePatterns []struct {
		Pattern       string  `json:"pattern"`
		Effectiveness float64 `json:"effectiveness"`
		Why           string  `json:"why"`
	} `json:"effective_patterns"`
	UserInsights []struct {
		Aspect        string  `json:"aspect"`
		Understanding string  `json:"understanding"`
		Confidence    float64 `json:"confidence"`
	} `json:"user_insights"`
}

// Learner runs generation-backed analysis over interactions and merges the
// results into the learning tables.
type Learner struct {
	store   *store.Store
	brain   brain.Brain
	log     *logging.Logger
	timeout time.Duration
}

// New builds a learner. timeout bounds each generation call.
func New(st *store.Store, b brain.Brain, log *logging.Logger, timeout time.Duration) *Learner {
	return &Learner{
		store:   st,
		brain:   b,
		log:     log.Component("learning"),
		timeout: timeout,
	}
}

// LearnFromInteraction analyzes one exchange and records what it can.
// A parse failure stores a single low-confidence raw insight instead; a
// generation failure records nothing. Neither is propagated as an error so
// chat and ping paths stay unblocked.
func (l *Learner) LearnFromInteraction(ctx context.Context, userInput, response, reaction, interactionContext string) {
	text, err := l.brain.Generate(ctx, learningPrompt(userInput, response, reaction, interactionContext), l.timeout)
	if err != nil {
		l.log.Warn().Err(err).Msg("learning analysis failed")
		return
	}

	p, ok := extract(text)
	if !ok {
		l.storeRawInsight(ctx, text, userInput, response)
		return
	}
	l.storeStructured(ctx, p)
}

func (l *Learner) storeStructured(ctx context.Context, p *payload) {
	stored := 0
	for _, pref := range p.LearnedPreferences {
		if pref.Value == "" {
			continue
		}
		if err := l.store.RecordPreference(ctx, pref.Type, pref.Value, pref.Confidence); err != nil {
			l.log.Warn().Err(err).Str("value", pref.Value).Msg("preference record failed")
			continue
		}
		stored++
	}
	for _, pat := range p.EffectivePatterns {
		if pat.Pattern == "" {
			continue
		}
		if err := l.store.RecordPattern(ctx, pat.Pattern, pat.Effectiveness); err != nil {
			l.log.Warn().Err(err).Msg("pattern record failed")
			continue
		}
		stored++
	}
	for _, ins := range p.UserInsights {
		if ins.Understanding == "" {
			continue
		}
		if err := l.store.UpsertUserModel(ctx, ins.Aspect, ins.Understanding, ins.Confidence, "Learned through interaction"); err != nil {
			l.log.Warn().Err(err).Str("aspect", ins.Aspect).Msg("user model update failed")
			continue
		}
		stored++
	}
	l.log.Debug().Int("stored", stored).Msg("interaction learning stored")
}

func (l *Learner) storeRawInsight(ctx context.Context, text, userInput, response string) {
	note := fmt.Sprintf("From: %s -> %s", truncate(userInput, 100), truncate(response, 100))
	err := l.store.UpsertUserModel(ctx, "raw_insight", truncate(text, rawInsightLimit), rawInsightConfidence, note)
	if err != nil {
		l.log.Warn().Err(err).Msg("raw insight store failed")
	}
}

// Synthesize feeds everything learned so far back through generation and
// appends the evolved understanding as a synthesis row. Runs on the
// few-hourly schedule; also callable directly.
func (l *Learner) Synthesize(ctx context.Context) (string, error) {
	prefs, err := l.store.TopPreferences(ctx, 10)
	if err != nil {
		return "", err
	}
	patterns, err := l.store.TopPatterns(ctx, 10)
	if err != nil {
		return "", err
	}
	model, err := l.store.UserModel(ctx)
	if err != nil {
		return "", err
	}

	text, err := l.brain.Generate(ctx, synthesisPrompt(prefs, patterns, model), l.timeout)
	if err != nil {
		return "", fmt.Errorf("synthesis generation failed: %w", err)
	}

	if err := l.store.AppendSynthesis(ctx, text, synthesisConfidence, "Deep reflection synthesis"); err != nil {
		return "", err
	}
	l.log.Info().Msg("synthesis stored")
	return text, nil
}

// ContextDigest compacts the learned state for prompt injection: top
// preferences, the patterns that worked, and the strongest model entries.
func (l *Learner) ContextDigest(ctx context.Context) string {
	var parts []string

	if prefs, err := l.store.TopPreferences(ctx, 3); err != nil {
		l.log.Warn().Err(err).Msg("preference read failed")
	} else if len(prefs) > 0 {
		items := make([]string, 0, len(prefs))
		for _, p := range prefs {
			items = append(items, fmt.Sprintf("%s: %s", p.Type, p.Value))
		}
		parts = append(parts, "User preferences: "+strings.Join(items, "; "))
	}

	if patterns, err := l.store.TopPatterns(ctx, 2); err != nil {
		l.log.Warn().Err(err).Msg("pattern read failed")
	} else if len(patterns) > 0 {
		items := make([]string, 0, len(patterns))
		for _, p := range patterns {
			items = append(items, p.Description)
		}
		parts = append(parts, "Effective patterns: "+strings.Join(items, "; "))
	}

	if model, err := l.store.UserModel(ctx); err != nil {
		l.log.Warn().Err(err).Msg("user model read failed")
	} else if len(model) > 0 {
		if len(model) > 3 {
			model = model[:3]
		}
		items := make([]string, 0, len(model))
		for _, m := range model {
			items = append(items, fmt.Sprintf("%s: %s", m.Aspect, m.Understanding))
		}
		parts = append(parts, "User understanding: "+strings.Join(items, "; "))
	}

	if len(parts) == 0 {
		return NoContextSentinel
	}
	return strings.Join(parts, " | ")
}

// extract pulls the JSON object between the first '{' and the last '}'.
func extract(text string) (*payload, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, false
	}
	var p payload
	if err := json.Unmarshal([]byte(text[start:end+1]), &p); err != nil {
		return nil, false
	}
	return &p, true
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
