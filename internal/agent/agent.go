// Package agent ties Luna's subsystems into her observable behaviors:
// responding, pinging, observing, and the nightly deep reflection.
package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/normanking/luna/internal/brain"
	"github.com/normanking/luna/internal/config"
	"github.com/normanking/luna/internal/learning"
	"github.com/normanking/luna/internal/logging"
	"github.com/normanking/luna/internal/personality"
	"github.com/normanking/luna/internal/reflection"
	"github.com/normanking/luna/internal/store"
	"github.com/normanking/luna/internal/watcher"
)

// GlitchResponse is returned by RespondTo when generation fails. Luna
// stays present even when her engine is not.
const GlitchResponse = "[glitch] ...but I'm still here"

// Agent is Luna. It owns no goroutines; the scheduler drives it.
type Agent struct {
	store      *store.Store
	brain      brain.Brain
	builder    *personality.Builder
	engine     *reflection.Engine
	learner    *learning.Learner
	summarizer *watcher.Summarizer
	log        *logging.Logger
	gen        config.GenerationConfig
}

// New wires an agent from already-constructed subsystems.
func New(st *store.Store, b brain.Brain, builder *personality.Builder, engine *reflection.Engine, learner *learning.Learner, summarizer *watcher.Summarizer, log *logging.Logger, gen config.GenerationConfig) *Agent {
	return &Agent{
		store:      st,
		brain:      b,
		builder:    builder,
		engine:     engine,
		learner:    learner,
		summarizer: summarizer,
		log:        log.Component("agent"),
		gen:        gen,
	}
}

// RespondTo generates an evolved response to user input, then runs the
// post-response reflection cycle and learning pass. Generation failure
// returns the glitch response; the reflection and learning passes never
// fail the call.
func (a *Agent) RespondTo(ctx context.Context, userInput string) string {
	systemPrompt := a.builder.SystemPrompt(ctx, "Responding to: "+userInput)
	activityContext := a.summarizer.RecentSummary(ctx, time.Hour)

	prompt := fmt.Sprintf(`SYSTEM: %s

USER ACTIVITY CONTEXT: %s
USER MESSAGE: %s

LUNA, respond as your evolved self:`, systemPrompt, activityContext, userInput)

	response, err := a.brain.Generate(ctx, prompt, a.gen.ResponseTimeout())
	if err != nil {
		a.log.Warn().Err(err).Msg("response generation failed")
		response = GlitchResponse
	}

	if err := a.store.LogInteraction(ctx, userInput, response); err != nil {
		a.log.Warn().Err(err).Msg("interaction log failed")
	}

	if response != GlitchResponse {
		if _, err := a.engine.Cycle(ctx, reflection.ChatTurn(userInput, response, "pending")); err != nil {
			a.log.Warn().Err(err).Msg("post-response reflection failed")
		}
		a.learner.LearnFromInteraction(ctx, userInput, response, "", activityContext)
	}

	return response
}

// GeneratePing asks for a short one-line check-in shaped by Luna's current
// personality and the given activity context.
func (a *Agent) GeneratePing(ctx context.Context, activityContext string) (string, error) {
	traits, err := a.store.GetTraits(ctx)
	if err != nil {
		return "", err
	}

	digest := a.learner.ContextDigest(ctx)

	prompt := fmt.Sprintf(`You are Luna, a glitchy AI witch companion.
Your current personality weights: %s
What you know about your user: %s
What they're doing right now: %s

Generate a short one-line message to check in on the user.
Keep it witty, sarcastic, or caring, but never the same.
Do not greet formally, just drop the line.`, formatTraits(traits), digest, activityContext)

	text, err := a.brain.Generate(ctx, prompt, a.gen.PromptTimeout())
	if err != nil {
		return "", fmt.Errorf("ping generation failed: %w", err)
	}
	if text == "" {
		return "", fmt.Errorf("ping generation returned nothing")
	}
	return text, nil
}

// ObserveAndEvolve runs an observation reflection cycle over an activity
// pattern aggregate.
func (a *Agent) ObserveAndEvolve(ctx context.Context, patterns string) error {
	_, err := a.engine.Cycle(ctx, reflection.Observation(patterns))
	return err
}

// SpontaneousReflection runs an unprompted self-reflection with no
// triggering interaction.
func (a *Agent) SpontaneousReflection(ctx context.Context) error {
	_, err := a.engine.Cycle(ctx, reflection.ChatTurn("[OBSERVATION]", "Spontaneous self-reflection", "ongoing"))
	return err
}

// NightlyReflection runs the daily deep-reflection batch over the day's
// interactions and activity, journals the result, and returns the
// reflection text for optional notification.
func (a *Agent) NightlyReflection(ctx context.Context) (string, error) {
	summary := a.daySummary(ctx)

	out, err := a.engine.Cycle(ctx, reflection.Nightly(summary))
	if err != nil {
		return "", err
	}

	content := out.Reflection.Content
	if content != "" {
		if err := a.store.AppendJournal(ctx, content); err != nil {
			a.log.Warn().Err(err).Msg("journal append failed")
		}
	}
	return content, nil
}

// daySummary renders today's interactions and activity for the nightly
// prompt. Degrades to partial or placeholder text on read errors.
func (a *Agent) daySummary(ctx context.Context) string {
	since := time.Now().Add(-24 * time.Hour)

	var parts []string

	interactions, err := a.store.InteractionsSince(ctx, since)
	if err != nil {
		a.log.Warn().Err(err).Msg("interaction read failed")
	}
	if len(interactions) > 0 {
		lines := make([]string, 0, len(interactions))
		for _, in := range interactions {
			lines = append(lines, fmt.Sprintf("%s -> %s", in.Message, in.Response))
		}
		parts = append(parts, "Interactions: "+strings.Join(lines, " | "))
	}

	if activity := a.summarizer.RecentSummary(ctx, 24*time.Hour); activity != watcher.NoActivitySentinel {
		parts = append(parts, "Activity: "+activity)
	}

	if len(parts) == 0 {
		return "A quiet day with nothing observed"
	}
	return strings.Join(parts, "\n")
}

func formatTraits(traits map[string]float64) string {
	if len(traits) == 0 {
		return "still forming"
	}
	items := make([]string, 0, len(traits))
	for name, w := range traits {
		items = append(items, fmt.Sprintf("%s=%.2f", name, w))
	}
	sort.Strings(items)
	return strings.Join(items, ", ")
}
