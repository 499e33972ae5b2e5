package reflection

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/normanking/luna/internal/brain"
	"github.com/normanking/luna/internal/logging"
	"github.com/normanking/luna/internal/store"
)

// rawLimit bounds how much unstructured generation text a degraded cycle
// persists.
const rawLimit = 2000

// Outcome summarizes one completed reflection cycle.
type Outcome struct {
	Reflection *store.Reflection
	// Applied is how many trait adjustments were written.
	Applied int
	// Degraded is true when generation produced no structured payload.
	Degraded bool
}

// Engine runs reflection cycles against the store and the brain.
type Engine struct {
	store   *store.Store
	brain   brain.Brain
	log     *logging.Logger
	timeout time.Duration
}

// NewEngine builds a reflection engine. timeout bounds each generation call.
func NewEngine(st *store.Store, b brain.Brain, log *logging.Logger, timeout time.Duration) *Engine {
	return &Engine{
		store:   st,
		brain:   b,
		log:     log.Component("reflection"),
		timeout: timeout,
	}
}

// Cycle runs one full reflection cycle for the given descriptor: read the
// current traits, ask the brain for a self-analysis, apply any structured
// trait adjustments, and append exactly one reflection record. A failed
// generation or an unstructured response degrades the cycle; it never stops
// the reflection record from being written.
func (e *Engine) Cycle(ctx context.Context, desc Descriptor) (*Outcome, error) {
	cycleID := uuid.NewString()
	log := e.log.With().Str("cycle_id", cycleID).Str("kind", string(desc.Kind)).Logger()

	traits, err := e.store.GetTraits(ctx)
	if err != nil {
		return nil, err
	}

	text, err := e.brain.Generate(ctx, buildPrompt(desc, traits), e.timeout)
	if err != nil {
		log.Warn().Err(err).Msg("generation failed, recording degraded reflection")
		text = ""
	}

	parsed := Parse(text)
	out := &Outcome{Degraded: !parsed.IsStructured()}

	ref := &store.Reflection{Context: desc.Context()}

	if parsed.IsStructured() {
		out.Applied = e.applyAdjustments(ctx, &log, traits, parsed.Payload.TraitAdjustments)

		ref.Content = parsed.Raw
		ref.Mood = parsed.Payload.MoodEvolution
		if ref.Mood == "" {
			ref.Mood = store.MoodNoShift
		}
		ref.DeltasJSON = marshalDeltas(parsed.Payload.TraitAdjustments)
	} else {
		ref.Content = truncate(parsed.Raw, rawLimit)
		ref.Mood = store.MoodUnknown
		ref.DeltasJSON = "{}"
	}

	if err := e.store.AppendReflection(ctx, ref); err != nil {
		return nil, err
	}
	out.Reflection = ref

	log.Info().
		Int("applied", out.Applied).
		Bool("degraded", out.Degraded).
		Str("mood", ref.Mood).
		Msg("reflection cycle complete")

	return out, nil
}

// applyAdjustments merges proposed trait changes into the store. Absolute
// new_weight wins over relative adjustment; relative adjustments to a trait
// the store has never seen start from 0.5. Individual upsert failures are
// logged and skipped, never propagated: the reflection record must still be
// written.
func (e *Engine) applyAdjustments(ctx context.Context, log *zerolog.Logger, current map[string]float64, adjustments map[string]TraitAdjustment) int {
	applied := 0
	for name, adj := range adjustments {
		var weight float64
		switch {
		case adj.NewWeight != nil:
			weight = *adj.NewWeight
		case adj.Adjustment != nil:
			base, ok := current[name]
			if !ok {
				base = 0.5
			}
			weight = base + *adj.Adjustment
		default:
			continue
		}

		reason := adj.Reason
		if reason == "" {
			reason = "Self-adjustment"
		}

		if err := e.store.UpsertTrait(ctx, name, weight, reason); err != nil {
			log.Warn().Err(err).Str("trait", name).Msg("trait upsert failed")
			continue
		}
		applied++
	}
	return applied
}

func marshalDeltas(adjustments map[string]TraitAdjustment) string {
	if len(adjustments) == 0 {
		return "{}"
	}
	b, err := json.Marshal(adjustments)
	if err != nil {
		return "{}"
	}
	return string(b)
}
