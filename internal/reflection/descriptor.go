// Package reflection implements Luna's self-reflection and evolution engine.
//
// One reflection cycle generates a self-analysis from the external model,
// parses any structured trait adjustments out of it, merges them into the
// trait store, and always appends exactly one reflection record, however
// degraded the cycle was.
package reflection

import "fmt"

// Kind distinguishes what triggered a reflection cycle.
type Kind string

const (
	KindChatTurn    Kind = "chat_turn"
	KindSystemPing  Kind = "system_ping"
	KindObservation Kind = "observation"
	KindNightly     Kind = "nightly"
)

// Descriptor describes the interaction (or observation) being reflected on.
// All entry points share the single Cycle implementation; only the
// descriptor varies.
type Descriptor struct {
	Kind          Kind
	UserInput     string
	AgentResponse string
	UserReaction  string
	Observation   string // activity pattern text for observation cycles
}

// ChatTurn describes a reflection on a conversational exchange.
func ChatTurn(userInput, response, reaction string) Descriptor {
	return Descriptor{Kind: KindChatTurn, UserInput: userInput, AgentResponse: response, UserReaction: reaction}
}

// SystemPing describes a reflection on a scheduled check-in.
func SystemPing(pingText string) Descriptor {
	return Descriptor{Kind: KindSystemPing, AgentResponse: pingText}
}

// Observation describes a reflection on observed activity, with no direct
// interaction.
func Observation(activity string) Descriptor {
	return Descriptor{Kind: KindObservation, Observation: activity}
}

// Nightly describes the daily deep-reflection batch.
func Nightly(daySummary string) Descriptor {
	return Descriptor{Kind: KindNightly, Observation: daySummary}
}

// Context renders the descriptor for the reflection record's context column.
func (d Descriptor) Context() string {
	switch d.Kind {
	case KindObservation:
		return fmt.Sprintf("[OBSERVATION] %s", d.Observation)
	case KindNightly:
		return "[NIGHTLY] Daily deep reflection"
	case KindSystemPing:
		return fmt.Sprintf("[SYSTEM_PING] %s", d.AgentResponse)
	default:
		return fmt.Sprintf("User: %s | Luna: %s", orNone(d.UserInput), orNone(d.AgentResponse))
	}
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
