package reflection

import (
	"encoding/json"
	"strings"
)

// TraitAdjustment is one proposed change to a trait. Either NewWeight
// (absolute) or Adjustment (relative) is set; NewWeight wins when both are.
type TraitAdjustment struct {
	NewWeight  *float64 `json:"new_weight,omitempty"`
	Adjustment *float64 `json:"adjustment,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

// Analysis is the structured self-analysis payload embedded in generated
// text. Everything is optional; an empty payload still counts as structured.
type Analysis struct {
	Analysis         string                     `json:"analysis,omitempty"`
	TraitAdjustments map[string]TraitAdjustment `json:"trait_adjustments,omitempty"`
	NewBehaviors     []string                   `json:"new_behaviors,omitempty"`
	MoodEvolution    string                     `json:"mood_evolution,omitempty"`
	GlitchMoments    []string                   `json:"glitch_moments,omitempty"`
}

// Parsed is the tagged result of a best-effort parse: structured when
// Payload is non-nil, unstructured raw text otherwise.
type Parsed struct {
	Payload *Analysis
	Raw     string
}

// IsStructured reports whether a well-formed payload was extracted.
func (p Parsed) IsStructured() bool {
	return p.Payload != nil
}

// Parse scans generated text for a single embedded JSON object: the span
// between the first '{' and the last '}'. If that substring does not decode,
// the whole text is treated as an unstructured reflection. Duplicate trait
// keys inside the payload resolve last-write-wins, which json.Unmarshal
// already guarantees for object keys.
func Parse(text string) Parsed {
	raw := strings.TrimSpace(text)

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return Parsed{Raw: raw}
	}

	var payload Analysis
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return Parsed{Raw: raw}
	}

	return Parsed{Payload: &payload, Raw: raw}
}

// truncate bounds raw reflection text so degraded cycles cannot grow
// storage without limit.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
