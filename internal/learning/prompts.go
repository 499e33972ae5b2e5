package learning

import (
	"fmt"
	"strings"

	"github.com/normanking/luna/internal/store"
)

func learningPrompt(userInput, response, reaction, interactionContext string) string {
	if reaction == "" {
		reaction = "Unknown"
	}
	if interactionContext == "" {
		interactionContext = "General chat"
	}

	return fmt.Sprintf(`You are Luna, analyzing this interaction to learn about your user:

User said: %s
You responded: %s
User reaction: %s
Context: %s

What can you learn? Analyze:
1. User preferences (communication style, topics they like, humor they respond to)
2. Effective response patterns (what worked, what didn't)
3. User's personality traits, interests, or current state
4. How your relationship is evolving

Respond in JSON:
{
    "learned_preferences": [
        {
            "type": "communication_style|humor|topic|timing",
            "value": "what you learned",
            "confidence": 0.0-1.0
        }
    ],
    "effective_patterns": [
        {
            "pattern": "response pattern that worked",
            "effectiveness": 0.0-1.0,
            "why": "why it was effective"
        }
    ],
    "user_insights": [
        {
            "aspect": "personality|interests|mood|needs",
            "understanding": "your insight about the user",
            "confidence": 0.0-1.0
        }
    ]
}`, userInput, response, reaction, interactionContext)
}

func synthesisPrompt(prefs []store.Preference, patterns []store.Pattern, model []store.UserModelEntry) string {
	var b strings.Builder

	b.WriteString("You are Luna, reflecting on everything you've learned about your user:\n\n")

	b.WriteString("Learned preferences:\n")
	for _, p := range prefs {
		fmt.Fprintf(&b, "- %s: %s (confidence %.2f, seen %d times)\n", p.Type, p.Value, p.Confidence, p.Count)
	}

	b.WriteString("\nEffective patterns:\n")
	for _, p := range patterns {
		fmt.Fprintf(&b, "- %s (effectiveness %.2f)\n", p.Description, p.Effectiveness)
	}

	b.WriteString("\nCurrent user model:\n")
	for _, m := range model {
		fmt.Fprintf(&b, "- %s: %s (confidence %.2f)\n", m.Aspect, m.Understanding, m.Confidence)
	}

	b.WriteString(`
Synthesize this into evolved insights:
1. What deeper patterns do you see?
2. How has your understanding evolved?
3. What new interaction strategies should you try?
4. How can you be a better companion?

Update your core understanding of this user.`)

	return b.String()
}
