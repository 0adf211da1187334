package coachable

import (
	"github.com/johnquangdev/call-coach/internal/domain/entities"
)

// Category is one group of phrases that marks a kind of coachable moment.
// Patterns are RE2 expressions matched case-insensitively.
type Category struct {
	Type       entities.CoachableType
	Patterns   []string
	BoostLabel string // sentiment label that raises confidence, empty for none
}

// DefaultCategories returns the built-in categories in evaluation order:
// objection, buying signal, hesitation.
func DefaultCategories() []Category {
	return []Category{
		{
			Type: entities.CoachableObjection,
			Patterns: []string{
				`\b(too expensive|too costly|over budget|can't afford|out of.*budget)\b`,
				`\b(not sure|not convinced|don't think|don't see the value)\b`,
				`\b(competitor|alternative|other option|someone else|another vendor)\b`,
				`\b(not the right time|bad timing|maybe later|not now|next quarter)\b`,
				`\b(need to think|discuss with|check with|get back to you|talk to my)\b`,
				`\b(doesn't fit|won't work|not what we need|don't need)\b`,
				`\b(price|pricing|cost|expensive|budget|afford)\b`,
			},
			BoostLabel: entities.SentimentNegative,
		},
		{
			Type: entities.CoachableBuyingSignal,
			Patterns: []string{
				`\b(sounds good|sounds great|interesting|love that|that's exactly)\b`,
				`\b(how soon|when can|how quickly|timeline|onboarding)\b`,
				`\b(pricing|what does it cost|subscription|plan options|packages)\b`,
				`\b(sign up|get started|move forward|next steps|contract)\b`,
				`\b(our team|we would|we could|we need|we want)\b`,
				`\b(demo|trial|pilot|proof of concept|POC)\b`,
				`\b(integration|API|connect|implement)\b`,
			},
			BoostLabel: entities.SentimentPositive,
		},
		{
			Type: entities.CoachableHesitation,
			Patterns: []string{
				`\b(um+|uh+|hmm+|er+|ah+)\b`,
				`\b(I guess|I suppose|maybe|perhaps|not sure|uncertain)\b`,
				`\b(kind of|sort of|I don't know|hard to say)\b`,
				`\.\.\.`,
				`\b(well|so|you know|like)\b`,
			},
		},
	}
}
