// Package coachable flags transcript segments worth a coach's attention:
// customer objections, buying signals and hesitations.
//
// Detection is rule based. Each category is a list of phrase patterns; the
// more distinct patterns match a segment, the higher the confidence. A
// segment whose sentiment agrees with the category (negative for
// objections, positive for buying signals) gets an extra boost.
package coachable

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/johnquangdev/call-coach/internal/domain/entities"
)

const (
	// DefaultThreshold is the minimum confidence for a moment to be reported
	DefaultThreshold = 0.5

	baseConfidence   = 0.3
	perMatch         = 0.15
	maxBase          = 0.85
	sentimentBoost   = 0.15
	maxEvidenceShown = 3
)

type compiledCategory struct {
	kind       entities.CoachableType
	patterns   []pattern
	boostLabel string
}

// pattern is a compiled phrase. RE2's \b only knows ASCII word
// characters, so edge boundaries are rechecked against Unicode letters
// and digits: "cost" must not match inside "costé".
type pattern struct {
	re       *regexp.Regexp
	leading  bool
	trailing bool
}

func compilePattern(expr string) (pattern, error) {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return pattern{}, err
	}
	return pattern{
		re:       re,
		leading:  strings.HasPrefix(expr, `\b`),
		trailing: strings.HasSuffix(expr, `\b`) && !strings.HasSuffix(expr, `\\b`),
	}, nil
}

// find returns the first match whose boundaries hold for Unicode text
func (p pattern) find(text string) (string, bool) {
	for _, loc := range p.re.FindAllStringIndex(text, -1) {
		if p.leading && loc[0] > 0 {
			if r, _ := utf8.DecodeLastRuneInString(text[:loc[0]]); isWordRune(r) {
				continue
			}
		}
		if p.trailing && loc[1] < len(text) {
			if r, _ := utf8.DecodeRuneInString(text[loc[1]:]); isWordRune(r) {
				continue
			}
		}
		return text[loc[0]:loc[1]], true
	}
	return "", false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Detector scores segments against the configured categories
type Detector struct {
	threshold  float64
	categories []compiledCategory
	logger     *zap.Logger
}

// Option configures a Detector
type Option func(*detectorOptions)

type detectorOptions struct {
	threshold  float64
	categories []Category
	logger     *zap.Logger
}

// WithThreshold sets the minimum accepted confidence
func WithThreshold(threshold float64) Option {
	return func(o *detectorOptions) { o.threshold = threshold }
}

// WithCategories replaces the default categories. Order matters: the
// first category to clear the threshold labels the segment.
func WithCategories(categories ...Category) Option {
	return func(o *detectorOptions) { o.categories = categories }
}

// WithLogger sets the logger used for detection summaries
func WithLogger(logger *zap.Logger) Option {
	return func(o *detectorOptions) { o.logger = logger }
}

// NewDetector builds a detector. Invalid thresholds or category
// definitions are rejected with entities.ErrInvalidCategoryConfig.
func NewDetector(opts ...Option) (*Detector, error) {
	o := detectorOptions{
		threshold:  DefaultThreshold,
		categories: DefaultCategories(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.threshold < 0 || o.threshold > 1 || math.IsNaN(o.threshold) {
		return nil, fmt.Errorf("%w: threshold %v outside [0,1]", entities.ErrInvalidCategoryConfig, o.threshold)
	}
	if len(o.categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", entities.ErrInvalidCategoryConfig)
	}

	compiled := make([]compiledCategory, 0, len(o.categories))
	for _, cat := range o.categories {
		if cat.Type == "" {
			return nil, fmt.Errorf("%w: category without a type", entities.ErrInvalidCategoryConfig)
		}
		if len(cat.Patterns) == 0 {
			return nil, fmt.Errorf("%w: category %q has no patterns", entities.ErrInvalidCategoryConfig, cat.Type)
		}

		cc := compiledCategory{
			kind:       cat.Type,
			patterns:   make([]pattern, 0, len(cat.Patterns)),
			boostLabel: strings.ToUpper(cat.BoostLabel),
		}
		for _, p := range cat.Patterns {
			compiledPattern, err := compilePattern(p)
			if err != nil {
				return nil, fmt.Errorf("%w: category %q: %v", entities.ErrInvalidCategoryConfig, cat.Type, err)
			}
			cc.patterns = append(cc.patterns, compiledPattern)
		}
		compiled = append(compiled, cc)
	}

	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Detector{
		threshold:  o.threshold,
		categories: compiled,
		logger:     logger,
	}, nil
}

// Threshold returns the minimum accepted confidence
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// Detect returns at most one moment per segment, in segment order.
// sentiments is positionally aligned with segments; it may be nil or
// shorter, and missing or invalid entries simply skip the boost.
func (d *Detector) Detect(segments []entities.SpeakerSegment, sentiments []entities.NullSentiment) []entities.CoachableMoment {
	moments := make([]entities.CoachableMoment, 0)

	for i, seg := range segments {
		var sentiment entities.NullSentiment
		if i < len(sentiments) {
			sentiment = sentiments[i]
		}

		for _, cat := range d.categories {
			m, ok := cat.score(seg.Text, sentiment)
			if !ok || m.Confidence < d.threshold {
				continue
			}
			m.SegmentIndex = i
			moments = append(moments, m)
			break
		}
	}

	d.logger.Debug("coachable detection",
		zap.Int("segments", len(segments)),
		zap.Int("moments", len(moments)),
	)

	return moments
}

// score evaluates one category. ok is false when no pattern matches.
func (c compiledCategory) score(text string, sentiment entities.NullSentiment) (entities.CoachableMoment, bool) {
	var phrases []string
	for _, p := range c.patterns {
		if phrase, ok := p.find(text); ok {
			phrases = append(phrases, phrase)
		}
	}
	if len(phrases) == 0 {
		return entities.CoachableMoment{}, false
	}

	confidence := math.Min(baseConfidence+perMatch*float64(len(phrases)), maxBase)
	if c.boostLabel != "" && sentiment.Valid && strings.ToUpper(sentiment.Sentiment.Label) == c.boostLabel {
		confidence = math.Min(confidence+sentimentBoost, 1.0)
	}

	if len(phrases) > maxEvidenceShown {
		phrases = phrases[:maxEvidenceShown]
	}

	return entities.CoachableMoment{
		Type:           c.kind,
		Confidence:     round3(confidence),
		MatchedPattern: strings.Join(phrases, ", "),
		MatchedPhrases: phrases,
	}, true
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
