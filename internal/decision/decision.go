// Package decision turns a forecast path, a sentiment reading and RSI into
// a recommendation using an ordered, first-match-wins rule chain.
package decision

import (
	"fmt"

	"github.com/seenimoa/neuroquant/pkg/models"
)

// Thresholds holds every comparison bound used by the rule chain.
type Thresholds struct {
	RSIOverbought           float64
	SqueezeSentiment        float64 // sentiment above this adds a squeeze note to overbought
	StrongNegativeSentiment float64 // sentiment below this is a bull trap
	TrendChangePct          float64 // bullish above +T, bearish below -T
	SupportiveSentiment     float64 // sentiment above this upgrades a bullish trend
}

// DefaultThresholds returns RSI 70, trend ±0.1%, bull trap below -0.4,
// squeeze above 0.3 and supportive above 0.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RSIOverbought:           70,
		SqueezeSentiment:        0.30,
		StrongNegativeSentiment: -0.40,
		TrendChangePct:          0.1,
		SupportiveSentiment:     0,
	}
}

// Input is everything the synthesizer looks at.
type Input struct {
	Path      models.PricePath
	Sentiment float64
	Riskiest  *models.NewsItem
	RSI       float64
}

// Facts is Input plus the values derived from it once per decision.
type Facts struct {
	Input
	ChangePct float64
}

// Rule is one entry of the chain. Match and Outcome see the same Facts.
type Rule struct {
	Name    string
	Match   func(f Facts) bool
	Outcome func(f Facts) models.Decision
}

// Synthesizer evaluates its rules in order and returns the first match.
type Synthesizer struct {
	rules []Rule
}

// New builds the default rule chain from th.
func New(th Thresholds) *Synthesizer {
	return &Synthesizer{rules: DefaultRules(th)}
}

// NewWithRules builds a synthesizer over a custom chain. The last rule
// should always match.
func NewWithRules(rules []Rule) *Synthesizer {
	return &Synthesizer{rules: rules}
}

// Rules returns the chain in evaluation order.
func (s *Synthesizer) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Decide runs the chain. The path must have at least two points and a
// positive first price.
func (s *Synthesizer) Decide(in Input) (models.Decision, error) {
	if len(in.Path) < 2 {
		return models.Decision{}, fmt.Errorf("%w: price path has %d points, need 2", models.ErrPrecondition, len(in.Path))
	}
	if !(in.Path[0] > 0) {
		return models.Decision{}, fmt.Errorf("%w: first forecast price %g must be positive", models.ErrPrecondition, in.Path[0])
	}

	f := Facts{Input: in, ChangePct: in.Path.ChangePct()}
	for _, r := range s.rules {
		if r.Match(f) {
			d := r.Outcome(f)
			d.Rule = r.Name
			return d, nil
		}
	}
	return models.Decision{}, fmt.Errorf("%w: no rule matched", models.ErrPrecondition)
}
