package decision

import (
	"fmt"

	"github.com/seenimoa/neuroquant/pkg/models"
)

// Rule names, in evaluation order.
const (
	RuleOverbought    = "overbought"
	RuleRiskyHeadline = "risky-headline"
	RuleBullTrap      = "bull-trap"
	RuleStrongBuy     = "strong-buy"
	RuleBuy           = "buy"
	RuleStrongSell    = "strong-sell"
	RuleSell          = "sell"
	RuleWatch         = "watch"
)

// DefaultRules returns the chain: overbought veto, negative-news vetoes,
// trend rules, then the neutral fallback. All comparisons are strict.
func DefaultRules(th Thresholds) []Rule {
	return []Rule{
		{
			Name:  RuleOverbought,
			Match: func(f Facts) bool { return f.RSI > th.RSIOverbought },
			Outcome: func(f Facts) models.Decision {
				why := fmt.Sprintf("RSI %.1f is overbought; a correction is likely", f.RSI)
				if f.Sentiment > th.SqueezeSentiment {
					why += fmt.Sprintf(". News sentiment %.2f is strongly positive, so a short squeeze could extend the move", f.Sentiment)
				}
				return models.Decision{Verdict: models.VerdictRisky, Severity: models.SeverityOrange, Rationale: why}
			},
		},
		{
			Name:  RuleRiskyHeadline,
			Match: func(f Facts) bool { return f.Riskiest != nil && f.Sentiment < 0 },
			Outcome: func(f Facts) models.Decision {
				return models.Decision{
					Verdict:   models.VerdictAvoid,
					Severity:  models.SeverityRed,
					Rationale: fmt.Sprintf("Negative headline outweighs the technicals: %q", f.Riskiest.Title),
				}
			},
		},
		{
			Name:  RuleBullTrap,
			Match: func(f Facts) bool { return f.Sentiment < th.StrongNegativeSentiment },
			Outcome: func(f Facts) models.Decision {
				return models.Decision{
					Verdict:   models.VerdictAvoid,
					Severity:  models.SeverityRed,
					Rationale: fmt.Sprintf("Possible bull trap: news sentiment %.2f contradicts the forecast", f.Sentiment),
				}
			},
		},
		{
			Name: RuleStrongBuy,
			Match: func(f Facts) bool {
				return f.ChangePct > th.TrendChangePct && f.Sentiment > th.SupportiveSentiment
			},
			Outcome: func(f Facts) models.Decision {
				return models.Decision{
					Verdict:   models.VerdictStrongBuy,
					Severity:  models.SeverityGreen,
					Rationale: fmt.Sprintf("Forecast %+.2f%% with supportive news (%.2f)", f.ChangePct, f.Sentiment),
				}
			},
		},
		{
			Name:  RuleBuy,
			Match: func(f Facts) bool { return f.ChangePct > th.TrendChangePct },
			Outcome: func(f Facts) models.Decision {
				return models.Decision{
					Verdict:   models.VerdictBuy,
					Severity:  models.SeverityBlue,
					Rationale: fmt.Sprintf("Forecast %+.2f%% but news is not supportive (%.2f)", f.ChangePct, f.Sentiment),
				}
			},
		},
		{
			Name: RuleStrongSell,
			Match: func(f Facts) bool {
				return f.ChangePct < -th.TrendChangePct && f.Sentiment < 0
			},
			Outcome: func(f Facts) models.Decision {
				return models.Decision{
					Verdict:   models.VerdictStrongSell,
					Severity:  models.SeverityRed,
					Rationale: fmt.Sprintf("Forecast %+.2f%% with negative news (%.2f)", f.ChangePct, f.Sentiment),
				}
			},
		},
		{
			Name:  RuleSell,
			Match: func(f Facts) bool { return f.ChangePct < -th.TrendChangePct },
			Outcome: func(f Facts) models.Decision {
				return models.Decision{
					Verdict:   models.VerdictSell,
					Severity:  models.SeverityOrange,
					Rationale: fmt.Sprintf("Forecast %+.2f%%; news is not negative, a rebound is possible", f.ChangePct),
				}
			},
		},
		{
			Name:  RuleWatch,
			Match: func(Facts) bool { return true },
			Outcome: func(f Facts) models.Decision {
				return models.Decision{
					Verdict:   models.VerdictWatch,
					Severity:  models.SeverityGray,
					Rationale: fmt.Sprintf("Insufficient signal: forecast %+.2f%% is sideways", f.ChangePct),
				}
			},
		},
	}
}
