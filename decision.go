package admitgate

import (
	"context"
	"math"
)

// Decision is the outcome of evaluating a RuleSet for one request: the
// admit/reject verdict plus the data needed to populate the four
// X-RateLimit-* / Retry-After headers, labeled by the "strictest" rule.
type Decision struct {
	Blocked            bool
	StrictestRuleIndex int
	StrictestRemaining int64
	StrictestResetSec  int64
}

// Limit returns the Points of the rule selected as strictest, looked up
// from the RuleSet the Decision was computed against.
func (d Decision) Limit(rules RuleSet) int64 {
	return rules[d.StrictestRuleIndex].Points
}

// EvaluateRuleSet runs the Accountant once per rule, in rule-set order,
// and folds the results into a single Decision using the strictest-rule
// selection: on rejection, the rule with the largest time-to-reset wins
// ties going to the earlier index; on admission, the rule with the
// smallest remaining quota wins, ties again going to the earlier index.
// These two tie-break comparisons are intentionally asymmetric — see the
// design notes' Open Questions — and are preserved for compatibility.
//
// A non-nil error here is always a StoreError from the Accountant; the
// caller should abort the request with no headers set and no partial
// Decision used, exactly as if the loop never started.
func EvaluateRuleSet(ctx context.Context, accountant *Accountant, clientKey string, rules RuleSet, nowMs int64) (Decision, error) {
	d := Decision{
		StrictestRemaining: math.MaxInt64,
	}

	for i, rule := range rules {
		count, oldest, err := accountant.Evaluate(ctx, i, clientKey, rule, nowMs)
		if err != nil {
			return Decision{}, err
		}

		if count >= rule.Points {
			d.Blocked = true
			resetSec := ceilDiv(oldest+rule.Duration*1000-nowMs, 1000)
			if resetSec > d.StrictestResetSec {
				d.StrictestResetSec = resetSec
				d.StrictestRuleIndex = i
			}
			d.StrictestRemaining = 0
			continue
		}

		remaining := rule.Points - count - 1
		if remaining < d.StrictestRemaining {
			d.StrictestRemaining = remaining
			d.StrictestRuleIndex = i
			d.StrictestResetSec = rule.Duration
		}
	}

	if d.StrictestRemaining == math.MaxInt64 {
		// Defensive only: an empty RuleSet never reaches here because
		// Resolver.Resolve rejects it with ErrConfigInvalid first.
		d.StrictestRemaining = 0
	}
	if d.StrictestRemaining < 0 {
		d.StrictestRemaining = 0
	}

	return d, nil
}

// ceilDiv computes ceil(num/den) for positive den using integer math.
func ceilDiv(num, den int64) int64 {
	if num <= 0 {
		return 0
	}
	return (num + den - 1) / den
}
