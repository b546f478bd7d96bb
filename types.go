// Package admitgate implements a distributed, per-application-identifier
// request admission controller: sliding-window rate limiting enforced
// atomically against a shared store, exposed as HTTP middleware.
//
// The package defines three core abstractions:
//   - Store: the contract over the shared key-value backend (see store/)
//   - Resolver: resolves a RuleSet for an ApplicationIdentifier
//   - Accountant: evaluates one RateLimitRule atomically for one ClientKey
//
// HTTP framework adapters live under middleware/, logging adapters under
// adapters/, and storage backends under store/.
package admitgate

import "github.com/go-playground/validator/v10"

// RateLimitRule is a single sliding-window constraint: at most Points
// admissions within a trailing window of Duration seconds.
type RateLimitRule struct {
	Points   int64 `json:"points" validate:"required,gt=0"`
	Duration int64 `json:"duration" validate:"required,gt=0"`
}

// RuleSet is an ordered sequence of RateLimitRule evaluated conjunctively
// per request. Order only matters as a tie-break (see §4.3/§4.4 of the
// design notes): the first rule wins when two rules report identical
// strictness.
type RuleSet []RateLimitRule

// configRecord is the wire shape of a ConfigRecord stored under
// "rateLimitConfig:<id>" and "rateLimitConfig:default".
type configRecord struct {
	Rules RuleSet `json:"rules" validate:"required,min=1,dive"`
}

var validate = validator.New()

// Validate checks the Non-goals-tightened invariants from the spec: a
// non-empty rule set where every rule has strictly positive, integral
// Points and Duration. Fractional values never reach here because JSON
// decoding into int64 already rejects them.
func (r RuleSet) Validate() error {
	if len(r) == 0 {
		return ErrConfigInvalid
	}
	rec := configRecord{Rules: r}
	if err := validate.Struct(rec); err != nil {
		return &ConfigInvalidError{Reason: err.Error()}
	}
	return nil
}
