package admitgate

import (
	"errors"
	"testing"
)

func TestRuleSetValidate_Empty(t *testing.T) {
	var rs RuleSet
	if err := rs.Validate(); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("Validate() = %v, want ErrConfigInvalid", err)
	}
}

func TestRuleSetValidate_Valid(t *testing.T) {
	rs := RuleSet{{Points: 10, Duration: 60}, {Points: 1000, Duration: 3600}}
	if err := rs.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestRuleSetValidate_ZeroPoints(t *testing.T) {
	rs := RuleSet{{Points: 0, Duration: 60}}
	if err := rs.Validate(); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("Validate() = %v, want ErrConfigInvalid", err)
	}
}

func TestRuleSetValidate_NegativeDuration(t *testing.T) {
	rs := RuleSet{{Points: 10, Duration: -1}}
	if err := rs.Validate(); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("Validate() = %v, want ErrConfigInvalid", err)
	}
}

func TestRuleSetValidate_ErrorUnwrapsToSentinel(t *testing.T) {
	rs := RuleSet{{Points: 0, Duration: 60}}
	err := rs.Validate()
	var cie *ConfigInvalidError
	if !errors.As(err, &cie) {
		t.Fatalf("Validate() error type = %T, want *ConfigInvalidError", err)
	}
	if cie.Reason == "" {
		t.Error("ConfigInvalidError.Reason should not be empty")
	}
}
