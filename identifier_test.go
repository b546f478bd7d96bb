package admitgate

import "testing"

func TestNormalizeIdentifier(t *testing.T) {
	cases := map[string]string{
		"":           "unknown",
		"ACME-Corp":  "acme-corp",
		"already-ok": "already-ok",
	}
	for in, want := range cases {
		if got := NormalizeIdentifier(in); got != want {
			t.Errorf("NormalizeIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClientKey(t *testing.T) {
	got := ClientKey("10.0.0.1", "ACME")
	want := "10.0.0.1:acme"
	if got != want {
		t.Errorf("ClientKey() = %q, want %q", got, want)
	}
}

func TestClientKey_EmptyIdentifierUsesUnknown(t *testing.T) {
	got := ClientKey("10.0.0.1", "")
	want := "10.0.0.1:unknown"
	if got != want {
		t.Errorf("ClientKey() = %q, want %q", got, want)
	}
}

func TestWindowKey_DistinctByRuleIndex(t *testing.T) {
	a := windowKey(0, "client")
	b := windowKey(1, "client")
	if a == b {
		t.Error("windowKey should differ across rule indices for the same client")
	}
}
