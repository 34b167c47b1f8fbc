package pipeline

import "testing"

func TestTargetIsComparable(t *testing.T) {
	a := Target{Normalized: "https://example.com", Kind: LinkHTTP}
	b := Target{Normalized: "https://example.com", Kind: LinkHTTP}
	c := Target{Normalized: "https://example.com", Kind: LinkFTP}

	if a != b {
		t.Fatalf("expected equal targets to compare equal")
	}
	if a == c {
		t.Fatalf("expected targets with different kinds to differ")
	}

	seen := map[Target]bool{a: true}
	if !seen[b] {
		t.Fatalf("expected Target to work as a map key")
	}
}

func TestOutcomeConstructors(t *testing.T) {
	cases := []struct {
		outcome CheckOutcome
		status  OutcomeStatus
		isError bool
	}{
		{OutcomeOK(), StatusOK, false},
		{OutcomeWarning("redirect"), StatusWarning, false},
		{OutcomeIgnored("globbed"), StatusIgnored, false},
		{OutcomeNotImplemented("ftp"), StatusNotImplemented, false},
		{OutcomeFailed("404"), StatusFailed, true},
	}
	for _, c := range cases {
		if c.outcome.Status != c.status {
			t.Errorf("status = %v, want %v", c.outcome.Status, c.status)
		}
		if c.outcome.IsError() != c.isError {
			t.Errorf("IsError() = %v, want %v", c.outcome.IsError(), c.isError)
		}
	}
}

func TestMarkupKindString(t *testing.T) {
	if MarkupMarkdown.String() != "markdown" {
		t.Errorf("unexpected String(): %s", MarkupMarkdown.String())
	}
	if MarkupKind(99).String() != "unknown" {
		t.Errorf("expected unknown kind to stringify as unknown")
	}
}
