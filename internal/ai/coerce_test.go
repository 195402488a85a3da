package ai

import "testing"

func TestCoerceJSONStrict(t *testing.T) {
	var out struct {
		Summary string `json:"summary"`
	}
	outcome, err := CoerceJSON(`{"summary":"patient reported improved sleep"}`, &out)
	if err != nil {
		t.Fatalf("CoerceJSON returned error: %v", err)
	}
	if outcome != ParseStrict {
		t.Fatalf("expected strict parse, got %s", outcome)
	}
	if out.Summary != "patient reported improved sleep" {
		t.Fatalf("unexpected summary: %q", out.Summary)
	}
}

func TestCoerceJSONStripsFences(t *testing.T) {
	raw := "```json\n{\"summary\":\"short note\"}\n```"
	var out struct {
		Summary string `json:"summary"`
	}
	outcome, err := CoerceJSON(raw, &out)
	if err != nil {
		t.Fatalf("CoerceJSON returned error: %v", err)
	}
	if outcome != ParseCoerced {
		t.Fatalf("expected coerced parse, got %s", outcome)
	}
	if out.Summary != "short note" {
		t.Fatalf("unexpected summary: %q", out.Summary)
	}
}

func TestCoerceJSONExtractsObjectFromProse(t *testing.T) {
	raw := "Here is the requested summary:\n{\"summary\":\"anxiety stable\"}\nLet me know if you need more."
	var out struct {
		Summary string `json:"summary"`
	}
	outcome, err := CoerceJSON(raw, &out)
	if err != nil {
		t.Fatalf("CoerceJSON returned error: %v", err)
	}
	if outcome != ParseCoerced || out.Summary != "anxiety stable" {
		t.Fatalf("unexpected result: outcome=%s summary=%q", outcome, out.Summary)
	}
}

func TestCoerceJSONFails(t *testing.T) {
	var out struct{}
	for _, raw := range []string{"", "not json at all", "```\nstill not json\n```"} {
		outcome, err := CoerceJSON(raw, &out)
		if err == nil || outcome != ParseFailed {
			t.Fatalf("expected failure for %q, got outcome=%s err=%v", raw, outcome, err)
		}
	}
}
