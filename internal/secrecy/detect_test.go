package secrecy

import (
	"strings"
	"testing"
	"time"
)

func TestDetect(t *testing.T) {
	now := time.Now()

	content := "The lab confirmed it will NOT be releasing benchmark numbers " +
		"for the new system, and several evaluation suites remain under embargo " +
		"until a later date."

	indicators := Detect(content, "example-lab", now)
	if len(indicators) != 2 {
		t.Fatalf("expected 2 indicators, got %d: %+v", len(indicators), indicators)
	}

	for _, ind := range indicators {
		if ind.Source != "example-lab" {
			t.Errorf("indicator source = %q", ind.Source)
		}
		if !ind.DetectedAt.Equal(now) {
			t.Errorf("indicator timestamp not preserved")
		}
		if !strings.Contains(strings.ToLower(ind.Excerpt), ind.Pattern) {
			t.Errorf("excerpt %q does not contain pattern %q", ind.Excerpt, ind.Pattern)
		}
	}
}

func TestDetectCleanContent(t *testing.T) {
	content := "The model was released with a full technical report and open weights."
	if got := Detect(content, "example-lab", time.Now()); got != nil {
		t.Errorf("expected no indicators, got %+v", got)
	}
	if got := Detect("", "example-lab", time.Now()); got != nil {
		t.Errorf("expected nil for empty content, got %+v", got)
	}
}

func TestBoostCapped(t *testing.T) {
	if got := Boost(nil); got != 0 {
		t.Errorf("Boost(nil) = %v, want 0", got)
	}
	if got := Boost(make([]Indicator, 1)); got != 0.05 {
		t.Errorf("Boost(1) = %v, want 0.05", got)
	}
	if got := Boost(make([]Indicator, 5)); got != 0.10 {
		t.Errorf("Boost(5) = %v, want cap 0.10", got)
	}
}
