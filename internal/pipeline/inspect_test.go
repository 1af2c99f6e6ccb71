package pipeline

import (
	"testing"

	"github.com/pkozlov/agiwatch/internal/model"
)

func TestBuildPreview(t *testing.T) {
	cfg := model.DefaultConfig()
	inspector := NewInspector(cfg)

	content := "The new system achieved 91.2% on MMLU, a significant capability jump. " +
		"The lab declined to disclose the full evaluation suite."

	preview := inspector.buildPreview("https://example.com/post", "Capability jump", content)

	if len(preview.Evidence.Snippets) == 0 {
		t.Fatal("expected snippets")
	}
	if len(preview.Evidence.Claims) == 0 {
		t.Fatal("expected a benchmark claim")
	}
	if preview.Evidence.Claims[0].Benchmark != "MMLU" {
		t.Errorf("benchmark = %q", preview.Evidence.Claims[0].Benchmark)
	}
	if preview.HeuristicScore <= 0 {
		t.Errorf("heuristic score = %v, want > 0", preview.HeuristicScore)
	}
	if len(preview.SecrecyIndicators) == 0 {
		t.Error("expected a secrecy indicator for withheld evaluation details")
	}
}

func TestBuildPreviewPlainProse(t *testing.T) {
	cfg := model.DefaultConfig()
	inspector := NewInspector(cfg)

	preview := inspector.buildPreview("https://example.com/recipe", "Soup",
		"Simmer the stock gently and season to taste before serving.")

	if len(preview.Evidence.Claims) != 0 {
		t.Errorf("plain prose should yield no claims, got %+v", preview.Evidence.Claims)
	}
	if preview.HeuristicScore != 0 {
		t.Errorf("heuristic score = %v, want 0", preview.HeuristicScore)
	}
	if len(preview.SecrecyIndicators) != 0 {
		t.Errorf("unexpected secrecy indicators: %+v", preview.SecrecyIndicators)
	}
}
