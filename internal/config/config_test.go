package config

import (
	"testing"

	"github.com/rhartert/lcgsolver/internal/stn"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load(): unexpected error: %v", err)
	}
	if cfg.TheoryPropagation != stn.PropagateNone {
		t.Errorf("TheoryPropagation: want PropagateNone, got %v", cfg.TheoryPropagation)
	}
	if cfg.DeepExplanation {
		t.Errorf("DeepExplanation: want false, got true")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LCG_THEORY_PROPAGATION", "edges")
	t.Setenv("LCG_DEEP_EXPLANATION", "true")
	t.Setenv("LCG_PLANNING_HORIZON", "42")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load(): unexpected error: %v", err)
	}
	if cfg.TheoryPropagation != stn.PropagateEdges {
		t.Errorf("TheoryPropagation: want PropagateEdges, got %v", cfg.TheoryPropagation)
	}
	if !cfg.DeepExplanation {
		t.Errorf("DeepExplanation: want true, got false")
	}
	if cfg.PlanningHorizon != 42 {
		t.Errorf("PlanningHorizon: want 42, got %d", cfg.PlanningHorizon)
	}
}

func TestLoadInvalidPropagationLevel(t *testing.T) {
	t.Setenv("LCG_THEORY_PROPAGATION", "bogus")
	if _, err := Load(); err == nil {
		t.Errorf("Load(): want error for invalid propagation level, got none")
	}
}
