// Package config resolves the solver's environment-variable toggles once,
// at construction time, into an immutable Config value. Nothing else in the
// kernel reads os.Getenv directly, so a theory or solver built from a given
// Config behaves the same regardless of when or how many times it's
// constructed within a process.
package config

import (
	"fmt"

	"github.com/rhartert/lcgsolver/internal/stn"
	"github.com/spf13/viper"
)

// Config is the resolved set of environment-variable toggles.
type Config struct {
	// TheoryPropagation selects how aggressively the STN theory propagates
	// beyond direct Cesta96 bound tightening (LCG_THEORY_PROPAGATION:
	// none|bounds|edges|full).
	TheoryPropagation stn.PropagationLevel

	// DeepExplanation enables multi-hop STN explanation collapsing
	// (LCG_DEEP_EXPLANATION).
	DeepExplanation bool

	// ExtensiveTests enables the solver's more expensive internal
	// consistency assertions, intended for CI rather than production runs
	// (LCG_EXTENSIVE_TESTS).
	ExtensiveTests bool

	// PlanningHorizon bounds the STN timepoint range a caller building a
	// planning/scheduling model should use when no tighter bound is known
	// (LCG_PLANNING_HORIZON).
	PlanningHorizon int
}

// Default mirrors the STN theory's own conservative defaults: no
// propagation beyond Cesta96, shallow explanations, no extra assertions, a
// generous default horizon.
var Default = Config{
	TheoryPropagation: stn.PropagateNone,
	DeepExplanation:   false,
	ExtensiveTests:    false,
	PlanningHorizon:   1000,
}

// Load resolves Config from the process environment, prefixing every
// variable with LCG_ (e.g. LCG_THEORY_PROPAGATION).
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LCG")
	v.AutomaticEnv()

	v.SetDefault("theory_propagation", "none")
	v.SetDefault("deep_explanation", false)
	v.SetDefault("extensive_tests", false)
	v.SetDefault("planning_horizon", Default.PlanningHorizon)

	level, ok := stn.ParsePropagationLevel(v.GetString("theory_propagation"))
	if !ok {
		return Config{}, fmt.Errorf("config: invalid LCG_THEORY_PROPAGATION %q", v.GetString("theory_propagation"))
	}

	return Config{
		TheoryPropagation: level,
		DeepExplanation:   v.GetBool("deep_explanation"),
		ExtensiveTests:    v.GetBool("extensive_tests"),
		PlanningHorizon:   v.GetInt("planning_horizon"),
	}, nil
}

// STNConfig projects the resolved Config onto the stn.Config a Theory is
// constructed with.
func (c Config) STNConfig() stn.Config {
	return stn.Config{
		PropagationLevel: c.TheoryPropagation,
		DeepExplanation:  c.DeepExplanation,
	}
}
