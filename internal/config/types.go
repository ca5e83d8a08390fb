// Package config loads and validates situation files: the YAML recipes that
// name a base URL, an optional user script, a table of personas, and the
// grunt specs that expand into the concrete synthetic users a run spawns.
package config

import (
	"fmt"
	"net/url"

	"github.com/dockwa/seatrial/internal/action"
)

// SituationSpec is the on-disk shape of a situation file, prior to semantic
// validation and grunt expansion.
type SituationSpec struct {
	BaseURL    string                 `yaml:"base_url" validate:"required"`
	ScriptFile *string                `yaml:"script_file"`
	Grunts     []GruntSpec            `yaml:"grunts" validate:"required,min=1,dive"`
	Personas   map[string]PersonaSpec `yaml:"personas" validate:"required,min=1,dive"`
}

// GruntSpec describes one family of grunts: an optional display base name, a
// persona reference, and how many copies to spawn.
type GruntSpec struct {
	BaseName *string `yaml:"base_name"`
	Persona  string  `yaml:"persona" validate:"required,persona_name"`
	Count    *uint   `yaml:"count"`
}

// RealCount is the number of grunts this spec expands into before any run
// multiplier is applied. An omitted count means one.
func (g GruntSpec) RealCount() uint {
	if g.Count == nil {
		return 1
	}
	return *g.Count
}

// FormattedName renders the display name of the i-th (1-based) grunt
// expanded from this spec: the base name, or "Grunt<persona>" when none was
// given, followed by the expansion ordinal.
func (g GruntSpec) FormattedName(i int) string {
	base := fmt.Sprintf("Grunt<%s>", g.Persona)
	if g.BaseName != nil {
		base = *g.BaseName
	}
	return fmt.Sprintf("%s %d", base, i)
}

// PersonaSpec is the on-disk shape of a persona: a default request timeout,
// default headers merged under every http action's own, and the action
// sequence a grunt's pipeline steps through.
type PersonaSpec struct {
	Timeout  action.Duration             `yaml:"timeout"`
	Headers  map[string]action.Reference `yaml:"headers"`
	Sequence []action.Action             `yaml:"sequence" validate:"required,min=1"`
}

// Grunt is one expanded run-unit: a display name and the persona its
// pipeline executes.
type Grunt struct {
	Name    string
	Persona *action.Persona
}

// Situation is the immutable post-validation form of a situation file. It is
// the only object shared across grunt goroutines and is never mutated after
// Load returns it.
type Situation struct {
	BaseURL    *url.URL
	ScriptPath *string
	Grunts     []Grunt
}
