package action

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// CombinatorKind discriminates the three boolean combinators.
type CombinatorKind string

const (
	CombinatorAllOf  CombinatorKind = "all_of"
	CombinatorAnyOf  CombinatorKind = "any_of"
	CombinatorNoneOf CombinatorKind = "none_of"
)

// Combinator composes a list of validators with boolean semantics. It may
// recurse only into validators, never into arbitrary actions.
type Combinator struct {
	Kind       CombinatorKind
	Validators []Validator
}

// UnmarshalYAML decodes the single-key tagged combinator shape.
func (c *Combinator) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		AllOf  *[]Validator `yaml:"all_of"`
		AnyOf  *[]Validator `yaml:"any_of"`
		NoneOf *[]Validator `yaml:"none_of"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	set := 0
	for _, present := range []bool{raw.AllOf != nil, raw.AnyOf != nil, raw.NoneOf != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("combinator must set exactly one of all_of, any_of, none_of, got %d", set)
	}

	switch {
	case raw.AllOf != nil:
		c.Kind = CombinatorAllOf
		c.Validators = *raw.AllOf
	case raw.AnyOf != nil:
		c.Kind = CombinatorAnyOf
		c.Validators = *raw.AnyOf
	case raw.NoneOf != nil:
		c.Kind = CombinatorNoneOf
		c.Validators = *raw.NoneOf
	}

	return nil
}
