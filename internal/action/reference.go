package action

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ReferenceKind discriminates the four Reference shapes.
type ReferenceKind string

const (
	ReferenceValue            ReferenceKind = "value"
	ReferenceScriptValue      ReferenceKind = "script_value"
	ReferenceScriptTableIndex ReferenceKind = "script_table_index"
	ReferenceScriptTableKey   ReferenceKind = "script_table_key"
)

// Reference is a lazily-realized value used inside header/param maps. It is
// a leaf of the action algebra: valid there, but never valid as a top-level
// pipeline step (the pipeline rejects it with InvalidActionInContext).
type Reference struct {
	Kind       ReferenceKind
	Value      string
	TableIndex uint
	TableKey   string
}

// UnmarshalYAML decodes the single-key tagged shape, e.g. `{value: "foo"}`,
// `{script_value: true}`, `{script_table_index: 0}`, `{script_table_key: "id"}`.
func (r *Reference) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Value            *string `yaml:"value"`
		ScriptValue      *bool   `yaml:"script_value"`
		ScriptTableIndex *uint   `yaml:"script_table_index"`
		ScriptTableKey   *string `yaml:"script_table_key"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	set := 0
	if raw.Value != nil {
		set++
	}
	if raw.ScriptValue != nil {
		set++
	}
	if raw.ScriptTableIndex != nil {
		set++
	}
	if raw.ScriptTableKey != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("reference must set exactly one of value, script_value, script_table_index, script_table_key, got %d", set)
	}

	switch {
	case raw.Value != nil:
		r.Kind = ReferenceValue
		r.Value = *raw.Value
	case raw.ScriptValue != nil:
		r.Kind = ReferenceScriptValue
	case raw.ScriptTableIndex != nil:
		r.Kind = ReferenceScriptTableIndex
		r.TableIndex = *raw.ScriptTableIndex
	case raw.ScriptTableKey != nil:
		r.Kind = ReferenceScriptTableKey
		r.TableKey = *raw.ScriptTableKey
	}

	return nil
}
