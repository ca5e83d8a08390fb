package action

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// DurationUnit names which field of a Duration is populated.
type DurationUnit string

const (
	DurationMilliseconds DurationUnit = "milliseconds"
	DurationSeconds      DurationUnit = "seconds"
)

// Duration is a tagged, non-negative duration as it appears in persona and
// action config: either a millisecond or a second count, never both.
type Duration struct {
	Unit  DurationUnit
	Value uint64
}

// AsDuration converts the tagged value to an absolute time.Duration.
func (d Duration) AsDuration() time.Duration {
	switch d.Unit {
	case DurationMilliseconds:
		return time.Duration(d.Value) * time.Millisecond
	case DurationSeconds:
		return time.Duration(d.Value) * time.Second
	default:
		return 0
	}
}

// UnmarshalYAML decodes the tagged `{milliseconds: N}` / `{seconds: N}` shape.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Milliseconds *uint64 `yaml:"milliseconds"`
		Seconds      *uint64 `yaml:"seconds"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	switch {
	case raw.Milliseconds != nil && raw.Seconds != nil:
		return fmt.Errorf("duration must set exactly one of milliseconds or seconds, got both")
	case raw.Milliseconds != nil:
		d.Unit = DurationMilliseconds
		d.Value = *raw.Milliseconds
	case raw.Seconds != nil:
		d.Unit = DurationSeconds
		d.Value = *raw.Seconds
	default:
		return fmt.Errorf("duration must set exactly one of milliseconds or seconds, got neither")
	}

	return nil
}
