package action

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ValidatorKind discriminates the Validator variants, including the
// WarnUnless counterparts that degrade failure to a warning.
type ValidatorKind string

const (
	ValidatorAssertStatusCode            ValidatorKind = "assert_status_code"
	ValidatorAssertStatusCodeInRange     ValidatorKind = "assert_status_code_in_range"
	ValidatorAssertHeaderExists          ValidatorKind = "assert_header_exists"
	ValidatorAssertHeaderEquals          ValidatorKind = "assert_header_equals"
	ValidatorWarnUnlessStatusCode        ValidatorKind = "warn_unless_status_code"
	ValidatorWarnUnlessStatusCodeInRange ValidatorKind = "warn_unless_status_code_in_range"
	ValidatorWarnUnlessHeaderExists      ValidatorKind = "warn_unless_header_exists"
	ValidatorWarnUnlessHeaderEquals      ValidatorKind = "warn_unless_header_equals"
	ValidatorScriptFunction              ValidatorKind = "script_function"
)

// IsWarnVariant reports whether this kind degrades a failed assertion to a
// warning rather than terminating the pipeline.
func (k ValidatorKind) IsWarnVariant() bool {
	switch k {
	case ValidatorWarnUnlessStatusCode, ValidatorWarnUnlessStatusCodeInRange,
		ValidatorWarnUnlessHeaderExists, ValidatorWarnUnlessHeaderEquals:
		return true
	default:
		return false
	}
}

// Validator asserts a property of the current pipe contents.
type Validator struct {
	Kind ValidatorKind

	StatusCode    uint16
	StatusCodeMin uint16
	StatusCodeMax uint16
	Header        string
	HeaderValue   string
	ScriptFunc    string
}

type rawValidator struct {
	AssertStatusCode            *uint16    `yaml:"assert_status_code"`
	AssertStatusCodeInRange     *[2]uint16 `yaml:"assert_status_code_in_range"`
	AssertHeaderExists          *string    `yaml:"assert_header_exists"`
	AssertHeaderEquals          *[2]string `yaml:"assert_header_equals"`
	WarnUnlessStatusCode        *uint16    `yaml:"warn_unless_status_code"`
	WarnUnlessStatusCodeInRange *[2]uint16 `yaml:"warn_unless_status_code_in_range"`
	WarnUnlessHeaderExists      *string    `yaml:"warn_unless_header_exists"`
	WarnUnlessHeaderEquals      *[2]string `yaml:"warn_unless_header_equals"`
	ScriptFunction              *string    `yaml:"script_function"`
}

// UnmarshalYAML decodes the single-key tagged validator shape.
func (v *Validator) UnmarshalYAML(value *yaml.Node) error {
	var raw rawValidator
	if err := value.Decode(&raw); err != nil {
		return err
	}

	set := 0
	for _, present := range []bool{
		raw.AssertStatusCode != nil, raw.AssertStatusCodeInRange != nil,
		raw.AssertHeaderExists != nil, raw.AssertHeaderEquals != nil,
		raw.WarnUnlessStatusCode != nil, raw.WarnUnlessStatusCodeInRange != nil,
		raw.WarnUnlessHeaderExists != nil, raw.WarnUnlessHeaderEquals != nil,
		raw.ScriptFunction != nil,
	} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("validator must set exactly one variant key, got %d", set)
	}

	switch {
	case raw.AssertStatusCode != nil:
		v.Kind = ValidatorAssertStatusCode
		v.StatusCode = *raw.AssertStatusCode
	case raw.AssertStatusCodeInRange != nil:
		v.Kind = ValidatorAssertStatusCodeInRange
		v.StatusCodeMin, v.StatusCodeMax = raw.AssertStatusCodeInRange[0], raw.AssertStatusCodeInRange[1]
	case raw.AssertHeaderExists != nil:
		v.Kind = ValidatorAssertHeaderExists
		v.Header = *raw.AssertHeaderExists
	case raw.AssertHeaderEquals != nil:
		v.Kind = ValidatorAssertHeaderEquals
		v.Header, v.HeaderValue = raw.AssertHeaderEquals[0], raw.AssertHeaderEquals[1]
	case raw.WarnUnlessStatusCode != nil:
		v.Kind = ValidatorWarnUnlessStatusCode
		v.StatusCode = *raw.WarnUnlessStatusCode
	case raw.WarnUnlessStatusCodeInRange != nil:
		v.Kind = ValidatorWarnUnlessStatusCodeInRange
		v.StatusCodeMin, v.StatusCodeMax = raw.WarnUnlessStatusCodeInRange[0], raw.WarnUnlessStatusCodeInRange[1]
	case raw.WarnUnlessHeaderExists != nil:
		v.Kind = ValidatorWarnUnlessHeaderExists
		v.Header = *raw.WarnUnlessHeaderExists
	case raw.WarnUnlessHeaderEquals != nil:
		v.Kind = ValidatorWarnUnlessHeaderEquals
		v.Header, v.HeaderValue = raw.WarnUnlessHeaderEquals[0], raw.WarnUnlessHeaderEquals[1]
	case raw.ScriptFunction != nil:
		v.Kind = ValidatorScriptFunction
		v.ScriptFunc = *raw.ScriptFunction
	}

	return nil
}
