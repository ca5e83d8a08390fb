package config

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"

	seatrialerrors "github.com/dockwa/seatrial/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	personaNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// validatorInstance configures and returns the shared validator instance
// used across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("persona_name", func(fl validator.FieldLevel) bool {
			return personaNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateSpec runs structural validation over a parsed situation spec:
// struct-tag checks first, then the semantic rules that tags can't express
// (persona names well-formed on both sides of the reference, explicit zero
// counts rejected).
func ValidateSpec(spec *SituationSpec) error {
	if err := validatorInstance().Struct(spec); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return seatrialerrors.NewValidationError(first.Namespace(), fmt.Sprintf("failed %q constraint", first.Tag()), err)
		}
		return seatrialerrors.NewValidationError("", err.Error(), err)
	}

	for name, persona := range spec.Personas {
		if !personaNamePattern.MatchString(name) {
			return seatrialerrors.NewValidationError(
				fmt.Sprintf("personas[%s]", name),
				"persona names may only contain letters, digits, underscores, and dashes",
				nil,
			)
		}
		if persona.Timeout.Value == 0 {
			return seatrialerrors.NewValidationError(
				fmt.Sprintf("personas[%s].timeout", name),
				"personas must declare a non-zero request timeout",
				nil,
			)
		}
	}

	for i, grunt := range spec.Grunts {
		if grunt.Count != nil && *grunt.Count == 0 {
			return seatrialerrors.NewValidationError(
				fmt.Sprintf("grunts[%d].count", i),
				"count must be at least 1 when given",
				nil,
			)
		}
	}

	return nil
}
