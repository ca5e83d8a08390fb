package step

import (
	"fmt"

	"github.com/dockwa/seatrial/internal/action"
	"github.com/dockwa/seatrial/internal/stepresult"
)

// CombinatorHandler composes a list of validators with boolean semantics
//. It holds a reference to the validator handler rather than
// routing back through the engine merely to reach it.
type CombinatorHandler struct {
	validators *ValidatorHandler
}

// NewCombinatorHandler builds a CombinatorHandler wired to validators.
func NewCombinatorHandler(validators *ValidatorHandler) *CombinatorHandler {
	return &CombinatorHandler{validators: validators}
}

// Step runs the combinator described by c against the current pipeline
// context.
func (h *CombinatorHandler) Step(pl PipelineContext, c action.Combinator) (Completion, error) {
	switch c.Kind {
	case action.CombinatorAllOf:
		return h.allOf(pl, c.Validators)
	case action.CombinatorAnyOf:
		return h.anyOf(pl, c.Validators)
	case action.CombinatorNoneOf:
		completion, err := h.anyOf(pl, c.Validators)
		if err == nil {
			_ = completion
			return Completion{}, stepresult.NewValidationSucceededUnexpectedlyError()
		}
		return Normal(nil), nil
	default:
		return Completion{}, stepresult.NewUnclassifiedError(fmt.Sprintf("unknown combinator kind %q", c.Kind))
	}
}

func (h *CombinatorHandler) allOf(pl PipelineContext, validators []action.Validator) (Completion, error) {
	var warnings []string

	for _, v := range validators {
		completion, err := h.validators.Step(pl, v)
		if err != nil {
			return Completion{}, err
		}

		switch completion.Kind {
		case CompletionNormal, CompletionNoIncrement:
			// no-op: validators neither warn nor fail here
		case CompletionWithWarnings:
			warnings = append(warnings, completion.Warnings...)
		case CompletionExit:
			panic("combinator members requesting a pipeline exit is not implemented")
		}
	}

	if len(warnings) == 0 {
		return Normal(nil), nil
	}
	return WithWarnings(nil, warnings), nil
}

func (h *CombinatorHandler) anyOf(pl PipelineContext, validators []action.Validator) (Completion, error) {
	for _, v := range validators {
		completion, err := h.validators.Step(pl, v)
		if err == nil {
			if completion.Kind == CompletionExit {
				panic("validators should not be able to end the pipeline via Exit, only via errors")
			}
			return completion, nil
		}
	}

	return Completion{}, stepresult.NewValidationError("no validators in combinator succeeded")
}
