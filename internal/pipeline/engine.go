// Package pipeline implements the pipeline engine: the per-grunt lazy sequence of
// PipelineStepResult that drives a persona's action list to completion,
// holding the current index, current pipe contents, and GoTo loop counters.
package pipeline

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dockwa/seatrial/internal/action"
	"github.com/dockwa/seatrial/internal/pipe"
	"github.com/dockwa/seatrial/internal/script"
	"github.com/dockwa/seatrial/internal/step"
	"github.com/dockwa/seatrial/internal/stepresult"
)

// Outcome discriminates the three shapes Next can report alongside a nil
// error.
type Outcome int

const (
	// StepOk means the step completed, with or without overwriting the pipe.
	StepOk Outcome = iota
	// StepOkWithWarnings means the step completed but raised non-fatal
	// warnings (a WarnUnless* validator, or an AllOf/script function that
	// aggregated some).
	StepOkWithWarnings
	// StepOkWithExit means the step requested the pipeline end, normally via
	// a GoTo whose max_times is exhausted.
	StepOkWithExit
)

// StepResult is what Next reports for one completed step.
type StepResult struct {
	Outcome  Outcome
	Warnings []string
}

// Engine walks a single grunt's persona sequence one action at a time. It
// implements step.PipelineContext so the step handlers can read back the
// state they need without depending on this package.
type Engine struct {
	gruntName string
	baseURL   *url.URL
	persona   *action.Persona
	bridge    *script.Bridge

	idx          int
	pipe         *pipe.Contents
	gotoCounters map[int]uint
	drained      bool

	http       *step.HTTPHandler
	validators *step.ValidatorHandler
	combinator *step.CombinatorHandler
}

// New builds an Engine for one grunt. bridge may be nil when the situation
// carries no script file; actions that need it then fail with
// ScriptNotInstantiatedError instead of panicking.
func New(gruntName string, baseURL *url.URL, persona *action.Persona, bridge *script.Bridge) *Engine {
	validators := step.NewValidatorHandler()
	return &Engine{
		gruntName:    gruntName,
		baseURL:      baseURL,
		persona:      persona,
		bridge:       bridge,
		gotoCounters: make(map[int]uint),
		http:         step.NewHTTPHandler(gruntName, persona),
		validators:   validators,
		combinator:   step.NewCombinatorHandler(validators),
	}
}

// Pipe implements step.PipelineContext.
func (e *Engine) Pipe() *pipe.Contents { return e.pipe }

// Persona implements step.PipelineContext.
func (e *Engine) Persona() *action.Persona { return e.persona }

// GruntName implements step.PipelineContext.
func (e *Engine) GruntName() string { return e.gruntName }

// BaseURL implements step.PipelineContext.
func (e *Engine) BaseURL() *url.URL { return e.baseURL }

// Bridge implements step.PipelineContext.
func (e *Engine) Bridge() *script.Bridge { return e.bridge }

// Next dispatches the action at the current index and reports its outcome.
// A nil StepResult and a nil error together mean the pipeline has drained:
// either the sequence ran out, a step emitted Exit, or a prior call
// returned an error. Every call after drain returns (nil, nil); Next never
// re-surfaces a terminal StepError or re-emits Exit.
func (e *Engine) Next(ctx context.Context) (*StepResult, error) {
	if e.drained {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		e.drained = true
		return nil, err
	}
	if e.idx >= len(e.persona.Sequence) {
		e.drained = true
		return nil, nil
	}

	act := e.persona.Sequence[e.idx]

	var completion step.Completion
	var err error

	switch act.Kind {
	case action.KindGoTo:
		completion, err = e.stepGoTo(act.GoTo)
	case action.KindReference:
		err = stepresult.NewInvalidActionInContextError("reference is not valid as a top-level pipeline step")
	case action.KindScriptFunction:
		completion, err = step.StepScriptFunction(e, act.ScriptFunction)
	case action.KindHttp:
		completion, err = e.http.Step(e, act.Http)
	case action.KindCombinator:
		// combinators leave the pipe as the prior step left it
		completion, err = e.combinator.Step(e, act.Combinator)
		completion.Data = e.pipe
	case action.KindValidator:
		completion, err = e.validators.Step(e, act.Validator)
	default:
		err = stepresult.NewUnclassifiedError(fmt.Sprintf("unknown action kind %q", act.Kind))
	}

	if err != nil {
		e.drained = true
		return nil, err
	}

	switch completion.Kind {
	case step.CompletionNormal:
		e.pipe = completion.Data
		e.idx++
		return &StepResult{Outcome: StepOk}, nil
	case step.CompletionWithWarnings:
		e.pipe = completion.Data
		e.idx++
		return &StepResult{Outcome: StepOkWithWarnings, Warnings: completion.Warnings}, nil
	case step.CompletionNoIncrement:
		e.pipe = completion.Data
		return &StepResult{Outcome: StepOk}, nil
	case step.CompletionExit:
		e.drained = true
		return &StepResult{Outcome: StepOkWithExit}, nil
	default:
		e.drained = true
		return nil, stepresult.NewUnclassifiedError("unknown completion kind")
	}
}

// stepGoTo handles ControlFlow::GoTo inline rather than via a step handler:
// it is the only action that rewrites the engine's own index. The
// remaining-jumps counter is keyed by this jump site's own instruction
// index, not its target, so two sites that jump to the same place don't
// share a counter.
func (e *Engine) stepGoTo(g action.GoTo) (step.Completion, error) {
	if g.MaxTimes != nil {
		if *g.MaxTimes == 0 {
			return step.Exit(), nil
		}

		remaining, seeded := e.gotoCounters[e.idx]
		if !seeded {
			remaining = *g.MaxTimes
		}
		if remaining == 0 {
			return step.Exit(), nil
		}
		e.gotoCounters[e.idx] = remaining - 1
	}

	if g.Index > len(e.persona.Sequence) {
		return step.Completion{}, stepresult.NewActionOutOfRangeError(g.Index, len(e.persona.Sequence))
	}

	e.idx = g.Index
	return step.NoIncrement(nil), nil
}
