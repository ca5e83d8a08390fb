// Package step implements the step handlers: HTTP, validator, combinator,
// and script-call. Each handler interprets one family of action.Action
// variants against a PipelineContext and returns a Completion.
package step

import (
	"net/url"

	"github.com/dockwa/seatrial/internal/action"
	"github.com/dockwa/seatrial/internal/pipe"
	"github.com/dockwa/seatrial/internal/script"
)

// PipelineContext is the read/write surface a step handler needs from the
// engine that owns it: the current pipe contents, the situation's base URL,
// the owning persona (for default headers/timeout), and the script bridge
// (nil if the situation declared no script file). Defined here rather than
// in the pipeline package so step has no dependency on its own caller; the
// pipeline engine implements this interface.
type PipelineContext interface {
	Pipe() *pipe.Contents
	Persona() *action.Persona
	GruntName() string
	BaseURL() *url.URL
	Bridge() *script.Bridge
}
