package step

import "github.com/dockwa/seatrial/internal/pipe"

// CompletionKind discriminates StepCompletion's four shapes.
type CompletionKind int

const (
	// CompletionNormal advances the pipeline index by one and overwrites the
	// pipe contents with Data (which may be nil).
	CompletionNormal CompletionKind = iota
	// CompletionNoIncrement overwrites the pipe contents with Data but does
	// not advance the index; used by GoTo once it has already repositioned
	// the index itself.
	CompletionNoIncrement
	// CompletionWithWarnings behaves like CompletionNormal but also carries
	// non-fatal warning strings.
	CompletionWithWarnings
	// CompletionExit halts the pipeline after this step.
	CompletionExit
)

// Completion is what a step handler returns to the pipeline engine.
type Completion struct {
	Kind     CompletionKind
	Data     *pipe.Contents
	Warnings []string
}

// Normal builds a CompletionNormal completion.
func Normal(data *pipe.Contents) Completion {
	return Completion{Kind: CompletionNormal, Data: data}
}

// NoIncrement builds a CompletionNoIncrement completion.
func NoIncrement(data *pipe.Contents) Completion {
	return Completion{Kind: CompletionNoIncrement, Data: data}
}

// WithWarnings builds a CompletionWithWarnings completion. warnings is
// expected non-empty; callers fold to Normal when a warning list turns out
// empty (e.g. an AllOf combinator whose members produced none).
func WithWarnings(data *pipe.Contents, warnings []string) Completion {
	return Completion{Kind: CompletionWithWarnings, Data: data, Warnings: warnings}
}

// Exit builds a CompletionExit completion.
func Exit() Completion {
	return Completion{Kind: CompletionExit}
}
