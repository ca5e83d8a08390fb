// Package action defines the closed action algebra a persona's sequence is
// built from: the typed tree of instructions a pipeline interprets one at a
// time. Every variant here is a leaf the pipeline engine
// dispatches on; external extensibility of the action set is a non-goal.
package action

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Verb is the HTTP method an Http action issues.
type Verb string

const (
	VerbDelete Verb = "DELETE"
	VerbGet    Verb = "GET"
	VerbHead   Verb = "HEAD"
	VerbPost   Verb = "POST"
	VerbPut    Verb = "PUT"
)

// Kind discriminates the Action sum type's variants.
type Kind string

const (
	KindGoTo           Kind = "go_to"
	KindHttp           Kind = "http"
	KindScriptFunction Kind = "script_function"
	KindValidator      Kind = "validator"
	KindCombinator     Kind = "combinator"
	KindReference      Kind = "reference"
)

// GoTo is an unconditional jump to index, optionally bounded per jump site
// by MaxTimes. A nil MaxTimes jumps unconditionally, forever.
type GoTo struct {
	Index    int
	MaxTimes *uint
}

// Http issues a single HTTP request against the situation's base URL. Headers
// and Params are realized lazily against the current pipe contents at
// request time.
type Http struct {
	Verb    Verb
	URL     string
	Headers map[string]Reference
	Params  map[string]Reference
	Timeout *Duration
}

// Action is one instruction in a persona's sequence. Exactly one field is
// meaningful, selected by Kind. Reference is a leaf of this algebra: it is
// valid inside Http.Headers/Http.Params and a Persona's default headers, but
// never valid as a top-level pipeline step; the pipeline rejects a top-level
// Reference with InvalidActionInContext so config linters can catch the bug
// statically.
type Action struct {
	Kind Kind

	GoTo           GoTo
	Http           Http
	ScriptFunction string
	Validator      Validator
	Combinator     Combinator
	Reference      Reference
}

type rawAction struct {
	GoTo           *rawGoTo    `yaml:"go_to"`
	Http           *rawHttp    `yaml:"http"`
	ScriptFunction *string     `yaml:"script_function"`
	Validator      *Validator  `yaml:"validator"`
	Combinator     *Combinator `yaml:"combinator"`
	Reference      *Reference  `yaml:"reference"`
}

type rawGoTo struct {
	Index    int   `yaml:"index"`
	MaxTimes *uint `yaml:"max_times"`
}

type rawHttp struct {
	Verb    Verb                 `yaml:"verb"`
	URL     string               `yaml:"url"`
	Headers map[string]Reference `yaml:"headers"`
	Params  map[string]Reference `yaml:"params"`
	Timeout *Duration            `yaml:"timeout"`
}

// UnmarshalYAML decodes the single-key tagged Action shape, e.g.
// `{http: {verb: GET, url: /ok}}` or `{go_to: {index: 0, max_times: 2}}`.
func (a *Action) UnmarshalYAML(value *yaml.Node) error {
	var raw rawAction
	if err := value.Decode(&raw); err != nil {
		return err
	}

	set := 0
	for _, present := range []bool{
		raw.GoTo != nil, raw.Http != nil, raw.ScriptFunction != nil,
		raw.Validator != nil, raw.Combinator != nil, raw.Reference != nil,
	} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("action must set exactly one of go_to, http, script_function, validator, combinator, reference, got %d", set)
	}

	switch {
	case raw.GoTo != nil:
		a.Kind = KindGoTo
		a.GoTo = GoTo{Index: raw.GoTo.Index, MaxTimes: raw.GoTo.MaxTimes}
	case raw.Http != nil:
		if !isValidVerb(raw.Http.Verb) {
			return fmt.Errorf("http action has unknown verb %q", raw.Http.Verb)
		}
		a.Kind = KindHttp
		a.Http = Http{
			Verb:    raw.Http.Verb,
			URL:     raw.Http.URL,
			Headers: raw.Http.Headers,
			Params:  raw.Http.Params,
			Timeout: raw.Http.Timeout,
		}
	case raw.ScriptFunction != nil:
		a.Kind = KindScriptFunction
		a.ScriptFunction = *raw.ScriptFunction
	case raw.Validator != nil:
		a.Kind = KindValidator
		a.Validator = *raw.Validator
	case raw.Combinator != nil:
		a.Kind = KindCombinator
		a.Combinator = *raw.Combinator
	case raw.Reference != nil:
		a.Kind = KindReference
		a.Reference = *raw.Reference
	}

	return nil
}

func isValidVerb(v Verb) bool {
	switch v {
	case VerbDelete, VerbGet, VerbHead, VerbPost, VerbPut:
		return true
	default:
		return false
	}
}

// Persona is immutable for the lifetime of a run: a request timeout, a map
// of default headers merged under every Http action's own headers, and the
// action sequence a grunt's pipeline steps through.
type Persona struct {
	Name     string
	Timeout  Duration
	Headers  map[string]Reference
	Sequence []Action
}
