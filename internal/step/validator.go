package step

import (
	"strings"

	"github.com/dockwa/seatrial/internal/action"
	"github.com/dockwa/seatrial/internal/pipe"
	"github.com/dockwa/seatrial/internal/script"
	"github.com/dockwa/seatrial/internal/stepresult"
)

// ValidatorHandler asserts a property of the current pipe contents.
type ValidatorHandler struct{}

// NewValidatorHandler constructs a ValidatorHandler. It carries no
// per-grunt state of its own.
func NewValidatorHandler() *ValidatorHandler {
	return &ValidatorHandler{}
}

// Step runs a single validator action against the current pipe contents.
func (h *ValidatorHandler) Step(pl PipelineContext, v action.Validator) (Completion, error) {
	current := pl.Pipe()
	if current == nil {
		return Completion{}, stepresult.NewInvalidActionInContextError("validator against an empty pipe")
	}

	if v.Kind == action.ValidatorScriptFunction {
		return h.stepScriptFunction(pl, v.ScriptFunc)
	}

	if current.Kind != pipe.KindHTTPResponse {
		return Completion{}, stepresult.NewInvalidActionInContextError("assertion against a script-ref pipe value")
	}
	resp := current.Response

	var err error
	switch v.Kind {
	case action.ValidatorAssertStatusCode:
		err = assertStatusCode(resp, v.StatusCode)
	case action.ValidatorAssertStatusCodeInRange:
		err = assertStatusCodeInRange(resp, v.StatusCodeMin, v.StatusCodeMax)
	case action.ValidatorAssertHeaderExists:
		err = assertHeaderExists(resp, v.Header)
	case action.ValidatorAssertHeaderEquals:
		err = assertHeaderEquals(resp, v.Header, v.HeaderValue)
	case action.ValidatorWarnUnlessStatusCode:
		err = assertStatusCode(resp, v.StatusCode)
	case action.ValidatorWarnUnlessStatusCodeInRange:
		err = assertStatusCodeInRange(resp, v.StatusCodeMin, v.StatusCodeMax)
	case action.ValidatorWarnUnlessHeaderExists:
		err = assertHeaderExists(resp, v.Header)
	case action.ValidatorWarnUnlessHeaderEquals:
		err = assertHeaderEquals(resp, v.Header, v.HeaderValue)
	}

	if err == nil {
		return Normal(nil), nil
	}

	if v.Kind.IsWarnVariant() {
		if ve, ok := err.(*stepresult.ValidationError); ok {
			return WithWarnings(nil, []string{ve.Message}), nil
		}
	}

	return Completion{}, err
}

func (h *ValidatorHandler) stepScriptFunction(pl PipelineContext, name string) (Completion, error) {
	bridge := pl.Bridge()
	if bridge == nil {
		return Completion{}, stepresult.NewScriptNotInstantiatedError()
	}

	arg, err := pipeToLuaArg(pl.Pipe(), bridge)
	if err != nil {
		return Completion{}, err
	}

	resultRef, err := bridge.CallUserFn(name, arg)
	if err != nil {
		return Completion{}, stepresult.NewScriptExceptionError(err)
	}

	resultVal, ok := bridge.Resolve(resultRef)
	if !ok {
		return Completion{}, stepresult.NewUnclassifiedError("script function return value vanished from registry")
	}
	bridge.Release(resultRef)

	validationResult, err := script.DecodeValidationResult(resultVal)
	if err != nil {
		return Completion{}, stepresult.NewScriptExceptionError(err)
	}

	switch validationResult.Code {
	case stepresult.ValidationResultOk:
		return Normal(nil), nil
	case stepresult.ValidationResultOkWithWarnings:
		return WithWarnings(nil, validationResult.Warnings), nil
	case stepresult.ValidationResultErr:
		return Completion{}, stepresult.NewValidationError(validationResult.ErrMsg)
	default:
		return Completion{}, stepresult.NewUnclassifiedError("unknown validation result code")
	}
}

func normalizeHeaderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func assertStatusCode(resp *pipe.Response, code uint16) error {
	if resp.StatusCode == int(code) {
		return nil
	}
	return stepresult.NewValidationError(statusCodeNotEqualMessage(code))
}

func assertStatusCodeInRange(resp *pipe.Response, lo, hi uint16) error {
	if resp.StatusCode >= int(lo) && resp.StatusCode <= int(hi) {
		return nil
	}
	return stepresult.NewValidationError(statusCodeNotInRangeMessage(lo, hi))
}

func assertHeaderExists(resp *pipe.Response, header string) error {
	if _, ok := lookupHeader(resp.Headers, header); ok {
		return nil
	}
	return stepresult.NewValidationError(headerMissingMessage(header))
}

func assertHeaderEquals(resp *pipe.Response, header, expected string) error {
	val, ok := lookupHeader(resp.Headers, header)
	if ok && val == expected {
		return nil
	}
	return stepresult.NewValidationError(headerMissingMessage(header))
}

func lookupHeader(headers map[string]string, name string) (string, bool) {
	want := normalizeHeaderName(name)
	for k, v := range headers {
		if normalizeHeaderName(k) == want {
			return v, true
		}
	}
	return "", false
}
