package script

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dockwa/seatrial/internal/stepresult"
)

// Table keys the seatrial stdlib tags a ValidationResult with.
const (
	codeKey     = "_validation_result_code"
	warningsKey = "_validation_result_warnings"
	errorKey    = "_validation_result_error"
)

// attachStdlib installs the ValidationResult global table with its three
// constructors. Each constructor returns Ok because we don't want the
// script's own execution to raise an error for a well-formed call; the Err
// case is reported back to the caller as a ValidationResult value, decoded
// by DecodeValidationResult on the Go side.
func attachStdlib(state *lua.LState) {
	validationResult := state.NewTable()

	validationResult.RawSetString("Ok", state.NewFunction(func(L *lua.LState) int {
		t := L.NewTable()
		t.RawSetString(codeKey, lua.LNumber(stepresult.ValidationResultOk))
		L.Push(t)
		return 1
	}))

	validationResult.RawSetString("OkWithWarnings", state.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		if n == 0 {
			L.RaiseError(stepresult.MissingWarningMessage)
			return 0
		}

		warnings := L.NewTable()
		for i := 1; i <= n; i++ {
			warnings.Append(lua.LString(L.CheckString(i)))
		}

		t := L.NewTable()
		t.RawSetString(codeKey, lua.LNumber(stepresult.ValidationResultOkWithWarnings))
		t.RawSetString(warningsKey, warnings)
		L.Push(t)
		return 1
	}))

	validationResult.RawSetString("Err", state.NewFunction(func(L *lua.LState) int {
		msg := L.CheckString(1)
		t := L.NewTable()
		t.RawSetString(codeKey, lua.LNumber(stepresult.ValidationResultErr))
		t.RawSetString(errorKey, lua.LString(msg))
		L.Push(t)
		return 1
	}))

	state.SetGlobal("ValidationResult", validationResult)
}

// DecodeValidationResult converts a tagged Lua table (generally, but not
// necessarily, constructed via the ValidationResult stdlib) back into the
// native sum type.
func DecodeValidationResult(v lua.LValue) (stepresult.ValidationResult, error) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return stepresult.ValidationResult{}, fmt.Errorf(
			"only tables (generally constructed by seatrial itself) can become ValidationResults, not %s", v.Type())
	}

	codeVal := tbl.RawGetString(codeKey)
	codeNum, ok := codeVal.(lua.LNumber)
	if !ok {
		return stepresult.ValidationResult{}, fmt.Errorf(
			"expected number at table key %s, got %s", codeKey, codeVal.Type())
	}

	switch stepresult.ValidationResultCode(codeNum) {
	case stepresult.ValidationResultOk:
		return stepresult.ValidationResult{Code: stepresult.ValidationResultOk}, nil

	case stepresult.ValidationResultOkWithWarnings:
		warningsVal := tbl.RawGetString(warningsKey)
		warningsTbl, ok := warningsVal.(*lua.LTable)
		if !ok {
			return stepresult.ValidationResult{}, fmt.Errorf(
				"expected table at table key %s, got %s", warningsKey, warningsVal.Type())
		}

		var warnings []string
		warningsTbl.ForEach(func(_, val lua.LValue) {
			if s, ok := val.(lua.LString); ok {
				warnings = append(warnings, string(s))
			}
		})

		if len(warnings) == 0 {
			return stepresult.ValidationResult{}, errors.New(stepresult.MissingWarningMessage)
		}

		return stepresult.ValidationResult{Code: stepresult.ValidationResultOkWithWarnings, Warnings: warnings}, nil

	case stepresult.ValidationResultErr:
		errVal := tbl.RawGetString(errorKey)
		errStr, ok := errVal.(lua.LString)
		if !ok {
			return stepresult.ValidationResult{}, fmt.Errorf(
				"expected string at table key %s, got %s", errorKey, errVal.Type())
		}
		return stepresult.ValidationResult{Code: stepresult.ValidationResultErr, ErrMsg: string(errStr)}, nil

	default:
		return stepresult.ValidationResult{}, fmt.Errorf(
			"expected in-bounds code (%d-%d) at table key %s, got %v",
			stepresult.ValidationResultOk, stepresult.ValidationResultErr, codeKey, codeNum)
	}
}
