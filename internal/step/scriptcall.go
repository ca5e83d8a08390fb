package step

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dockwa/seatrial/internal/pipe"
	"github.com/dockwa/seatrial/internal/script"
	"github.com/dockwa/seatrial/internal/stepresult"
)

// StepScriptFunction runs a top-level PipelineAction::ScriptFunction step
//: the named user function is called with the current pipe
// contents and its return value becomes the new pipe contents as a
// ScriptRef. This is distinct from ValidatorScriptFunction, which discards
// its return value down to a ValidationResult instead.
func StepScriptFunction(pl PipelineContext, name string) (Completion, error) {
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

	return Normal(pipe.FromScriptRef(resultRef)), nil
}

// pipeToLuaArg resolves the current pipe contents, if any, into the Lua
// value a user script function should receive as its argument. A nil pipe
// yields a nil argument; the caller passes that straight to CallByParam.
func pipeToLuaArg(current *pipe.Contents, bridge *script.Bridge) (lua.LValue, error) {
	if current == nil {
		return nil, nil
	}

	ref, err := current.ToScript(bridge)
	if err != nil {
		return nil, err
	}

	v, ok := bridge.Resolve(ref)
	if !ok {
		return nil, stepresult.NewRequestedScriptValueWhereNoneExistsError()
	}
	return v, nil
}
