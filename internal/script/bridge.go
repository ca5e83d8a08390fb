// Package script embeds the gopher-lua interpreter as seatrial's scripting
// escape hatch. One Bridge is created per grunt and never crosses a
// goroutine boundary; it attaches the seatrial standard library, loads
// the user's script as a module-like table, and exposes a small surface for
// calling named functions and converting values to and from the pipe.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Ref is an opaque handle into the Bridge's value registry. It is valid only
// for the lifetime of the owning Bridge (and thus the pipeline that owns
// it); PipeContents::ScriptRef carries one of these.
type Ref uint64

// Bridge owns one gopher-lua interpreter instance and the user script loaded
// into it. Not safe for concurrent use; callers serialize access the same
// way a grunt's pipeline is strictly sequential.
type Bridge struct {
	state      *lua.LState
	userScript *lua.LTable

	registry map[Ref]lua.LValue
	nextRef  Ref
}

// New creates a Bridge, attaches the standard library, and loads
// userScriptPath as a module: the script's top-level chunk must `return` a
// table of functions, each callable as fn(pipe_value). Validator functions
// return a ValidationResult; other functions may return any value.
func New(userScriptPath string) (*Bridge, error) {
	state := lua.NewState()

	attachStdlib(state)

	userScript, err := loadUserScript(state, userScriptPath)
	if err != nil {
		state.Close()
		return nil, fmt.Errorf("loading user script %s: %w", userScriptPath, err)
	}

	return &Bridge{
		state:      state,
		userScript: userScript,
		registry:   make(map[Ref]lua.LValue),
	}, nil
}

// Close releases the underlying interpreter. Call once the owning pipeline
// has finished running.
func (b *Bridge) Close() {
	b.state.Close()
}

// Context grants single-threaded, re-entrant access to the raw interpreter
// for small conversion tasks (building/reading tables) that don't fit the
// Register/Resolve/CallUserFn surface.
func (b *Bridge) Context(f func(*lua.LState) error) error {
	return f(b.state)
}

// Register stores v in the bridge's registry and returns a handle to it.
func (b *Bridge) Register(v lua.LValue) Ref {
	b.nextRef++
	ref := b.nextRef
	b.registry[ref] = v
	return ref
}

// Resolve looks up a previously registered value.
func (b *Bridge) Resolve(ref Ref) (lua.LValue, bool) {
	v, ok := b.registry[ref]
	return v, ok
}

// Release drops a registry entry. Safe to call on an already-released or
// unknown ref.
func (b *Bridge) Release(ref Ref) {
	delete(b.registry, ref)
}

// CallUserFn looks up name on the user script's module table (it must be
// callable), invokes it with arg (lua.LNil if arg is nil), and registers the
// return value, returning a handle to it.
func (b *Bridge) CallUserFn(name string, arg lua.LValue) (Ref, error) {
	fnVal := b.userScript.RawGetString(name)
	fn, ok := fnVal.(*lua.LFunction)
	if !ok {
		return 0, fmt.Errorf("user script has no function named %q (got %s)", name, fnVal.Type())
	}

	if arg == nil {
		arg = lua.LNil
	}

	if err := b.state.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, arg); err != nil {
		return 0, err
	}

	ret := b.state.Get(-1)
	b.state.Pop(1)

	return b.Register(ret), nil
}

func loadUserScript(state *lua.LState, path string) (*lua.LTable, error) {
	fn, err := state.LoadFile(path)
	if err != nil {
		return nil, err
	}

	state.Push(fn)
	if err := state.PCall(0, 1, nil); err != nil {
		return nil, err
	}

	ret := state.Get(-1)
	state.Pop(1)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("user script must return a table of functions, got %s", ret.Type())
	}

	return tbl, nil
}
