// Package pipe implements the pipe contents: the typed value carried between
// pipeline steps, and the two operations — ToScript and TryIntoString — that
// bridge it into and out of the embedded script interpreter.
package pipe

import (
	"unicode/utf8"

	lua "github.com/yuin/gopher-lua"

	"github.com/dockwa/seatrial/internal/action"
	"github.com/dockwa/seatrial/internal/script"
	"github.com/dockwa/seatrial/internal/stepresult"
)

// Kind discriminates the two Contents shapes.
type Kind int

const (
	KindHTTPResponse Kind = iota
	KindScriptRef
)

// Response is the realized HTTP response populating a KindHTTPResponse
// Contents. Headers preserve their original casing: normalization
// happens only at comparison time in the validator handler.
type Response struct {
	StatusCode  int
	Headers     map[string]string
	ContentType string
	Body        []byte
}

// Contents is the value a step may leave behind for the next one to read.
type Contents struct {
	Kind      Kind
	Response  *Response
	ScriptRef script.Ref
}

// FromResponse wraps a realized HTTP response as pipe contents.
func FromResponse(r *Response) *Contents {
	return &Contents{Kind: KindHTTPResponse, Response: r}
}

// FromScriptRef wraps an existing script handle as pipe contents.
func FromScriptRef(ref script.Ref) *Contents {
	return &Contents{Kind: KindScriptRef, ScriptRef: ref}
}

// ToScript realizes these contents as a script value, returning a handle to
// it. A KindScriptRef pass through unchanged; a KindHTTPResponse is
// converted into a table with keys status_code, headers, content_type,
// body, and body_string (present iff body is valid UTF-8 — never decoded
// lossily).
func (c *Contents) ToScript(bridge *script.Bridge) (script.Ref, error) {
	if c.Kind == KindScriptRef {
		return c.ScriptRef, nil
	}

	var ref script.Ref
	err := bridge.Context(func(L *lua.LState) error {
		tbl := L.NewTable()
		tbl.RawSetString("status_code", lua.LNumber(c.Response.StatusCode))

		headers := L.NewTable()
		for k, v := range c.Response.Headers {
			headers.RawSetString(k, lua.LString(v))
		}
		tbl.RawSetString("headers", headers)
		tbl.RawSetString("content_type", lua.LString(c.Response.ContentType))
		tbl.RawSetString("body", lua.LString(c.Response.Body))

		if utf8.Valid(c.Response.Body) {
			tbl.RawSetString("body_string", lua.LString(c.Response.Body))
		} else {
			tbl.RawSetString("body_string", lua.LNil)
		}

		ref = bridge.Register(tbl)
		return nil
	})
	if err != nil {
		return 0, stepresult.NewScriptExceptionError(err)
	}

	return ref, nil
}

// TryIntoString realizes a Reference leaf against the current pipe contents
// (which may be absent, e.g. before the first HTTP response lands):
//
//   - Value(s) passes the literal string through unchanged.
//   - ScriptValue demands that current itself already be a script reference;
//     an absent pipe is RequestedScriptValueWhereNoneExists, and a
//     non-script-ref pipe (an HttpResponse) is InvalidActionInContext.
//   - ScriptTableIndex/ScriptTableKey realize current as a script value
//     (converting an HttpResponse on the fly) and index into the resulting
//     table, then stringify what's found there.
func TryIntoString(bridge *script.Bridge, ref action.Reference, current *Contents) (string, error) {
	switch ref.Kind {
	case action.ReferenceValue:
		return ref.Value, nil

	case action.ReferenceScriptValue:
		if current == nil {
			return "", stepresult.NewRequestedScriptValueWhereNoneExistsError()
		}
		if current.Kind != KindScriptRef {
			return "", stepresult.NewInvalidActionInContextError("script_value reference against a non-script pipe value")
		}
		return stringifyScriptRef(bridge, current.ScriptRef)

	case action.ReferenceScriptTableIndex, action.ReferenceScriptTableKey:
		if current == nil {
			return "", stepresult.NewRequestedScriptValueWhereNoneExistsError()
		}
		tableRef, err := current.ToScript(bridge)
		if err != nil {
			return "", err
		}
		return stringifyTableEntry(bridge, tableRef, ref)

	default:
		return "", stepresult.NewUnclassifiedError("unknown reference kind")
	}
}

func stringifyScriptRef(bridge *script.Bridge, ref script.Ref) (string, error) {
	v, ok := bridge.Resolve(ref)
	if !ok {
		return "", stepresult.NewRequestedScriptValueWhereNoneExistsError()
	}
	return Stringify(v)
}

func stringifyTableEntry(bridge *script.Bridge, tableRef script.Ref, ref action.Reference) (string, error) {
	v, ok := bridge.Resolve(tableRef)
	if !ok {
		return "", stepresult.NewRequestedScriptValueWhereNoneExistsError()
	}

	tbl, ok := v.(*lua.LTable)
	if !ok {
		return "", stepresult.NewRefuseToStringifyComplexError(v.Type().String())
	}

	var entry lua.LValue
	switch ref.Kind {
	case action.ReferenceScriptTableIndex:
		entry = tbl.RawGetInt(int(ref.TableIndex))
	case action.ReferenceScriptTableKey:
		entry = tbl.RawGetString(ref.TableKey)
	}

	return Stringify(entry)
}

// Stringify applies the stringification rules to a raw script value:
// booleans, numbers, and strings pass through in their natural string form;
// tables/functions/userdata/threads/errors refuse as too complex; nil
// refuses as non-existent.
func Stringify(v lua.LValue) (string, error) {
	switch val := v.(type) {
	case lua.LBool:
		if bool(val) {
			return "true", nil
		}
		return "false", nil
	case lua.LNumber:
		return val.String(), nil
	case lua.LString:
		return string(val), nil
	case *lua.LNilType:
		return "", stepresult.NewRefuseToStringifyNonExistentError()
	default:
		return "", stepresult.NewRefuseToStringifyComplexError(v.Type().String())
	}
}
