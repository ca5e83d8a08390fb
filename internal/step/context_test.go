package step

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dockwa/seatrial/internal/action"
	"github.com/dockwa/seatrial/internal/pipe"
	"github.com/dockwa/seatrial/internal/script"
)

// fakeContext is a hand-rolled PipelineContext so handler tests don't need a
// full pipeline engine behind them.
type fakeContext struct {
	pipe    *pipe.Contents
	persona *action.Persona
	name    string
	base    *url.URL
	bridge  *script.Bridge
}

func (f *fakeContext) Pipe() *pipe.Contents     { return f.pipe }
func (f *fakeContext) Persona() *action.Persona { return f.persona }
func (f *fakeContext) GruntName() string        { return f.name }
func (f *fakeContext) BaseURL() *url.URL        { return f.base }
func (f *fakeContext) Bridge() *script.Bridge   { return f.bridge }

func newFakeContext(t *testing.T) *fakeContext {
	t.Helper()

	return &fakeContext{
		persona: &action.Persona{
			Name:    "tester",
			Timeout: action.Duration{Unit: action.DurationSeconds, Value: 5},
		},
		name: "Grunt<tester> 1",
	}
}

func (f *fakeContext) withResponse(resp *pipe.Response) *fakeContext {
	f.pipe = pipe.FromResponse(resp)
	return f
}

func (f *fakeContext) withBridge(t *testing.T, scriptBody string) *fakeContext {
	t.Helper()

	path := filepath.Join(t.TempDir(), "script.lua")
	require.NoError(t, os.WriteFile(path, []byte(scriptBody), 0o644))

	bridge, err := script.New(path)
	require.NoError(t, err)
	t.Cleanup(bridge.Close)

	f.bridge = bridge
	return f
}

func (f *fakeContext) withBaseURL(t *testing.T, raw string) *fakeContext {
	t.Helper()

	base, err := url.Parse(raw)
	require.NoError(t, err)
	f.base = base
	return f
}
