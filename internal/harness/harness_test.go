package harness

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dockwa/seatrial/internal/action"
	"github.com/dockwa/seatrial/internal/config"
	seatrialerrors "github.com/dockwa/seatrial/pkg/errors"
)

func newSituation(t *testing.T, serverURL string, scriptBody string, grunts ...config.Grunt) *config.Situation {
	t.Helper()

	base, err := url.Parse(serverURL + "/")
	require.NoError(t, err)

	situation := &config.Situation{BaseURL: base, Grunts: grunts}
	if scriptBody != "" {
		path := filepath.Join(t.TempDir(), "script.lua")
		require.NoError(t, os.WriteFile(path, []byte(scriptBody), 0o644))
		situation.ScriptPath = &path
	}
	return situation
}

func okPersona(name string) *action.Persona {
	return &action.Persona{
		Name:    name,
		Timeout: action.Duration{Unit: action.DurationSeconds, Value: 5},
		Sequence: []action.Action{
			{Kind: action.KindHttp, Http: action.Http{Verb: action.VerbGet, URL: "ok"}},
			{Kind: action.KindValidator, Validator: action.Validator{Kind: action.ValidatorAssertStatusCode, StatusCode: 200}},
		},
	}
}

func TestRunDrivesEveryGrunt(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	persona := okPersona("steady")
	situation := newSituation(t, server.URL, "",
		config.Grunt{Name: "Grunt<steady> 1", Persona: persona},
		config.Grunt{Name: "Grunt<steady> 2", Persona: persona},
		config.Grunt{Name: "Grunt<steady> 3", Persona: persona},
	)

	outcomes, err := Run(context.Background(), situation, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	for i, outcome := range outcomes {
		require.Equal(t, situation.Grunts[i].Name, outcome.Grunt)
		require.False(t, outcome.Failed())
		require.Equal(t, 2, outcome.Steps)
		require.False(t, outcome.Exited)
	}
	require.EqualValues(t, 3, hits.Load())
}

func TestRunRecordsStepErrorsPerGrunt(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	failing := okPersona("doomed")
	situation := newSituation(t, server.URL, "",
		config.Grunt{Name: "Grunt<doomed> 1", Persona: failing},
	)

	outcomes, err := Run(context.Background(), situation, zerolog.Nop())
	require.NoError(t, err, "a grunt's step error is an outcome, not a run error")
	require.Len(t, outcomes, 1)
	require.True(t, outcomes[0].Failed())
	require.Equal(t, 1, outcomes[0].Steps)

	var gruntErr *seatrialerrors.GruntError
	require.ErrorAs(t, outcomes[0].Err, &gruntErr)
	require.Equal(t, "Grunt<doomed> 1", gruntErr.Grunt)
}

func TestRunCollectsWarnings(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	persona := &action.Persona{
		Name:    "wary",
		Timeout: action.Duration{Unit: action.DurationSeconds, Value: 5},
		Sequence: []action.Action{
			{Kind: action.KindHttp, Http: action.Http{Verb: action.VerbGet, URL: "ok"}},
			{Kind: action.KindValidator, Validator: action.Validator{Kind: action.ValidatorWarnUnlessHeaderExists, Header: "X-Never"}},
		},
	}
	situation := newSituation(t, server.URL, "", config.Grunt{Name: "Grunt<wary> 1", Persona: persona})

	outcomes, err := Run(context.Background(), situation, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, []string{`response headers did not include "X-Never"`}, outcomes[0].Warnings)
}

func TestRunBuildsBridgesPerGrunt(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	persona := &action.Persona{
		Name:    "scripted",
		Timeout: action.Duration{Unit: action.DurationSeconds, Value: 5},
		Sequence: []action.Action{
			{Kind: action.KindScriptFunction, ScriptFunction: "seed"},
		},
	}
	situation := newSituation(t, server.URL, `
return {
  seed = function() return "seeded" end,
}
`,
		config.Grunt{Name: "Grunt<scripted> 1", Persona: persona},
		config.Grunt{Name: "Grunt<scripted> 2", Persona: persona},
	)

	outcomes, err := Run(context.Background(), situation, zerolog.Nop())
	require.NoError(t, err)
	for _, outcome := range outcomes {
		require.False(t, outcome.Failed())
		require.Equal(t, 1, outcome.Steps)
	}
}

func TestRunFailsWhenScriptWontLoad(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	situation := newSituation(t, server.URL, `this is not lua (`,
		config.Grunt{Name: "Grunt<broken> 1", Persona: okPersona("broken")},
	)

	_, err := Run(context.Background(), situation, zerolog.Nop())
	var gruntErr *seatrialerrors.GruntError
	require.ErrorAs(t, err, &gruntErr)
}

func TestRunRespectsExit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	zero := uint(0)
	persona := &action.Persona{
		Name:    "quitter",
		Timeout: action.Duration{Unit: action.DurationSeconds, Value: 5},
		Sequence: []action.Action{
			{Kind: action.KindGoTo, GoTo: action.GoTo{Index: 0, MaxTimes: &zero}},
		},
	}
	situation := newSituation(t, server.URL, "", config.Grunt{Name: "Grunt<quitter> 1", Persona: persona})

	outcomes, err := Run(context.Background(), situation, zerolog.Nop())
	require.NoError(t, err)
	require.True(t, outcomes[0].Exited)
	require.Equal(t, 1, outcomes[0].Steps)
}
