package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dockwa/seatrial/internal/action"
	seatrialerrors "github.com/dockwa/seatrial/pkg/errors"
)

const validSituation = `
base_url: http://127.0.0.1:8080
script_file: script.lua
grunts:
  - base_name: Reload Gremlin
    persona: reloader
    count: 2
  - persona: prober
personas:
  reloader:
    timeout:
      seconds: 5
    headers:
      X-Situation:
        value: simpleish
    sequence:
      - http:
          verb: GET
          url: ok
      - validator:
          assert_status_code: 200
  prober:
    timeout:
      milliseconds: 1500
    sequence:
      - script_function: extract
`

func writeSituation(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "situation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "script.lua"), []byte("return {}"), 0o644))
	return path
}

func TestLoadExpandsGrunts(t *testing.T) {
	t.Parallel()

	situation, err := Load(writeSituation(t, validSituation), 1)
	require.NoError(t, err)

	require.Equal(t, "http://127.0.0.1:8080/", situation.BaseURL.String())
	require.NotNil(t, situation.ScriptPath)
	require.True(t, filepath.IsAbs(*situation.ScriptPath))

	require.Len(t, situation.Grunts, 3)
	require.Equal(t, "Reload Gremlin 1", situation.Grunts[0].Name)
	require.Equal(t, "Reload Gremlin 2", situation.Grunts[1].Name)
	require.Equal(t, "Grunt<prober> 1", situation.Grunts[2].Name)

	// expanded grunts from one spec share the same persona
	require.Same(t, situation.Grunts[0].Persona, situation.Grunts[1].Persona)
	require.Equal(t, "reloader", situation.Grunts[0].Persona.Name)
	require.Len(t, situation.Grunts[0].Persona.Sequence, 2)
	require.Equal(t, action.KindHttp, situation.Grunts[0].Persona.Sequence[0].Kind)
}

func TestLoadAppliesMultiplier(t *testing.T) {
	t.Parallel()

	situation, err := Load(writeSituation(t, validSituation), 3)
	require.NoError(t, err)
	require.Len(t, situation.Grunts, 9)

	_, err = Load(writeSituation(t, validSituation), 0)
	var validationErr *seatrialerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestLoadRejectsUnknownPersonaReferences(t *testing.T) {
	t.Parallel()

	_, err := Load(writeSituation(t, `
base_url: http://127.0.0.1:8080
grunts:
  - persona: ghost
personas:
  real:
    timeout:
      seconds: 1
    sequence:
      - script_function: f
`), 1)

	var validationErr *seatrialerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, err.Error(), "ghost")
}

func TestLoadRejectsZeroCounts(t *testing.T) {
	t.Parallel()

	_, err := Load(writeSituation(t, `
base_url: http://127.0.0.1:8080
grunts:
  - persona: p
    count: 0
personas:
  p:
    timeout:
      seconds: 1
    sequence:
      - script_function: f
`), 1)

	var validationErr *seatrialerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, err.Error(), "count")
}

func TestLoadRejectsRelativeBaseURLs(t *testing.T) {
	t.Parallel()

	_, err := Load(writeSituation(t, `
base_url: not-even-close
grunts:
  - persona: p
personas:
  p:
    timeout:
      seconds: 1
    sequence:
      - script_function: f
`), 1)

	var validationErr *seatrialerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, err.Error(), "base_url")
}

func TestLoadRejectsZeroTimeouts(t *testing.T) {
	t.Parallel()

	_, err := Load(writeSituation(t, `
base_url: http://127.0.0.1:8080
grunts:
  - persona: p
personas:
  p:
    timeout:
      seconds: 1
    sequence:
      - script_function: f
  broken:
    sequence:
      - script_function: f
`), 1)

	var validationErr *seatrialerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, err.Error(), "timeout")
}

func TestLoadSurfacesParseErrorsWithPath(t *testing.T) {
	t.Parallel()

	path := writeSituation(t, "base_url: [not: valid: yaml")
	_, err := Load(path, 1)

	var parseErr *seatrialerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, path, parseErr.Path)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), 1)
	var parseErr *seatrialerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestScriptPathPassesThroughWhenUnresolvable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "situation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: http://127.0.0.1:8080
script_file: elsewhere.lua
grunts:
  - persona: p
personas:
  p:
    timeout:
      seconds: 1
    sequence:
      - script_function: f
`), 0o644))

	situation, err := Load(path, 1)
	require.NoError(t, err)
	require.NotNil(t, situation.ScriptPath)
	require.Equal(t, "elsewhere.lua", *situation.ScriptPath)
}

func TestGruntSpecFormattedName(t *testing.T) {
	t.Parallel()

	base := "Jimbo Gruntseph"
	named := GruntSpec{BaseName: &base, Persona: "blahblah"}
	require.Equal(t, "Jimbo Gruntseph 1", named.FormattedName(1))

	anon := GruntSpec{Persona: "blahblah"}
	require.Equal(t, "Grunt<blahblah> 1", anon.FormattedName(1))
	require.Equal(t, uint(1), anon.RealCount())
}
