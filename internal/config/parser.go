package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dockwa/seatrial/internal/action"
	seatrialerrors "github.com/dockwa/seatrial/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Load reads a situation file from disk, validates it, and expands it into
// an immutable Situation. multiplier scales every grunt spec's count and
// must be at least 1.
func Load(path string, multiplier int) (*Situation, error) {
	if multiplier < 1 {
		return nil, seatrialerrors.NewValidationError("multiplier", fmt.Sprintf("must be at least 1, got %d", multiplier), nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, seatrialerrors.NewParseError(path, 0, err)
	}

	var spec SituationSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, seatrialerrors.NewParseError(path, extractLine(err), err)
	}

	if err := ValidateSpec(&spec); err != nil {
		return nil, err
	}

	return expand(&spec, path, multiplier)
}

// expand resolves every grunt spec against the persona table and builds the
// final grunt list. Personas are materialized once per name; grunts expanded
// from the same spec share one immutable *action.Persona.
func expand(spec *SituationSpec, path string, multiplier int) (*Situation, error) {
	baseURL, err := parseBaseURL(spec.BaseURL)
	if err != nil {
		return nil, err
	}

	personas := make(map[string]*action.Persona, len(spec.Personas))
	for name, p := range spec.Personas {
		personas[name] = &action.Persona{
			Name:     name,
			Timeout:  p.Timeout,
			Headers:  p.Headers,
			Sequence: p.Sequence,
		}
	}

	var grunts []Grunt
	for i, gruntSpec := range spec.Grunts {
		persona, ok := personas[gruntSpec.Persona]
		if !ok {
			return nil, seatrialerrors.NewValidationError(
				fmt.Sprintf("grunts[%d].persona", i),
				fmt.Sprintf("references unknown persona %q", gruntSpec.Persona),
				nil,
			)
		}

		count := int(gruntSpec.RealCount()) * multiplier
		for n := 1; n <= count; n++ {
			grunts = append(grunts, Grunt{
				Name:    gruntSpec.FormattedName(n),
				Persona: persona,
			})
		}
	}

	return &Situation{
		BaseURL:    baseURL,
		ScriptPath: canonicalScriptPath(spec.ScriptFile, path),
		Grunts:     grunts,
	}, nil
}

// parseBaseURL requires an absolute URL and guarantees the trailing slash
// that relative-join semantics depend on.
func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, seatrialerrors.NewValidationError("base_url", fmt.Sprintf("not parseable as a URL: %v", err), err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, seatrialerrors.NewValidationError("base_url", fmt.Sprintf("%q is not an absolute URL", raw), nil)
	}

	return u, nil
}

// canonicalScriptPath resolves a script_file entry relative to the situation
// file's own directory. A path that doesn't resolve to a real file passes
// through unchanged so scripts may still be found on the interpreter's own
// search path.
func canonicalScriptPath(scriptFile *string, situationPath string) *string {
	if scriptFile == nil {
		return nil
	}

	candidate := filepath.Join(filepath.Dir(situationPath), *scriptFile)
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return scriptFile
	}
	if _, err := os.Stat(abs); err != nil {
		return scriptFile
	}

	return &abs
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
