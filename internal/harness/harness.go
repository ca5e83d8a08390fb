// Package harness spawns one worker goroutine per grunt, aligns their start
// on a shared barrier, drives each grunt's pipeline to completion or first
// error, and aggregates the per-grunt outcomes.
package harness

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dockwa/seatrial/internal/config"
	"github.com/dockwa/seatrial/internal/pipeline"
	"github.com/dockwa/seatrial/internal/script"
	seatrialerrors "github.com/dockwa/seatrial/pkg/errors"
)

// GruntOutcome is one grunt's terminal result: how many steps completed, the
// warnings surfaced along the way, whether the pipeline asked to exit early,
// and the step error that terminated it, if any.
type GruntOutcome struct {
	Grunt    string
	Steps    int
	Warnings []string
	Exited   bool
	Err      error
	Elapsed  time.Duration
}

// Failed reports whether the grunt's pipeline terminated in a step error.
func (o GruntOutcome) Failed() bool { return o.Err != nil }

// Run executes every grunt in the situation concurrently and returns one
// outcome per grunt, in grunt order. The returned error is reserved for
// infrastructure failures (a script bridge that won't load); a grunt whose
// pipeline terminates in a step error still produces a normal outcome with
// Err set.
//
// Each grunt builds its own script bridge before entering the start barrier,
// so all pipelines begin at a single common instant with setup costs already
// paid (the barrier aligns starts, nothing else).
func Run(ctx context.Context, situation *config.Situation, logger zerolog.Logger) ([]GruntOutcome, error) {
	runLogger := logger.With().Str("run_id", uuid.NewString()).Logger()
	outcomes := make([]GruntOutcome, len(situation.Grunts))

	var barrier sync.WaitGroup
	barrier.Add(len(situation.Grunts))

	group, ctx := errgroup.WithContext(ctx)
	for i, grunt := range situation.Grunts {
		i, grunt := i, grunt
		group.Go(func() error {
			gruntLogger := runLogger.With().Str("grunt", grunt.Name).Str("persona", grunt.Persona.Name).Logger()

			var bridge *script.Bridge
			if situation.ScriptPath != nil {
				var err error
				bridge, err = script.New(*situation.ScriptPath)
				if err != nil {
					barrier.Done()
					gruntLogger.Error().Err(err).Msg("aborting, script bridge failed to load")
					return seatrialerrors.NewGruntError(grunt.Name, err)
				}
				defer bridge.Close()
			}

			barrier.Done()
			barrier.Wait()

			outcomes[i] = runGrunt(ctx, grunt, situation, bridge, gruntLogger)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return outcomes, nil
}

func runGrunt(ctx context.Context, grunt config.Grunt, situation *config.Situation, bridge *script.Bridge, logger zerolog.Logger) GruntOutcome {
	outcome := GruntOutcome{Grunt: grunt.Name}
	engine := pipeline.New(grunt.Name, situation.BaseURL, grunt.Persona, bridge)

	start := time.Now()
	for {
		result, err := engine.Next(ctx)
		if err != nil {
			logger.Error().Err(err).Int("steps", outcome.Steps).Msg("pipeline terminated in error")
			outcome.Err = seatrialerrors.NewGruntError(grunt.Name, err)
			break
		}
		if result == nil {
			logger.Info().Int("steps", outcome.Steps).Msg("reached end of pipeline, goodbye!")
			break
		}

		outcome.Steps++

		switch result.Outcome {
		case pipeline.StepOk:
			// quiet: per-step success is trace-level noise
			logger.Trace().Int("step", outcome.Steps).Msg("step ok")
		case pipeline.StepOkWithWarnings:
			for _, warning := range result.Warnings {
				logger.Warn().Int("step", outcome.Steps).Str("warning", warning).Msg("warning issued during pipeline step completion")
			}
			outcome.Warnings = append(outcome.Warnings, result.Warnings...)
		case pipeline.StepOkWithExit:
			logger.Info().Int("steps", outcome.Steps).Msg("pipeline requested exit")
			outcome.Exited = true
		}

		if outcome.Exited {
			break
		}
	}
	outcome.Elapsed = time.Since(start)

	return outcome
}
