package observers_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/moore"
	"github.com/anggasct/moore/pkg/observers"
)

func runEngine(t *testing.T, steps uint64, obs moore.Observer, readings ...uint8) *moore.Engine {
	t.Helper()
	log := &moore.CallLog{}
	engine, err := moore.NewEngine(moore.DefaultTable(),
		moore.NewScriptedPort(log, readings...),
		moore.NewManualTimer(log),
		moore.WithObserver(obs),
		moore.WithMaxSteps(steps))
	require.NoError(t, err)
	require.NoError(t, engine.Run(context.Background()))
	return engine
}

func TestMetricsObserver(t *testing.T) {
	t.Run("Counts a pedestrian cycle", func(t *testing.T) {
		metrics := observers.NewMetricsObserver()

		runEngine(t, 8, metrics, 0x04, 0x04, 0x01, 0, 0, 0, 0, 0)

		visits := metrics.GetStateVisitCounts()
		assert.Equal(t, 1, visits[moore.NorthOpen])
		assert.Equal(t, 1, visits[moore.PedOpen])
		assert.Equal(t, 1, visits[moore.PedFlash3Red])
		assert.Equal(t, uint64(8), metrics.GetStepCount())

		ticks := metrics.GetStateTicks()
		assert.Equal(t, moore.LongWait, ticks[moore.NorthOpen])
		assert.Equal(t, moore.ShortWait, ticks[moore.PedFlash1Off])

		transitions := metrics.GetTransitionCounts()
		assert.Equal(t, 1, transitions["NO->NW"])
		assert.Equal(t, 1, transitions["WH3->EO"])

		readings := metrics.GetReadingCounts()
		assert.Equal(t, 5, readings[0])
		assert.Equal(t, 2, readings[moore.SensorPedestrian])
	})

	t.Run("Summary is in table order", func(t *testing.T) {
		metrics := observers.NewMetricsObserver()

		runEngine(t, 3, metrics, 0x01)

		summary := metrics.Summary()
		// NorthOpen -> NorthYellow -> EastOpen -> EastOpen
		require.Len(t, summary, 3)
		assert.Equal(t, moore.EastOpen, summary[0].State)
		assert.Equal(t, moore.NorthOpen, summary[1].State)
		assert.Equal(t, moore.NorthYellow, summary[2].State)
		assert.Equal(t, moore.LongWait, summary[0].Ticks)
		assert.Equal(t, moore.ShortWait, summary[2].Ticks)
	})

	t.Run("Errors and reset", func(t *testing.T) {
		metrics := observers.NewMetricsObserver()
		engine, err := moore.NewEngine(moore.DefaultTable(), moore.NewFailingPort(0, -1),
			moore.NewManualTimer(nil), moore.WithObserver(metrics))
		require.NoError(t, err)

		assert.Error(t, engine.Run(context.Background()))
		assert.Equal(t, 1, metrics.GetErrorCount())

		metrics.Reset()
		assert.Equal(t, 0, metrics.GetErrorCount())
		assert.Empty(t, metrics.GetStateVisitCounts())
		assert.Equal(t, uint64(0), metrics.GetStepCount())
	})
}

func TestValidationObserver(t *testing.T) {
	t.Run("Default table is safe", func(t *testing.T) {
		validator := observers.NewValidationObserver(moore.DefaultTable())

		runEngine(t, 12, validator, 0x01, 0x01, 0x04, 0x04, 0x02)

		assert.False(t, validator.HasViolations(), validator.GetViolations())
		assert.NotContains(t, validator.GetUnvisitedStates(), moore.PedOpen)
	})

	t.Run("Detects unsafe lights", func(t *testing.T) {
		validator := observers.NewValidationObserver(nil)

		validator.OnStateEnter(moore.State{ID: moore.EastOpen}, moore.Lights{East: moore.Green, North: moore.Green})
		validator.OnStateEnter(moore.State{ID: moore.PedOpen}, moore.Lights{East: moore.Red, North: moore.Yellow, Walk: true})

		assert.Len(t, validator.GetViolations(), 2)
	})

	t.Run("Detects divergence from table", func(t *testing.T) {
		validator := observers.NewValidationObserver(moore.DefaultTable())

		validator.OnTransition(moore.StepInfo{From: moore.NorthOpen, To: moore.PedOpen, Reading: moore.SensorPedestrian})

		require.True(t, validator.HasViolations())
		assert.Contains(t, validator.GetViolations()[0], "NorthYellow")
		assert.True(t, strings.HasPrefix(validator.GetViolations()[0], "invalid transition"))

		validator.Reset()
		assert.False(t, validator.HasViolations())
		assert.Len(t, validator.GetUnvisitedStates(), moore.NumStates)
	})

	t.Run("Messages start lower case", func(t *testing.T) {
		validator := observers.NewValidationObserver(moore.DefaultTable())

		validator.OnError(errors.New("sensor bus down"))
		validator.OnTransition(moore.StepInfo{From: moore.EastOpen, To: moore.NorthOpen})
		validator.OnStateEnter(moore.State{ID: moore.PedOpen}, moore.Lights{Walk: true, DontWalk: true})

		violations := validator.GetViolations()
		require.NotEmpty(t, violations)
		assert.Equal(t, "error occurred: sensor bus down", violations[0])
		for _, v := range violations {
			first := v[:1]
			assert.Equal(t, strings.ToLower(first), first, v)
		}
	})
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Run("Info level", func(t *testing.T) {
		buf.Reset()
		runEngine(t, 1, observers.NewLoggingObserver(logger, observers.LogInfo), 0)

		out := buf.String()
		assert.Contains(t, out, "msg=lights")
		assert.Contains(t, out, "state=NorthOpen")
		assert.Contains(t, out, "north=green")
		assert.Contains(t, out, "engine started")
		assert.NotContains(t, out, "msg=transition")
	})

	t.Run("Debug level", func(t *testing.T) {
		buf.Reset()
		runEngine(t, 1, observers.NewLoggingObserver(logger, observers.LogDebug), 0x01)

		out := buf.String()
		assert.Contains(t, out, "msg=transition")
		assert.Contains(t, out, "to=NorthYellow")
	})

	t.Run("Error level", func(t *testing.T) {
		buf.Reset()
		obs := observers.NewLoggingObserver(logger, observers.LogError)
		runEngine(t, 1, obs, 0)
		assert.Empty(t, buf.String())

		obs.OnError(moore.NewConfigurationError("Table", "bad"))
		assert.Contains(t, buf.String(), "code=invalid_configuration")
	})
}
