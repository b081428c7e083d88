// Package observers provides observers for monitoring the controller
package observers

import (
	"context"
	"log/slog"

	"github.com/anggasct/moore"
)

// LogLevel represents the logging level
type LogLevel int

const (
	// LogError logs only errors
	LogError LogLevel = iota
	// LogWarning logs errors and warnings
	LogWarning
	// LogInfo logs errors, warnings, and info
	LogInfo
	// LogDebug logs errors, warnings, info, and debug
	LogDebug
)

// SlogLevel maps the observer level onto slog
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogError:
		return slog.LevelError
	case LogWarning:
		return slog.LevelWarn
	case LogDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// LoggingObserver reports controller activity through slog
type LoggingObserver struct {
	moore.BaseObserver
	logger *slog.Logger
	level  LogLevel
}

// NewLoggingObserver creates a new logging observer. Records more verbose
// than level are dropped before they reach the logger.
func NewLoggingObserver(logger *slog.Logger, level LogLevel) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{
		logger: logger.With("component", "observer"),
		level:  level,
	}
}

// NewDefaultLoggingObserver creates a logging observer at LogInfo on slog.Default()
func NewDefaultLoggingObserver() *LoggingObserver {
	return NewLoggingObserver(nil, LogInfo)
}

func (o *LoggingObserver) log(level LogLevel, msg string, args ...any) {
	if level > o.level {
		return
	}
	o.logger.Log(context.Background(), level.SlogLevel(), msg, args...)
}

// OnStateEnter logs the lights shown by the state
func (o *LoggingObserver) OnStateEnter(state moore.State, lights moore.Lights) {
	o.log(LogInfo, "lights",
		"state", state.ID.String(),
		"east", lights.East.String(),
		"north", lights.North.String(),
		"walk", lights.Walk,
		"dont_walk", lights.DontWalk)
}

// OnTransition logs transitions
func (o *LoggingObserver) OnTransition(info moore.StepInfo) {
	o.log(LogDebug, "transition",
		"run_id", info.RunID,
		"step", info.Step,
		"from", info.From.String(),
		"to", info.To.String(),
		"reading", info.Reading.String())
}

// OnError logs errors
func (o *LoggingObserver) OnError(err error) {
	o.log(LogError, "controller error", "error", err, "code", moore.GetErrorCode(err).String())
}

// OnEngineStarted logs the entry state
func (o *LoggingObserver) OnEngineStarted(runID string, entry moore.StateID) {
	o.log(LogInfo, "engine started", "run_id", runID, "entry", entry.String())
}

// OnEngineStopped logs why the loop ended
func (o *LoggingObserver) OnEngineStopped(runID string, err error) {
	if err != nil {
		o.log(LogWarning, "engine stopped", "run_id", runID, "error", err)
		return
	}
	o.log(LogInfo, "engine stopped", "run_id", runID)
}
