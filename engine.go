package moore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Engine runs the Moore machine: write outputs, dwell, sample, advance.
// An engine is owned by a single goroutine; its methods are not safe for
// concurrent use.
type Engine struct {
	table     *Table
	port      IOPort
	timer     TimerService
	current   StateID
	entry     StateID
	observers *ObserverManager
	logger    *slog.Logger
	runID     uuid.UUID
	steps     uint64
	maxSteps  uint64
}

// Option configures an Engine
type Option func(*Engine)

// WithInitialState overrides the entry state
func WithInitialState(id StateID) Option {
	return func(e *Engine) {
		e.entry = id
	}
}

// WithObserver registers an observer
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers.AddObserver(o)
	}
}

// WithLogger sets the structured logger, slog.Default() otherwise
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxSteps makes Run return nil after n iterations. Zero means forever.
func WithMaxSteps(n uint64) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// NewEngine validates the table and collaborators and returns an engine
// positioned at its entry state.
func NewEngine(table *Table, port IOPort, timer TimerService, opts ...Option) (*Engine, error) {
	if table == nil {
		return nil, NewConfigurationError("Engine", "no transition table")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if port == nil {
		return nil, NewConfigurationError("Engine", "no IO port")
	}
	if timer == nil {
		return nil, NewConfigurationError("Engine", "no timer service")
	}

	e := &Engine{
		table:     table,
		port:      port,
		timer:     timer,
		entry:     DefaultEntryState,
		observers: NewObserverManager(),
		logger:    slog.Default(),
		runID:     uuid.New(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if !e.entry.Valid() {
		return nil, NewConfigurationError("Engine", fmt.Sprintf("entry state %d is not defined", uint8(e.entry)))
	}
	e.current = e.entry
	e.logger = e.logger.With("run_id", e.runID.String())
	return e, nil
}

// CurrentState returns the state the next Step will emit
func (e *Engine) CurrentState() StateID {
	return e.current
}

// RunID identifies this engine instance in logs and metrics
func (e *Engine) RunID() string {
	return e.runID.String()
}

// Steps returns the number of completed iterations
func (e *Engine) Steps() uint64 {
	return e.steps
}

// Table returns the transition table
func (e *Engine) Table() *Table {
	return e.table
}

// AddObserver registers an observer
func (e *Engine) AddObserver(o Observer) {
	e.observers.AddObserver(o)
}

// RemoveObserver unregisters an observer
func (e *Engine) RemoveObserver(o Observer) {
	e.observers.RemoveObserver(o)
}

// Step runs one iteration and returns the new current state.
// On error the current state is left unchanged.
func (e *Engine) Step() (StateID, error) {
	state, err := e.table.Lookup(e.current)
	if err != nil {
		return e.current, err
	}

	vehicle, ped := Encode(state.Output)
	if err := e.port.WriteOutputs(vehicle, ped); err != nil {
		return e.current, NewCollaboratorError(ErrCodeOutputFailed, "WriteOutputs", state.ID, err)
	}
	if e.logger.Enabled(context.Background(), slog.LevelDebug) {
		e.logger.Debug("state entered",
			"state", state.ID.String(),
			"vehicle", fmt.Sprintf("%06b", vehicle),
			"ped", fmt.Sprintf("%04b", ped),
			"dwell", uint32(state.Dwell))
	}
	e.observers.NotifyStateEnter(state)

	if err := e.timer.WaitTicks(state.Dwell); err != nil {
		return e.current, NewCollaboratorError(ErrCodeTimerFailed, "WaitTicks", state.ID, err)
	}

	raw, err := e.port.ReadInputs()
	if err != nil {
		return e.current, NewCollaboratorError(ErrCodeInputFailed, "ReadInputs", state.ID, err)
	}
	reading := MaskReading(raw)

	next := state.NextFor(reading)
	e.current = next
	e.steps++

	e.observers.NotifyTransition(StepInfo{
		RunID:   e.runID.String(),
		Step:    e.steps,
		From:    state.ID,
		To:      next,
		Reading: reading,
		Raw:     raw,
		Dwell:   state.Dwell,
	})
	return next, nil
}

// Run drives the control loop. With a background context and no step
// bound it returns only when a collaborator fails; the loop then halts
// without retrying. Cancellation is honoured between iterations, never
// during a dwell.
func (e *Engine) Run(ctx context.Context) (err error) {
	runID := e.runID.String()
	e.logger.Info("controller started", "entry", e.current.String())
	e.observers.NotifyEngineStarted(runID, e.current)
	defer func() {
		if err != nil {
			e.logger.Error("controller halted", "state", e.current.String(), "error", err)
			e.observers.NotifyError(err)
		} else {
			e.logger.Info("controller stopped", "state", e.current.String(), "steps", e.steps)
		}
		e.observers.NotifyEngineStopped(runID, err)
	}()

	for {
		if e.maxSteps > 0 && e.steps >= e.maxSteps {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := e.Step(); err != nil {
			return err
		}
	}
}
