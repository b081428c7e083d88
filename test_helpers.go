package moore

import (
	"errors"
	"sync"
	"testing"
)

// Call is one recorded collaborator interaction
type Call struct {
	Op      string // "write", "wait" or "read"
	Vehicle uint8
	Ped     uint8
	Ticks   Ticks
	Raw     uint8
}

// CallLog records collaborator calls in the order they happen
type CallLog struct {
	mutex sync.Mutex
	calls []Call
}

func (l *CallLog) record(c Call) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.calls = append(l.calls, c)
}

// Calls returns a copy of the recorded calls
func (l *CallLog) Calls() []Call {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	out := make([]Call, len(l.calls))
	copy(out, l.calls)
	return out
}

// Ops returns the op names in call order
func (l *CallLog) Ops() []string {
	calls := l.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

// ScriptedPort replays a fixed sequence of raw sensor readings.
// Once the script runs out the last reading repeats.
type ScriptedPort struct {
	Log      *CallLog
	readings []uint8
	next     int
	writes   []Call
}

// NewScriptedPort creates a port that returns readings in order
func NewScriptedPort(log *CallLog, readings ...uint8) *ScriptedPort {
	if log == nil {
		log = &CallLog{}
	}
	return &ScriptedPort{Log: log, readings: readings}
}

// ReadInputs implements IOPort
func (p *ScriptedPort) ReadInputs() (uint8, error) {
	var raw uint8
	if len(p.readings) > 0 {
		i := p.next
		if i >= len(p.readings) {
			i = len(p.readings) - 1
		} else {
			p.next++
		}
		raw = p.readings[i]
	}
	p.Log.record(Call{Op: "read", Raw: raw})
	return raw, nil
}

// WriteOutputs implements IOPort
func (p *ScriptedPort) WriteOutputs(vehicle, ped uint8) error {
	c := Call{Op: "write", Vehicle: vehicle, Ped: ped}
	p.writes = append(p.writes, c)
	p.Log.record(c)
	return nil
}

// Writes returns the output writes seen so far
func (p *ScriptedPort) Writes() []Call {
	return p.writes
}

// ManualTimer records waits without blocking
type ManualTimer struct {
	Log   *CallLog
	waits []Ticks
	Total Ticks
}

// NewManualTimer creates a non-blocking timer sharing a call log
func NewManualTimer(log *CallLog) *ManualTimer {
	if log == nil {
		log = &CallLog{}
	}
	return &ManualTimer{Log: log}
}

// WaitTicks implements TimerService
func (t *ManualTimer) WaitTicks(n Ticks) error {
	t.waits = append(t.waits, n)
	t.Total += n
	t.Log.record(Call{Op: "wait", Ticks: n})
	return nil
}

// Waits returns the recorded waits
func (t *ManualTimer) Waits() []Ticks {
	return t.waits
}

// ErrInjected is returned by FailingPort and FailingTimer
var ErrInjected = errors.New("injected failure")

// FailingTimer fails every wait
var FailingTimer = TimerFunc(func(Ticks) error { return ErrInjected })

// FailingPort fails reads or writes after a number of successful calls
type FailingPort struct {
	ScriptedPort
	FailReadAfter  int // -1 never fails
	FailWriteAfter int // -1 never fails
	reads          int
	writes         int
}

// NewFailingPort creates a port that fails on the given call counts
func NewFailingPort(failReadAfter, failWriteAfter int) *FailingPort {
	return &FailingPort{
		ScriptedPort:   *NewScriptedPort(nil),
		FailReadAfter:  failReadAfter,
		FailWriteAfter: failWriteAfter,
	}
}

// ReadInputs implements IOPort
func (p *FailingPort) ReadInputs() (uint8, error) {
	if p.FailReadAfter >= 0 && p.reads >= p.FailReadAfter {
		return 0, ErrInjected
	}
	p.reads++
	return p.ScriptedPort.ReadInputs()
}

// WriteOutputs implements IOPort
func (p *FailingPort) WriteOutputs(vehicle, ped uint8) error {
	if p.FailWriteAfter >= 0 && p.writes >= p.FailWriteAfter {
		return ErrInjected
	}
	p.writes++
	return p.ScriptedPort.WriteOutputs(vehicle, ped)
}

// Test assertions and utilities

// NewTestEngine builds an engine on the default table with scripted collaborators
func NewTestEngine(t *testing.T, entry StateID, readings ...uint8) (*Engine, *ScriptedPort, *ManualTimer) {
	t.Helper()
	log := &CallLog{}
	port := NewScriptedPort(log, readings...)
	timer := NewManualTimer(log)
	engine, err := NewEngine(DefaultTable(), port, timer, WithInitialState(entry))
	if err != nil {
		t.Fatalf("Expected no error creating engine, got: %v", err)
	}
	return engine, port, timer
}

// AssertState checks if the engine is in the expected state
func AssertState(t *testing.T, engine *Engine, expected StateID) {
	t.Helper()
	if engine.CurrentState() != expected {
		t.Errorf("Expected state %s, got %s", expected, engine.CurrentState())
	}
}

// StepN runs n iterations and returns the visited states
func StepN(t *testing.T, engine *Engine, n int) []StateID {
	t.Helper()
	visited := make([]StateID, 0, n)
	for i := 0; i < n; i++ {
		next, err := engine.Step()
		if err != nil {
			t.Fatalf("Step %d failed: %v", i, err)
		}
		visited = append(visited, next)
	}
	return visited
}

// TestObserver captures every observer callback
type TestObserver struct {
	mutex       sync.RWMutex
	Enters      []StateID
	Lights      []Lights
	Transitions []StepInfo
	Errors      []error
	Started     []StateID
	Stopped     []error
}

// NewTestObserver creates a new test observer
func NewTestObserver() *TestObserver {
	return &TestObserver{}
}

func (o *TestObserver) OnStateEnter(state State, lights Lights) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Enters = append(o.Enters, state.ID)
	o.Lights = append(o.Lights, lights)
}

func (o *TestObserver) OnTransition(info StepInfo) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Transitions = append(o.Transitions, info)
}

func (o *TestObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

func (o *TestObserver) OnEngineStarted(runID string, entry StateID) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Started = append(o.Started, entry)
}

func (o *TestObserver) OnEngineStopped(runID string, err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Stopped = append(o.Stopped, err)
}

// TransitionCount returns the number of recorded transitions
func (o *TestObserver) TransitionCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Transitions)
}
