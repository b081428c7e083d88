package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/moore"
)

// ValidationObserver checks controller behaviour against a table and
// against basic intersection safety rules
type ValidationObserver struct {
	moore.BaseObserver
	table      *moore.Table
	visited    map[moore.StateID]bool
	violations []string
	mutex      sync.RWMutex
}

// NewValidationObserver creates a new validation observer for table
func NewValidationObserver(table *moore.Table) *ValidationObserver {
	return &ValidationObserver{
		table:   table,
		visited: make(map[moore.StateID]bool),
	}
}

func (o *ValidationObserver) addViolation(format string, args ...any) {
	o.violations = append(o.violations, fmt.Sprintf(format, args...))
}

// OnStateEnter checks that the lights never let conflicting flows through
func (o *ValidationObserver) OnStateEnter(state moore.State, lights moore.Lights) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visited[state.ID] = true

	if lights.East == moore.Invalid || lights.North == moore.Invalid {
		o.addViolation("state '%s' lights more than one lamp of a triad: %s", state.ID, lights)
	}
	if lights.East != moore.Red && lights.North != moore.Red {
		o.addViolation("state '%s' lets both roads move: %s", state.ID, lights)
	}
	if lights.Walk && (lights.East != moore.Red || lights.North != moore.Red) {
		o.addViolation("state '%s' shows walk while traffic moves: %s", state.ID, lights)
	}
	if lights.Walk && lights.DontWalk {
		o.addViolation("state '%s' shows walk and don't walk together", state.ID)
	}
}

// OnTransition checks that the engine followed the table
func (o *ValidationObserver) OnTransition(info moore.StepInfo) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.table == nil {
		return
	}
	want, err := o.table.Next(info.From, uint8(info.Reading))
	if err != nil {
		o.addViolation("transition from undefined state: %v", err)
		return
	}
	if want != info.To {
		o.addViolation("invalid transition from '%s' to '%s' on reading %s, table says '%s'",
			info.From, info.To, info.Reading, want)
	}
}

// OnError records the failure as a violation
func (o *ValidationObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.addViolation("error occurred: %v", err)
}

// GetViolations returns all validation violations
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// GetUnvisitedStates returns states that were never entered, in table order
func (o *ValidationObserver) GetUnvisitedStates() []moore.StateID {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	var unvisited []moore.StateID
	for _, id := range moore.AllStates() {
		if !o.visited[id] {
			unvisited = append(unvisited, id)
		}
	}
	return unvisited
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset resets the validation state
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visited = make(map[moore.StateID]bool)
	o.violations = nil
}
