package moore

import "fmt"

// StepInfo describes one completed iteration of the control loop
type StepInfo struct {
	RunID   string
	Step    uint64
	From    StateID
	To      StateID
	Reading Reading
	Raw     uint8
	Dwell   Ticks
}

// Observer represents an entity that observes the control loop
type Observer interface {
	// OnStateEnter is called after the state's output has been written
	OnStateEnter(state State, lights Lights)

	// OnTransition is called once the next state has been selected
	OnTransition(info StepInfo)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnError is called when the loop halts on a failure
	OnError(err error)

	// OnEngineStarted is called before the first iteration of Run
	OnEngineStarted(runID string, entry StateID)

	// OnEngineStopped is called when Run returns
	OnEngineStopped(runID string, err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnStateEnter implements the required Observer method
func (o *BaseObserver) OnStateEnter(state State, lights Lights) {}

// OnTransition implements the required Observer method
func (o *BaseObserver) OnTransition(info StepInfo) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(err error) {}

// OnEngineStarted implements the optional ExtendedObserver method
func (o *BaseObserver) OnEngineStarted(runID string, entry StateID) {}

// OnEngineStopped implements the optional ExtendedObserver method
func (o *BaseObserver) OnEngineStopped(runID string, err error) {}

// ObserverManager manages a collection of observers.
// A panicking observer never stops the lights.
type ObserverManager struct {
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	return len(om.observers)
}

func (om *ObserverManager) guard(observer Observer, hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if extObs, ok := observer.(ExtendedObserver); ok {
				func() {
					defer func() { recover() }()
					extObs.OnError(fmt.Errorf("observer panic in %s: %v", hook, r))
				}()
			}
		}
	}()
	fn()
}

// NotifyStateEnter notifies all observers of state entry
func (om *ObserverManager) NotifyStateEnter(state State) {
	lights := state.Lights()
	for _, observer := range om.observers {
		observer := observer
		om.guard(observer, "OnStateEnter", func() { observer.OnStateEnter(state, lights) })
	}
}

// NotifyTransition notifies all observers of a transition
func (om *ObserverManager) NotifyTransition(info StepInfo) {
	for _, observer := range om.observers {
		observer := observer
		om.guard(observer, "OnTransition", func() { observer.OnTransition(info) })
	}
}

// NotifyError notifies all observers of errors
func (om *ObserverManager) NotifyError(err error) {
	for _, observer := range om.observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			om.guard(observer, "OnError", func() { extObs.OnError(err) })
		}
	}
}

// NotifyEngineStarted notifies all observers that Run has begun
func (om *ObserverManager) NotifyEngineStarted(runID string, entry StateID) {
	for _, observer := range om.observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			om.guard(observer, "OnEngineStarted", func() { extObs.OnEngineStarted(runID, entry) })
		}
	}
}

// NotifyEngineStopped notifies all observers that Run has returned
func (om *ObserverManager) NotifyEngineStopped(runID string, err error) {
	for _, observer := range om.observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			om.guard(observer, "OnEngineStopped", func() { extObs.OnEngineStopped(runID, err) })
		}
	}
}
