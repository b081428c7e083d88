package observers

import (
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/anggasct/moore"
)

// MetricsObserver collects counters about the control loop
type MetricsObserver struct {
	moore.BaseObserver
	stateVisits      map[moore.StateID]int
	stateTicks       map[moore.StateID]moore.Ticks
	readingCounts    map[moore.Reading]int
	transitionCounts map[string]int
	steps            uint64
	errorCount       int
	mutex            sync.RWMutex
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		stateVisits:      make(map[moore.StateID]int),
		stateTicks:       make(map[moore.StateID]moore.Ticks),
		readingCounts:    make(map[moore.Reading]int),
		transitionCounts: make(map[string]int),
	}
}

// OnStateEnter records state visits
func (o *MetricsObserver) OnStateEnter(state moore.State, lights moore.Lights) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.stateVisits[state.ID]++
}

// OnTransition records dwell time, readings and transitions
func (o *MetricsObserver) OnTransition(info moore.StepInfo) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.steps++
	o.stateTicks[info.From] += info.Dwell
	o.readingCounts[info.Reading]++
	o.transitionCounts[info.From.Code()+"->"+info.To.Code()]++
}

// OnError records error metrics
func (o *MetricsObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.errorCount++
}

// GetStateVisitCounts returns the number of times each state was entered
func (o *MetricsObserver) GetStateVisitCounts() map[moore.StateID]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return maps.Clone(o.stateVisits)
}

// GetStateTicks returns the ticks spent dwelling in each state
func (o *MetricsObserver) GetStateTicks() map[moore.StateID]moore.Ticks {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return maps.Clone(o.stateTicks)
}

// GetReadingCounts returns how often each masked reading was sampled
func (o *MetricsObserver) GetReadingCounts() map[moore.Reading]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return maps.Clone(o.readingCounts)
}

// GetTransitionCounts returns the number of times each transition occurred,
// keyed "FROM->TO" by short state code
func (o *MetricsObserver) GetTransitionCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return maps.Clone(o.transitionCounts)
}

// GetStepCount returns the number of completed iterations
func (o *MetricsObserver) GetStepCount() uint64 {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return o.steps
}

// GetErrorCount returns the number of errors
func (o *MetricsObserver) GetErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return o.errorCount
}

// StateSummary is one row of Summary
type StateSummary struct {
	State  moore.StateID
	Visits int
	Ticks  moore.Ticks
}

// Summary returns per-state counters in table order, visited states only
func (o *MetricsObserver) Summary() []StateSummary {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	ids := maps.Keys(o.stateVisits)
	slices.Sort(ids)

	rows := make([]StateSummary, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, StateSummary{State: id, Visits: o.stateVisits[id], Ticks: o.stateTicks[id]})
	}
	return rows
}

// Reset resets all metrics
func (o *MetricsObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.stateVisits = make(map[moore.StateID]int)
	o.stateTicks = make(map[moore.StateID]moore.Ticks)
	o.readingCounts = make(map[moore.Reading]int)
	o.transitionCounts = make(map[string]int)
	o.steps = 0
	o.errorCount = 0
}
