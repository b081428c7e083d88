package moore

import (
	"errors"
	"fmt"
)

// TableBuilder provides a fluent way to write transition tables
type TableBuilder interface {
	State(id StateID) StateBuilder
	Build() (*Table, error)
}

// StateBuilder configures one row of the table
type StateBuilder interface {
	Output(code OutputCode) StateBuilder
	Show(lights Lights) StateBuilder
	Dwell(n Ticks) StateBuilder

	To(target StateID) TransitionBuilder
	ToSelf() TransitionBuilder
	// Otherwise sends every reading not yet routed to target
	Otherwise(target StateID) StateBuilder

	State(id StateID) StateBuilder
	Build() (*Table, error)
}

// TransitionBuilder selects the readings that lead to one target
type TransitionBuilder interface {
	// On routes exact readings
	On(readings ...Reading) TransitionBuilder
	// When routes every reading with all of the given sensor bits set
	When(sensors Reading) TransitionBuilder
	// Unless routes every reading with none of the given sensor bits set
	Unless(sensors Reading) TransitionBuilder

	To(target StateID) TransitionBuilder
	ToSelf() TransitionBuilder
	Otherwise(target StateID) StateBuilder

	State(id StateID) StateBuilder
	Build() (*Table, error)
}

type stateDraft struct {
	row      State
	routed   [NumReadings]bool
	hasDwell bool
}

type tableBuilderImpl struct {
	drafts [NumStates]*stateDraft
	order  []StateID
	errs   []error
}

// NewTableBuilder creates an empty table builder
func NewTableBuilder() TableBuilder {
	return &tableBuilderImpl{}
}

func (tb *tableBuilderImpl) fail(format string, args ...any) {
	tb.errs = append(tb.errs, NewConfigurationError("TableBuilder", fmt.Sprintf(format, args...)))
}

// State starts or resumes the row for id
func (tb *tableBuilderImpl) State(id StateID) StateBuilder {
	if !id.Valid() {
		tb.fail("state %s is not defined", id)
		return &stateBuilderImpl{table: tb, draft: &stateDraft{row: State{ID: id}}}
	}
	if tb.drafts[id] == nil {
		tb.drafts[id] = &stateDraft{row: State{ID: id}}
		tb.order = append(tb.order, id)
	}
	return &stateBuilderImpl{table: tb, draft: tb.drafts[id]}
}

// Build checks that every reading of every state is routed, then
// validates the result like NewTable
func (tb *tableBuilderImpl) Build() (*Table, error) {
	errs := append([]error(nil), tb.errs...)
	rows := make([]State, 0, len(tb.order))
	for _, id := range tb.order {
		d := tb.drafts[id]
		var missing []Reading
		for r, ok := range d.routed {
			if !ok {
				missing = append(missing, Reading(r))
			}
		}
		if len(missing) > 0 {
			errs = append(errs, NewConfigurationError("TableBuilder",
				fmt.Sprintf("state %s has no target for readings %v", id, missing)))
		}
		if !d.hasDwell {
			errs = append(errs, NewConfigurationError("TableBuilder", fmt.Sprintf("state %s has no dwell", id)))
		}
		rows = append(rows, d.row)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return NewTable(rows)
}

type stateBuilderImpl struct {
	table *tableBuilderImpl
	draft *stateDraft
}

func (sb *stateBuilderImpl) Output(code OutputCode) StateBuilder {
	sb.draft.row.Output = code
	return sb
}

func (sb *stateBuilderImpl) Show(lights Lights) StateBuilder {
	return sb.Output(lights.Code())
}

func (sb *stateBuilderImpl) Dwell(n Ticks) StateBuilder {
	sb.draft.row.Dwell = n
	sb.draft.hasDwell = true
	return sb
}

func (sb *stateBuilderImpl) To(target StateID) TransitionBuilder {
	if !target.Valid() {
		sb.table.fail("state %s targets undefined state %s", sb.draft.row.ID, target)
	}
	return &transitionBuilderImpl{state: sb, target: target}
}

func (sb *stateBuilderImpl) ToSelf() TransitionBuilder {
	return sb.To(sb.draft.row.ID)
}

func (sb *stateBuilderImpl) Otherwise(target StateID) StateBuilder {
	if !target.Valid() {
		sb.table.fail("state %s targets undefined state %s", sb.draft.row.ID, target)
	}
	for r, ok := range sb.draft.routed {
		if !ok {
			sb.route(Reading(r), target)
		}
	}
	return sb
}

func (sb *stateBuilderImpl) State(id StateID) StateBuilder {
	return sb.table.State(id)
}

func (sb *stateBuilderImpl) Build() (*Table, error) {
	return sb.table.Build()
}

// route assigns one reading. Routing the same reading twice is only
// allowed when both routes agree.
func (sb *stateBuilderImpl) route(r Reading, target StateID) {
	d := sb.draft
	if d.routed[r] && d.row.Next[r] != target {
		sb.table.fail("state %s routes reading %s to both %s and %s", d.row.ID, r, d.row.Next[r], target)
		return
	}
	d.routed[r] = true
	d.row.Next[r] = target
}

type transitionBuilderImpl struct {
	state  *stateBuilderImpl
	target StateID
}

func (tr *transitionBuilderImpl) On(readings ...Reading) TransitionBuilder {
	for _, r := range readings {
		if r > ReadingMask {
			tr.state.table.fail("state %s routes impossible reading %d", tr.state.draft.row.ID, uint8(r))
			continue
		}
		tr.state.route(r, tr.target)
	}
	return tr
}

func (tr *transitionBuilderImpl) When(sensors Reading) TransitionBuilder {
	for r := Reading(0); r < NumReadings; r++ {
		if r&sensors == sensors {
			tr.state.route(r, tr.target)
		}
	}
	return tr
}

func (tr *transitionBuilderImpl) Unless(sensors Reading) TransitionBuilder {
	for r := Reading(0); r < NumReadings; r++ {
		if r&sensors == 0 {
			tr.state.route(r, tr.target)
		}
	}
	return tr
}

func (tr *transitionBuilderImpl) To(target StateID) TransitionBuilder {
	return tr.state.To(target)
}

func (tr *transitionBuilderImpl) ToSelf() TransitionBuilder {
	return tr.state.ToSelf()
}

func (tr *transitionBuilderImpl) Otherwise(target StateID) StateBuilder {
	return tr.state.Otherwise(target)
}

func (tr *transitionBuilderImpl) State(id StateID) StateBuilder {
	return tr.state.State(id)
}

func (tr *transitionBuilderImpl) Build() (*Table, error) {
	return tr.state.Build()
}
