package moore

import "fmt"

// Table is the immutable transition relation of the controller.
// Rows are indexed by StateID, so every valid id has exactly one row.
type Table struct {
	rows [NumStates]State
}

// NewTable validates rows and builds a table. Rows may come in any order
// but must cover each state id exactly once.
func NewTable(rows []State) (*Table, error) {
	if len(rows) != NumStates {
		return nil, NewConfigurationError("Table", fmt.Sprintf("expected %d states, got %d", NumStates, len(rows)))
	}

	t := &Table{}
	var seen [NumStates]bool
	for _, row := range rows {
		if !row.ID.Valid() {
			return nil, NewConfigurationError("Table", fmt.Sprintf("row has undefined state id %d", uint8(row.ID)))
		}
		if seen[row.ID] {
			return nil, NewConfigurationError("Table", fmt.Sprintf("state '%s' defined twice", row.ID))
		}
		seen[row.ID] = true
		t.rows[row.ID] = row
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustNewTable is NewTable that panics on a malformed table
func MustNewTable(rows []State) *Table {
	t, err := NewTable(rows)
	if err != nil {
		panic(err)
	}
	return t
}

// Validate checks that every transition targets a defined state and every
// state holds for a non-zero time.
func (t *Table) Validate() error {
	if t == nil {
		return NewConfigurationError("Table", "table is nil")
	}
	for i, row := range t.rows {
		id := StateID(i)
		if row.ID != id {
			return NewConfigurationError("Table", fmt.Sprintf("row %d is labelled '%s'", i, row.ID))
		}
		if row.Dwell == 0 {
			return NewConfigurationError("Table", fmt.Sprintf("state '%s' has zero dwell", id))
		}
		for reading, next := range row.Next {
			if !next.Valid() {
				return NewConfigurationError("Table",
					fmt.Sprintf("state '%s' reading %03b targets undefined state %d", id, reading, uint8(next)))
			}
		}
	}
	return nil
}

// Lookup returns the row for id
func (t *Table) Lookup(id StateID) (State, error) {
	if !id.Valid() {
		return State{}, NewInvalidStateError(id.String(), "state id out of range")
	}
	return t.rows[id], nil
}

// Next returns the successor of id for a raw sensor reading.
// Bits above the sensor bits are discarded.
func (t *Table) Next(id StateID, raw uint8) (StateID, error) {
	row, err := t.Lookup(id)
	if err != nil {
		return 0, err
	}
	return row.NextFor(MaskReading(raw)), nil
}

// States returns a copy of all rows in id order
func (t *Table) States() []State {
	rows := make([]State, NumStates)
	copy(rows, t.rows[:])
	return rows
}

// DefaultTable returns the reference intersection table
func DefaultTable() *Table {
	return defaultTable
}

// Short codes, handy for writing tables
const (
	EO  = EastOpen
	EW  = EastYellow
	NO  = NorthOpen
	NW  = NorthYellow
	WO  = PedOpen
	WH1 = PedFlash1Red
	WC1 = PedFlash1Off
	WH2 = PedFlash2Red
	WC2 = PedFlash2Off
	WH3 = PedFlash3Red
)

// DefaultEntryState is where the controller starts after reset
const DefaultEntryState = NorthOpen

var defaultTable = MustNewTable([]State{
	{EO, 0x31, LongWait, [8]StateID{EO, EO, EW, EW, EW, EW, EW, EW}},
	{EW, 0x51, ShortWait, [8]StateID{NO, NO, NO, NO, WO, WO, WO, NO}},
	{NO, 0x85, LongWait, [8]StateID{NO, NW, NO, NW, NW, NW, NW, NW}},
	{NW, 0x89, ShortWait, [8]StateID{EO, EO, EO, EO, WO, WO, WO, WO}},
	{WO, 0x92, LongWait, [8]StateID{WO, WH1, WH1, WH1, WO, WH1, WH1, WH1}},
	{WH1, 0x91, ShortWait, [8]StateID{WC1, WC1, WC1, WC1, WC1, WC1, WC1, WC1}},
	{WC1, 0x90, ShortWait, [8]StateID{WH2, WH2, WH2, WH2, WH2, WH2, WH2, WH2}},
	{WH2, 0x91, ShortWait, [8]StateID{WC2, WC2, WC2, WC2, WC2, WC2, WC2, WC2}},
	{WC2, 0x90, ShortWait, [8]StateID{WH3, WH3, WH3, WH3, WH3, WH3, WH3, WH3}},
	{WH3, 0x91, ShortWait, [8]StateID{EO, EO, NO, EO, EO, EO, NO, EO}},
})
