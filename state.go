package moore

import (
	"fmt"
	"strings"
)

// StateID identifies one of the controller's states
type StateID uint8

const (
	// EastOpen gives green to east/west traffic
	EastOpen StateID = iota
	// EastYellow clears east/west traffic
	EastYellow
	// NorthOpen gives green to north/south traffic
	NorthOpen
	// NorthYellow clears north/south traffic
	NorthYellow
	// PedOpen stops all traffic and shows walk
	PedOpen
	// PedFlash1Red is the first don't-walk flash
	PedFlash1Red
	// PedFlash1Off blanks the pedestrian light between flashes
	PedFlash1Off
	// PedFlash2Red is the second don't-walk flash
	PedFlash2Red
	// PedFlash2Off blanks the pedestrian light between flashes
	PedFlash2Off
	// PedFlash3Red is the last don't-walk flash before traffic resumes
	PedFlash3Red

	// NumStates is the size of the closed state set
	NumStates = 10
)

var stateNames = [NumStates]string{
	"EastOpen",
	"EastYellow",
	"NorthOpen",
	"NorthYellow",
	"PedOpen",
	"PedFlash1Red",
	"PedFlash1Off",
	"PedFlash2Red",
	"PedFlash2Off",
	"PedFlash3Red",
}

var stateCodes = [NumStates]string{"EO", "EW", "NO", "NW", "WO", "WH1", "WC1", "WH2", "WC2", "WH3"}

// Valid reports whether id belongs to the closed state set
func (id StateID) Valid() bool {
	return id < NumStates
}

// String returns the state name
func (id StateID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("StateID(%d)", uint8(id))
	}
	return stateNames[id]
}

// Code returns the short mnemonic used in tables and diagrams
func (id StateID) Code() string {
	if !id.Valid() {
		return fmt.Sprintf("?%d", uint8(id))
	}
	return stateCodes[id]
}

// ParseStateID accepts a state name or its short code, ignoring case
func ParseStateID(s string) (StateID, error) {
	s = strings.TrimSpace(s)
	for i := 0; i < NumStates; i++ {
		if strings.EqualFold(s, stateNames[i]) || strings.EqualFold(s, stateCodes[i]) {
			return StateID(i), nil
		}
	}
	return 0, NewInvalidStateError(s, "unknown state name")
}

// AllStates returns every state id in table order
func AllStates() []StateID {
	ids := make([]StateID, NumStates)
	for i := range ids {
		ids[i] = StateID(i)
	}
	return ids
}

// MarshalText implements encoding.TextMarshaler
func (id StateID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, NewInvalidStateError(id.String(), "state id out of range")
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *StateID) UnmarshalText(text []byte) error {
	parsed, err := ParseStateID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Reading is a sensor sample: bit0 east car, bit1 north car, bit2 pedestrian
type Reading uint8

const (
	SensorEast       Reading = 0x01
	SensorNorth      Reading = 0x02
	SensorPedestrian Reading = 0x04

	// ReadingMask keeps the three sensor bits
	ReadingMask Reading = 0x07
	// NumReadings is the number of distinct masked readings
	NumReadings = 8
)

// MaskReading discards every bit above the three sensor bits
func MaskReading(raw uint8) Reading {
	return Reading(raw) & ReadingMask
}

// Has reports whether all bits of s are set
func (r Reading) Has(s Reading) bool {
	return r&s == s
}

func (r Reading) String() string {
	var parts []string
	if r.Has(SensorPedestrian) {
		parts = append(parts, "ped")
	}
	if r.Has(SensorNorth) {
		parts = append(parts, "north")
	}
	if r.Has(SensorEast) {
		parts = append(parts, "east")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%03b(none)", uint8(r&ReadingMask))
	}
	return fmt.Sprintf("%03b(%s)", uint8(r&ReadingMask), strings.Join(parts, "+"))
}

// State is one row of the transition table. Output depends only on the state.
type State struct {
	ID     StateID
	Output OutputCode
	Dwell  Ticks
	Next   [NumReadings]StateID
}

// NextFor returns the successor for a masked reading
func (s State) NextFor(r Reading) StateID {
	return s.Next[r&ReadingMask]
}

// Lights decodes the state's output code
func (s State) Lights() Lights {
	return Decode(s.Output)
}
