// Package sim provides an in-process intersection for running the
// controller without hardware.
package sim

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/anggasct/moore"
)

// Intersection implements moore.IOPort. Sensor readings come from a
// script, falling back to the live sensor register when the script is
// exhausted. Every output write can be rendered to a writer.
type Intersection struct {
	mutex   sync.Mutex
	script  []uint8
	next    int
	sensors uint8
	vehicle uint8
	ped     uint8
	writes  int
	out     io.Writer
}

// Option configures an Intersection
type Option func(*Intersection)

// WithScript queues sensor readings, one per ReadInputs call
func WithScript(readings ...uint8) Option {
	return func(i *Intersection) {
		i.script = append(i.script, readings...)
	}
}

// WithRenderer prints a status line to w on every output write
func WithRenderer(w io.Writer) Option {
	return func(i *Intersection) {
		i.out = w
	}
}

// NewIntersection creates an intersection with all lamps dark and no cars waiting
func NewIntersection(opts ...Option) *Intersection {
	i := &Intersection{}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// SetSensors replaces the live sensor register
func (i *Intersection) SetSensors(r moore.Reading) {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	i.sensors = uint8(r)
}

// Press sets one or more sensor bits
func (i *Intersection) Press(r moore.Reading) {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	i.sensors |= uint8(r)
}

// Release clears one or more sensor bits
func (i *Intersection) Release(r moore.Reading) {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	i.sensors &^= uint8(r)
}

// ReadInputs implements moore.IOPort
func (i *Intersection) ReadInputs() (uint8, error) {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	if i.next < len(i.script) {
		r := i.script[i.next]
		i.next++
		return r, nil
	}
	return i.sensors, nil
}

// WriteOutputs implements moore.IOPort
func (i *Intersection) WriteOutputs(vehicle, ped uint8) error {
	i.mutex.Lock()
	i.vehicle, i.ped = vehicle, ped
	i.writes++
	w := i.out
	line := i.render()
	i.mutex.Unlock()

	if w != nil {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}
	return nil
}

// Lights returns what the intersection currently shows
func (i *Intersection) Lights() moore.Lights {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	return moore.Decode(moore.Pack(i.vehicle, i.ped))
}

// Writes counts output writes
func (i *Intersection) Writes() int {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	return i.writes
}

// Render returns a one-line picture of the intersection
func (i *Intersection) Render() string {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	return i.render()
}

func (i *Intersection) render() string {
	l := moore.Decode(moore.Pack(i.vehicle, i.ped))
	var b strings.Builder
	fmt.Fprintf(&b, "E %s  N %s  ", triad(l.East), triad(l.North))
	switch {
	case l.Walk && l.DontWalk:
		b.WriteString("[WALK+DONT]")
	case l.Walk:
		b.WriteString("[  WALK   ]")
	case l.DontWalk:
		b.WriteString("[DONT WALK]")
	default:
		b.WriteString("[         ]")
	}
	fmt.Fprintf(&b, "  sensors %s", moore.MaskReading(i.sensors))
	return b.String()
}

// triad draws red, yellow, green left to right
func triad(s moore.Signal) string {
	lamps := []byte("(...)")
	switch s {
	case moore.Red:
		lamps[1] = 'R'
	case moore.Yellow:
		lamps[2] = 'Y'
	case moore.Green:
		lamps[3] = 'G'
	case moore.Invalid:
		lamps = []byte("(!!!)")
	}
	return string(lamps)
}
