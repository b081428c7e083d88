// Package gpio drives the lights from Linux GPIO character device lines.
package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/gpiod"
)

// Line is the subset of *gpiod.Line the port uses
type Line interface {
	SetValue(value int) error
	Value() (int, error)
	Close() error
}

// Config maps controller bits to line offsets on one chip
type Config struct {
	Chip string

	// VehicleLines[i] drives vehicle bit i (bit 0 north green .. bit 5 east red)
	VehicleLines [6]int

	WalkLine     int
	DontWalkLine int

	// SensorLines[i] feeds reading bit i (east, north, pedestrian)
	SensorLines [3]int
}

// DefaultConfig returns offsets for a Raspberry Pi 40-pin header
func DefaultConfig() Config {
	return Config{
		Chip:         "gpiochip0",
		VehicleLines: [6]int{17, 27, 22, 5, 6, 13},
		WalkLine:     19,
		DontWalkLine: 26,
		SensorLines:  [3]int{23, 24, 25},
	}
}

// Port implements moore.IOPort over individual GPIO lines
type Port struct {
	vehicle  [6]Line
	walk     Line
	dontWalk Line
	sensors  [3]Line
}

// Open requests every line in cfg. Outputs start low, inputs are pulled down.
func Open(cfg Config) (*Port, error) {
	p := &Port{}
	var opened []Line
	request := func(offset int, opts ...gpiod.LineReqOption) (Line, error) {
		opts = append(opts, gpiod.WithConsumer("trafficlight"))
		l, err := gpiod.RequestLine(cfg.Chip, offset, opts...)
		if err != nil {
			return nil, fmt.Errorf("request %s line %d: %w", cfg.Chip, offset, err)
		}
		opened = append(opened, l)
		return l, nil
	}
	fail := func(err error) (*Port, error) {
		for _, l := range opened {
			l.Close()
		}
		return nil, err
	}

	var err error
	for i, offset := range cfg.VehicleLines {
		if p.vehicle[i], err = request(offset, gpiod.AsOutput(0)); err != nil {
			return fail(err)
		}
	}
	if p.walk, err = request(cfg.WalkLine, gpiod.AsOutput(0)); err != nil {
		return fail(err)
	}
	if p.dontWalk, err = request(cfg.DontWalkLine, gpiod.AsOutput(0)); err != nil {
		return fail(err)
	}
	for i, offset := range cfg.SensorLines {
		if p.sensors[i], err = request(offset, gpiod.AsInput, gpiod.WithPullDown); err != nil {
			return fail(err)
		}
	}
	return p, nil
}

// NewPort builds a port from already requested lines
func NewPort(vehicle [6]Line, walk, dontWalk Line, sensors [3]Line) *Port {
	return &Port{vehicle: vehicle, walk: walk, dontWalk: dontWalk, sensors: sensors}
}

// WriteOutputs implements moore.IOPort. Ped bit 1 is don't-walk, bit 3 is walk.
// Unwired (nil) lines are skipped.
func (p *Port) WriteOutputs(vehicle, ped uint8) error {
	for i, l := range p.vehicle {
		if err := set(l, int(vehicle>>i)&1); err != nil {
			return fmt.Errorf("set vehicle bit %d: %w", i, err)
		}
	}
	if err := set(p.dontWalk, int(ped>>1)&1); err != nil {
		return fmt.Errorf("set don't-walk: %w", err)
	}
	if err := set(p.walk, int(ped>>3)&1); err != nil {
		return fmt.Errorf("set walk: %w", err)
	}
	return nil
}

func set(l Line, v int) error {
	if l == nil {
		return nil
	}
	return l.SetValue(v)
}

// ReadInputs implements moore.IOPort. Unwired sensors read as 0.
func (p *Port) ReadInputs() (uint8, error) {
	var raw uint8
	for i, l := range p.sensors {
		if l == nil {
			continue
		}
		v, err := l.Value()
		if err != nil {
			return 0, fmt.Errorf("read sensor bit %d: %w", i, err)
		}
		if v != 0 {
			raw |= 1 << i
		}
	}
	return raw, nil
}

// Close drives every output low and releases all lines
func (p *Port) Close() error {
	var errs []error
	if err := p.WriteOutputs(0, 0); err != nil {
		errs = append(errs, err)
	}
	for _, l := range p.lines() {
		if l == nil {
			continue
		}
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Port) lines() []Line {
	out := make([]Line, 0, 10)
	out = append(out, p.vehicle[:]...)
	out = append(out, p.walk, p.dontWalk)
	return append(out, p.sensors[:]...)
}
