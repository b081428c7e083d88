//go:build rp2040 || rp2350

package main

import (
	"context"
	"machine"
	"time"

	"github.com/anggasct/moore"
	"github.com/anggasct/moore/targets/rp2040/fault"
)

// Board wiring. Vehicle bit i drives vehiclePins[i].
var (
	vehiclePins = [6]machine.Pin{machine.GP2, machine.GP3, machine.GP4, machine.GP5, machine.GP6, machine.GP7}
	dontWalkPin = machine.GP8
	walkPin     = machine.GP9
	sensorPins  = [3]machine.Pin{machine.GP10, machine.GP11, machine.GP12}
)

// pinPort implements moore.IOPort on the MCU pins
type pinPort struct{}

func (pinPort) ReadInputs() (uint8, error) {
	var raw uint8
	for i, pin := range sensorPins {
		if pin.Get() {
			raw |= 1 << i
		}
	}
	return raw, nil
}

func (pinPort) WriteOutputs(vehicle, ped uint8) error {
	for i, pin := range vehiclePins {
		pin.Set(vehicle&(1<<i) != 0)
	}
	dontWalkPin.Set(ped&moore.PedDontWalk != 0)
	walkPin.Set(ped&moore.PedWalk != 0)
	return nil
}

func configure() {
	for _, pin := range vehiclePins {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
	}
	for _, pin := range []machine.Pin{dontWalkPin, walkPin} {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
	}
	for _, pin := range sensorPins {
		pin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	}
}

// halt blinks the onboard LED forever
func halt(period time.Duration) {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(period)
		led.Low()
		time.Sleep(period)
	}
}

func main() {
	configure()

	engine, err := moore.NewEngine(moore.DefaultTable(), pinPort{}, moore.NewSleepTimer(moore.DefaultTick))
	if err != nil {
		halt(fault.Period(err))
	}

	// Pin IO cannot fail, so Run only returns on a table or timer fault
	err = engine.Run(context.Background())
	halt(fault.Period(err))
}
