package moore

import "fmt"

// OutputCode is the abstract light pattern of a state.
// Bits 7..2 drive the vehicle lights, bits 1..0 the pedestrian light
// (bit1 walk, bit0 don't walk).
type OutputCode uint8

// Physical vehicle channel, one bit per lamp
const (
	LampNorthGreen uint8 = 1 << iota
	LampNorthYellow
	LampNorthRed
	LampEastGreen
	LampEastYellow
	LampEastRed

	VehicleMask uint8 = 0x3F
)

// Physical pedestrian channel. The two lamps sit on non-adjacent pins.
const (
	PedDontWalk uint8 = 0x02
	PedWalk     uint8 = 0x08

	PedMask uint8 = PedDontWalk | PedWalk
)

// Encode splits a code into the vehicle and pedestrian channels.
// Logical bit0 moves to physical bit1 and logical bit1 to physical bit3.
func Encode(code OutputCode) (vehicle, ped uint8) {
	vehicle = uint8(code) >> 2
	ped = (uint8(code)&0x01)<<1 | (uint8(code)&0x02)<<2
	return vehicle, ped
}

// Pack is the inverse of Encode. Lamps outside the two channels are dropped.
func Pack(vehicle, ped uint8) OutputCode {
	code := (vehicle & VehicleMask) << 2
	code |= (ped & PedDontWalk) >> 1
	code |= (ped & PedWalk) >> 2
	return OutputCode(code)
}

// EncodeOutput is Encode for a decoded light pattern
func EncodeOutput(l Lights) (vehicle, ped uint8) {
	return Encode(l.Code())
}

// Signal is the lit lamp of one vehicle light triad
type Signal uint8

const (
	Off Signal = iota
	Red
	Yellow
	Green
	// Invalid means more than one lamp of the triad is lit
	Invalid
)

func (s Signal) String() string {
	switch s {
	case Off:
		return "off"
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	default:
		return "invalid"
	}
}

// Lights is the human view of an output code
type Lights struct {
	East     Signal
	North    Signal
	Walk     bool
	DontWalk bool
}

// Decode expands a code into per-direction signals
func Decode(code OutputCode) Lights {
	vehicle, ped := Encode(code)
	return Lights{
		East:     triad(vehicle>>3, LampEastRed>>3, LampEastYellow>>3, LampEastGreen>>3),
		North:    triad(vehicle, LampNorthRed, LampNorthYellow, LampNorthGreen),
		Walk:     ped&PedWalk != 0,
		DontWalk: ped&PedDontWalk != 0,
	}
}

func triad(bits, red, yellow, green uint8) Signal {
	bits &= red | yellow | green
	switch bits {
	case 0:
		return Off
	case red:
		return Red
	case yellow:
		return Yellow
	case green:
		return Green
	default:
		return Invalid
	}
}

// Code packs the lights back into an output code
func (l Lights) Code() OutputCode {
	var code uint8
	code |= lamp(l.East, LampEastRed, LampEastYellow, LampEastGreen) << 2
	code |= lamp(l.North, LampNorthRed, LampNorthYellow, LampNorthGreen) << 2
	if l.Walk {
		code |= 0x02
	}
	if l.DontWalk {
		code |= 0x01
	}
	return OutputCode(code)
}

func lamp(s Signal, red, yellow, green uint8) uint8 {
	switch s {
	case Red:
		return red
	case Yellow:
		return yellow
	case Green:
		return green
	default:
		return 0
	}
}

func (l Lights) String() string {
	ped := "off"
	switch {
	case l.Walk && l.DontWalk:
		ped = "invalid"
	case l.Walk:
		ped = "walk"
	case l.DontWalk:
		ped = "dont-walk"
	}
	return fmt.Sprintf("east=%s north=%s ped=%s", l.East, l.North, ped)
}
