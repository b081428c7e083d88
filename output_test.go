package moore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode_EastOpen(t *testing.T) {
	vehicle, ped := Encode(0x31)

	assert.Equal(t, uint8(0x0C), vehicle)
	assert.Equal(t, uint8(0x02), ped, "logical bit0 lands on physical bit1")
}

func TestEncode_PedestrianReorder(t *testing.T) {
	testCases := []struct {
		code OutputCode
		ped  uint8
	}{
		{0x00, 0x00},
		{0x01, PedDontWalk},
		{0x02, PedWalk},
		{0x03, PedWalk | PedDontWalk},
	}

	for _, tc := range testCases {
		_, ped := Encode(tc.code)
		if ped != tc.ped {
			t.Errorf("Encode(%#02x) ped = %04b, want %04b", tc.code, ped, tc.ped)
		}
		assert.Zero(t, ped&^PedMask)
	}
}

func TestEncode_VehicleChannelIsSixBits(t *testing.T) {
	for code := 0; code < 256; code++ {
		vehicle, _ := Encode(OutputCode(code))
		assert.Zero(t, vehicle&^VehicleMask)
		assert.Equal(t, uint8(code)>>2, vehicle)
	}
}

func TestDecode_DefaultTable(t *testing.T) {
	expected := map[StateID]Lights{
		EastOpen:     {East: Green, North: Red, DontWalk: true},
		EastYellow:   {East: Yellow, North: Red, DontWalk: true},
		NorthOpen:    {East: Red, North: Green, DontWalk: true},
		NorthYellow:  {East: Red, North: Yellow, DontWalk: true},
		PedOpen:      {East: Red, North: Red, Walk: true},
		PedFlash1Red: {East: Red, North: Red, DontWalk: true},
		PedFlash1Off: {East: Red, North: Red},
		PedFlash2Red: {East: Red, North: Red, DontWalk: true},
		PedFlash2Off: {East: Red, North: Red},
		PedFlash3Red: {East: Red, North: Red, DontWalk: true},
	}

	for id, want := range expected {
		state, _ := DefaultTable().Lookup(id)
		assert.Equal(t, want, state.Lights(), id.String())
	}
}

func TestDecode_NeverTwoGreens(t *testing.T) {
	for _, state := range DefaultTable().States() {
		l := state.Lights()
		assert.False(t, l.East == Green && l.North == Green, state.ID.String())
		assert.False(t, l.Walk && (l.East == Green || l.North == Green), state.ID.String())
	}
}

func TestLights_CodeRoundTrip(t *testing.T) {
	for _, state := range DefaultTable().States() {
		assert.Equal(t, state.Output, state.Lights().Code(), state.ID.String())
	}

	vehicle, ped := EncodeOutput(Lights{East: Green, North: Red, DontWalk: true})
	assert.Equal(t, uint8(0x0C), vehicle)
	assert.Equal(t, uint8(0x02), ped)
}

func TestDecode_InvalidTriad(t *testing.T) {
	l := Decode(0xFC)
	assert.Equal(t, Invalid, l.East)
	assert.Equal(t, Invalid, l.North)
	assert.Equal(t, "east=invalid north=invalid ped=off", l.String())
}

func TestLights_String(t *testing.T) {
	assert.Equal(t, "east=green north=red ped=dont-walk", Decode(0x31).String())
	assert.Equal(t, "east=red north=red ped=walk", Decode(0x92).String())
}

func TestPack_InvertsEncode(t *testing.T) {
	for code := 0; code < 256; code++ {
		vehicle, ped := Encode(OutputCode(code))
		assert.Equal(t, OutputCode(code), Pack(vehicle, ped))
	}
	assert.Equal(t, OutputCode(0x31), Pack(0xCC, 0xF2), "stray bits are dropped")
}
