package gpio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/moore"
)

type fakeLine struct {
	value  int
	err    error
	closed bool
}

func (l *fakeLine) SetValue(v int) error {
	if l.err != nil {
		return l.err
	}
	l.value = v
	return nil
}

func (l *fakeLine) Value() (int, error) { return l.value, l.err }

func (l *fakeLine) Close() error {
	l.closed = true
	return nil
}

type rig struct {
	vehicle  [6]*fakeLine
	walk     *fakeLine
	dontWalk *fakeLine
	sensors  [3]*fakeLine
	port     *Port
}

func newRig() *rig {
	r := &rig{walk: &fakeLine{}, dontWalk: &fakeLine{}}
	var vehicle [6]Line
	var sensors [3]Line
	for i := range r.vehicle {
		r.vehicle[i] = &fakeLine{}
		vehicle[i] = r.vehicle[i]
	}
	for i := range r.sensors {
		r.sensors[i] = &fakeLine{}
		sensors[i] = r.sensors[i]
	}
	r.port = NewPort(vehicle, r.walk, r.dontWalk, sensors)
	return r
}

func (r *rig) vehicleBits() uint8 {
	var v uint8
	for i, l := range r.vehicle {
		v |= uint8(l.value) << i
	}
	return v
}

func TestPort_WriteOutputs(t *testing.T) {
	testCases := []struct {
		name     string
		code     moore.OutputCode
		walk     int
		dontWalk int
	}{
		{"east open", 0x31, 0, 1},
		{"walk", 0x92, 1, 0},
		{"flash off", 0x90, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig()
			vehicle, ped := moore.Encode(tc.code)

			require.NoError(t, r.port.WriteOutputs(vehicle, ped))

			assert.Equal(t, vehicle, r.vehicleBits())
			assert.Equal(t, tc.walk, r.walk.value)
			assert.Equal(t, tc.dontWalk, r.dontWalk.value)
		})
	}
}

func TestPort_ReadInputs(t *testing.T) {
	r := newRig()
	r.sensors[0].value = 1
	r.sensors[2].value = 1

	raw, err := r.port.ReadInputs()

	require.NoError(t, err)
	assert.Equal(t, uint8(0x05), raw)
	assert.Equal(t, "101(ped+east)", moore.Reading(raw).String())
}

func TestPort_Errors(t *testing.T) {
	cause := errors.New("line released")
	r := newRig()
	r.vehicle[3].err = cause
	r.sensors[1].err = cause

	assert.ErrorIs(t, r.port.WriteOutputs(0x3F, 0), cause)
	_, err := r.port.ReadInputs()
	assert.ErrorIs(t, err, cause)
}

func TestPort_Close(t *testing.T) {
	r := newRig()
	require.NoError(t, r.port.WriteOutputs(0x3F, 0x0A))

	require.NoError(t, r.port.Close())

	assert.Zero(t, r.vehicleBits())
	assert.Zero(t, r.walk.value)
	for _, l := range r.port.lines() {
		assert.True(t, l.(*fakeLine).closed)
	}
}

func TestDefaultConfig_DistinctOffsets(t *testing.T) {
	cfg := DefaultConfig()
	seen := map[int]bool{}
	offsets := append(append(cfg.VehicleLines[:], cfg.WalkLine, cfg.DontWalkLine), cfg.SensorLines[:]...)
	for _, o := range offsets {
		assert.False(t, seen[o], "offset %d used twice", o)
		seen[o] = true
	}
	assert.Len(t, seen, 11)
}

func TestPort_UnwiredLines(t *testing.T) {
	walk := &fakeLine{}
	sensor := &fakeLine{value: 1}
	port := NewPort([6]Line{}, walk, nil, [3]Line{nil, nil, sensor})

	require.NotPanics(t, func() {
		require.NoError(t, port.WriteOutputs(0x3F, moore.PedWalk))
	})
	assert.Equal(t, 1, walk.value)

	raw, err := port.ReadInputs()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x04), raw)

	require.NoError(t, port.Close())
	assert.Zero(t, walk.value)
	assert.True(t, walk.closed)
	assert.True(t, sensor.closed)
}
