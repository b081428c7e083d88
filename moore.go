// Package moore implements a table-driven Moore machine that controls a
// two-road intersection with a pedestrian crossing.
//
// The machine's behaviour lives entirely in a Table: per state an output
// code, a dwell time and eight successors indexed by the 3-bit sensor
// reading. An Engine walks the table forever, talking to the hardware only
// through an IOPort and a TimerService:
//
//	write outputs -> wait dwell -> read sensors -> pick next state
//
// Output codes are split across two physical channels by Encode so the
// table itself never deals with pin layout.
package moore

import "time"

// Duration converts a millisecond count to a tick count at the given tick length
func Duration(milliseconds int, tick time.Duration) Ticks {
	if tick <= 0 {
		tick = DefaultTick
	}
	return Ticks(time.Duration(milliseconds) * time.Millisecond / tick)
}
