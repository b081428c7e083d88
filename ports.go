package moore

import "time"

// Ticks counts timer base units
type Ticks uint32

const (
	// DefaultTick is the base unit of the reference timer
	DefaultTick = 10 * time.Millisecond

	// ShortWait is the dwell of yellow and flashing states (750 ms)
	ShortWait Ticks = 75
	// LongWait is the dwell of open states (3000 ms)
	LongWait Ticks = 300
)

// Duration converts a tick count using the given tick length
func (t Ticks) Duration(tick time.Duration) time.Duration {
	return time.Duration(t) * tick
}

// IOPort reads the sensors and drives the lights.
// Implementations are expected to be initialized before use.
type IOPort interface {
	// ReadInputs returns the raw sensor register. Only bits 0..2 are meaningful.
	ReadInputs() (uint8, error)

	// WriteOutputs drives the vehicle channel (6 bits) and the pedestrian channel
	WriteOutputs(vehicle, ped uint8) error
}

// TimerService blocks the caller for a number of ticks.
// A wait, once entered, always runs its full duration.
type TimerService interface {
	WaitTicks(n Ticks) error
}

// TimerFunc adapts a function to TimerService
type TimerFunc func(n Ticks) error

// WaitTicks calls f(n)
func (f TimerFunc) WaitTicks(n Ticks) error {
	return f(n)
}

// SleepTimer implements TimerService with the monotonic clock
type SleepTimer struct {
	Tick  time.Duration
	sleep func(time.Duration)
}

// NewSleepTimer creates a timer with the given tick length, DefaultTick if zero
func NewSleepTimer(tick time.Duration) *SleepTimer {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &SleepTimer{Tick: tick, sleep: time.Sleep}
}

// WaitTicks sleeps for n ticks
func (t *SleepTimer) WaitTicks(n Ticks) error {
	tick := t.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	sleep := t.sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	if n == 0 {
		return nil
	}
	sleep(n.Duration(tick))
	return nil
}
