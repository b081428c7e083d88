package moore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicks_Duration(t *testing.T) {
	assert.Equal(t, 750*time.Millisecond, ShortWait.Duration(DefaultTick))
	assert.Equal(t, 3*time.Second, LongWait.Duration(DefaultTick))
	assert.Equal(t, ShortWait, Duration(750, DefaultTick))
	assert.Equal(t, LongWait, Duration(3000, 0))
}

func TestSleepTimer_WaitTicks(t *testing.T) {
	var slept []time.Duration
	timer := NewSleepTimer(5 * time.Millisecond)
	timer.sleep = func(d time.Duration) { slept = append(slept, d) }

	assert.NoError(t, timer.WaitTicks(ShortWait))
	assert.NoError(t, timer.WaitTicks(0))

	assert.Equal(t, []time.Duration{375 * time.Millisecond}, slept)
}

func TestSleepTimer_DefaultTick(t *testing.T) {
	assert.Equal(t, DefaultTick, NewSleepTimer(0).Tick)

	timer := NewSleepTimer(time.Millisecond)
	start := time.Now()
	assert.NoError(t, timer.WaitTicks(2))
	assert.GreaterOrEqual(t, time.Since(start), 2*time.Millisecond)
}

func TestTimerFunc(t *testing.T) {
	var got Ticks
	timer := TimerFunc(func(n Ticks) error {
		got = n
		return nil
	})

	assert.NoError(t, timer.WaitTicks(LongWait))
	assert.Equal(t, LongWait, got)
}
