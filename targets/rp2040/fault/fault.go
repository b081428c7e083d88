// Package fault maps controller errors to LED blink periods on boards
// without a console.
package fault

import (
	"time"

	"github.com/anggasct/moore"
)

// Blink half-periods, fastest for faults in the firmware image itself
const (
	ConfigPeriod  = 100 * time.Millisecond
	StatePeriod   = 200 * time.Millisecond
	OutputPeriod  = 400 * time.Millisecond
	InputPeriod   = 600 * time.Millisecond
	TimerPeriod   = 800 * time.Millisecond
	UnknownPeriod = 1500 * time.Millisecond
)

// Period returns the blink half-period that identifies err
func Period(err error) time.Duration {
	switch moore.GetErrorCode(err) {
	case moore.ErrCodeInvalidConfiguration:
		return ConfigPeriod
	case moore.ErrCodeInvalidState:
		return StatePeriod
	case moore.ErrCodeOutputFailed:
		return OutputPeriod
	case moore.ErrCodeInputFailed:
		return InputPeriod
	case moore.ErrCodeTimerFailed:
		return TimerPeriod
	default:
		return UnknownPeriod
	}
}
