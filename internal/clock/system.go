package clock

import "time"

// epoch anchors the monotonic reading of the process. time.Since uses the
// monotonic clock reading embedded in epoch, so wall clock steps never leak
// into Time values.
var epoch = time.Now()

// System returns a TimerClock backed by the runtime monotonic clock.
func System() TimerClock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() Time {
	return Time(time.Since(epoch))
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
