package transport

import "time"

// Clock abstracts the monotonic millisecond clock the deadline loops poll
// against, so a test harness can drive virtual time instead of sleeping
// for real (see spec design notes: "abstract busy-wait/millis() as a
// monotonic clock trait").
type Clock interface {
	NowMs() uint32
}

// systemClock is the production Clock, backed by time.Now.
type systemClock struct{}

func (systemClock) NowMs() uint32 { return uint32(time.Now().UnixMilli()) }
