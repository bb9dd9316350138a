package lifecycle

import (
	"fmt"
	"time"
)

// State classifies a campaign relative to its deadline at one instant.
type State string

const (
	Active  State = "active"
	Expired State = "expired"
)

const (
	msPerDay    = 86_400_000
	msPerHour   = 3_600_000
	msPerMinute = 60_000
	msPerSecond = 1000
)

// Evaluation is the derived temporal view of one campaign. Expired campaigns
// report zero remaining time, never a negative one.
type Evaluation struct {
	State           State `json:"state"`
	RemainingMillis int64 `json:"remaining_ms"`
	Days            int64 `json:"days"`
	Hours           int64 `json:"hours"`
	Minutes         int64 `json:"minutes"`
	Seconds         int64 `json:"seconds"`
}

// Evaluate derives the lifecycle of a deadline (unix seconds) at the given
// instant. It is a function of wall-clock time and must be recomputed on
// every observation; caching it against a campaign snapshot would freeze the
// countdown.
func Evaluate(deadline uint64, now time.Time) Evaluation {
	remaining := int64(deadline)*1000 - now.UnixMilli()
	if remaining <= 0 {
		return Evaluation{State: Expired}
	}

	ev := Evaluation{State: Active, RemainingMillis: remaining}
	ev.Days = remaining / msPerDay
	remaining %= msPerDay
	ev.Hours = remaining / msPerHour
	remaining %= msPerHour
	ev.Minutes = remaining / msPerMinute
	remaining %= msPerMinute
	ev.Seconds = remaining / msPerSecond
	return ev
}

// String renders the remaining time for display, e.g. "2d 5h 3m 10s".
func (e Evaluation) String() string {
	if e.State == Expired {
		return "expired"
	}
	return fmt.Sprintf("%dd %dh %dm %ds", e.Days, e.Hours, e.Minutes, e.Seconds)
}
