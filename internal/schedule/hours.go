// Package schedule holds the WIB trading-hours policy: the futures danger
// window and the optimal scan windows per mode.
package schedule

import "time"

// WIB is the reference timezone for all hour windows (UTC+7).
var WIB = time.FixedZone("WIB", 7*60*60)

// Window is a half-open [Start, End) range of WIB hours.
type Window struct {
	Start int
	End   int
}

func (w Window) contains(h int) bool {
	return h >= w.Start && h < w.End
}

// Defaults applied when a Policy is built with zero-value windows.
var (
	defaultDanger  = Window{Start: 0, End: 5}
	defaultSpot    = Window{Start: 8, End: 23}
	defaultFutures = Window{Start: 19, End: 24}
)

// Policy answers time-of-day questions for the pipeline and the scanner.
// Now is injectable so tests control the clock; nil means time.Now. Zero
// windows fall back to the defaults.
type Policy struct {
	Now           func() time.Time
	DangerWindow  Window
	SpotWindow    Window
	FuturesWindow Window
}

func (p Policy) hour() int {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return now().In(WIB).Hour()
}

// Danger reports the low-liquidity window (00:00-05:00 WIB by default)
// during which leveraged evaluation is killed outright.
func (p Policy) Danger() bool {
	return orDefault(p.DangerWindow, defaultDanger).contains(p.hour())
}

// OptimalSpot reports the window in which spot scanning runs.
func (p Policy) OptimalSpot() bool {
	return orDefault(p.SpotWindow, defaultSpot).contains(p.hour())
}

// OptimalFutures reports the window in which futures scanning runs.
func (p Policy) OptimalFutures() bool {
	return orDefault(p.FuturesWindow, defaultFutures).contains(p.hour())
}

func orDefault(w, fallback Window) Window {
	if w == (Window{}) {
		return fallback
	}
	return w
}
