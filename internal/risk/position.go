// Package risk sizes leveraged positions under a real-risk-per-trade
// budget, a maximum stop-distance policy and a leverage/notional cap.
package risk

import "math"

// Params bounds a position sizing calculation.
type Params struct {
	RiskPct       float64 // fraction of balance risked per trade
	MaxStopPct    float64 // widest stop distance the engine will size
	Leverage      float64 // exchange leverage cap
	NotionalUsage float64 // fraction of the leverage cap actually used
}

// PositionSize returns the bounded notional size for a trade, rounded to
// two decimals. A zero return means the setup cannot be sized: degenerate
// or over-wide stop, or non-positive inputs. Never clamps to a minimum.
func PositionSize(p Params, balance, entry, sl float64) float64 {
	if balance <= 0 || entry <= 0 || sl <= 0 {
		return 0
	}

	stopPct := math.Abs(entry-sl) / entry
	if stopPct <= 0 || stopPct > p.MaxStopPct {
		return 0
	}

	riskBudget := balance * p.RiskPct
	notional := riskBudget / stopPct

	// Deliberate under-use of the leverage cap for safety margin.
	maxNotional := balance * p.Leverage * p.NotionalUsage

	return math.Round(math.Min(notional, maxNotional)*100) / 100
}
