package indicator

import (
	"math"

	"crypto-signal-scanner/models"
)

// Supertrend computes the trailing stop line and the per-bar trend
// direction (+1 up, -1 down) for a candle series.
//
// True range per bar is max(high-low, |high-prevClose|, |low-prevClose|),
// smoothed with an exponential average seeded from the first true range so
// no look-ahead is introduced. The trailing line recurrence is strictly
// sequential: identical input always produces identical output.
func Supertrend(candles []models.Candle, period int, mult float64) (line []float64, trend []int) {
	if len(candles) == 0 || period <= 0 {
		return nil, nil
	}

	n := len(candles)
	atr := smoothedTrueRange(candles, period)

	upper := make([]float64, n)
	lower := make([]float64, n)
	for i := 0; i < n; i++ {
		hl2 := (candles[i].High + candles[i].Low) / 2
		upper[i] = hl2 + mult*atr[i]
		lower[i] = hl2 - mult*atr[i]
	}

	line = make([]float64, n)
	trend = make([]int, n)
	line[0] = lower[0]
	trend[0] = 1

	for i := 1; i < n; i++ {
		if trend[i-1] == 1 {
			line[i] = math.Max(lower[i], line[i-1])
			if candles[i].Close > line[i] {
				trend[i] = 1
			} else {
				trend[i] = -1
			}
		} else {
			line[i] = math.Min(upper[i], line[i-1])
			if candles[i].Close < line[i] {
				trend[i] = -1
			} else {
				trend[i] = 1
			}
		}
	}

	return line, trend
}

// smoothedTrueRange returns the exponentially smoothed average true range,
// seeded with the first bar's true range (high-low, no previous close).
func smoothedTrueRange(candles []models.Candle, period int) []float64 {
	n := len(candles)
	atr := make([]float64, n)
	alpha := 2.0 / float64(period+1)

	tr := candles[0].High - candles[0].Low
	atr[0] = tr
	for i := 1; i < n; i++ {
		prevClose := candles[i-1].Close
		tr = math.Max(
			candles[i].High-candles[i].Low,
			math.Max(
				math.Abs(candles[i].High-prevClose),
				math.Abs(candles[i].Low-prevClose),
			),
		)
		atr[i] = atr[i-1] + alpha*(tr-atr[i-1])
	}
	return atr
}
