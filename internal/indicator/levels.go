package indicator

import (
	"sort"

	"crypto-signal-scanner/models"
)

// FindSupport returns the de-duplicated, ascending price levels of local
// swing lows: bars whose low is the minimum over the window
// [i-lookback, i+lookback]. Bars within lookback of either edge are never
// candidates.
func FindSupport(candles []models.Candle, lookback int) []float64 {
	return swingLevels(candles, lookback, func(c models.Candle) float64 { return c.Low }, true)
}

// FindResistance is the mirror of FindSupport over swing highs.
func FindResistance(candles []models.Candle, lookback int) []float64 {
	return swingLevels(candles, lookback, func(c models.Candle) float64 { return c.High }, false)
}

func swingLevels(candles []models.Candle, lookback int, price func(models.Candle) float64, isMin bool) []float64 {
	if lookback <= 0 || len(candles) < 2*lookback+1 {
		return nil
	}

	seen := make(map[float64]struct{})
	var levels []float64

	for i := lookback; i < len(candles)-lookback; i++ {
		extreme := true
		p := price(candles[i])
		for j := i - lookback; j <= i+lookback; j++ {
			q := price(candles[j])
			if (isMin && q < p) || (!isMin && q > p) {
				extreme = false
				break
			}
		}
		if !extreme {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		levels = append(levels, p)
	}

	sort.Float64s(levels)
	return levels
}
