package indicator

import "crypto-signal-scanner/models"

// AccumulationDistribution returns the cumulative accumulation/distribution
// line: per bar, the money-flow multiplier ((close-low)-(high-close))/(high-low)
// times volume, summed across the series. Bars with high == low contribute
// zero (the multiplier is undefined there).
func AccumulationDistribution(candles []models.Candle) []float64 {
	if len(candles) == 0 {
		return nil
	}

	out := make([]float64, len(candles))
	sum := 0.0
	for i, c := range candles {
		spread := c.High - c.Low
		if spread != 0 {
			mfm := ((c.Close - c.Low) - (c.High - c.Close)) / spread
			sum += mfm * c.Volume
		}
		out[i] = sum
	}
	return out
}
