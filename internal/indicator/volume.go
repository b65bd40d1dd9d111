package indicator

import "crypto-signal-scanner/models"

// VolumeOscillator returns the percentage spread between a fast and a slow
// exponential moving average of volume: (fastEMA - slowEMA) / slowEMA * 100.
// Bars where the slow average is zero map to a neutral 0 instead of
// propagating a non-finite value.
func VolumeOscillator(candles []models.Candle, fast, slow int) []float64 {
	if len(candles) == 0 || fast <= 0 || slow <= 0 {
		return nil
	}

	volumes := Volumes(candles)
	fastEMA := EMA(volumes, fast)
	slowEMA := EMA(volumes, slow)

	out := make([]float64, len(candles))
	for i := range out {
		if slowEMA[i] == 0 {
			out[i] = 0
			continue
		}
		out[i] = (fastEMA[i] - slowEMA[i]) / slowEMA[i] * 100
	}
	return out
}
