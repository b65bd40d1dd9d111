// Package scoring computes the composite institutional quality score:
// trend structure, volume expansion and accumulation/distribution flow
// combined into a bounded 0-100 value for a proposed trade direction.
package scoring

import (
	"crypto-signal-scanner/internal/indicator"
	"crypto-signal-scanner/models"
)

// Structure alignment awards, in gate order: price vs EMA20, EMA20 vs
// EMA50, EMA50 vs EMA200, price vs EMA200.
var structureAwards = [4]int{15, 10, 10, 5}

// Volume oscillator thresholds, each worth 10 points, cumulative.
var volumeThresholds = [3]float64{3, 10, 20}

// ADL lookbacks compared against the latest flow value, each worth 10 points.
var adlLookbacks = [3]int{5, 10, 20}

// Institutional scores a proposed direction against the high-timeframe and
// daily series. Pure function: no side effects, deterministic for a given
// input.
func Institutional(htf, daily []models.Candle, direction models.Direction, voFast, voSlow int) models.ScoreBreakdown {
	price := htf[len(htf)-1].Close

	htfCloses := indicator.Closes(htf)
	ema20 := last(indicator.EMA(htfCloses, 20))
	ema50 := last(indicator.EMA(htfCloses, 50))
	ema200 := last(indicator.EMA(indicator.Closes(daily), 200))

	long := direction == models.DirectionLong

	// Structure (max 40): ordered EMA alignment in the trade direction.
	structure := 0
	checks := [4]bool{
		above(price, ema20, long),
		above(ema20, ema50, long),
		above(ema50, ema200, long),
		above(price, ema200, long),
	}
	for i, ok := range checks {
		if ok {
			structure += structureAwards[i]
		}
	}
	structure = min(structure, 40)

	// Volume (max 30): cumulative oscillator threshold bands.
	vo := last(indicator.VolumeOscillator(htf, voFast, voSlow))
	volume := 0
	for _, threshold := range volumeThresholds {
		if vo > threshold {
			volume += 10
		}
	}
	volume = min(volume, 30)

	// ADL flow (max 30): flow moving with the trade over three lookbacks.
	adl := indicator.AccumulationDistribution(htf)
	adlScore := 0
	for _, lb := range adlLookbacks {
		if len(adl) <= lb {
			continue
		}
		if above(adl[len(adl)-1], adl[len(adl)-1-lb], long) {
			adlScore += 10
		}
	}
	adlScore = min(adlScore, 30)

	return models.ScoreBreakdown{
		Structure: structure,
		Volume:    volume,
		ADL:       adlScore,
		Total:     structure + volume + adlScore,
	}
}

// above reports a > b for LONG and a < b for SHORT.
func above(a, b float64, long bool) bool {
	if long {
		return a > b
	}
	return a < b
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
