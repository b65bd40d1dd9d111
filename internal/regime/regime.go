// Package regime classifies the market into one of five mutually exclusive
// phases and flags phase transitions. Both detectors are pure functions of
// the series handed in; nothing is persisted between calls.
package regime

import (
	"crypto-signal-scanner/internal/indicator"
	"crypto-signal-scanner/models"
)

// Lookbacks on the accumulation/distribution line, in bars.
const (
	slopeLookback = 20
	shiftLookback = 30
)

// Detect classifies the current regime from daily price vs its 200 EMA and
// the accumulation/distribution slope on the high timeframe, gated by the
// structure/volume floor. First match wins.
func Detect(htf, daily []models.Candle, score models.ScoreBreakdown) models.Regime {
	// Insufficient conviction overrides every other signal.
	if score.Structure < 40 && score.Volume < 20 {
		return models.RegimeChop
	}

	price := daily[len(daily)-1].Close
	ema200 := last(indicator.EMA(indicator.Closes(daily), 200))
	flowRising := adlRising(htf, slopeLookback)

	switch {
	case price < ema200 && !flowRising:
		return models.RegimeMarkdown
	case price > ema200 && !flowRising:
		return models.RegimeDistribution
	case price > ema200 && flowRising:
		return models.RegimeMarkup
	default:
		return models.RegimeAccumulation
	}
}

// DetectShift flags a phase transition as an advisory event, distinct from
// the regime tag: the 30-bar flow trend disagrees with the 20-bar one while
// price sits on the corresponding side of the daily 200 EMA. A steady trend,
// where both windows agree, is not a transition. Returns nil when no
// transition is in progress.
func DetectShift(htf, daily []models.Candle) *models.RegimeShift {
	price := daily[len(daily)-1].Close
	ema200 := last(indicator.EMA(indicator.Closes(daily), 200))

	adl := indicator.AccumulationDistribution(htf)
	if len(adl) <= shiftLookback {
		return nil
	}
	latest := adl[len(adl)-1]
	long := adl[len(adl)-1-shiftLookback]
	short := adl[len(adl)-1-slopeLookback]

	if latest < long && latest >= short && price < ema200 {
		return &models.RegimeShift{
			Type:    models.ShiftToMarkdown,
			Message: "Distribution -> Markdown (institutional exit)",
		}
	}
	if latest > long && latest <= short && price > ema200 {
		return &models.RegimeShift{
			Type:    models.ShiftToMarkup,
			Message: "Accumulation -> Markup (institutional entry)",
		}
	}
	return nil
}

// adlRising reports whether the accumulation/distribution line is higher
// than it was lookback bars ago. Short series count as not rising.
func adlRising(htf []models.Candle, lookback int) bool {
	adl := indicator.AccumulationDistribution(htf)
	if len(adl) <= lookback {
		return false
	}
	return adl[len(adl)-1] > adl[len(adl)-1-lookback]
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
