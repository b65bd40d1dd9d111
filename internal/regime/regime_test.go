package regime

import (
	"math"
	"testing"

	"crypto-signal-scanner/models"
)

func generateTestCandles(n int, build func(i int) models.Candle) []models.Candle {
	candles := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		candles[i] = build(i)
	}
	return candles
}

// accumulating bars push the ADL up, distributing bars push it down,
// neutral bars leave it flat.
func accumulating(close float64, i int) models.Candle {
	return models.Candle{Timestamp: int64(i), High: close + 0.5, Low: close - 1.5, Close: close, Volume: 1000}
}

func distributing(close float64, i int) models.Candle {
	return models.Candle{Timestamp: int64(i), High: close + 1.5, Low: close - 0.5, Close: close, Volume: 1000}
}

func neutral(close float64, i int) models.Candle {
	return models.Candle{Timestamp: int64(i), High: close + 1, Low: close - 1, Close: close, Volume: 1000}
}

func risingDaily(n int) []models.Candle {
	return generateTestCandles(n, func(i int) models.Candle {
		return neutral(100+float64(i), i)
	})
}

func fallingDaily(n int) []models.Candle {
	return generateTestCandles(n, func(i int) models.Candle {
		return neutral(400-float64(i), i)
	})
}

func risingFlow(n int) []models.Candle {
	return generateTestCandles(n, func(i int) models.Candle {
		return accumulating(100+math.Sin(float64(i))*2, i)
	})
}

func fallingFlow(n int) []models.Candle {
	return generateTestCandles(n, func(i int) models.Candle {
		return distributing(100+math.Sin(float64(i))*2, i)
	})
}

var convictionScore = models.ScoreBreakdown{Structure: 40, Volume: 30, ADL: 30, Total: 100}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		htf      []models.Candle
		daily    []models.Candle
		score    models.ScoreBreakdown
		expected models.Regime
	}{
		{
			name:     "chop floor overrides everything",
			htf:      risingFlow(100),
			daily:    risingDaily(100),
			score:    models.ScoreBreakdown{Structure: 20, Volume: 10, ADL: 10, Total: 40},
			expected: models.RegimeChop,
		},
		{
			name:     "markdown: below EMA with falling flow",
			htf:      fallingFlow(100),
			daily:    fallingDaily(100),
			score:    convictionScore,
			expected: models.RegimeMarkdown,
		},
		{
			name:     "distribution: above EMA with falling flow",
			htf:      fallingFlow(100),
			daily:    risingDaily(100),
			score:    convictionScore,
			expected: models.RegimeDistribution,
		},
		{
			name:     "markup: above EMA with rising flow",
			htf:      risingFlow(100),
			daily:    risingDaily(100),
			score:    convictionScore,
			expected: models.RegimeMarkup,
		},
		{
			name:     "accumulation: below EMA with rising flow",
			htf:      risingFlow(100),
			daily:    fallingDaily(100),
			score:    convictionScore,
			expected: models.RegimeAccumulation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.htf, tt.daily, tt.score)
			if got != tt.expected {
				t.Fatalf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	htf, daily := risingFlow(100), risingDaily(100)

	first := Detect(htf, daily, convictionScore)
	second := Detect(htf, daily, convictionScore)

	if first != second {
		t.Fatalf("identical inputs classified differently: %s vs %s", first, second)
	}
}

func TestDetectShiftSteadyTrendIsNotATransition(t *testing.T) {
	if shift := DetectShift(risingFlow(100), risingDaily(100)); shift != nil {
		t.Fatalf("steady uptrend flagged as transition: %+v", shift)
	}
	if shift := DetectShift(fallingFlow(100), fallingDaily(100)); shift != nil {
		t.Fatalf("steady downtrend flagged as transition: %+v", shift)
	}
}

func TestDetectShiftToMarkup(t *testing.T) {
	// Flow accumulated until 20 bars ago, flat since: the 30-bar window
	// still points up while the 20-bar one no longer does.
	htf := generateTestCandles(100, func(i int) models.Candle {
		if i < 80 {
			return accumulating(100, i)
		}
		return neutral(100, i)
	})

	shift := DetectShift(htf, risingDaily(100))
	if shift == nil {
		t.Fatalf("expected a markup transition")
	}
	if shift.Type != models.ShiftToMarkup {
		t.Fatalf("expected %s, got %s", models.ShiftToMarkup, shift.Type)
	}
}

func TestDetectShiftToMarkdown(t *testing.T) {
	htf := generateTestCandles(100, func(i int) models.Candle {
		if i < 80 {
			return distributing(100, i)
		}
		return neutral(100, i)
	})

	shift := DetectShift(htf, fallingDaily(100))
	if shift == nil {
		t.Fatalf("expected a markdown transition")
	}
	if shift.Type != models.ShiftToMarkdown {
		t.Fatalf("expected %s, got %s", models.ShiftToMarkdown, shift.Type)
	}
}
