package indicator

import (
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

// Rising closes with a symmetric 1-point range keep the true range pinned
// at 2, so the trailing line tracks exactly one smoothed-ATR-multiple
// below price until the crash bar.
func crashSeries(crashAt, total int) []models.Candle {
	return generateTestCandles(total, func(i int) models.Candle {
		close := 100.0 + float64(i)
		if i >= crashAt {
			close = 50.0
		}
		return models.Candle{
			Timestamp: int64(i),
			Open:      close,
			High:      close + 1,
			Low:       close - 1,
			Close:     close,
			Volume:    1000,
		}
	})
}

func TestSupertrendFlipsAtCrashBar(t *testing.T) {
	crashAt := 10
	candles := crashSeries(crashAt, 15)

	_, trend := Supertrend(candles, 2, 0.5)

	for i := 0; i < crashAt; i++ {
		if trend[i] != 1 {
			t.Fatalf("bar %d: expected uptrend before crash, got %d", i, trend[i])
		}
	}
	for i := crashAt; i < len(trend); i++ {
		if trend[i] != -1 {
			t.Fatalf("bar %d: expected downtrend from crash bar on, got %d", i, trend[i])
		}
	}
}

func TestSupertrendDeterministic(t *testing.T) {
	candles := crashSeries(40, 80)

	line1, trend1 := Supertrend(candles, 10, 3.0)
	line2, trend2 := Supertrend(candles, 10, 3.0)

	for i := range line1 {
		if line1[i] != line2[i] || trend1[i] != trend2[i] {
			t.Fatalf("bar %d: outputs differ between identical runs", i)
		}
	}
}

func TestSupertrendEmptyInput(t *testing.T) {
	line, trend := Supertrend(nil, 10, 3.0)
	if line != nil || trend != nil {
		t.Fatalf("expected nil output for empty input")
	}
}
