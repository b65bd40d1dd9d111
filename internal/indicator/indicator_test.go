package indicator

import (
	"math"
	"testing"

	"crypto-signal-scanner/models"
)

func TestAccumulationDistributionFlatBarContributesZero(t *testing.T) {
	candles := []models.Candle{
		{High: 102, Low: 98, Close: 101, Volume: 1000}, // mfm 0.5
		{High: 100, Low: 100, Close: 100, Volume: 5000}, // high == low
		{High: 104, Low: 100, Close: 103, Volume: 1000},
	}

	adl := AccumulationDistribution(candles)

	if adl[1] != adl[0] {
		t.Fatalf("flat bar changed the ADL: %v -> %v", adl[0], adl[1])
	}
	for i, v := range adl {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("bar %d: non-finite ADL value %v", i, v)
		}
	}
}

func TestVolumeOscillatorZeroVolumeIsNeutral(t *testing.T) {
	candles := generateTestCandles(60, func(i int) models.Candle {
		return models.Candle{High: 101, Low: 99, Close: 100, Volume: 0}
	})

	vo := VolumeOscillator(candles, 14, 28)

	for i, v := range vo {
		if v != 0 {
			t.Fatalf("bar %d: expected neutral 0 for zero volume, got %v", i, v)
		}
	}
}

func TestVolumeOscillatorRisingVolumeIsPositive(t *testing.T) {
	candles := generateTestCandles(120, func(i int) models.Candle {
		return models.Candle{High: 101, Low: 99, Close: 100, Volume: 1000 * math.Pow(1.05, float64(i))}
	})

	vo := VolumeOscillator(candles, 14, 28)

	if got := vo[len(vo)-1]; got <= 20 {
		t.Fatalf("expected oscillator above 20 for expanding volume, got %v", got)
	}
}

func zigzagDaily(n int) []models.Candle {
	return generateTestCandles(n, func(i int) models.Candle {
		wave := float64(i % 10)
		if wave > 5 {
			wave = 10 - wave
		}
		close := 100 + 0.5*float64(i) + 2*wave
		return models.Candle{
			Timestamp: int64(i),
			Open:      close,
			High:      close + 0.5,
			Low:       close - 1.5,
			Close:     close,
			Volume:    1000,
		}
	})
}

func TestFindSupportIdempotentAndSorted(t *testing.T) {
	candles := zigzagDaily(100)

	first := FindSupport(candles, 5)
	second := FindSupport(candles, 5)

	if len(first) == 0 {
		t.Fatalf("expected swing lows in a zigzag series")
	}
	if len(first) != len(second) {
		t.Fatalf("two runs returned different level counts: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("level %d differs between runs: %v vs %v", i, first[i], second[i])
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i] <= first[i-1] {
			t.Fatalf("levels not strictly ascending at %d: %v", i, first)
		}
	}
}

func TestSwingLevelsExcludeEdges(t *testing.T) {
	// Global minimum sits on the first bar; it must not be reported.
	candles := generateTestCandles(30, func(i int) models.Candle {
		close := 100 + float64(i)
		return models.Candle{High: close + 1, Low: close - 1, Close: close, Volume: 1000}
	})

	levels := FindSupport(candles, 5)
	if len(levels) != 0 {
		t.Fatalf("monotonic series must have no interior swing lows, got %v", levels)
	}
}

func TestFindResistanceMirrorsSupport(t *testing.T) {
	candles := zigzagDaily(100)

	resistance := FindResistance(candles, 5)
	if len(resistance) == 0 {
		t.Fatalf("expected swing highs in a zigzag series")
	}
	for i := 1; i < len(resistance); i++ {
		if resistance[i] <= resistance[i-1] {
			t.Fatalf("levels not strictly ascending at %d: %v", i, resistance)
		}
	}
}
