package history

import (
	"testing"

	"crypto-signal-scanner/models"
)

func TestResolve(t *testing.T) {
	long := OpenSignal{
		Direction: models.DirectionLong,
		Entry:     100, SL: 95, TP1: 104, TP2: 110,
		Status: models.StatusOpen,
	}
	short := OpenSignal{
		Direction: models.DirectionShort,
		Entry:     100, SL: 105, TP1: 96, TP2: 90,
		Status: models.StatusOpen,
	}

	tests := []struct {
		name     string
		sig      OpenSignal
		price    float64
		expected string
	}{
		{"long untouched", long, 101, ""},
		{"long stop hit", long, 95, models.StatusSLHit},
		{"long gap through stop", long, 80, models.StatusSLHit},
		{"long first target", long, 104, models.StatusTP1Hit},
		{"long second target outranks first", long, 110, models.StatusTP2Hit},
		{"short untouched", short, 99, ""},
		{"short stop hit", short, 105, models.StatusSLHit},
		{"short first target", short, 96, models.StatusTP1Hit},
		{"short second target outranks first", short, 90, models.StatusTP2Hit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.sig, tt.price); got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestResolveTP1IsNotRepeated(t *testing.T) {
	sig := OpenSignal{
		Direction: models.DirectionLong,
		Entry:     100, SL: 95, TP1: 104, TP2: 110,
		Status: models.StatusTP1Hit,
	}

	if got := Resolve(sig, 105); got != "" {
		t.Fatalf("TP1 fired again on an already-advanced signal: %q", got)
	}
	if got := Resolve(sig, 110); got != models.StatusTP2Hit {
		t.Fatalf("TP2 must still fire after TP1: %q", got)
	}
	if got := Resolve(sig, 94); got != models.StatusSLHit {
		t.Fatalf("SL must still fire after TP1: %q", got)
	}
}
