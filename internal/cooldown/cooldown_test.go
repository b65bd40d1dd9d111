package cooldown

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"crypto-signal-scanner/models"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "cooldown.json"))
}

func TestTrackerActiveAfterSet(t *testing.T) {
	tracker := newTestTracker(t)

	if tracker.Active("BTC-USDT", models.ModeSpot, time.Hour) {
		t.Fatalf("fresh tracker reports an active cooldown")
	}
	if err := tracker.Set("BTC-USDT", models.ModeSpot); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !tracker.Active("BTC-USDT", models.ModeSpot, time.Hour) {
		t.Fatalf("cooldown not active right after set")
	}
}

func TestTrackerKeysAreModeScoped(t *testing.T) {
	tracker := newTestTracker(t)

	if err := tracker.Set("BTC-USDT", models.ModeSpot); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if tracker.Active("BTC-USDT", models.ModeFutures, time.Hour) {
		t.Fatalf("spot cooldown leaked into futures")
	}
	if tracker.Active("ETH-USDT", models.ModeSpot, time.Hour) {
		t.Fatalf("cooldown leaked across symbols")
	}
}

func TestTrackerExpiredWindow(t *testing.T) {
	tracker := newTestTracker(t)

	if err := tracker.Set("BTC-USDT", models.ModeSpot); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if tracker.Active("BTC-USDT", models.ModeSpot, -time.Minute) {
		t.Fatalf("cooldown active past its window")
	}
}

func TestTrackerSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cooldown.json")

	if err := New(path).Set("SOL-USDT", models.ModeFutures); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if !New(path).Active("SOL-USDT", models.ModeFutures, time.Hour) {
		t.Fatalf("cooldown lost across tracker instances")
	}
}

func TestTrackerToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cooldown.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	tracker := New(path)
	if tracker.Active("BTC-USDT", models.ModeSpot, time.Hour) {
		t.Fatalf("corrupt file produced an active cooldown")
	}
	if err := tracker.Set("BTC-USDT", models.ModeSpot); err != nil {
		t.Fatalf("set over corrupt file failed: %v", err)
	}
	if !tracker.Active("BTC-USDT", models.ModeSpot, time.Hour) {
		t.Fatalf("tracker did not recover from corrupt file")
	}
}
