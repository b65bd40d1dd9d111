// Package cooldown keeps per symbol+mode signal timestamps in a JSON file
// so restarts do not re-alert the same setup immediately.
package cooldown

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"crypto-signal-scanner/models"
)

// Tracker is a file-backed cooldown map. Safe for concurrent use.
type Tracker struct {
	path string
	mu   sync.Mutex
}

// New creates a tracker persisting to the given file path.
func New(path string) *Tracker {
	return &Tracker{path: path}
}

// Active reports whether the symbol/mode pair signalled within the window.
func (t *Tracker) Active(symbol string, mode models.Mode, window time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	data := t.load()
	last, ok := data[key(symbol, mode)]
	if !ok {
		return false
	}
	return time.Now().UTC().Before(last.Add(window))
}

// Set records the current time for the symbol/mode pair.
func (t *Tracker) Set(symbol string, mode models.Mode) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data := t.load()
	data[key(symbol, mode)] = time.Now().UTC()
	return t.save(data)
}

// load returns the stored map; a missing or corrupt file yields an empty
// map rather than an error, matching the throwaway nature of the data.
func (t *Tracker) load() map[string]time.Time {
	raw, err := os.ReadFile(t.path)
	if err != nil {
		return map[string]time.Time{}
	}
	var data map[string]time.Time
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		return map[string]time.Time{}
	}
	return data
}

func (t *Tracker) save(data map[string]time.Time) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cooldown data: %w", err)
	}
	if err := os.WriteFile(t.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing cooldown file: %w", err)
	}
	return nil
}

func key(symbol string, mode models.Mode) string {
	return symbol + "_" + string(mode)
}
