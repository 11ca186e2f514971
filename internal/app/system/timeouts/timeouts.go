// Package timeouts provides centralized timeout values for handler
// operations against the EduSphere backend.
//
// These are used with context.WithTimeout around outbound API calls.
// Centralizing the values keeps handlers consistent and makes it easy to
// tune them in one place.
//
// Guidelines:
//   - Short: single reads (current user, one member)
//   - Medium: list fetches and simple mutations
//   - Long: mutations that may trigger backend side effects (invite emails,
//     organization setup)
package timeouts

import (
	"sync"
	"time"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// mu protects the timeout values from concurrent access.
var mu sync.RWMutex

var (
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
)

// Short returns the timeout for simple single-resource reads.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the timeout for list fetches and simple mutations.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the timeout for mutations with backend side effects.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Config holds timeout overrides. Zero values are ignored.
type Config struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Configure sets custom timeout values during startup, before handlers are
// registered. Zero values keep the current settings.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
}
