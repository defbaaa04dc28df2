// Package timeouts holds the deadlines handlers and workers put on database
// work. Handlers wrap each request in context.WithTimeout using one of the
// tiers below.
//
//   - Ping: health checks
//   - Short: single-document reads and writes
//   - Medium: list queries and single-container reorders
//   - Long: cascades and cross-container moves, board tree loads
package timeouts

import (
	"os"
	"sync"
	"time"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// Config holds one value per tier. Zero fields leave the current value alone.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
}

// Ping bounds health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return cur.Ping
}

// Short bounds single-document reads and writes.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return cur.Short
}

// Medium bounds list queries and single-container reorders.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return cur.Medium
}

// Long bounds cascades, cross-container moves and tree loads.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return cur.Long
}

// Configure overrides the non-zero tiers in cfg. Call it at startup before
// routes are mounted.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	apply(&cur.Ping, cfg.Ping)
	apply(&cur.Short, cfg.Short)
	apply(&cur.Medium, cfg.Medium)
	apply(&cur.Long, cfg.Long)
}

func apply(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// Reset restores the defaults. Tests use it after Configure.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// ConfigureFromEnv reads TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_MEDIUM and
// TIMEOUT_LONG as Go durations ("2s", "500ms"). Unset, unparsable and
// non-positive values are skipped. It returns how many tiers were set.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()

	n := 0
	for _, e := range []struct {
		key string
		dst *time.Duration
	}{
		{"TIMEOUT_PING", &cur.Ping},
		{"TIMEOUT_SHORT", &cur.Short},
		{"TIMEOUT_MEDIUM", &cur.Medium},
		{"TIMEOUT_LONG", &cur.Long},
	} {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*e.dst = d
			n++
		}
	}
	return n
}

// Current returns a snapshot of the active values, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}
