package capture

import (
	"log/slog"
	"time"
)

// DefaultNamePattern names screenshots screenshot-0001.png, screenshot-0002.png, ...
const DefaultNamePattern = "screenshot-%04d.png"

// Config configures a Controller. Zero values take the defaults below.
type Config struct {
	// Dir is prepended to screenshot names. Empty = current directory.
	Dir string

	// NamePattern is a fmt pattern taking the screenshot sequence number.
	// Default: DefaultNamePattern.
	NamePattern string

	// FragmentThreshold separates fragment reveals from slide transitions.
	// Default: 200ms.
	FragmentThreshold time.Duration

	// PreWait lets the surface hooks fire before polling readiness. Default: 50ms.
	PreWait time.Duration

	// SettleDelay is applied after a fragment reveal so slower effects
	// finish before the next screenshot. Default: 1s.
	SettleDelay time.Duration

	// InitialSettle is the pause between the first screenshot and the first
	// advance of a Walk. Default: 1s.
	InitialSettle time.Duration

	// ReadyTimeout bounds the readiness wait. 0 = wait forever.
	ReadyTimeout time.Duration

	// QueryRetries is the number of extra attempts for failed metadata
	// queries. Snapshots are never retried. Default: 0.
	QueryRetries int

	// RetryBackoff is multiplied by the attempt number between retries.
	// Default: 100ms.
	RetryBackoff time.Duration

	// IncludeFinal closes the trailing unit into the record at the end of
	// a Walk. Off by default: the last position's unit stays open and is
	// not persisted.
	IncludeFinal bool

	// Classify overrides the transition heuristic. Default:
	// ThresholdClassifier(FragmentThreshold).
	Classify Classifier

	// Transform turns note markup into markdown. Default: identity.
	Transform func(markup string) string

	Clock  Clock
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NamePattern == "" {
		c.NamePattern = DefaultNamePattern
	}
	if c.FragmentThreshold <= 0 {
		c.FragmentThreshold = DefaultFragmentThreshold
	}
	if c.PreWait <= 0 {
		c.PreWait = 50 * time.Millisecond
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = time.Second
	}
	if c.InitialSettle <= 0 {
		c.InitialSettle = time.Second
	}
	if c.QueryRetries < 0 {
		c.QueryRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 100 * time.Millisecond
	}
	if c.Classify == nil {
		c.Classify = ThresholdClassifier(c.FragmentThreshold)
	}
	if c.Transform == nil {
		c.Transform = func(s string) string { return s }
	}
	if c.Clock == nil {
		c.Clock = SystemClock()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
