package reveal

import (
	"log/slog"
	"time"

	"github.com/hazyhaar/stagecraft/capture"
)

// DefaultURL is where a locally served deck is expected.
const DefaultURL = "http://127.0.0.1:8000/local-reveal.html"

// DefaultLinkSelector matches anchors on the current slide.
const DefaultLinkSelector = ".slides > .present a"

// Config configures a reveal session.
type Config struct {
	// URL of the deck. Default: DefaultURL.
	URL string

	// RemoteURL is the DevTools WebSocket of an already running Chrome.
	// Empty = launch a local one.
	RemoteURL      string
	Headful        bool
	Bin            string
	Stealth        bool
	BlockResources []string

	// Width and Height of the viewport in CSS pixels. Default: 1600x900.
	Width  int
	Height int

	// Zoom scales the page body. Default: 0.7.
	Zoom float64

	// LinkSelector picks the anchors reported as links. Default: DefaultLinkSelector.
	LinkSelector string

	// NavigateTimeout bounds page load. Default: 30s.
	NavigateTimeout time.Duration

	// ReadyTimeout bounds the wait for Reveal.isReady(). Default: 30s.
	ReadyTimeout time.Duration

	// Settle is the pause after the hooks are installed. Default: 1s.
	Settle time.Duration

	Clock  capture.Clock
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Width <= 0 {
		c.Width = 1600
	}
	if c.Height <= 0 {
		c.Height = 900
	}
	if c.Zoom <= 0 {
		c.Zoom = 0.7
	}
	if c.LinkSelector == "" {
		c.LinkSelector = DefaultLinkSelector
	}
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = 30 * time.Second
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = 30 * time.Second
	}
	if c.Settle <= 0 {
		c.Settle = time.Second
	}
	if c.Clock == nil {
		c.Clock = capture.SystemClock()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
