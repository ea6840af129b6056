// Package capture walks a presentation slide by slide and fragment by
// fragment, and assembles the screenshots, speaker notes and link geometry
// seen at each step into an ordered Record.
//
// The controller only talks to a Surface. It never renders, lays out or
// persists anything itself:
//
//	ctrl := capture.New(surface, capture.Config{Transform: conv.Transform})
//	summary, err := ctrl.Walk(ctx, recordStore)
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
)

// Controller drives one linear traversal of a presentation. It owns its
// surface and screenshot counter exclusively and is not safe for
// concurrent use.
type Controller struct {
	surface Surface
	cfg     Config
	log     *slog.Logger

	// units holds the closed units followed by exactly one open unit.
	units []Unit
	seq   int

	last        Transition
	lastElapsed time.Duration
}

// New creates a Controller with an empty record and one open unit.
func New(s Surface, cfg Config) *Controller {
	cfg.defaults()
	return &Controller{
		surface: s,
		cfg:     cfg,
		log:     cfg.Logger,
		units:   []Unit{newUnit()},
		seq:     1,
	}
}

func (c *Controller) open() *Unit {
	return &c.units[len(c.units)-1]
}

// TakeScreenshot snapshots the surface into the next sequence-numbered file
// and appends the identifier to the open unit. A failed snapshot does not
// consume a sequence number.
func (c *Controller) TakeScreenshot(ctx context.Context) (string, error) {
	dest := fmt.Sprintf(c.cfg.NamePattern, c.seq)
	if c.cfg.Dir != "" {
		dest = filepath.Join(c.cfg.Dir, dest)
	}

	c.log.Info("capture: creating screenshot", "file", dest)
	if err := c.surface.Snapshot(ctx, dest); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrCaptureFailure, dest, err)
	}

	c.seq++
	u := c.open()
	u.Screenshots = append(u.Screenshots, dest)
	return dest, nil
}

// Advance moves the presentation one step forward. It returns false, with
// no state change, when the surface is already on its last step. On true,
// the previous unit is closed and a new open unit holds the links and
// notes of the reached position; the caller takes its screenshot. On error
// the record and the open unit are left as they were.
func (c *Controller) Advance(ctx context.Context) (bool, error) {
	total, err := query(ctx, c, "total steps", c.surface.TotalSteps)
	if err != nil {
		return false, err
	}
	current, err := query(ctx, c, "current step", c.surface.CurrentStep)
	if err != nil {
		return false, err
	}
	if total < 0 || current < 0 {
		return false, fmt.Errorf("%w: malformed counters %d/%d", ErrQueryFailure, current, total)
	}
	if current == total {
		return false, nil
	}
	// The counter is maintained by injected hooks; the surface's own
	// predicate catches drift.
	terminal, err := query(ctx, c, "terminal predicate", c.surface.IsTerminal)
	if err != nil {
		return false, err
	}
	if terminal {
		c.log.Warn("capture: terminal predicate disagrees with counters", "step", current, "total", total)
		return false, nil
	}

	c.log.Info("capture: advancing", "step", current+1, "total", total)
	start := c.cfg.Clock.Now()
	if err := c.surface.SendAdvance(ctx); err != nil {
		return false, fmt.Errorf("%w: send advance: %w", ErrSurfaceUnavailable, err)
	}
	if err := c.cfg.Clock.Sleep(ctx, c.cfg.PreWait); err != nil {
		return false, fmt.Errorf("capture: advance: %w", err)
	}
	if err := c.waitReady(ctx); err != nil {
		return false, err
	}

	elapsed := c.cfg.Clock.Now().Sub(start)
	c.last, c.lastElapsed = c.cfg.Classify(elapsed), elapsed
	if c.last == FragmentChange {
		c.log.Info("capture: no slide change, settling", "elapsed", elapsed, "delay", c.cfg.SettleDelay)
		if err := c.cfg.Clock.Sleep(ctx, c.cfg.SettleDelay); err != nil {
			return false, fmt.Errorf("capture: advance: %w", err)
		}
	} else {
		c.log.Info("capture: transition finished", "elapsed", elapsed)
	}

	links, err := query(ctx, c, "visible links", c.surface.VisibleLinks)
	if err != nil {
		return false, err
	}
	if links == nil {
		links = []Link{}
	}
	markup, err := query(ctx, c, "note markup", c.surface.NoteMarkup)
	if err != nil {
		return false, err
	}

	// The previous unit closes only once the new one is complete.
	next := newUnit()
	next.Links = links
	next.SpeakerNotes = SpeakerNotes{Markup: markup, Text: c.cfg.Transform(markup)}
	c.units = append(c.units, next)

	c.log.Debug("capture: step metadata", "links", len(links), "notes", next.SpeakerNotes.Text)
	return true, nil
}

func (c *Controller) waitReady(ctx context.Context) error {
	waitCtx := ctx
	if c.cfg.ReadyTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.cfg.ReadyTimeout)
		defer cancel()
	}

	err := c.surface.WaitUntilReady(waitCtx)
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeoutExceeded, c.cfg.ReadyTimeout)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("capture: wait until ready: %w", ctx.Err())
	}
	return fmt.Errorf("%w: wait until ready: %w", ErrQueryFailure, err)
}

// Record returns a copy of the closed units. The open unit is never part
// of it.
func (c *Controller) Record() Record {
	return Record(c.units[:len(c.units)-1]).Clone()
}

// Current returns a copy of the open unit.
func (c *Controller) Current() Unit {
	return c.open().Clone()
}

// Flush closes the open unit into the record when it holds at least one
// screenshot, and reports whether it did.
func (c *Controller) Flush() bool {
	if len(c.open().Screenshots) == 0 {
		return false
	}
	c.units = append(c.units, newUnit())
	return true
}

// LastTransition reports how the latest successful advance was classified
// and how long it took.
func (c *Controller) LastTransition() (Transition, time.Duration) {
	return c.last, c.lastElapsed
}

// query runs fn, retrying up to Config.QueryRetries extra times with a
// linear backoff. The final error is tagged ErrQueryFailure.
func query[T any](ctx context.Context, c *Controller, what string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var err error
	for attempt := 0; attempt <= c.cfg.QueryRetries; attempt++ {
		if attempt > 0 {
			c.log.Warn("capture: retrying query", "query", what, "attempt", attempt, "error", err)
			if serr := c.cfg.Clock.Sleep(ctx, time.Duration(attempt)*c.cfg.RetryBackoff); serr != nil {
				return zero, fmt.Errorf("capture: %s: %w", what, serr)
			}
		}
		var v T
		v, err = fn(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	return zero, fmt.Errorf("%w: %s: %w", ErrQueryFailure, what, err)
}
