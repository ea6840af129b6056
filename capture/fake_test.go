package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeClock advances only when told to or when slept on.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return ctx.Err()
}

func (c *fakeClock) slept(d time.Duration) bool {
	for _, s := range c.sleeps {
		if s == d {
			return true
		}
	}
	return false
}

// step scripts what happens after one SendAdvance.
type step struct {
	slide bool          // true: the position counter moves
	wait  time.Duration // time spent inside WaitUntilReady
	block bool          // WaitUntilReady blocks until ctx is done
	links []Link
	notes string
}

// fakeSurface is a scripted presentation. current starts at 1.
type fakeSurface struct {
	clock    *fakeClock
	total    int
	current  int
	terminal bool
	steps    []step
	next     int
	pending  step

	snapErr      error
	linkErr      error
	linkFailures int // number of VisibleLinks calls that fail before succeeding
	totalErr     error
	advanceCalls int
	snapshots    []string
}

func newFakeSurface(clock *fakeClock, total int, steps ...step) *fakeSurface {
	return &fakeSurface{clock: clock, total: total, current: 1, steps: steps}
}

// slides builds a deck of n slides without fragments.
func slides(clock *fakeClock, n int) *fakeSurface {
	steps := make([]step, n-1)
	for i := range steps {
		steps[i] = step{slide: true, wait: 400 * time.Millisecond}
	}
	return newFakeSurface(clock, n, steps...)
}

func (s *fakeSurface) TotalSteps(context.Context) (int, error) {
	if s.totalErr != nil {
		return 0, s.totalErr
	}
	return s.total, nil
}

func (s *fakeSurface) CurrentStep(context.Context) (int, error) { return s.current, nil }

func (s *fakeSurface) IsTerminal(context.Context) (bool, error) {
	return s.terminal || s.next >= len(s.steps), nil
}

func (s *fakeSurface) SendAdvance(context.Context) error {
	s.advanceCalls++
	if s.next >= len(s.steps) {
		return errors.New("no more steps scripted")
	}
	s.pending = s.steps[s.next]
	s.next++
	if s.pending.slide {
		s.current++
	}
	return nil
}

func (s *fakeSurface) WaitUntilReady(ctx context.Context) error {
	if s.pending.block {
		<-ctx.Done()
		return ctx.Err()
	}
	s.clock.now = s.clock.now.Add(s.pending.wait)
	return nil
}

func (s *fakeSurface) VisibleLinks(context.Context) ([]Link, error) {
	if s.linkFailures > 0 {
		s.linkFailures--
		return nil, errors.New("eval: execution context destroyed")
	}
	if s.linkErr != nil {
		return nil, s.linkErr
	}
	return s.pending.links, nil
}

func (s *fakeSurface) NoteMarkup(context.Context) (string, error) {
	return s.pending.notes, nil
}

func (s *fakeSurface) Snapshot(_ context.Context, dest string) error {
	if s.snapErr != nil {
		return s.snapErr
	}
	s.snapshots = append(s.snapshots, dest)
	return nil
}

// recorder is a Checkpointer that keeps every persisted record.
type recorder struct {
	saved []Record
	err   error
}

func (r *recorder) Persist(_ context.Context, rec Record) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, rec)
	return nil
}
