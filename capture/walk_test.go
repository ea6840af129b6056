package capture

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWalk_CheckpointsAfterEveryStep(t *testing.T) {
	clock := newFakeClock()
	s := slides(clock, 4)
	rec := &recorder{}
	c := newTestController(s, clock, Config{})

	sum, err := c.Walk(context.Background(), rec)
	if err != nil {
		t.Fatal(err)
	}

	if sum.Advances != 3 || sum.Screenshots != 4 || sum.Units != 3 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Screenshots != 1+sum.Advances {
		t.Errorf("screenshots = %d, want 1 + advances", sum.Screenshots)
	}
	if len(rec.saved) != 3 {
		t.Fatalf("persisted %d times, want 3", len(rec.saved))
	}
	for i, r := range rec.saved {
		if len(r) != i+1 {
			t.Errorf("checkpoint %d has %d units, want %d", i, len(r), i+1)
		}
	}
	if !clock.slept(time.Second) {
		t.Error("walk did not settle before the first advance")
	}
}

func TestWalk_IncludeFinal(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{}
	c := newTestController(slides(clock, 3), clock, Config{IncludeFinal: true})

	sum, err := c.Walk(context.Background(), rec)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Units != 3 {
		t.Errorf("units = %d, want 3", sum.Units)
	}
	last := rec.saved[len(rec.saved)-1]
	if len(last) != 3 || last[2].Screenshots[0] != "screenshot-0003.png" {
		t.Errorf("final checkpoint = %+v", last)
	}
}

func TestWalk_FailureKeepsCheckpointedPrefix(t *testing.T) {
	clock := newFakeClock()
	s := slides(clock, 5)
	rec := &recorder{}
	c := newTestController(s, clock, Config{})

	// Fail the third advance's link query.
	wrapped := &failingLinks{fakeSurface: s, failOn: 3}
	c.surface = wrapped

	_, err := c.Walk(context.Background(), rec)
	if !errors.Is(err, ErrQueryFailure) {
		t.Fatalf("err = %v, want ErrQueryFailure", err)
	}
	if len(rec.saved) != 2 {
		t.Fatalf("persisted %d checkpoints, want 2", len(rec.saved))
	}
	if got := len(rec.saved[1]); got != 2 {
		t.Errorf("last checkpoint has %d units, want 2", got)
	}
}

func TestWalk_CheckpointError(t *testing.T) {
	clock := newFakeClock()
	rec := &recorder{err: errors.New("disk full")}
	c := newTestController(slides(clock, 3), clock, Config{})

	if _, err := c.Walk(context.Background(), rec); err == nil {
		t.Fatal("expected checkpoint error")
	}
}

func TestWalk_InitialScreenshotFailure(t *testing.T) {
	clock := newFakeClock()
	s := slides(clock, 3)
	s.snapErr = errors.New("page crashed")
	c := newTestController(s, clock, Config{})

	sum, err := c.Walk(context.Background(), nil)
	if !errors.Is(err, ErrCaptureFailure) {
		t.Fatalf("err = %v, want ErrCaptureFailure", err)
	}
	if s.advanceCalls != 0 || sum.Screenshots != 0 {
		t.Errorf("walk continued after failed initial screenshot: %+v", sum)
	}
}

type failingLinks struct {
	*fakeSurface
	failOn int
	calls  int
}

func (f *failingLinks) VisibleLinks(ctx context.Context) ([]Link, error) {
	f.calls++
	if f.calls == f.failOn {
		return nil, errors.New("boom")
	}
	return f.fakeSurface.VisibleLinks(ctx)
}
