package reveal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hazyhaar/stagecraft/capture"
)

// Surface exposes a prepared reveal.js page as a capture.Surface. It
// relies on the hooks installed by Setup.
type Surface struct {
	d   driver
	log *slog.Logger
}

var _ capture.Surface = (*Surface)(nil)

func newSurface(d driver, log *slog.Logger) *Surface {
	return &Surface{d: d, log: log}
}

// SendAdvance presses Space: the next fragment or the next slide.
func (s *Surface) SendAdvance(ctx context.Context) error {
	if err := s.d.Advance(ctx); err != nil {
		return fmt.Errorf("reveal: press space: %w", err)
	}
	return nil
}

// WaitUntilReady polls window.slideReady until it is true.
func (s *Surface) WaitUntilReady(ctx context.Context) error {
	if err := s.d.Wait(ctx, jsSlideReady); err != nil {
		return fmt.Errorf("reveal: wait slide ready: %w", err)
	}
	return nil
}

// TotalSteps returns Reveal.getTotalSlides().
func (s *Surface) TotalSteps(ctx context.Context) (int, error) {
	var n int
	if err := s.d.Eval(ctx, &n, jsTotalSlides); err != nil {
		return 0, fmt.Errorf("reveal: total slides: %w", err)
	}
	return n, nil
}

// CurrentStep returns the hook-maintained window.slideNumber.
func (s *Surface) CurrentStep(ctx context.Context) (int, error) {
	var n int
	if err := s.d.Eval(ctx, &n, jsSlideNumber); err != nil {
		return 0, fmt.Errorf("reveal: slide number: %w", err)
	}
	return n, nil
}

// IsTerminal returns Reveal.isLastSlide().
func (s *Surface) IsTerminal(ctx context.Context) (bool, error) {
	var last bool
	if err := s.d.Eval(ctx, &last, jsIsLastSlide); err != nil {
		return false, fmt.Errorf("reveal: is last slide: %w", err)
	}
	return last, nil
}

// VisibleLinks returns the anchors of the present slide with their
// geometry, as window.getLinkElements() reports them.
func (s *Surface) VisibleLinks(ctx context.Context) ([]capture.Link, error) {
	var links []capture.Link
	if err := s.d.Eval(ctx, &links, jsLinks); err != nil {
		return nil, fmt.Errorf("reveal: links: %w", err)
	}
	if links == nil {
		links = []capture.Link{}
	}
	return links, nil
}

// NoteMarkup returns Reveal.getSlideNotes(). A slide without notes
// yields "".
func (s *Surface) NoteMarkup(ctx context.Context) (string, error) {
	var notes *string
	if err := s.d.Eval(ctx, &notes, jsSlideNotes); err != nil {
		return "", fmt.Errorf("reveal: slide notes: %w", err)
	}
	if notes == nil {
		return "", nil
	}
	return *notes, nil
}

// Snapshot writes a PNG of the visible viewport to dest, creating its
// directory if needed.
func (s *Surface) Snapshot(ctx context.Context, dest string) error {
	png, err := s.d.Screenshot(ctx)
	if err != nil {
		return fmt.Errorf("reveal: screenshot: %w", err)
	}
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("reveal: screenshot dir: %w", err)
		}
	}
	if err := os.WriteFile(dest, png, 0o644); err != nil {
		return fmt.Errorf("reveal: write screenshot: %w", err)
	}
	s.log.Debug("reveal: screenshot written", "file", dest, "bytes", len(png))
	return nil
}
