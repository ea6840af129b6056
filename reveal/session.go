// Package reveal drives a reveal.js deck in headless Chrome and exposes
// it as a capture.Surface.
//
//	sess, err := reveal.Open(ctx, reveal.Config{URL: url})
//	if err != nil { ... }
//	defer sess.Close()
//	ctrl := capture.New(sess.Surface, capture.Config{})
package reveal

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/stagecraft/capture"
	"github.com/hazyhaar/stagecraft/reveal/internal/browser"
)

// Session owns the browser, the page and the prepared surface.
type Session struct {
	Surface *Surface

	mgr  *browser.Manager
	page *browser.Page
}

// Open starts Chrome, loads cfg.URL and prepares the deck. Any failure
// before the surface is usable is reported as capture.ErrSurfaceUnavailable
// and leaves nothing running.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	cfg.defaults()

	mgr := browser.NewManager(browser.Config{
		RemoteURL:       cfg.RemoteURL,
		Headful:         cfg.Headful,
		Bin:             cfg.Bin,
		Stealth:         cfg.Stealth,
		BlockResources:  cfg.BlockResources,
		NavigateTimeout: cfg.NavigateTimeout,
		Logger:          cfg.Logger,
	})
	if _, err := mgr.Start(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", capture.ErrSurfaceUnavailable, err)
	}

	page, err := mgr.OpenPage(ctx, cfg.URL)
	if err != nil {
		mgr.Close()
		return nil, fmt.Errorf("%w: %w", capture.ErrSurfaceUnavailable, err)
	}

	d := &rodDriver{page: page.Page}
	if err := setup(ctx, d, cfg); err != nil {
		page.Close()
		mgr.Close()
		if errors.Is(err, capture.ErrSurfaceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", capture.ErrSurfaceUnavailable, err)
	}

	return &Session{
		Surface: newSurface(d, cfg.Logger),
		mgr:     mgr,
		page:    page,
	}, nil
}

// Close closes the page and shuts the browser down.
func (s *Session) Close() error {
	var errs []error
	if s.page != nil {
		errs = append(errs, s.page.Close())
		s.page = nil
	}
	if s.mgr != nil {
		errs = append(errs, s.mgr.Close())
		s.mgr = nil
	}
	return errors.Join(errs...)
}
