package reveal

import (
	"context"
	"fmt"

	"github.com/hazyhaar/stagecraft/capture"
)

// setup prepares a freshly loaded deck for capture: zoom reset, fixed
// viewport, wait for reveal.js, body zoom, hooks, settle. Only the
// readiness wait is bounded; it fails with capture.ErrSurfaceUnavailable.
func setup(ctx context.Context, d driver, cfg Config) error {
	log := cfg.Logger

	if err := d.ResetZoom(ctx); err != nil {
		return fmt.Errorf("reveal: reset zoom: %w", err)
	}
	if err := d.SetViewport(ctx, cfg.Width, cfg.Height); err != nil {
		return fmt.Errorf("reveal: viewport: %w", err)
	}

	readyCtx, cancel := context.WithTimeout(ctx, cfg.ReadyTimeout)
	err := d.Wait(readyCtx, jsRevealReady)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("reveal: wait ready: %w", ctx.Err())
		}
		return fmt.Errorf("%w: reveal.js not ready after %s: %w", capture.ErrSurfaceUnavailable, cfg.ReadyTimeout, err)
	}
	log.Info("reveal: reveal.js is ready")

	if err := d.Eval(ctx, nil, jsZoom, cfg.Zoom); err != nil {
		return fmt.Errorf("reveal: zoom: %w", err)
	}
	if err := d.Eval(ctx, nil, jsInstallHooks, cfg.LinkSelector); err != nil {
		return fmt.Errorf("reveal: install hooks: %w", err)
	}
	log.Info("reveal: hooks injected", "zoom", cfg.Zoom, "viewport", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height))

	if err := cfg.Clock.Sleep(ctx, cfg.Settle); err != nil {
		return fmt.Errorf("reveal: settle: %w", err)
	}
	return nil
}
