package reveal

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// driver is the slice of a browser page the surface needs.
type driver interface {
	// Eval runs a JS function expression and decodes its result into out.
	// out may be nil.
	Eval(ctx context.Context, out any, js string, args ...any) error
	// Wait polls a JS predicate until it returns true.
	Wait(ctx context.Context, js string) error
	// Advance presses the key that moves a deck one step forward.
	Advance(ctx context.Context) error
	// ResetZoom presses Ctrl+0.
	ResetZoom(ctx context.Context) error
	SetViewport(ctx context.Context, width, height int) error
	// Screenshot captures the visible viewport as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
}

// rodDriver implements driver over a Rod page.
type rodDriver struct {
	page *rod.Page
}

func (d *rodDriver) Eval(ctx context.Context, out any, js string, args ...any) error {
	res, err := d.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := res.Value.Unmarshal(out); err != nil {
		return fmt.Errorf("decode %T: %w", out, err)
	}
	return nil
}

func (d *rodDriver) Wait(ctx context.Context, js string) error {
	return d.page.Context(ctx).Wait(rod.Eval(js))
}

func (d *rodDriver) Advance(ctx context.Context) error {
	return d.page.Context(ctx).Keyboard.Type(input.Space)
}

func (d *rodDriver) ResetZoom(ctx context.Context) error {
	return d.page.Context(ctx).KeyActions().Press(input.ControlLeft).Type(input.Digit0).Do()
}

func (d *rodDriver) SetViewport(ctx context.Context, width, height int) error {
	return d.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
}

func (d *rodDriver) Screenshot(ctx context.Context) ([]byte, error) {
	return d.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}
