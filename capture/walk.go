package capture

import (
	"context"
	"fmt"
)

// Summary counts what a Walk did.
type Summary struct {
	Advances    int `json:"advances"`
	Fragments   int `json:"fragments"`
	Positions   int `json:"positions"`
	Screenshots int `json:"screenshots"`
	Units       int `json:"units"`
}

// Walk performs a full export pass: it screenshots the starting position,
// then advances and screenshots until the surface reports its last step.
// After every successful step the closed part of the record is handed to
// cp, so a crash loses at most the in-flight unit. cp may be nil.
//
// Errors stop the walk immediately; the open unit is discarded.
func (c *Controller) Walk(ctx context.Context, cp Checkpointer) (Summary, error) {
	var sum Summary

	if _, err := c.TakeScreenshot(ctx); err != nil {
		return sum, err
	}
	sum.Screenshots++

	if err := c.cfg.Clock.Sleep(ctx, c.cfg.InitialSettle); err != nil {
		return sum, fmt.Errorf("capture: walk: %w", err)
	}

	for {
		ok, err := c.Advance(ctx)
		if err != nil {
			return sum, err
		}
		if !ok {
			break
		}
		sum.Advances++
		if c.last == FragmentChange {
			sum.Fragments++
		} else {
			sum.Positions++
		}

		if _, err := c.TakeScreenshot(ctx); err != nil {
			return sum, err
		}
		sum.Screenshots++

		if err := c.checkpoint(ctx, cp); err != nil {
			return sum, err
		}
		sum.Units = len(c.units) - 1
	}

	if c.cfg.IncludeFinal && c.Flush() {
		c.log.Info("capture: closing final unit")
		if err := c.checkpoint(ctx, cp); err != nil {
			return sum, err
		}
	}
	sum.Units = len(c.units) - 1

	c.log.Info("capture: walk finished",
		"advances", sum.Advances, "units", sum.Units, "screenshots", sum.Screenshots,
		"fragments", sum.Fragments, "positions", sum.Positions)
	return sum, nil
}

func (c *Controller) checkpoint(ctx context.Context, cp Checkpointer) error {
	if cp == nil {
		return nil
	}
	if err := cp.Persist(ctx, c.Record()); err != nil {
		return fmt.Errorf("capture: checkpoint: %w", err)
	}
	return nil
}
