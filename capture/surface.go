package capture

import "context"

// Navigator moves the presentation forward and reports when it has settled.
type Navigator interface {
	// SendAdvance dispatches one logical "move forward" input. The
	// presentation decides whether it reveals a fragment or changes position.
	SendAdvance(ctx context.Context) error

	// WaitUntilReady blocks until the readiness flag is true. Hooks on the
	// surface clear the flag for position changes only; fragment reveals
	// leave it set.
	WaitUntilReady(ctx context.Context) error
}

// Introspector answers questions about the presentation's current state.
type Introspector interface {
	TotalSteps(ctx context.Context) (int, error)
	CurrentStep(ctx context.Context) (int, error)
	IsTerminal(ctx context.Context) (bool, error)
	VisibleLinks(ctx context.Context) ([]Link, error)

	// NoteMarkup returns the speaker-note markup of the current position,
	// or "" when the position has none.
	NoteMarkup(ctx context.Context) (string, error)
}

// Snapshotter writes a full-viewport image of the current state to dest.
type Snapshotter interface {
	Snapshot(ctx context.Context, dest string) error
}

// Surface is one exclusive, serially accessed rendering session. Calls on
// a Surface never overlap.
type Surface interface {
	Navigator
	Introspector
	Snapshotter
}

// Checkpointer persists the closed part of a record. Each call replaces
// whatever was persisted before.
type Checkpointer interface {
	Persist(ctx context.Context, r Record) error
}
