package capture

import "errors"

// ErrSurfaceUnavailable is returned when the rendering surface cannot be
// reached or initialised. The walk never starts.
var ErrSurfaceUnavailable = errors.New("capture: surface unavailable")

// ErrCaptureFailure is returned when a snapshot request fails. It is never
// retried: a retried screenshot could duplicate or skip a position.
var ErrCaptureFailure = errors.New("capture: snapshot failed")

// ErrQueryFailure is returned when a counter, predicate, link or notes query
// fails or returns malformed data.
var ErrQueryFailure = errors.New("capture: query failed")

// ErrTimeoutExceeded is returned when Config.ReadyTimeout is set and the
// readiness flag did not turn true in time.
var ErrTimeoutExceeded = errors.New("capture: readiness wait timed out")
