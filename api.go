// Package snippet measures how long a piece of code takes to run and logs it
// together with the place it was called from.
//
// snippet focuses on ad-hoc, immediately-emitted measurements. It is not a
// profiler and it does not aggregate: every capture produces one Record and
// one log line.
//
// Core Components:
//   - ExecutionPath: Routes every API call to a measuring or an inert implementation.
//   - Token: A capture in progress that can be handed across functions and goroutines.
//   - Record: The immutable result of a completed capture.
//   - Sink: Receives the formatted lines.
//
// Closure Capture:
//
//	snippet.Install(snippet.NewMeasuredPath(snippet.DefaultSettings(), sink))
//
//	rec := snippet.Capture(func() {
//		loadConfiguration()
//	})
//
// Token Capture:
//
//	token := snippet.StartCaptureWithTag("warmup")
//	// ... anywhere else, even on another goroutine:
//	snippet.Find("warmup").AddSplit("caches")
//	snippet.Find("warmup").EndCapture()
//
// Tokens are recycled through a pool. A token must not be used after
// EndCapture returns a non-empty Record; stale references degrade to no-ops.
//
// Thread Safety:
//
// ExecutionPath implementations, Settings and Collectors are safe for
// concurrent use. A Token may be completed from any goroutine unless its
// thread lock is enabled.
//
// Release Builds:
//
// Until Install is called the InertPath is active. It runs closures and
// hands out NoOpToken, so instrumented code costs almost nothing.
package snippet

import "errors"

// Tag is an application-chosen key used to find a token from elsewhere.
type Tag = string

var (
	// ErrInvalidRelease is returned when a token is returned to a pool that
	// did not issue it, or is returned twice.
	ErrInvalidRelease = errors.New("snippet: token was not issued by this pool")

	// ErrInvalidState is returned when a split is added to a token that is not active.
	ErrInvalidState = errors.New("snippet: token is not active")

	// ErrResolution is returned when no calling frame can be found for an API.
	ErrResolution = errors.New("snippet: calling frame not found")
)
