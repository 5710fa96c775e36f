// Package source feeds accessibility events into a rate-limited sink.
//
// Two sources exist: a synthetic storm generator for load tests and the
// daemon's demo mode, and (on Linux) an AT-SPI adapter that translates
// desktop accessibility signals. Platforms without a native adapter get a
// stub that reports unavailability.
package source

import (
	"context"
	"errors"

	"uiagate/internal/uia"
)

// ErrNotAvailable is returned by Run when the source cannot operate on this
// platform or with current permissions.
var ErrNotAvailable = errors.New("source: not available")

// Sink is where a source delivers events: anything implementing the five
// handler capabilities, usually a *limiter.RateLimitedSink.
type Sink interface {
	uia.AutomationEventHandler
	uia.FocusChangedEventHandler
	uia.PropertyChangedEventHandler
	uia.NotificationEventHandler
	uia.ActiveTextPositionChangedEventHandler
}

// Source produces events until its context is cancelled.
type Source interface {
	// Run delivers events to the sink. Blocks until the context is done or
	// the source fails.
	Run(ctx context.Context, sink Sink) error

	// Name identifies the source in logs.
	Name() string
}
