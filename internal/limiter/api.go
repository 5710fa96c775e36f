// Package limiter rate-limits the accessibility event stream between an OS
// event source and the screen reader's real handlers.
//
// Under bursty UI activity the raw stream delivers hundreds of notifications
// per second, most of them stale the moment a newer one for the same
// (element, event) class arrives. The RateLimitedSink interposes: it buffers
// inbound events, keeps only the latest record per coalescing class, tells
// the host when a batch is due, and emits the survivors in a single Flush
// scheduled by the host.
//
// Intakes arrive on OS worker threads; Flush runs on the host's thread. The
// sink serializes both through one mutex whose critical sections are bounded
// map-and-list work: runtime-id round-trips happen before the lock, dispatch
// after it.
package limiter

import (
	"container/list"
	"log/slog"
	"time"

	"uiagate/internal/metrics"
	"uiagate/internal/uia"
)

// DefaultCoalesceDelay is the window the host is asked to wait before
// flushing a batch that started with a coalesceable event, letting the burst
// pile up behind the first record.
const DefaultCoalesceDelay = 30 * time.Millisecond

// Options tune a sink. The zero value is usable.
type Options struct {
	// CoalesceDelay overrides DefaultCoalesceDelay when positive.
	CoalesceDelay time.Duration

	// Logger receives the sink's structured logs. Defaults to slog.Default.
	Logger *slog.Logger

	// Metrics receives the sink's counters. Defaults to the process
	// registry.
	Metrics *metrics.LimiterMetrics

	// OnFlush, when set, observes the statistics of every non-empty flush.
	// Called on the flushing thread after dispatch completes.
	OnFlush func(FlushStats)
}

// New constructs a sink bound to an existing handler object and a notify
// callback. The handler is probed once for each of the five upstream
// capabilities; the ones it does not implement stay absent and intakes of
// those kinds return uia.ErrNotImplemented. The handler and callback must be
// non-nil.
func New(existing any, notify NotifyFunc, opts *Options) (*RateLimitedSink, error) {
	if existing == nil || notify == nil {
		return nil, uia.ErrInvalidArgument
	}
	if opts == nil {
		opts = &Options{}
	}

	delay := opts.CoalesceDelay
	if delay <= 0 {
		delay = DefaultCoalesceDelay
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewLimiterMetrics(nil)
	}

	s := newSink(notify, delay, log, m, opts.OnFlush)
	s.automation, _ = existing.(uia.AutomationEventHandler)
	s.focus, _ = existing.(uia.FocusChangedEventHandler)
	s.property, _ = existing.(uia.PropertyChangedEventHandler)
	s.notification, _ = existing.(uia.NotificationEventHandler)
	s.textPosition, _ = existing.(uia.ActiveTextPositionChangedEventHandler)
	return s, nil
}

// Flush validates the sink and drains it. The package-level form exists for
// embedders that hold the sink behind an opaque pointer; it is equivalent to
// s.Flush.
func Flush(s *RateLimitedSink) error {
	if s == nil {
		return uia.ErrInvalidArgument
	}
	s.Flush()
	return nil
}

func newSink(notify NotifyFunc, delay time.Duration, log *slog.Logger, m *metrics.LimiterMetrics, onFlush func(FlushStats)) *RateLimitedSink {
	return &RateLimitedSink{
		records:       list.New(),
		byKey:         make(map[coalescingKey]*list.Element),
		notify:        notify,
		coalesceDelay: delay,
		log:           log,
		metrics:       m,
		onFlush:       onFlush,
	}
}
