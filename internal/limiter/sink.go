package limiter

import (
	"container/list"
	"log/slog"
	"sync"
	"time"

	"uiagate/internal/metrics"
	"uiagate/internal/uia"
)

// NotifyFunc announces to the host that at least one record is ready to
// flush. The delay is a scheduling hint: 0 asks for an immediate flush,
// anything else is the coalescing window the host should wait out before
// calling Flush. Invoked on whatever thread performed the intake, outside
// the sink lock; it must not block and must not call back into the intakes
// synchronously.
type NotifyFunc func(delay time.Duration)

// FlushStats summarizes one non-empty flush.
type FlushStats struct {
	// Records is the number of records emitted.
	Records int
	// Coalesced is the number of intakes that were merged away, i.e. the
	// total intakes represented by the batch minus Records.
	Coalesced uint64
	// Failures is the number of upstream handlers that returned an error.
	Failures int
	// Duration is the wall time spent dispatching.
	Duration time.Duration
}

// RateLimitedSink buffers accessibility events and hands them upstream in
// coalesced batches. The OS event source registers it for all five event
// kinds; the host calls Flush when the notify callback tells it a batch is
// due.
//
// Buffer and index stay consistent whenever the mutex is free: every
// coalesceable buffered record is indexed by its key, at most one record per
// key, and non-coalesceable records are never indexed. Flush swaps both out
// under the lock, so dispatch runs with no lock held and intakes arriving
// mid-flush start a fresh batch.
type RateLimitedSink struct {
	mu      sync.Mutex
	records *list.List // of *record, FIFO by final enqueue position
	byKey   map[coalescingKey]*list.Element

	// Upstream capabilities, probed once at construction, nil when absent.
	// Read-only afterwards, safe from any thread.
	automation   uia.AutomationEventHandler
	focus        uia.FocusChangedEventHandler
	property     uia.PropertyChangedEventHandler
	notification uia.NotificationEventHandler
	textPosition uia.ActiveTextPositionChangedEventHandler

	notify        NotifyFunc
	coalesceDelay time.Duration
	log           *slog.Logger
	metrics       *metrics.LimiterMetrics
	onFlush       func(FlushStats)
}

// The sink registers as a handler for every event kind.
var (
	_ uia.AutomationEventHandler                = (*RateLimitedSink)(nil)
	_ uia.FocusChangedEventHandler              = (*RateLimitedSink)(nil)
	_ uia.PropertyChangedEventHandler           = (*RateLimitedSink)(nil)
	_ uia.NotificationEventHandler              = (*RateLimitedSink)(nil)
	_ uia.ActiveTextPositionChangedEventHandler = (*RateLimitedSink)(nil)
)

// Capabilities lists the sink capabilities exposed to the OS event source.
// The sink always registers for every kind; a missing upstream capability
// surfaces per-intake as uia.ErrNotImplemented instead.
func (s *RateLimitedSink) Capabilities() []Kind {
	return []Kind{
		KindAutomationEvent,
		KindFocusChanged,
		KindPropertyChanged,
		KindNotification,
		KindActiveTextPositionChanged,
	}
}

// HandleAutomationEvent buffers a generic automation event.
func (s *RateLimitedSink) HandleAutomationEvent(sender uia.Element, eventID uia.EventID) error {
	if s.automation == nil {
		s.reject(KindAutomationEvent, uia.ErrNotImplemented)
		return uia.ErrNotImplemented
	}
	if sender == nil {
		s.reject(KindAutomationEvent, uia.ErrInvalidArgument)
		return uia.ErrInvalidArgument
	}
	s.log.Debug("queueing automation event", "event_id", int32(eventID), "sender", sender)
	return s.enqueue(newAutomationRecord(sender, eventID))
}

// HandleFocusChangedEvent buffers a focus change. Focus changes are never
// coalesced and request an immediate flush.
func (s *RateLimitedSink) HandleFocusChangedEvent(sender uia.Element) error {
	if s.focus == nil {
		s.reject(KindFocusChanged, uia.ErrNotImplemented)
		return uia.ErrNotImplemented
	}
	if sender == nil {
		s.reject(KindFocusChanged, uia.ErrInvalidArgument)
		return uia.ErrInvalidArgument
	}
	s.log.Debug("queueing focus changed event", "sender", sender)
	return s.enqueue(newFocusChangedRecord(sender))
}

// HandlePropertyChangedEvent buffers a property change with its new value.
func (s *RateLimitedSink) HandlePropertyChangedEvent(sender uia.Element, propertyID uia.PropertyID, newValue uia.Variant) error {
	if s.property == nil {
		s.reject(KindPropertyChanged, uia.ErrNotImplemented)
		return uia.ErrNotImplemented
	}
	if sender == nil {
		s.reject(KindPropertyChanged, uia.ErrInvalidArgument)
		return uia.ErrInvalidArgument
	}
	s.log.Debug("queueing property changed event", "property_id", int32(propertyID), "sender", sender)
	return s.enqueue(newPropertyChangedRecord(sender, propertyID, newValue))
}

// HandleNotificationEvent buffers an app-raised notification.
func (s *RateLimitedSink) HandleNotificationEvent(sender uia.Element, kind uia.NotificationKind, processing uia.NotificationProcessing, displayString, activityID string) error {
	if s.notification == nil {
		s.reject(KindNotification, uia.ErrNotImplemented)
		return uia.ErrNotImplemented
	}
	if sender == nil {
		s.reject(KindNotification, uia.ErrInvalidArgument)
		return uia.ErrInvalidArgument
	}
	s.log.Debug("queueing notification event", "sender", sender)
	return s.enqueue(newNotificationRecord(sender, kind, processing, displayString, activityID))
}

// HandleActiveTextPositionChangedEvent buffers a reading-position move.
func (s *RateLimitedSink) HandleActiveTextPositionChangedEvent(sender uia.Element, rng uia.TextRange) error {
	if s.textPosition == nil {
		s.reject(KindActiveTextPositionChanged, uia.ErrNotImplemented)
		return uia.ErrNotImplemented
	}
	if sender == nil {
		s.reject(KindActiveTextPositionChanged, uia.ErrInvalidArgument)
		return uia.ErrInvalidArgument
	}
	s.log.Debug("queueing active text position changed event", "sender", sender)
	return s.enqueue(newActiveTextPositionChangedRecord(sender, rng))
}

func (s *RateLimitedSink) reject(kind Kind, err error) {
	s.metrics.EventsRejectedTotal.Inc()
	s.log.Debug("intake rejected", "kind", kind, "err", err)
}

// enqueue inserts a record, coalescing against any buffered record with the
// same key. The record (including its key) was built by the caller outside
// the lock, so the critical section is map-and-list work only.
func (s *RateLimitedSink) enqueue(r *record) error {
	coalesceable := r.kind.Coalesceable()
	coalesced := false

	s.mu.Lock()
	wasEmpty := s.records.Len() == 0
	if coalesceable {
		if existing, ok := s.byKey[r.key]; ok {
			old := existing.Value.(*record)
			r.count += old.count
			s.records.Remove(existing)
			coalesced = true
		}
		s.byKey[r.key] = s.records.PushBack(r)
	} else {
		s.records.PushBack(r)
	}
	buffered := s.records.Len()
	s.mu.Unlock()

	s.metrics.EventsQueuedTotal.Inc()
	s.metrics.BufferedRecords.Set(int64(buffered))
	if coalesced {
		s.metrics.EventsCoalescedTotal.Inc()
		s.log.Debug("coalesced into existing record", "kind", r.kind, "count", r.count)
	}

	// One notification per empty-to-non-empty transition, plus one per
	// force-flush record. A force-flush intake that also fills an empty
	// buffer notifies once, with zero delay.
	if wasEmpty || r.kind.ForceFlush() {
		delay := s.coalesceDelay
		if r.kind.ForceFlush() {
			delay = 0
		}
		s.metrics.NotifyTotal.Inc()
		s.notify(delay)
	}
	return nil
}

// Flush drains the buffer and dispatches every surviving record upstream in
// FIFO order of final enqueue. The swap under lock is O(1); dispatch runs
// unlocked, so upstream handlers may call back into the OS accessibility
// layer without deadlocking against concurrent intakes. An empty flush does
// nothing.
func (s *RateLimitedSink) Flush() {
	s.mu.Lock()
	records := s.records
	s.records = list.New()
	s.byKey = make(map[coalescingKey]*list.Element)
	s.mu.Unlock()

	s.metrics.FlushesTotal.Inc()
	s.metrics.BufferedRecords.Set(0)

	if records.Len() == 0 {
		s.metrics.EmptyFlushesTotal.Inc()
		return
	}

	start := time.Now()
	stats := FlushStats{}
	for el := records.Front(); el != nil; el = el.Next() {
		r := el.Value.(*record)
		stats.Records++
		stats.Coalesced += uint64(r.count - 1)
		if err := s.emit(r); err != nil {
			stats.Failures++
			s.metrics.UpstreamFailuresTotal.Inc()
			s.log.Warn("upstream handler failed", "kind", r.kind, "sender", r.sender, "err", err)
		}
	}
	stats.Duration = time.Since(start)

	s.metrics.FlushBatchSize.Observe(float64(stats.Records))
	s.metrics.FlushDuration.ObserveDuration(stats.Duration)
	s.log.Debug("flushed batch",
		"records", stats.Records, "coalesced", stats.Coalesced,
		"failures", stats.Failures, "duration", stats.Duration)

	if s.onFlush != nil {
		s.onFlush(stats)
	}
}

// emit dispatches one record to its matching upstream capability.
func (s *RateLimitedSink) emit(r *record) error {
	switch r.kind {
	case KindAutomationEvent:
		if s.automation == nil {
			return uia.ErrNotImplemented
		}
		return s.automation.HandleAutomationEvent(r.sender, r.eventID)
	case KindFocusChanged:
		if s.focus == nil {
			return uia.ErrNotImplemented
		}
		return s.focus.HandleFocusChangedEvent(r.sender)
	case KindPropertyChanged:
		if s.property == nil {
			return uia.ErrNotImplemented
		}
		return s.property.HandlePropertyChangedEvent(r.sender, r.propertyID, r.value)
	case KindNotification:
		if s.notification == nil {
			return uia.ErrNotImplemented
		}
		return s.notification.HandleNotificationEvent(r.sender, r.notificationKind, r.notificationProcessing, r.displayString, r.activityID)
	case KindActiveTextPositionChanged:
		if s.textPosition == nil {
			return uia.ErrNotImplemented
		}
		return s.textPosition.HandleActiveTextPositionChangedEvent(r.sender, r.textRange)
	default:
		return uia.ErrInvalidArgument
	}
}

// Close discards any buffered records without emitting them. Safe to call
// with intakes still arriving, though records enqueued after Close may sit
// until the next Flush.
func (s *RateLimitedSink) Close() {
	s.mu.Lock()
	s.records = list.New()
	s.byKey = make(map[coalescingKey]*list.Element)
	s.mu.Unlock()
	s.metrics.BufferedRecords.Set(0)
}

// buffered returns the current record count. Tests and diagnostics only.
func (s *RateLimitedSink) buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.Len()
}
