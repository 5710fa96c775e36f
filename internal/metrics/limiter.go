package metrics

// LimiterMetrics holds the metrics published by a rate-limited event sink.
type LimiterMetrics struct {
	registry *Registry

	// Counters
	EventsQueuedTotal      *Counter
	EventsCoalescedTotal   *Counter
	EventsRejectedTotal    *Counter
	FlushesTotal           *Counter
	EmptyFlushesTotal      *Counter
	NotifyTotal            *Counter
	UpstreamFailuresTotal  *Counter

	// Gauges
	BufferedRecords *Gauge

	// Histograms
	FlushBatchSize *Histogram
	FlushDuration  *Histogram
}

// NewLimiterMetrics creates and registers all sink metrics. A nil registry
// selects the process default.
func NewLimiterMetrics(registry *Registry) *LimiterMetrics {
	if registry == nil {
		registry = Default()
	}
	return &LimiterMetrics{
		registry: registry,
		EventsQueuedTotal: registry.RegisterCounter(
			"uiagate_events_queued_total",
			"Total number of accessibility events accepted for buffering",
			nil,
		),
		EventsCoalescedTotal: registry.RegisterCounter(
			"uiagate_events_coalesced_total",
			"Total number of events merged into a newer record of the same class",
			nil,
		),
		EventsRejectedTotal: registry.RegisterCounter(
			"uiagate_events_rejected_total",
			"Total number of intakes rejected (no upstream capability or bad argument)",
			nil,
		),
		FlushesTotal: registry.RegisterCounter(
			"uiagate_flushes_total",
			"Total number of flush operations",
			nil,
		),
		EmptyFlushesTotal: registry.RegisterCounter(
			"uiagate_empty_flushes_total",
			"Total number of flushes that found an empty buffer",
			nil,
		),
		NotifyTotal: registry.RegisterCounter(
			"uiagate_notify_total",
			"Total number of flush-due notifications delivered to the host",
			nil,
		),
		UpstreamFailuresTotal: registry.RegisterCounter(
			"uiagate_upstream_failures_total",
			"Total number of upstream handler errors during flush",
			nil,
		),
		BufferedRecords: registry.RegisterGauge(
			"uiagate_buffered_records",
			"Number of records currently buffered in the sink",
			nil,
		),
		FlushBatchSize: registry.RegisterHistogram(
			"uiagate_flush_batch_size",
			"Number of records emitted per non-empty flush",
			nil,
			DefaultBuckets,
		),
		FlushDuration: registry.RegisterHistogram(
			"uiagate_flush_duration_seconds",
			"Wall time spent dispatching one flush batch upstream",
			nil,
			DurationBuckets,
		),
	}
}
