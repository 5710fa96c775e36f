package source

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"uiagate/internal/uia"
)

// SyntheticConfig shapes a generated event storm.
type SyntheticConfig struct {
	// Elements is the size of the simulated element pool.
	Elements int

	// EventsPerSec is the target intake rate.
	EventsPerSec int

	// PropertyRatio and FocusRatio are percentages of the mix; the
	// remainder is generic automation events with an occasional
	// notification.
	PropertyRatio int
	FocusRatio    int

	// Duration bounds the run. 0 runs until the context is cancelled.
	Duration time.Duration

	// Seed makes a run reproducible. 0 seeds from the clock.
	Seed int64
}

// Synthetic generates a configurable storm of accessibility events against
// a fixed pool of simulated elements. Bursts concentrate on a few elements,
// which is what real spinners and repopulating lists do, so coalescing has
// something to bite on.
type Synthetic struct {
	cfg      SyntheticConfig
	elements []*uia.SimpleElement
}

// NewSynthetic builds a synthetic source.
func NewSynthetic(cfg SyntheticConfig) *Synthetic {
	if cfg.Elements < 1 {
		cfg.Elements = 1
	}
	if cfg.EventsPerSec < 1 {
		cfg.EventsPerSec = 1
	}
	pool := make([]*uia.SimpleElement, cfg.Elements)
	for i := range pool {
		pool[i] = uia.NewSimpleElement(
			fmt.Sprintf("synthetic-%d", i),
			42, int32(i+1), int32(i*7+3),
		)
	}
	return &Synthetic{cfg: cfg, elements: pool}
}

// Name identifies the source in logs.
func (s *Synthetic) Name() string { return "synthetic" }

// Run generates events until the context is cancelled or the configured
// duration elapses. Intake errors are ignored: a sink without some upstream
// capability simply drops that slice of the storm, same as the OS would
// observe.
func (s *Synthetic) Run(ctx context.Context, sink Sink) error {
	rng := rand.New(rand.NewSource(s.cfg.Seed))
	if s.cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	if s.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Duration)
		defer cancel()
	}

	interval := time.Second / time.Duration(s.cfg.EventsPerSec)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// A burst target keeps a run of consecutive events on one element.
	burstLeft := 0
	var burstEl *uia.SimpleElement

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if burstLeft == 0 {
				burstEl = s.elements[rng.Intn(len(s.elements))]
				burstLeft = 1 + rng.Intn(20)
			}
			burstLeft--
			s.emit(rng, sink, burstEl)
		}
	}
}

func (s *Synthetic) emit(rng *rand.Rand, sink Sink, el *uia.SimpleElement) {
	roll := rng.Intn(100)
	switch {
	case roll < s.cfg.PropertyRatio:
		props := []uia.PropertyID{uia.PropertyName, uia.PropertyValue, uia.PropertyRangeValue}
		prop := props[rng.Intn(len(props))]
		_ = sink.HandlePropertyChangedEvent(el, prop, uia.Int32Variant(int32(rng.Intn(1000))))
	case roll < s.cfg.PropertyRatio+s.cfg.FocusRatio:
		_ = sink.HandleFocusChangedEvent(el)
	case roll >= 97:
		_ = sink.HandleNotificationEvent(el,
			uia.NotificationKindActionCompleted,
			uia.NotificationProcessingMostRecent,
			"operation complete", "synthetic")
	default:
		events := []uia.EventID{
			uia.EventLayoutInvalidated,
			uia.EventLiveRegionChanged,
			uia.EventTextChanged,
			uia.EventStructureChanged,
		}
		_ = sink.HandleAutomationEvent(el, events[rng.Intn(len(events))])
	}
}
