package source

import (
	"context"
	"sync"
	"testing"
	"time"

	"uiagate/internal/uia"
)

// countingSink tallies intakes per kind.
type countingSink struct {
	mu         sync.Mutex
	automation int
	focus      int
	property   int
	note       int
	textPos    int
}

func (c *countingSink) HandleAutomationEvent(uia.Element, uia.EventID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.automation++
	return nil
}

func (c *countingSink) HandleFocusChangedEvent(uia.Element) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focus++
	return nil
}

func (c *countingSink) HandlePropertyChangedEvent(uia.Element, uia.PropertyID, uia.Variant) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.property++
	return nil
}

func (c *countingSink) HandleNotificationEvent(uia.Element, uia.NotificationKind, uia.NotificationProcessing, string, string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.note++
	return nil
}

func (c *countingSink) HandleActiveTextPositionChangedEvent(uia.Element, uia.TextRange) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.textPos++
	return nil
}

func (c *countingSink) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.automation + c.focus + c.property + c.note + c.textPos
}

func TestSyntheticDeliversEvents(t *testing.T) {
	src := NewSynthetic(SyntheticConfig{
		Elements:      4,
		EventsPerSec:  2000,
		PropertyRatio: 50,
		FocusRatio:    10,
		Duration:      200 * time.Millisecond,
		Seed:          1,
	})
	sink := &countingSink{}

	if err := src.Run(context.Background(), sink); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if sink.total() == 0 {
		t.Fatal("expected events to be delivered")
	}
	if sink.property == 0 {
		t.Error("expected property changes in the mix")
	}
	if sink.automation == 0 {
		t.Error("expected automation events in the mix")
	}
}

func TestSyntheticStopsOnCancel(t *testing.T) {
	src := NewSynthetic(SyntheticConfig{
		Elements:     2,
		EventsPerSec: 100,
		Seed:         1,
	})
	sink := &countingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx, sink) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("source did not stop on cancel")
	}
}

func TestSyntheticConfigFloors(t *testing.T) {
	src := NewSynthetic(SyntheticConfig{})
	if len(src.elements) != 1 {
		t.Errorf("expected element floor of 1, got %d", len(src.elements))
	}
	if src.cfg.EventsPerSec != 1 {
		t.Errorf("expected rate floor of 1, got %d", src.cfg.EventsPerSec)
	}
}
