package main

import (
	"log/slog"
	"sync/atomic"

	"uiagate/internal/uia"
)

// announcer is the demo upstream: it "speaks" each emitted event by logging
// it, the way a screen reader core would queue speech. It implements all
// five capabilities and counts its emissions.
type announcer struct {
	log  *slog.Logger
	seen atomic.Uint64
}

func newAnnouncer(log *slog.Logger) *announcer {
	return &announcer{log: log}
}

func (a *announcer) emitted() uint64 { return a.seen.Load() }

func (a *announcer) HandleAutomationEvent(sender uia.Element, eventID uia.EventID) error {
	a.seen.Add(1)
	a.log.Info("announce automation", "sender", sender, "event_id", int32(eventID))
	return nil
}

func (a *announcer) HandleFocusChangedEvent(sender uia.Element) error {
	a.seen.Add(1)
	a.log.Info("announce focus", "sender", sender)
	return nil
}

func (a *announcer) HandlePropertyChangedEvent(sender uia.Element, propertyID uia.PropertyID, newValue uia.Variant) error {
	a.seen.Add(1)
	a.log.Info("announce property", "sender", sender, "property_id", int32(propertyID), "value", newValue)
	return nil
}

func (a *announcer) HandleNotificationEvent(sender uia.Element, kind uia.NotificationKind, processing uia.NotificationProcessing, displayString, activityID string) error {
	a.seen.Add(1)
	a.log.Info("announce notification", "sender", sender, "display", displayString, "activity", activityID)
	return nil
}

func (a *announcer) HandleActiveTextPositionChangedEvent(sender uia.Element, rng uia.TextRange) error {
	a.seen.Add(1)
	a.log.Info("announce text position", "sender", sender, "range", rng)
	return nil
}

// countingUpstream swallows events and counts them. Used by the storm
// subcommand, where per-event logging would drown the report.
type countingUpstream struct {
	seen atomic.Uint64
}

func (c *countingUpstream) total() uint64 { return c.seen.Load() }

func (c *countingUpstream) HandleAutomationEvent(uia.Element, uia.EventID) error {
	c.seen.Add(1)
	return nil
}

func (c *countingUpstream) HandleFocusChangedEvent(uia.Element) error {
	c.seen.Add(1)
	return nil
}

func (c *countingUpstream) HandlePropertyChangedEvent(uia.Element, uia.PropertyID, uia.Variant) error {
	c.seen.Add(1)
	return nil
}

func (c *countingUpstream) HandleNotificationEvent(uia.Element, uia.NotificationKind, uia.NotificationProcessing, string, string) error {
	c.seen.Add(1)
	return nil
}

func (c *countingUpstream) HandleActiveTextPositionChangedEvent(uia.Element, uia.TextRange) error {
	c.seen.Add(1)
	return nil
}
