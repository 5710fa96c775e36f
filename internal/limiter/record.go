package limiter

import (
	"encoding/binary"

	"uiagate/internal/uia"
)

// Kind discriminates buffered event records.
type Kind int

const (
	KindAutomationEvent Kind = iota
	KindFocusChanged
	KindPropertyChanged
	KindNotification
	KindActiveTextPositionChanged
)

// String returns the kind name used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindAutomationEvent:
		return "automation"
	case KindFocusChanged:
		return "focus_changed"
	case KindPropertyChanged:
		return "property_changed"
	case KindNotification:
		return "notification"
	case KindActiveTextPositionChanged:
		return "active_text_position_changed"
	default:
		return "unknown"
	}
}

// Coalesceable reports whether records of this kind merge by coalescing key.
// Focus changes, notifications, and text-position moves each matter
// individually and are never merged.
func (k Kind) Coalesceable() bool {
	return k == KindAutomationEvent || k == KindPropertyChanged
}

// ForceFlush reports whether an intake of this kind asks the host for a
// zero-delay flush. Every non-coalesceable kind does.
func (k Kind) ForceFlush() bool {
	return !k.Coalesceable()
}

// coalescingKey is the packed ordered-int32 identity of a coalescing class.
// The empty key marks a non-coalesceable record.
type coalescingKey string

// packKey encodes an ordered int32 sequence as 4-byte big-endian words so it
// can serve as a map key.
func packKey(ids []int32) coalescingKey {
	buf := make([]byte, 4*len(ids))
	for i, v := range ids {
		binary.BigEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return coalescingKey(buf)
}

// unpackKey decodes a packed key back to its int32 sequence. Diagnostics
// only.
func unpackKey(k coalescingKey) []int32 {
	ids := make([]int32, len(k)/4)
	for i := range ids {
		ids[i] = int32(binary.BigEndian.Uint32([]byte(k)[i*4:]))
	}
	return ids
}

// record captures one inbound accessibility event. Immutable after
// construction except for count, which grows as same-key records merge into
// this one. A record holds the only buffered reference to its sender; the
// reference is dropped when the record is emitted or superseded.
type record struct {
	kind   Kind
	sender uia.Element
	key    coalescingKey
	count  uint32

	// KindAutomationEvent
	eventID uia.EventID

	// KindPropertyChanged
	propertyID uia.PropertyID
	value      uia.Variant

	// KindNotification
	notificationKind       uia.NotificationKind
	notificationProcessing uia.NotificationProcessing
	displayString          string
	activityID             string

	// KindActiveTextPositionChanged
	textRange uia.TextRange
}

// buildKey computes [runtimeID..., tail...] for the sender. The runtime id
// round-trip happens here, before the sink lock is taken. A failed fetch
// degrades the key to the tail alone: the record stays coalesceable and
// merges with other rootless records of the same tail.
func buildKey(sender uia.Element, tail ...int32) coalescingKey {
	rid, err := sender.RuntimeID()
	if err != nil {
		rid = nil
	}
	ids := make([]int32, 0, len(rid)+len(tail))
	ids = append(ids, rid...)
	ids = append(ids, tail...)
	return packKey(ids)
}

func newAutomationRecord(sender uia.Element, eventID uia.EventID) *record {
	return &record{
		kind:    KindAutomationEvent,
		sender:  sender,
		key:     buildKey(sender, int32(eventID)),
		count:   1,
		eventID: eventID,
	}
}

func newFocusChangedRecord(sender uia.Element) *record {
	return &record{
		kind:   KindFocusChanged,
		sender: sender,
		count:  1,
	}
}

func newPropertyChangedRecord(sender uia.Element, propertyID uia.PropertyID, value uia.Variant) *record {
	return &record{
		kind:       KindPropertyChanged,
		sender:     sender,
		key:        buildKey(sender, int32(uia.EventPropertyChanged), int32(propertyID)),
		count:      1,
		propertyID: propertyID,
		value:      value,
	}
}

func newNotificationRecord(sender uia.Element, kind uia.NotificationKind, processing uia.NotificationProcessing, displayString, activityID string) *record {
	return &record{
		kind:                   KindNotification,
		sender:                 sender,
		count:                  1,
		notificationKind:       kind,
		notificationProcessing: processing,
		displayString:          displayString,
		activityID:             activityID,
	}
}

func newActiveTextPositionChangedRecord(sender uia.Element, rng uia.TextRange) *record {
	return &record{
		kind:      KindActiveTextPositionChanged,
		sender:    sender,
		count:     1,
		textRange: rng,
	}
}
