package uia

// The five handler capabilities. A consumer implements whichever subset it
// cares about; the limiter probes a single handle for each capability and
// reports ErrNotImplemented on intake for the missing ones.

// AutomationEventHandler receives generic automation events.
type AutomationEventHandler interface {
	HandleAutomationEvent(sender Element, eventID EventID) error
}

// FocusChangedEventHandler receives focus changes.
type FocusChangedEventHandler interface {
	HandleFocusChangedEvent(sender Element) error
}

// PropertyChangedEventHandler receives property-change events with the new
// property value.
type PropertyChangedEventHandler interface {
	HandlePropertyChangedEvent(sender Element, propertyID PropertyID, newValue Variant) error
}

// NotificationEventHandler receives app-raised notification events.
type NotificationEventHandler interface {
	HandleNotificationEvent(sender Element, kind NotificationKind, processing NotificationProcessing, displayString, activityID string) error
}

// ActiveTextPositionChangedEventHandler receives caret/reading-position
// movement events.
type ActiveTextPositionChangedEventHandler interface {
	HandleActiveTextPositionChangedEvent(sender Element, rng TextRange) error
}
