// Package uia defines the accessibility surface the event subsystem speaks:
// elements, event and property identifiers, property values, and the handler
// capabilities an upstream consumer may implement.
//
// The package deliberately knows nothing about buffering or rate limiting.
// It is the vocabulary shared by event sources (OS adapters, synthetic
// generators) and the limiter that sits between them and the real handlers.
package uia

import "errors"

// EventID identifies an automation event, using the OS-assigned values.
type EventID int32

// Standard automation event identifiers.
const (
	EventToolTipOpened             EventID = 20000
	EventToolTipClosed             EventID = 20001
	EventStructureChanged          EventID = 20002
	EventMenuOpened                EventID = 20003
	EventPropertyChanged           EventID = 20004
	EventFocusChanged              EventID = 20005
	EventAsyncContentLoaded        EventID = 20006
	EventMenuClosed                EventID = 20007
	EventLayoutInvalidated         EventID = 20008
	EventInvoked                   EventID = 20009
	EventSelectionInvalidated      EventID = 20013
	EventTextSelectionChanged      EventID = 20014
	EventTextChanged               EventID = 20015
	EventLiveRegionChanged         EventID = 20024
	EventNotification              EventID = 20035
	EventActiveTextPositionChanged EventID = 20036
)

// PropertyID identifies an element property, using the OS-assigned values.
type PropertyID int32

// Standard property identifiers.
const (
	PropertyRuntimeID         PropertyID = 30000
	PropertyBoundingRectangle PropertyID = 30001
	PropertyProcessID         PropertyID = 30002
	PropertyControlType       PropertyID = 30003
	PropertyName              PropertyID = 30005
	PropertyHasKeyboardFocus  PropertyID = 30008
	PropertyIsEnabled         PropertyID = 30010
	PropertyItemStatus        PropertyID = 30026
	PropertyValue             PropertyID = 30045
	PropertyRangeValue        PropertyID = 30047
	PropertyToggleState       PropertyID = 30086
)

// NotificationKind categorizes a notification event.
type NotificationKind int32

const (
	NotificationKindItemAdded NotificationKind = iota
	NotificationKindItemRemoved
	NotificationKindActionCompleted
	NotificationKindActionAborted
	NotificationKindOther
)

// NotificationProcessing tells the consumer how to queue a notification
// relative to ones already pending.
type NotificationProcessing int32

const (
	NotificationProcessingImportantAll NotificationProcessing = iota
	NotificationProcessingImportantMostRecent
	NotificationProcessingAll
	NotificationProcessingMostRecent
	NotificationProcessingCurrentThenMostRecent
)

// Errors shared by sources, the limiter, and upstream handlers.
var (
	// ErrInvalidArgument is returned for nil elements, handlers, or sinks.
	ErrInvalidArgument = errors.New("uia: invalid argument")

	// ErrNotImplemented is returned when an intake has no matching upstream
	// capability to forward to.
	ErrNotImplemented = errors.New("uia: not implemented")

	// ErrRuntimeIDUnavailable is returned by Element.RuntimeID when the OS
	// cannot supply a stable identity for the element.
	ErrRuntimeIDUnavailable = errors.New("uia: runtime id unavailable")
)

// HRESULT values used when the subsystem is bridged to a COM-conventioned
// embedder. FromError maps the package's error taxonomy onto them.
type HRESULT int32

const (
	SOK          HRESULT = 0
	EFail        HRESULT = -2147467259 // 0x80004005
	ENotImpl     HRESULT = -2147467263 // 0x80004001
	EInvalidArg  HRESULT = -2147024809 // 0x80070057
	EOutOfMemory HRESULT = -2147024882 // 0x8007000E
)

// FromError maps an error returned by this subsystem to an HRESULT.
func FromError(err error) HRESULT {
	switch {
	case err == nil:
		return SOK
	case errors.Is(err, ErrInvalidArgument):
		return EInvalidArg
	case errors.Is(err, ErrNotImplemented):
		return ENotImpl
	default:
		return EFail
	}
}
