//go:build linux

package source

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/godbus/dbus/v5"

	"uiagate/internal/uia"
)

// ATSPI translates desktop accessibility signals from the AT-SPI registry
// into sink intakes. It subscribes to object events and focus events on the
// accessibility bus; property-change and focus signals map directly onto the
// sink's capabilities, everything else arrives as a generic automation
// event.
type ATSPI struct {
	conn *dbus.Conn
}

// NewATSPI prepares an AT-SPI source. The accessibility bus is resolved and
// connected lazily in Run.
func NewATSPI() *ATSPI {
	return &ATSPI{}
}

// Name identifies the source in logs.
func (a *ATSPI) Name() string { return "atspi" }

// a11yBusAddress asks the session bus for the accessibility bus address.
func a11yBusAddress() (string, error) {
	session, err := dbus.SessionBus()
	if err != nil {
		return "", fmt.Errorf("%w: session bus: %v", ErrNotAvailable, err)
	}
	obj := session.Object("org.a11y.Bus", "/org/a11y/bus")
	var addr string
	if err := obj.Call("org.a11y.Bus.GetAddress", 0).Store(&addr); err != nil {
		return "", fmt.Errorf("%w: a11y bus address: %v", ErrNotAvailable, err)
	}
	return addr, nil
}

// Run subscribes to accessibility events and forwards them until the
// context is cancelled.
func (a *ATSPI) Run(ctx context.Context, sink Sink) error {
	addr, err := a11yBusAddress()
	if err != nil {
		return err
	}
	conn, err := dbus.Connect(addr)
	if err != nil {
		return fmt.Errorf("%w: connect %s: %v", ErrNotAvailable, addr, err)
	}
	a.conn = conn
	defer conn.Close()

	matches := [][]dbus.MatchOption{
		{dbus.WithMatchInterface("org.a11y.atspi.Event.Object")},
		{dbus.WithMatchInterface("org.a11y.atspi.Event.Focus")},
	}
	for _, m := range matches {
		if err := conn.AddMatchSignal(m...); err != nil {
			return fmt.Errorf("add match: %w", err)
		}
	}

	signals := make(chan *dbus.Signal, 256)
	conn.Signal(signals)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-signals:
			if !ok {
				return nil
			}
			a.dispatch(sink, sig)
		}
	}
}

// dispatch maps one AT-SPI signal onto a sink intake. Intake errors are not
// propagated: a missing upstream capability just drops that event class.
func (a *ATSPI) dispatch(sink Sink, sig *dbus.Signal) {
	el := newATSPIElement(sig.Sender, sig.Path)
	switch {
	case sig.Name == "org.a11y.atspi.Event.Focus.Focus":
		_ = sink.HandleFocusChangedEvent(el)
	case sig.Name == "org.a11y.atspi.Event.Object.PropertyChange":
		prop, value := propertyChangePayload(sig.Body)
		_ = sink.HandlePropertyChangedEvent(el, prop, value)
	case sig.Name == "org.a11y.atspi.Event.Object.StateChanged" && stateDetail(sig.Body) == "focused":
		_ = sink.HandleFocusChangedEvent(el)
	case strings.HasPrefix(sig.Name, "org.a11y.atspi.Event.Object."):
		_ = sink.HandleAutomationEvent(el, eventIDFor(sig.Name))
	}
}

// propertyChangePayload pulls the property name and new value out of an
// AT-SPI PropertyChange body: (detail string, detail1, detail2, any_data
// variant, ...).
func propertyChangePayload(body []any) (uia.PropertyID, uia.Variant) {
	prop := uia.PropertyName
	if len(body) > 0 {
		if detail, ok := body[0].(string); ok {
			prop = mapProperty(detail)
		}
	}
	if len(body) > 3 {
		if v, ok := body[3].(dbus.Variant); ok {
			return prop, fromDBusVariant(v)
		}
	}
	return prop, uia.Variant{}
}

func stateDetail(body []any) string {
	if len(body) > 0 {
		if detail, ok := body[0].(string); ok {
			return detail
		}
	}
	return ""
}

// mapProperty translates an AT-SPI property detail onto the portable
// property ids.
func mapProperty(detail string) uia.PropertyID {
	switch detail {
	case "accessible-name":
		return uia.PropertyName
	case "accessible-value":
		return uia.PropertyValue
	case "accessible-description", "accessible-help-text":
		return uia.PropertyItemStatus
	default:
		return uia.PropertyName
	}
}

// eventIDFor buckets remaining object events into portable event ids.
func eventIDFor(name string) uia.EventID {
	switch {
	case strings.HasSuffix(name, "ChildrenChanged"):
		return uia.EventStructureChanged
	case strings.HasSuffix(name, "TextChanged"):
		return uia.EventTextChanged
	case strings.HasSuffix(name, "TextCaretMoved"):
		return uia.EventTextSelectionChanged
	case strings.HasSuffix(name, "VisibleDataChanged"):
		return uia.EventLayoutInvalidated
	default:
		return uia.EventLiveRegionChanged
	}
}

// fromDBusVariant copies a dbus value into the portable variant type.
func fromDBusVariant(v dbus.Variant) uia.Variant {
	switch val := v.Value().(type) {
	case bool:
		return uia.BoolVariant(val)
	case int32:
		return uia.Int32Variant(val)
	case uint32:
		return uia.Int64Variant(int64(val))
	case int64:
		return uia.Int64Variant(val)
	case float64:
		return uia.DoubleVariant(val)
	case string:
		return uia.StringVariant(val)
	default:
		return uia.StringVariant(fmt.Sprint(val))
	}
}

// atspiElement addresses an accessible object by its bus name and object
// path. AT-SPI has no runtime-id concept; a stable synthetic id is derived
// from the address instead, so coalescing still groups per-object.
type atspiElement struct {
	sender string
	path   dbus.ObjectPath
}

func newATSPIElement(sender string, path dbus.ObjectPath) *atspiElement {
	return &atspiElement{sender: sender, path: path}
}

// RuntimeID hashes the bus address into an ordered id. Stable for the life
// of the remote object's connection, which matches the runtime-id contract.
func (e *atspiElement) RuntimeID() ([]int32, error) {
	h := fnv.New64a()
	h.Write([]byte(e.sender))
	h.Write([]byte(e.path))
	sum := h.Sum64()
	return []int32{int32(sum >> 32), int32(sum)}, nil
}

func (e *atspiElement) String() string {
	return fmt.Sprintf("atspi[%s%s]", e.sender, e.path)
}
