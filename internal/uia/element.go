package uia

import (
	"fmt"
	"strconv"
	"strings"
)

// Element is an opaque handle to an accessible UI object (button, text
// field). Implementations wrap whatever the platform hands out: a COM
// pointer on Windows, an AT-SPI object path on Linux, or a plain value in
// tests. Holding an Element keeps the underlying object alive; dropping the
// last reference releases it.
type Element interface {
	// RuntimeID returns the OS-assigned ordered integer sequence that
	// identifies this element for the lifetime of its process session.
	// Returns ErrRuntimeIDUnavailable when the OS cannot supply one; callers
	// must treat that as a degraded identity, not a failure.
	RuntimeID() ([]int32, error)

	// String describes the element for logs.
	String() string
}

// TextRange is an opaque handle to a span of text within an element,
// carried by active-text-position-changed events.
type TextRange interface {
	String() string
}

// SimpleElement is a value Element with a fixed runtime id. Event sources
// that already know an element's identity (and tests) use it directly.
type SimpleElement struct {
	ID   []int32
	Name string
}

// NewSimpleElement builds a SimpleElement from a runtime id.
func NewSimpleElement(name string, id ...int32) *SimpleElement {
	return &SimpleElement{ID: id, Name: name}
}

// RuntimeID returns the fixed id. A SimpleElement with a nil ID models an
// element the OS refuses to identify.
func (e *SimpleElement) RuntimeID() ([]int32, error) {
	if len(e.ID) == 0 {
		return nil, ErrRuntimeIDUnavailable
	}
	return e.ID, nil
}

func (e *SimpleElement) String() string {
	parts := make([]string, len(e.ID))
	for i, v := range e.ID {
		parts[i] = strconv.FormatInt(int64(v), 10)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s[%s]", e.Name, strings.Join(parts, ","))
	}
	return "element[" + strings.Join(parts, ",") + "]"
}

// SimpleTextRange is a value TextRange used by sources and tests.
type SimpleTextRange struct {
	Start, End int
}

func (r *SimpleTextRange) String() string {
	return fmt.Sprintf("range[%d:%d]", r.Start, r.End)
}
