//go:build !linux

package source

import "context"

// ATSPI is only available on Linux desktops.
type ATSPI struct{}

// NewATSPI returns a stub on platforms without an AT-SPI bus.
func NewATSPI() *ATSPI { return &ATSPI{} }

// Name identifies the source in logs.
func (a *ATSPI) Name() string { return "atspi" }

// Run reports unavailability.
func (a *ATSPI) Run(ctx context.Context, sink Sink) error {
	return ErrNotAvailable
}
