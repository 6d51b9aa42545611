package audio

import "errors"

// ErrUnsupported is returned by the stub controller on platforms without
// Core Audio.
var ErrUnsupported = errors.New("audio endpoint control not supported on this platform")

// MuteState is the aggregate mute status across all active capture
// endpoints. It is Unknown when no endpoint's mute flag could be read.
type MuteState int

const (
	StateUnknown MuteState = iota
	StateMuted
	StateUnmuted
)

func (s MuteState) String() string {
	switch s {
	case StateMuted:
		return "muted"
	case StateUnmuted:
		return "unmuted"
	default:
		return "unknown"
	}
}

// Device describes a capture endpoint for display in the tray menu.
type Device struct {
	ID      string
	Name    string
	Default bool
}

// Endpoint is a non-owning handle to one capture device. Callers must
// Close every endpoint they obtain.
type Endpoint interface {
	ID() string
	Name() string
	Muted() (bool, error)
	SetMuted(muted bool) error
	Close()
}

// Controller enumerates and resolves capture endpoints. Enumeration is
// never cached: device topology can change between hotkey presses, so
// every operation re-queries the OS.
type Controller interface {
	// CaptureEndpoints returns all currently active capture endpoints.
	CaptureEndpoints() ([]Endpoint, error)
	// DefaultCapture returns the OS default capture endpoint for the
	// multimedia role.
	DefaultCapture() (Endpoint, error)
	// Endpoint resolves a device ID to a live endpoint handle.
	Endpoint(id string) (Endpoint, error)
	Close() error
}

// ReleaseAll closes every endpoint in eps.
func ReleaseAll(eps []Endpoint) {
	for _, ep := range eps {
		ep.Close()
	}
}
