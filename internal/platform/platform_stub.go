//go:build !windows

package platform

import "github.com/rs/zerolog"

// stubCapability is a no-op on non-Windows platforms: no singleton
// guard, no startup shortcut.
type stubCapability struct{}

// New returns a no-op capability layer.
func New(log zerolog.Logger) Capability {
	return stubCapability{}
}

func (stubCapability) TryAcquireSingleton() bool  { return true }
func (stubCapability) ReleaseSingleton()          {}
func (stubCapability) AddToAutostart() error      { return nil }
func (stubCapability) RemoveFromAutostart() error { return nil }
func (stubCapability) IsInAutostart() bool        { return false }
