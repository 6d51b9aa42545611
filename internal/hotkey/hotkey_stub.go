//go:build !windows

package hotkey

// stubManager is a no-op on non-Windows platforms. The tray menu still
// exposes the toggle action.
type stubManager struct{}

// New creates a no-op hotkey manager.
func New() (Manager, error) {
	return stubManager{}, nil
}

func (stubManager) Register(accel string, callback func()) error {
	// Validate the accelerator anyway so config errors surface.
	_, err := Parse(accel)
	return err
}

func (stubManager) Unregister() error { return nil }
func (stubManager) Close() error      { return nil }
