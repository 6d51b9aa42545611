package hotkey

// Manager defines the interface for global hotkey management. One
// combination is registered at a time.
type Manager interface {
	Register(accel string, callback func()) error
	Unregister() error
	Close() error
}
