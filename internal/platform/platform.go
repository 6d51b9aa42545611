package platform

// Capability bundles the OS-specific side effects: the single-instance
// guard and the startup-shortcut management.
type Capability interface {
	// TryAcquireSingleton reports whether this process is the only
	// running instance. Guard failures are fail-open: an error in the
	// mechanism itself still returns true.
	TryAcquireSingleton() bool
	ReleaseSingleton()

	AddToAutostart() error
	RemoveFromAutostart() error
	IsInAutostart() bool
}
