package notify

import (
	"os"
	"path/filepath"

	"github.com/gen2brain/beeep"
)

const appTitle = "Microphone"

// Notifier emits best-effort desktop notifications. Failures never
// affect the outcome of the operation being reported.
type Notifier interface {
	MuteChanged(muted bool) error
	Info(title, msg string) error
}

// toastNotifier sends desktop toasts via beeep. Icons are looked up
// next to the executable, matching how the packaged build ships them.
type toastNotifier struct {
	iconDir string
}

// New creates the default toast notifier.
func New() Notifier {
	dir := ""
	if exe, err := os.Executable(); err == nil {
		dir = filepath.Dir(exe)
	}
	return &toastNotifier{iconDir: dir}
}

func (n *toastNotifier) MuteChanged(muted bool) error {
	return beeep.Notify(appTitle, MuteMessage(muted), n.icon(muted))
}

func (n *toastNotifier) Info(title, msg string) error {
	return beeep.Notify(title, msg, filepath.Join(n.iconDir, "mic.ico"))
}

func (n *toastNotifier) icon(muted bool) string {
	name := "mic_on.ico"
	if muted {
		name = "mic_off.ico"
	}
	return filepath.Join(n.iconDir, name)
}

// MuteMessage returns the toast body for a new mute state.
func MuteMessage(muted bool) string {
	if muted {
		return "Muted"
	}
	return "Unmuted"
}
