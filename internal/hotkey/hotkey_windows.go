//go:build windows

package hotkey

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"
)

var modifierMap = map[Modifier]hotkey.Modifier{
	ModCtrl:  hotkey.ModCtrl,
	ModShift: hotkey.ModShift,
	ModAlt:   hotkey.ModAlt,
	ModWin:   hotkey.ModWin,
}

var keyMap = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"space":  hotkey.KeySpace,
	"enter":  hotkey.KeyReturn,
	"return": hotkey.KeyReturn,
	"tab":    hotkey.KeyTab,
	"escape": hotkey.KeyEscape,
	"esc":    hotkey.KeyEscape,
	"up":     hotkey.KeyUp,
	"down":   hotkey.KeyDown,
	"left":   hotkey.KeyLeft,
	"right":  hotkey.KeyRight,
	"f1":     hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3,
	"f4": hotkey.KeyF4, "f5": hotkey.KeyF5, "f6": hotkey.KeyF6,
	"f7": hotkey.KeyF7, "f8": hotkey.KeyF8, "f9": hotkey.KeyF9,
	"f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
}

type windowsManager struct {
	mu    sync.Mutex
	hk    *hotkey.Hotkey
	done  chan struct{}
	accel string
	cb    func()
}

// New creates a Windows hotkey manager backed by RegisterHotKey.
func New() (Manager, error) {
	return &windowsManager{}, nil
}

// Register binds accel, replacing any previous binding. If the new
// combination cannot be registered the previous one is restored.
func (m *windowsManager) Register(accel string, callback func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prevAccel, prevCb := m.accel, m.cb
	m.unregisterLocked()

	if err := m.registerLocked(accel, callback); err != nil {
		if prevAccel != "" {
			if restoreErr := m.registerLocked(prevAccel, prevCb); restoreErr != nil {
				return fmt.Errorf("%w (restoring %q also failed: %v)", err, prevAccel, restoreErr)
			}
		}
		return err
	}
	return nil
}

func (m *windowsManager) registerLocked(accel string, callback func()) error {
	a, err := Parse(accel)
	if err != nil {
		return err
	}

	key, ok := keyMap[a.Key]
	if !ok {
		return fmt.Errorf("unsupported key %q in accelerator %q", a.Key, accel)
	}

	mods := make([]hotkey.Modifier, 0, len(a.Mods))
	for _, mod := range a.Mods {
		mods = append(mods, modifierMap[mod])
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("failed to register hotkey %q: %w", accel, err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case _, ok := <-hk.Keydown():
				if !ok {
					return
				}
				callback()
			}
		}
	}()

	m.hk = hk
	m.done = done
	m.accel = accel
	m.cb = callback
	return nil
}

func (m *windowsManager) Unregister() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unregisterLocked()
}

func (m *windowsManager) unregisterLocked() error {
	if m.hk == nil {
		return nil
	}
	close(m.done)
	err := m.hk.Unregister()
	m.hk = nil
	m.done = nil
	m.accel = ""
	m.cb = nil
	return err
}

func (m *windowsManager) Close() error {
	return m.Unregister()
}
