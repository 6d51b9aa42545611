//go:build windows

package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

const (
	mutexName    = "Local\\micmute-tray"
	shortcutName = "micmute-tray.lnk"
)

type windowsCapability struct {
	log   zerolog.Logger
	mutex windows.Handle
}

// New returns the Windows capability layer.
func New(log zerolog.Logger) Capability {
	return &windowsCapability{log: log}
}

func (c *windowsCapability) TryAcquireSingleton() bool {
	name, err := windows.UTF16PtrFromString(mutexName)
	if err != nil {
		return true
	}

	handle, err := windows.CreateMutex(nil, true, name)
	if err == windows.ERROR_ALREADY_EXISTS {
		if handle != 0 {
			windows.CloseHandle(handle)
		}
		return false
	}
	if err != nil {
		// Guard mechanism failed, let the process run anyway.
		c.log.Warn().Err(err).Msg("Single-instance mutex unavailable")
		return true
	}

	c.mutex = handle
	return true
}

func (c *windowsCapability) ReleaseSingleton() {
	if c.mutex != 0 {
		windows.CloseHandle(c.mutex)
		c.mutex = 0
	}
}

func (c *windowsCapability) AddToAutostart() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	// S_FALSE when COM is already initialized on this thread.
	ole.CoInitialize(0)
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WScript.Shell")
	if err != nil {
		return fmt.Errorf("failed to create WScript.Shell: %w", err)
	}
	defer unknown.Release()

	wshell, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("failed to query WScript.Shell: %w", err)
	}
	defer wshell.Release()

	cs, err := oleutil.CallMethod(wshell, "CreateShortcut", shortcutPath())
	if err != nil {
		return fmt.Errorf("failed to create shortcut: %w", err)
	}
	link := cs.ToIDispatch()
	defer link.Release()

	if _, err := oleutil.PutProperty(link, "TargetPath", exe); err != nil {
		return fmt.Errorf("failed to set shortcut target: %w", err)
	}
	if _, err := oleutil.PutProperty(link, "WorkingDirectory", filepath.Dir(exe)); err != nil {
		return fmt.Errorf("failed to set shortcut working directory: %w", err)
	}
	if _, err := oleutil.PutProperty(link, "Description", "micmute-tray"); err != nil {
		return fmt.Errorf("failed to set shortcut description: %w", err)
	}
	if _, err := oleutil.CallMethod(link, "Save"); err != nil {
		return fmt.Errorf("failed to save shortcut: %w", err)
	}

	c.log.Info().Str("path", shortcutPath()).Msg("Added startup shortcut")
	return nil
}

func (c *windowsCapability) RemoveFromAutostart() error {
	err := os.Remove(shortcutPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove startup shortcut: %w", err)
	}
	return nil
}

func (c *windowsCapability) IsInAutostart() bool {
	_, err := os.Stat(shortcutPath())
	return err == nil
}

func shortcutPath() string {
	return filepath.Join(os.Getenv("APPDATA"),
		"Microsoft", "Windows", "Start Menu", "Programs", "Startup", shortcutName)
}
