package tray

import (
	"context"
	"os/exec"
	"runtime"
	"sync/atomic"

	"github.com/atotto/clipboard"
	"github.com/getlantern/systray"
	"github.com/rs/zerolog"
	"github.com/shasankp000/micmute-tray/internal/app"
	"github.com/shasankp000/micmute-tray/internal/audio"
	"github.com/shasankp000/micmute-tray/internal/config"
	"github.com/shasankp000/micmute-tray/internal/logging"
)

var appearanceModes = []string{"light", "dark", "system"}

// hotkeyPresets are the combinations offered in the tray. The config
// file accepts any accelerator string; these only cover rebinding
// without a capture UI.
var hotkeyPresets = []string{"ctrl+alt+m", "ctrl+shift+m", "alt+m", "ctrl+alt+u"}

type UI struct {
	app     *app.App
	cfg     *config.Config
	version string
	commit  string
	log     zerolog.Logger
	ready   atomic.Bool

	// Menu items
	mToggle     *systray.MenuItem
	mDevices    *systray.MenuItem
	mCopyID     *systray.MenuItem
	mHotkey     *systray.MenuItem
	mAutostart  *systray.MenuItem
	mAppearance *systray.MenuItem
}

func New(application *app.App, cfg *config.Config, version, commit string) *UI {
	log := logging.New()
	return &UI{
		app:     application,
		cfg:     cfg,
		version: version,
		commit:  commit,
		log:     log,
	}
}

// SetApp sets the app reference (for circular dependency resolution)
func (u *UI) SetApp(application *app.App) {
	u.app = application
}

// SetMuteState updates the tray title and tooltip with the aggregate
// mute state. Updates arriving before the tray loop is up (startup
// state restoration happens first) are dropped; onReady refreshes.
func (u *UI) SetMuteState(state audio.MuteState) {
	if !u.ready.Load() {
		return
	}
	systray.SetTitle(statusText(state))
	systray.SetTooltip(statusText(state))
}

func (u *UI) Run(ctx context.Context) error {
	systray.Run(u.onReady, u.onExit)
	return nil
}

func (u *UI) onReady() {
	u.ready.Store(true)
	u.app.RefreshStatus()

	u.mToggle = systray.AddMenuItem("Toggle Mic", "Mute or unmute all microphones")
	systray.AddSeparator()

	u.mDevices = systray.AddMenuItem("Input Device", "Select preferred microphone")
	u.buildDeviceMenu()
	u.mCopyID = systray.AddMenuItem("Copy Device ID", "Copy the selected device ID to the clipboard")

	systray.AddSeparator()
	u.mHotkey = systray.AddMenuItem("Hotkey", "Rebind the mute toggle")
	u.buildHotkeyMenu()
	u.mAutostart = systray.AddMenuItemCheckbox("Run at Startup", "Start when you log in", u.app.Autostart())
	u.mAppearance = systray.AddMenuItem("Appearance", "Settings window theme")
	u.buildAppearanceMenu()

	systray.AddSeparator()
	mLogs := systray.AddMenuItem("Open Logs", "View application logs")
	mAbout := systray.AddMenuItem("About", "About micmute-tray")
	mQuit := systray.AddMenuItem("Quit", "Exit application")

	// Event loop
	go u.handleEvents(mLogs, mAbout, mQuit)
}

func (u *UI) handleEvents(mLogs, mAbout, mQuit *systray.MenuItem) {
	for {
		select {
		case <-u.mToggle.ClickedCh:
			u.app.Toggle()
		case <-u.mCopyID.ClickedCh:
			u.copyDeviceID()
		case <-u.mAutostart.ClickedCh:
			u.toggleAutostart()
		case <-mLogs.ClickedCh:
			u.openLogs()
		case <-mAbout.ClickedCh:
			u.showAbout()
		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (u *UI) buildDeviceMenu() {
	devices, err := u.app.ListDevices()
	if err != nil {
		u.log.Error().Err(err).Msg("Failed to list capture devices")
		return
	}
	selected := u.app.SelectedDeviceID()

	deviceItems := make(map[string]*systray.MenuItem)

	for _, dev := range devices {
		title := dev.Name
		if dev.Default {
			title += " (default)"
		}
		item := u.mDevices.AddSubMenuItem(title, "")
		if dev.ID == selected {
			item.Check()
		}
		deviceItems[dev.ID] = item

		go func(deviceID, deviceName string, menuItem *systray.MenuItem) {
			for {
				<-menuItem.ClickedCh
				for id, itm := range deviceItems {
					if id != deviceID {
						itm.Uncheck()
					}
				}
				menuItem.Check()
				if err := u.app.SetDevice(deviceID); err != nil {
					u.log.Error().Err(err).Str("device", deviceName).Msg("Failed to select device")
					continue
				}
				u.log.Info().Str("device", deviceName).Msg("Changed preferred device")
			}
		}(dev.ID, dev.Name, item)
	}
}

func (u *UI) buildHotkeyMenu() {
	presets := hotkeyPresets
	current := u.app.Hotkey()
	found := false
	for _, p := range presets {
		if p == current {
			found = true
			break
		}
	}
	if !found && current != "" {
		presets = append([]string{current}, presets...)
	}

	hotkeyItems := make(map[string]*systray.MenuItem)

	for _, accel := range presets {
		item := u.mHotkey.AddSubMenuItem(accel, "")
		if accel == current {
			item.Check()
		}
		hotkeyItems[accel] = item

		go func(a string, menuItem *systray.MenuItem) {
			for {
				<-menuItem.ClickedCh
				if err := u.app.SetHotkey(a); err != nil {
					u.log.Error().Err(err).Str("hotkey", a).Msg("Failed to rebind hotkey")
					continue
				}
				for accel, itm := range hotkeyItems {
					if accel != a {
						itm.Uncheck()
					}
				}
				menuItem.Check()
			}
		}(accel, item)
	}
}

func (u *UI) buildAppearanceMenu() {
	modeItems := make(map[string]*systray.MenuItem)

	for _, mode := range appearanceModes {
		item := u.mAppearance.AddSubMenuItem(mode, "")
		if mode == u.cfg.Appearance {
			item.Check()
		}
		modeItems[mode] = item

		go func(m string, menuItem *systray.MenuItem) {
			for {
				<-menuItem.ClickedCh
				for mode, itm := range modeItems {
					if mode != m {
						itm.Uncheck()
					}
				}
				menuItem.Check()
				u.app.SetAppearance(m)
				u.log.Info().Str("appearance", m).Msg("Changed appearance")
			}
		}(mode, item)
	}
}

func (u *UI) toggleAutostart() {
	want := !u.app.Autostart()
	if err := u.app.SetAutostart(want); err != nil {
		u.log.Error().Err(err).Msg("Failed to change autostart")
		return
	}
	if want {
		u.mAutostart.Check()
		u.log.Info().Msg("Enabled run at startup")
	} else {
		u.mAutostart.Uncheck()
		u.log.Info().Msg("Disabled run at startup")
	}
}

func (u *UI) copyDeviceID() {
	id := u.app.SelectedDeviceID()
	if id == "" {
		u.log.Warn().Msg("No capture device to copy")
		return
	}
	if err := clipboard.WriteAll(id); err != nil {
		u.log.Error().Err(err).Msg("Failed to copy device ID")
		return
	}
	u.log.Info().Str("device_id", id).Msg("Copied device ID to clipboard")
}

func (u *UI) openLogs() {
	path := logging.Path()

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("notepad", path)
	case "darwin":
		cmd = exec.Command("open", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		u.log.Error().Err(err).Str("path", path).Msg("Failed to open log file")
	}
}

func (u *UI) showAbout() {
	u.log.Info().
		Str("version", u.version).
		Str("commit", u.commit).
		Str("hotkey", u.app.Hotkey()).
		Msg("micmute-tray: mute every microphone with one hotkey")
}

func (u *UI) onExit() {
	// Cleanup
}

// statusText maps the aggregate mute state onto the tray title.
func statusText(state audio.MuteState) string {
	switch state {
	case audio.StateMuted:
		return "Mic: MUTED"
	case audio.StateUnmuted:
		return "Mic: ON"
	default:
		return "Mic: ?"
	}
}
