package app

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/shasankp000/micmute-tray/internal/audio"
	"github.com/shasankp000/micmute-tray/internal/config"
	"github.com/shasankp000/micmute-tray/internal/hotkey"
	"github.com/shasankp000/micmute-tray/internal/notify"
	"github.com/shasankp000/micmute-tray/internal/platform"
)

// StatusUpdater is an interface for reflecting the aggregate mute state
// in the UI (e.g., tray title and tooltip)
type StatusUpdater interface {
	SetMuteState(state audio.MuteState)
}

type Config struct {
	Audio         audio.Controller
	Notifier      notify.Notifier
	Platform      platform.Capability
	Hotkeys       hotkey.Manager
	Config        *config.Config
	Logger        zerolog.Logger
	StatusUpdater StatusUpdater // Optional - can be nil
}

// App owns the mute-state resolution core. All public operations take
// the app mutex; hotkey and tray callbacks may arrive on different
// goroutines.
type App struct {
	audio    audio.Controller
	notifier notify.Notifier
	plat     platform.Capability
	hk       hotkey.Manager
	cfg      *config.Config
	log      zerolog.Logger
	status   StatusUpdater

	mu sync.Mutex
}

func New(cfg Config) *App {
	return &App{
		audio:    cfg.Audio,
		notifier: cfg.Notifier,
		plat:     cfg.Platform,
		hk:       cfg.Hotkeys,
		cfg:      cfg.Config,
		log:      cfg.Logger,
		status:   cfg.StatusUpdater,
	}
}

// MuteState computes the aggregate mute state over all active capture
// endpoints: muted iff every readable endpoint is muted, unknown iff
// none is readable.
func (a *App) MuteState() audio.MuteState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muteStateLocked()
}

func (a *App) muteStateLocked() audio.MuteState {
	eps, err := a.audio.CaptureEndpoints()
	if err != nil {
		a.log.Warn().Err(err).Msg("Failed to enumerate capture endpoints")
		return audio.StateUnknown
	}
	defer audio.ReleaseAll(eps)

	readable := 0
	allMuted := true
	for _, ep := range eps {
		muted, err := ep.Muted()
		if err != nil {
			a.log.Debug().Str("device", ep.Name()).Err(err).Msg("Skipping unreadable mute flag")
			continue
		}
		readable++
		if !muted {
			allMuted = false
		}
	}

	if readable == 0 {
		return audio.StateUnknown
	}
	if allMuted {
		return audio.StateMuted
	}
	return audio.StateUnmuted
}

// SetMuted pushes target to every active capture endpoint, best effort.
// It returns the number of endpoints updated. When at least one endpoint
// was updated the state is persisted and a single notification fires.
func (a *App) SetMuted(target bool) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	applied := a.setMutedLocked(target)
	a.refreshStatusLocked()
	return applied
}

func (a *App) setMutedLocked(target bool) int {
	// Fresh enumeration, never handles reused from an earlier query.
	eps, err := a.audio.CaptureEndpoints()
	if err != nil {
		a.log.Warn().Err(err).Msg("Failed to enumerate capture endpoints")
		return 0
	}
	defer audio.ReleaseAll(eps)

	applied := 0
	for _, ep := range eps {
		if err := ep.SetMuted(target); err != nil {
			a.log.Debug().Str("device", ep.Name()).Err(err).Msg("Endpoint refused mute change, skipping")
			continue
		}
		applied++
	}

	if applied == 0 {
		return 0
	}

	a.cfg.SetLastMuted(target)
	if err := a.cfg.Save(); err != nil {
		a.log.Error().Err(err).Msg("Failed to persist mute state")
	}

	if a.notifier != nil {
		if err := a.notifier.MuteChanged(target); err != nil {
			a.log.Debug().Err(err).Msg("Notification failed")
		}
	}

	a.log.Info().Bool("muted", target).Int("endpoints", applied).Msg("Applied mute state")
	return applied
}

// Toggle flips the aggregate mute state. An unknown state (no usable
// microphone) is a no-op.
func (a *App) Toggle() {
	a.mu.Lock()
	defer a.mu.Unlock()

	state := a.muteStateLocked()
	if state == audio.StateUnknown {
		a.log.Warn().Msg("No capture endpoint available, toggle ignored")
		a.refreshStatusLocked()
		return
	}

	a.setMutedLocked(state != audio.StateMuted)
	a.refreshStatusLocked()
}

// OnHotkey is the global hotkey callback.
func (a *App) OnHotkey() {
	a.Toggle()
}

// RestoreLastState re-applies the persisted mute state, so the on-disk
// state becomes the live state after a restart or crash.
func (a *App) RestoreLastState() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cfg.LastMuted == nil {
		a.refreshStatusLocked()
		return
	}
	a.log.Info().Bool("muted", *a.cfg.LastMuted).Msg("Restoring persisted mute state")
	a.setMutedLocked(*a.cfg.LastMuted)
	a.refreshStatusLocked()
}

// RefreshStatus recomputes the aggregate state and pushes it to the UI.
func (a *App) RefreshStatus() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refreshStatusLocked()
}

func (a *App) refreshStatusLocked() {
	if a.status != nil {
		a.status.SetMuteState(a.muteStateLocked())
	}
}

// ListDevices returns the active capture devices for the tray menu.
func (a *App) ListDevices() ([]audio.Device, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	eps, err := a.audio.CaptureEndpoints()
	if err != nil {
		return nil, err
	}
	defer audio.ReleaseAll(eps)

	defaultID := ""
	if def, err := a.audio.DefaultCapture(); err == nil {
		defaultID = def.ID()
		def.Close()
	}

	devices := make([]audio.Device, 0, len(eps))
	for _, ep := range eps {
		id := ep.ID()
		devices = append(devices, audio.Device{
			ID:      id,
			Name:    ep.Name(),
			Default: id != "" && id == defaultID,
		})
	}
	return devices, nil
}

// SelectedDeviceID resolves the device the UI should show as selected:
// the configured device if still live, else the OS default, else the
// first enumerated endpoint. Selection only affects the menu, mute
// operations always cover every active capture endpoint.
func (a *App) SelectedDeviceID() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	ep := a.preferredEndpointLocked()
	if ep == nil {
		return ""
	}
	defer ep.Close()
	return ep.ID()
}

func (a *App) preferredEndpointLocked() audio.Endpoint {
	if a.cfg.DeviceID != nil {
		if ep, err := a.audio.Endpoint(*a.cfg.DeviceID); err == nil {
			return ep
		}
	}
	if ep, err := a.audio.DefaultCapture(); err == nil {
		return ep
	}
	eps, err := a.audio.CaptureEndpoints()
	if err != nil || len(eps) == 0 {
		return nil
	}
	audio.ReleaseAll(eps[1:])
	return eps[0]
}

// SetDevice persists the preferred capture device and re-applies the
// last mute state so the new selection matches it.
func (a *App) SetDevice(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cfg.SetDeviceID(id)
	if err := a.cfg.Save(); err != nil {
		return err
	}

	if a.cfg.LastMuted != nil {
		a.setMutedLocked(*a.cfg.LastMuted)
	}
	a.refreshStatusLocked()
	return nil
}

// SetAutostart adds or removes the startup shortcut and persists the
// choice.
func (a *App) SetAutostart(enabled bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	if enabled {
		err = a.plat.AddToAutostart()
	} else {
		err = a.plat.RemoveFromAutostart()
	}
	if err != nil {
		return err
	}

	a.cfg.Autostart = enabled
	return a.cfg.Save()
}

// Autostart reports whether the startup shortcut currently exists.
func (a *App) Autostart() bool {
	return a.plat.IsInAutostart()
}

// SetAppearance persists the UI appearance mode.
func (a *App) SetAppearance(mode string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cfg.Appearance = mode
	if err := a.cfg.Save(); err != nil {
		a.log.Error().Err(err).Msg("Failed to persist appearance")
	}
}

// Hotkey returns the configured accelerator.
func (a *App) Hotkey() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.Hotkey
}

// SetHotkey rebinds the global hotkey and persists the new combination.
// The previous binding stays in place if registration fails.
func (a *App) SetHotkey(accel string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.hk.Register(accel, a.OnHotkey); err != nil {
		return err
	}

	a.cfg.Hotkey = accel
	if err := a.cfg.Save(); err != nil {
		a.log.Error().Err(err).Msg("Failed to persist hotkey")
	}
	a.log.Info().Str("hotkey", accel).Msg("Rebound hotkey")
	return nil
}

func (a *App) Shutdown() {
	a.log.Info().Msg("Shutting down")
}
