package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shasankp000/micmute-tray/internal/audio"
	"github.com/shasankp000/micmute-tray/internal/config"
)

// Mock implementations for testing

type mockEndpoint struct {
	id       string
	name     string
	muted    bool
	readErr  error
	writeErr error
	setCalls int
}

// mockHandle is the per-enumeration handle over shared endpoint state,
// mirroring how a fresh COM handle points at the same physical device.
type mockHandle struct {
	ep     *mockEndpoint
	closed bool
}

func (h *mockHandle) ID() string   { return h.ep.id }
func (h *mockHandle) Name() string { return h.ep.name }

func (h *mockHandle) Muted() (bool, error) {
	if h.ep.readErr != nil {
		return false, h.ep.readErr
	}
	return h.ep.muted, nil
}

func (h *mockHandle) SetMuted(muted bool) error {
	h.ep.setCalls++
	if h.ep.writeErr != nil {
		return h.ep.writeErr
	}
	h.ep.muted = muted
	return nil
}

func (h *mockHandle) Close() { h.closed = true }

type mockController struct {
	endpoints []*mockEndpoint
	defaultID string
	enumErr   error
	enumCalls int
}

func (c *mockController) CaptureEndpoints() ([]audio.Endpoint, error) {
	if c.enumErr != nil {
		return nil, c.enumErr
	}
	c.enumCalls++
	handles := make([]audio.Endpoint, 0, len(c.endpoints))
	for _, ep := range c.endpoints {
		handles = append(handles, &mockHandle{ep: ep})
	}
	return handles, nil
}

func (c *mockController) DefaultCapture() (audio.Endpoint, error) {
	for _, ep := range c.endpoints {
		if ep.id == c.defaultID {
			return &mockHandle{ep: ep}, nil
		}
	}
	return nil, errors.New("no default capture endpoint")
}

func (c *mockController) Endpoint(id string) (audio.Endpoint, error) {
	for _, ep := range c.endpoints {
		if ep.id == id {
			return &mockHandle{ep: ep}, nil
		}
	}
	return nil, fmt.Errorf("endpoint %q not found", id)
}

func (c *mockController) Close() error { return nil }

type mockHotkeys struct {
	registered []string
	err        error
}

func (m *mockHotkeys) Register(accel string, callback func()) error {
	if m.err != nil {
		return m.err
	}
	m.registered = append(m.registered, accel)
	return nil
}

func (m *mockHotkeys) Unregister() error { return nil }
func (m *mockHotkeys) Close() error      { return nil }

type mockNotifier struct {
	muteCalls []bool
}

func (n *mockNotifier) MuteChanged(muted bool) error {
	n.muteCalls = append(n.muteCalls, muted)
	return nil
}

func (n *mockNotifier) Info(title, msg string) error { return nil }

type mockStatus struct {
	states []audio.MuteState
}

func (s *mockStatus) SetMuteState(state audio.MuteState) {
	s.states = append(s.states, state)
}

func (s *mockStatus) last() audio.MuteState {
	if len(s.states) == 0 {
		return audio.StateUnknown
	}
	return s.states[len(s.states)-1]
}

func newTestApp(t *testing.T, ctrl *mockController, cfg *config.Config) (*App, *mockNotifier, *mockStatus) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("APPDATA", dir)
	t.Setenv("HOME", dir)

	if cfg == nil {
		cfg = config.Defaults()
	}
	notifier := &mockNotifier{}
	status := &mockStatus{}
	a := New(Config{
		Audio:         ctrl,
		Notifier:      notifier,
		Config:        cfg,
		Logger:        zerolog.Nop(),
		StatusUpdater: status,
	})
	return a, notifier, status
}

func TestSetHotkeyReregistersAndPersists(t *testing.T) {
	hk := &mockHotkeys{}
	a, _, _ := newTestApp(t, &mockController{}, nil)
	a.hk = hk

	if err := a.SetHotkey("ctrl+shift+m"); err != nil {
		t.Fatalf("SetHotkey failed: %v", err)
	}

	if len(hk.registered) != 1 || hk.registered[0] != "ctrl+shift+m" {
		t.Errorf("expected hotkey registered, got %v", hk.registered)
	}
	if a.cfg.Hotkey != "ctrl+shift+m" {
		t.Errorf("expected hotkey persisted, got %q", a.cfg.Hotkey)
	}
}

func TestSetHotkeyKeepsConfigOnFailure(t *testing.T) {
	hk := &mockHotkeys{err: errors.New("combination taken")}
	a, _, _ := newTestApp(t, &mockController{}, nil)
	a.hk = hk

	if err := a.SetHotkey("alt+m"); err == nil {
		t.Fatal("expected registration error")
	}
	if a.cfg.Hotkey != "ctrl+alt+m" {
		t.Errorf("config hotkey should be unchanged, got %q", a.cfg.Hotkey)
	}
}

func TestMuteStateUnknownWhenNoEndpoints(t *testing.T) {
	a, _, _ := newTestApp(t, &mockController{}, nil)

	if got := a.MuteState(); got != audio.StateUnknown {
		t.Errorf("expected unknown state for empty endpoint set, got %v", got)
	}
}

func TestMuteStateUnknownOnEnumerationError(t *testing.T) {
	ctrl := &mockController{enumErr: errors.New("enumeration failed")}
	a, _, _ := newTestApp(t, ctrl, nil)

	if got := a.MuteState(); got != audio.StateUnknown {
		t.Errorf("expected unknown state on enumeration error, got %v", got)
	}
}

func TestMuteStateMutedOnlyWhenAllMuted(t *testing.T) {
	tests := []struct {
		name  string
		muted []bool
		want  audio.MuteState
	}{
		{"all unmuted", []bool{false, false}, audio.StateUnmuted},
		{"mixed", []bool{true, false}, audio.StateUnmuted},
		{"all muted", []bool{true, true}, audio.StateMuted},
		{"single muted", []bool{true}, audio.StateMuted},
		{"single unmuted", []bool{false}, audio.StateUnmuted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &mockController{}
			for i, m := range tt.muted {
				ctrl.endpoints = append(ctrl.endpoints, &mockEndpoint{
					id:    fmt.Sprintf("dev-%d", i),
					muted: m,
				})
			}
			a, _, _ := newTestApp(t, ctrl, nil)

			if got := a.MuteState(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMuteStateSkipsUnreadableEndpoints(t *testing.T) {
	ctrl := &mockController{endpoints: []*mockEndpoint{
		{id: "a", muted: true},
		{id: "b", muted: false, readErr: errors.New("transient driver error")},
	}}
	a, _, _ := newTestApp(t, ctrl, nil)

	if got := a.MuteState(); got != audio.StateMuted {
		t.Errorf("expected muted when the only readable endpoint is muted, got %v", got)
	}
}

func TestMuteStateUnknownWhenNothingReadable(t *testing.T) {
	ctrl := &mockController{endpoints: []*mockEndpoint{
		{id: "a", readErr: errors.New("busy")},
		{id: "b", readErr: errors.New("busy")},
	}}
	a, _, _ := newTestApp(t, ctrl, nil)

	if got := a.MuteState(); got != audio.StateUnknown {
		t.Errorf("expected unknown when no mute flag is readable, got %v", got)
	}
}

func TestToggleMutesAllFromUnmuted(t *testing.T) {
	ctrl := &mockController{endpoints: []*mockEndpoint{
		{id: "a", muted: false},
		{id: "b", muted: false},
	}}
	a, notifier, status := newTestApp(t, ctrl, nil)

	a.Toggle()

	for _, ep := range ctrl.endpoints {
		if !ep.muted {
			t.Errorf("endpoint %s should be muted after toggle", ep.id)
		}
	}
	if got := a.MuteState(); got != audio.StateMuted {
		t.Errorf("expected muted after toggle, got %v", got)
	}
	if len(notifier.muteCalls) != 1 || !notifier.muteCalls[0] {
		t.Errorf("expected exactly one muted notification, got %v", notifier.muteCalls)
	}
	if status.last() != audio.StateMuted {
		t.Errorf("expected status updated to muted, got %v", status.last())
	}
}

func TestToggleMixedStateMutesEverything(t *testing.T) {
	ctrl := &mockController{endpoints: []*mockEndpoint{
		{id: "a", muted: true},
		{id: "b", muted: false},
	}}
	a, _, _ := newTestApp(t, ctrl, nil)

	// Mixed counts as unmuted, so the toggle must mute both.
	a.Toggle()

	for _, ep := range ctrl.endpoints {
		if !ep.muted {
			t.Errorf("endpoint %s should be muted after toggle from mixed state", ep.id)
		}
	}
	if got := a.MuteState(); got != audio.StateMuted {
		t.Errorf("expected muted after toggle, got %v", got)
	}
}

func TestToggleUnmutesWhenAllMuted(t *testing.T) {
	ctrl := &mockController{endpoints: []*mockEndpoint{
		{id: "a", muted: true},
		{id: "b", muted: true},
	}}
	a, notifier, _ := newTestApp(t, ctrl, nil)

	a.Toggle()

	if got := a.MuteState(); got != audio.StateUnmuted {
		t.Errorf("expected unmuted after toggle, got %v", got)
	}
	if len(notifier.muteCalls) != 1 || notifier.muteCalls[0] {
		t.Errorf("expected exactly one unmuted notification, got %v", notifier.muteCalls)
	}
}

func TestToggleUnknownIsNoOp(t *testing.T) {
	ctrl := &mockController{}
	a, notifier, status := newTestApp(t, ctrl, nil)

	a.Toggle()

	if a.cfg.LastMuted != nil {
		t.Error("toggle on unknown state must not persist anything")
	}
	if len(notifier.muteCalls) != 0 {
		t.Errorf("toggle on unknown state must not notify, got %v", notifier.muteCalls)
	}
	if status.last() != audio.StateUnknown {
		t.Errorf("expected unknown status, got %v", status.last())
	}
}

func TestSetMutedIdempotent(t *testing.T) {
	ctrl := &mockController{endpoints: []*mockEndpoint{
		{id: "a", muted: false},
	}}
	a, _, _ := newTestApp(t, ctrl, nil)

	first := a.SetMuted(true)
	second := a.SetMuted(true)

	if first != 1 || second != 1 {
		t.Errorf("expected both calls to apply to 1 endpoint, got %d and %d", first, second)
	}
	if got := a.MuteState(); got != audio.StateMuted {
		t.Errorf("expected muted after repeated set, got %v", got)
	}
}

func TestSetMutedRoundTrip(t *testing.T) {
	for _, target := range []bool{true, false} {
		ctrl := &mockController{endpoints: []*mockEndpoint{
			{id: "a", muted: !target},
			{id: "b", muted: !target},
		}}
		a, _, _ := newTestApp(t, ctrl, nil)

		a.SetMuted(target)

		want := audio.StateUnmuted
		if target {
			want = audio.StateMuted
		}
		if got := a.MuteState(); got != want {
			t.Errorf("SetMuted(%v): expected %v, got %v", target, want, got)
		}
		if a.cfg.LastMuted == nil || *a.cfg.LastMuted != target {
			t.Errorf("SetMuted(%v): expected last_muted persisted", target)
		}
	}
}

func TestSetMutedPartialFailure(t *testing.T) {
	ctrl := &mockController{endpoints: []*mockEndpoint{
		{id: "a", muted: false},
		{id: "b", muted: false, writeErr: errors.New("device busy")},
	}}
	a, notifier, _ := newTestApp(t, ctrl, nil)

	applied := a.SetMuted(true)

	if applied != 1 {
		t.Errorf("expected 1 applied endpoint, got %d", applied)
	}
	if !ctrl.endpoints[0].muted {
		t.Error("healthy endpoint should have been muted")
	}
	if ctrl.endpoints[1].setCalls != 1 {
		t.Error("failing endpoint should still have been attempted")
	}
	if a.cfg.LastMuted == nil || !*a.cfg.LastMuted {
		t.Error("partial application still persists the target state")
	}
	if len(notifier.muteCalls) != 1 {
		t.Errorf("expected a single notification despite partial failure, got %v", notifier.muteCalls)
	}
}

func TestSetMutedEmptySetPersistsNothing(t *testing.T) {
	a, notifier, _ := newTestApp(t, &mockController{}, nil)

	if applied := a.SetMuted(true); applied != 0 {
		t.Errorf("expected 0 applied endpoints, got %d", applied)
	}
	if a.cfg.LastMuted != nil {
		t.Error("nothing applied, nothing should be persisted")
	}
	if len(notifier.muteCalls) != 0 {
		t.Errorf("nothing applied, no notification expected, got %v", notifier.muteCalls)
	}
}

func TestRestoreLastState(t *testing.T) {
	ctrl := &mockController{endpoints: []*mockEndpoint{
		{id: "a", muted: false},
	}}
	cfg := config.Defaults()
	cfg.SetLastMuted(true)
	a, _, _ := newTestApp(t, ctrl, cfg)

	a.RestoreLastState()

	if !ctrl.endpoints[0].muted {
		t.Error("endpoint should be muted after restoring last_muted=true")
	}
	if got := a.MuteState(); got != audio.StateMuted {
		t.Errorf("expected muted after restore, got %v", got)
	}
}

func TestRestoreLastStateAbsent(t *testing.T) {
	ctrl := &mockController{endpoints: []*mockEndpoint{
		{id: "a", muted: false},
	}}
	a, notifier, status := newTestApp(t, ctrl, nil)

	a.RestoreLastState()

	if ctrl.endpoints[0].setCalls != 0 {
		t.Error("no persisted state, no endpoint writes expected")
	}
	if len(notifier.muteCalls) != 0 {
		t.Error("no persisted state, no notification expected")
	}
	if status.last() != audio.StateUnmuted {
		t.Errorf("status should still reflect the live state, got %v", status.last())
	}
}

func TestSelectedDeviceIDPrefersConfigured(t *testing.T) {
	ctrl := &mockController{
		endpoints: []*mockEndpoint{{id: "a"}, {id: "b"}},
		defaultID: "a",
	}
	cfg := config.Defaults()
	cfg.SetDeviceID("b")
	a, _, _ := newTestApp(t, ctrl, cfg)

	if got := a.SelectedDeviceID(); got != "b" {
		t.Errorf("expected configured device b, got %q", got)
	}
}

func TestSelectedDeviceIDFallsBackToDefault(t *testing.T) {
	ctrl := &mockController{
		endpoints: []*mockEndpoint{{id: "a"}, {id: "b"}},
		defaultID: "a",
	}
	cfg := config.Defaults()
	cfg.SetDeviceID("gone")
	a, _, _ := newTestApp(t, ctrl, cfg)

	if got := a.SelectedDeviceID(); got != "a" {
		t.Errorf("expected fallback to default device a, got %q", got)
	}
}

func TestSelectedDeviceIDFallsBackToFirstEnumerated(t *testing.T) {
	ctrl := &mockController{
		endpoints: []*mockEndpoint{{id: "a"}, {id: "b"}},
		defaultID: "missing",
	}
	a, _, _ := newTestApp(t, ctrl, nil)

	if got := a.SelectedDeviceID(); got != "a" {
		t.Errorf("expected first enumerated device a, got %q", got)
	}
}

func TestSelectedDeviceIDEmptyWhenNoEndpoints(t *testing.T) {
	a, _, _ := newTestApp(t, &mockController{}, nil)

	if got := a.SelectedDeviceID(); got != "" {
		t.Errorf("expected empty selection with no endpoints, got %q", got)
	}
}

func TestSetDeviceReappliesLastMuted(t *testing.T) {
	ctrl := &mockController{
		endpoints: []*mockEndpoint{{id: "a", muted: false}, {id: "b", muted: false}},
		defaultID: "a",
	}
	cfg := config.Defaults()
	cfg.SetLastMuted(true)
	a, _, _ := newTestApp(t, ctrl, cfg)

	if err := a.SetDevice("b"); err != nil {
		t.Fatalf("SetDevice failed: %v", err)
	}

	if a.cfg.DeviceID == nil || *a.cfg.DeviceID != "b" {
		t.Error("device selection should be persisted")
	}
	// Mute covers all endpoints regardless of selection.
	for _, ep := range ctrl.endpoints {
		if !ep.muted {
			t.Errorf("endpoint %s should be muted after re-applying last state", ep.id)
		}
	}
}

func TestListDevicesMarksDefault(t *testing.T) {
	ctrl := &mockController{
		endpoints: []*mockEndpoint{
			{id: "a", name: "Headset Mic"},
			{id: "b", name: "Webcam Mic"},
		},
		defaultID: "b",
	}
	a, _, _ := newTestApp(t, ctrl, nil)

	devices, err := a.ListDevices()
	if err != nil {
		t.Fatalf("ListDevices failed: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	if devices[0].Default || !devices[1].Default {
		t.Errorf("expected only device b marked default, got %+v", devices)
	}
	if devices[1].Name != "Webcam Mic" {
		t.Errorf("expected friendly name carried through, got %q", devices[1].Name)
	}
}

func TestEveryOperationReEnumerates(t *testing.T) {
	ctrl := &mockController{endpoints: []*mockEndpoint{{id: "a"}}}
	a, _, _ := newTestApp(t, ctrl, nil)

	a.MuteState()
	a.MuteState()
	before := ctrl.enumCalls
	a.Toggle() // query + set + status refresh
	if ctrl.enumCalls <= before+1 {
		t.Errorf("toggle must enumerate separately for query and set, got %d extra calls", ctrl.enumCalls-before)
	}
}
