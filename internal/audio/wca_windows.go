//go:build windows

package audio

import (
	"fmt"
	"sync"

	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
	"github.com/rs/zerolog"
)

// wcaController talks to the Core Audio API over COM. COM is initialized
// apartment-threaded on the constructing goroutine; all operations are
// serialized by the controller mutex.
type wcaController struct {
	mu   sync.Mutex
	mmde *wca.IMMDeviceEnumerator
	log  zerolog.Logger
}

// New opens a connection to the Core Audio device enumerator.
func New(log zerolog.Logger) (Controller, error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		return nil, fmt.Errorf("failed to initialize COM: %w", err)
	}

	var mmde *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &mmde); err != nil {
		ole.CoUninitialize()
		return nil, fmt.Errorf("failed to create device enumerator: %w", err)
	}

	log.Debug().Msg("Opened Core Audio device enumerator")

	return &wcaController{mmde: mmde, log: log}, nil
}

func (c *wcaController) CaptureEndpoints() ([]Endpoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var mdc *wca.IMMDeviceCollection
	if err := c.mmde.EnumAudioEndpoints(wca.ECapture, wca.DEVICE_STATE_ACTIVE, &mdc); err != nil {
		return nil, fmt.Errorf("failed to enumerate capture endpoints: %w", err)
	}
	defer mdc.Release()

	var count uint32
	if err := mdc.GetCount(&count); err != nil {
		return nil, fmt.Errorf("failed to count capture endpoints: %w", err)
	}

	eps := make([]Endpoint, 0, count)
	for i := uint32(0); i < count; i++ {
		var mmd *wca.IMMDevice
		if err := mdc.Item(i, &mmd); err != nil {
			c.log.Debug().Uint32("index", i).Err(err).Msg("Skipping unreadable endpoint")
			continue
		}
		// State errors fail open: a device mid-reconfiguration is still
		// worth attempting to mute.
		var state uint32
		if err := mmd.GetState(&state); err == nil && state != wca.DEVICE_STATE_ACTIVE {
			mmd.Release()
			continue
		}
		eps = append(eps, &wcaEndpoint{dev: mmd})
	}

	return eps, nil
}

func (c *wcaController) DefaultCapture() (Endpoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var mmd *wca.IMMDevice
	if err := c.mmde.GetDefaultAudioEndpoint(wca.ECapture, wca.EMultimedia, &mmd); err != nil {
		return nil, fmt.Errorf("failed to get default capture endpoint: %w", err)
	}
	return &wcaEndpoint{dev: mmd}, nil
}

func (c *wcaController) Endpoint(id string) (Endpoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var mmd *wca.IMMDevice
	if err := c.mmde.GetDevice(id, &mmd); err != nil {
		return nil, fmt.Errorf("failed to resolve endpoint %q: %w", id, err)
	}
	return &wcaEndpoint{dev: mmd}, nil
}

func (c *wcaController) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mmde != nil {
		c.mmde.Release()
		c.mmde = nil
		ole.CoUninitialize()
	}
	return nil
}

type wcaEndpoint struct {
	dev *wca.IMMDevice
	id  string
}

func (e *wcaEndpoint) ID() string {
	if e.id == "" {
		if err := e.dev.GetId(&e.id); err != nil {
			return ""
		}
	}
	return e.id
}

func (e *wcaEndpoint) Name() string {
	var ps *wca.IPropertyStore
	if err := e.dev.OpenPropertyStore(wca.STGM_READ, &ps); err != nil {
		return "Unknown device"
	}
	defer ps.Release()

	var pv wca.PROPVARIANT
	if err := ps.GetValue(&wca.PKEY_Device_FriendlyName, &pv); err != nil {
		return "Unknown device"
	}
	return pv.String()
}

func (e *wcaEndpoint) Muted() (bool, error) {
	aev, err := e.volume()
	if err != nil {
		return false, err
	}
	defer aev.Release()

	var muted bool
	if err := aev.GetMute(&muted); err != nil {
		return false, fmt.Errorf("failed to read mute flag: %w", err)
	}
	return muted, nil
}

func (e *wcaEndpoint) SetMuted(muted bool) error {
	aev, err := e.volume()
	if err != nil {
		return err
	}
	defer aev.Release()

	if err := aev.SetMute(muted, nil); err != nil {
		return fmt.Errorf("failed to set mute flag: %w", err)
	}
	return nil
}

func (e *wcaEndpoint) volume() (*wca.IAudioEndpointVolume, error) {
	var aev *wca.IAudioEndpointVolume
	if err := e.dev.Activate(wca.IID_IAudioEndpointVolume, wca.CLSCTX_ALL, nil, &aev); err != nil {
		return nil, fmt.Errorf("failed to activate endpoint volume: %w", err)
	}
	return aev, nil
}

func (e *wcaEndpoint) Close() {
	if e.dev != nil {
		e.dev.Release()
		e.dev = nil
	}
}
