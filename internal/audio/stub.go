//go:build !windows

package audio

import "github.com/rs/zerolog"

// stubController stands in on platforms without Core Audio. Every
// operation fails, so the aggregate mute state reads as unknown and the
// toggle is a no-op.
type stubController struct{}

// New returns a controller with no usable endpoints.
func New(log zerolog.Logger) (Controller, error) {
	log.Warn().Msg("Core Audio unavailable on this platform, mute control disabled")
	return stubController{}, nil
}

func (stubController) CaptureEndpoints() ([]Endpoint, error) { return nil, ErrUnsupported }
func (stubController) DefaultCapture() (Endpoint, error)     { return nil, ErrUnsupported }
func (stubController) Endpoint(id string) (Endpoint, error)  { return nil, ErrUnsupported }
func (stubController) Close() error                          { return nil }
