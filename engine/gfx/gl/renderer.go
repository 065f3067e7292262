package glbackend

import (
	"github.com/hubastard/arbor/engine/core"
	"github.com/hubastard/arbor/engine/gfx/renderer2d"
	"github.com/hubastard/arbor/engine/logging"
)

// Renderer is the 2D batching renderer running on an OpenGL device.
type Renderer struct {
	*renderer2d.Renderer2D
	dev *Device
}

// NewRenderer builds the renderer on the GL context current on this thread,
// which the platform window creates.
func NewRenderer(_ core.Window, cfg core.Config) (*Renderer, error) {
	dev := NewDevice()
	info := dev.Info()
	logging.Logger().Info("GL", "vendor", info.Vendor, "renderer", info.Renderer, "version", info.Version)

	r2d, err := renderer2d.New(dev, renderer2d.OptionsFromConfig(cfg))
	if err != nil {
		dev.Release()
		return nil, err
	}
	return &Renderer{Renderer2D: r2d, dev: dev}, nil
}

// Device returns the underlying GL device.
func (r *Renderer) Device() *Device { return r.dev }

func (r *Renderer) Close() error {
	err := r.Renderer2D.Close()
	r.dev.Release()
	return err
}
