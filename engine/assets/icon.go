package assets

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/exp/shiny/iconvg"

	"github.com/hubastard/arbor/engine/colors"
	"github.com/hubastard/arbor/engine/render"
)

// RasterizeIcon renders IconVG data (for example an icon from
// golang.org/x/exp/shiny/materialdesign/icons) size pixels wide, painting
// the icon's first palette entry with c.
func RasterizeIcon(data []byte, size int, c colors.Color) (render.Pixels, error) {
	if size <= 0 {
		return render.Pixels{}, fmt.Errorf("rasterize icon: invalid size %d", size)
	}
	m, err := iconvg.DecodeMetadata(data)
	if err != nil {
		return render.Pixels{}, fmt.Errorf("rasterize icon: %w", err)
	}
	dx, dy := m.ViewBox.AspectRatio()
	h := int(float32(size) * dy / dx)
	if h <= 0 {
		h = size
	}

	img := image.NewRGBA(image.Rectangle{Max: image.Point{X: size, Y: h}})
	var ico iconvg.Rasterizer
	ico.SetDstImage(img, img.Bounds(), draw.Src)
	m.Palette[0] = color.RGBAModel.Convert(c.NRGBA()).(color.RGBA)
	if err := iconvg.Decode(&ico, data, &iconvg.DecodeOptions{Palette: &m.Palette}); err != nil {
		return render.Pixels{}, fmt.Errorf("rasterize icon: %w", err)
	}
	return ToPixels(img), nil
}
