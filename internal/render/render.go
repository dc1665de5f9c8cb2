package render

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"

	"github.com/sekaiwx/vissrview/internal/vissr"
)

// Rendering defaults matching the archive's historical presentation.
const (
	DefaultStretch = 1.35
	DefaultDPI     = 300
)

// Artifact is a finished raster. The pipeline retains no reference after
// returning one.
type Artifact struct {
	Image  *image.NRGBA
	Width  int
	Height int
	DPI    int
}

// EncodePNG writes the artifact as PNG.
func (a *Artifact) EncodePNG(w io.Writer) error {
	return png.Encode(w, a.Image)
}

// EncodeJPEG writes the artifact as JPEG at the given quality (1-100).
func (a *Artifact) EncodeJPEG(w io.Writer, quality int) error {
	return jpeg.Encode(w, a.Image, &jpeg.Options{Quality: quality})
}

// Renderer rasterizes temperature grids through a color scale, correcting
// the sensor's aspect distortion with a fixed vertical stretch.
type Renderer struct {
	Scale   ColorScale
	Stretch float64
	DPI     int
}

// NewRenderer returns a Renderer with the stock IR scale, 1.35x stretch,
// and 300 DPI.
func NewRenderer() *Renderer {
	return &Renderer{Scale: IRScale(), Stretch: DefaultStretch, DPI: DefaultDPI}
}

// Render maps the grid through the color scale and resamples it vertically
// by the stretch factor. The resampling is Catmull-Rom, preserving the
// smooth gradients of the enhanced scale.
func (r *Renderer) Render(grid *vissr.TemperatureGrid) *Artifact {
	flat := image.NewNRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	for row := 0; row < grid.Height; row++ {
		for col := 0; col < grid.Width; col++ {
			flat.SetNRGBA(col, row, r.Scale.Lookup(grid.At(row, col)))
		}
	}

	stretch := r.Stretch
	if stretch <= 0 {
		stretch = 1
	}
	outH := int(math.Round(float64(grid.Height) * stretch))
	if outH < 1 {
		outH = 1
	}
	if outH == grid.Height {
		return &Artifact{Image: flat, Width: grid.Width, Height: grid.Height, DPI: r.DPI}
	}

	out := image.NewNRGBA(image.Rect(0, 0, grid.Width, outH))
	draw.CatmullRom.Scale(out, out.Bounds(), flat, flat.Bounds(), draw.Src, nil)

	return &Artifact{Image: out, Width: grid.Width, Height: outH, DPI: r.DPI}
}
