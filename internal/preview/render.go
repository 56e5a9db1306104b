// Package preview renders wireframe thumbnails of converted meshes.
package preview

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/Faultbox/objmesh/pkg/mesh"
)

// Background is the thumbnail clear color.
var Background = color.NRGBA{R: 24, G: 24, B: 28, A: 255}

// Options controls Render.
type Options struct {
	Size        int    // output width and height in pixels
	Supersample int    // render at Size*Supersample, then downsample
	Axis        string // view direction: "x", "y" or "z"
}

// fill is the fraction of the canvas the mesh bounds occupy.
const fill = 0.9

// Render draws every edge of m with an orthographic projection along the
// chosen axis. Triangle meshes are drawn as triangle outlines. Edge color
// is the mean of its endpoint vertex colors.
func Render(m *mesh.Mesh, opts Options) (*image.NRGBA, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("preview size must be positive, got %d", opts.Size)
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 1
	}
	u, v, err := axes(opts.Axis)
	if err != nil {
		return nil, err
	}

	canvasSize := opts.Size * opts.Supersample
	canvas := image.NewNRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	proj := newProjection(m.Bounds, u, v, canvasSize)
	forEachEdge(m, func(a, b uint16) {
		va, vb := m.Vertices[a], m.Vertices[b]
		x0, y0 := proj.apply(va.Position)
		x1, y1 := proj.apply(vb.Position)
		drawLine(canvas, x0, y0, x1, y1, edgeColor(va.Color, vb.Color))
	})

	if opts.Supersample == 1 {
		return canvas, nil
	}
	out := image.NewNRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	draw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	return out, nil
}

// axes returns the position components mapped to image x and y.
func axes(axis string) (int, int, error) {
	switch axis {
	case "", "z":
		return 0, 1, nil
	case "y":
		return 0, 2, nil
	case "x":
		return 2, 1, nil
	default:
		return 0, 0, fmt.Errorf("unknown preview axis %q", axis)
	}
}

func forEachEdge(m *mesh.Mesh, fn func(a, b uint16)) {
	idx := m.Indices
	if m.Mode == mesh.DrawLines {
		for i := 0; i+1 < len(idx); i += 2 {
			fn(idx[i], idx[i+1])
		}
		return
	}
	for i := 0; i+2 < len(idx); i += 3 {
		fn(idx[i], idx[i+1])
		fn(idx[i+1], idx[i+2])
		fn(idx[i+2], idx[i])
	}
}

type projection struct {
	u, v     int
	center   [3]float32
	scale    float32
	halfSide float32
}

func newProjection(b mesh.Bounds, u, v, side int) projection {
	size := b.Size()
	extent := max(size[u], size[v])
	scale := float32(1)
	if extent > 0 {
		scale = fill * float32(side-1) / extent
	}
	return projection{u: u, v: v, center: b.Center(), scale: scale, halfSide: float32(side-1) / 2}
}

// apply maps a position to pixel coordinates; image y grows downward.
func (p projection) apply(pos [3]float32) (int, int) {
	x := p.halfSide + (pos[p.u]-p.center[p.u])*p.scale
	y := p.halfSide - (pos[p.v]-p.center[p.v])*p.scale
	return int(x + 0.5), int(y + 0.5)
}

func edgeColor(a, b [3]float32) color.NRGBA {
	return color.NRGBA{
		R: channel((a[0] + b[0]) / 2),
		G: channel((a[1] + b[1]) / 2),
		B: channel((a[2] + b[2]) / 2),
		A: 255,
	}
}

func channel(f float32) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}

// drawLine plots a Bresenham line, clipped to the image bounds.
func drawLine(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	bounds := img.Bounds()
	e := dx + dy
	for {
		if (image.Point{X: x0, Y: y0}).In(bounds) {
			img.SetNRGBA(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
