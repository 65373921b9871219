// Package colorspace converts pixels between RGB and YUV.
//
// The forward and inverse matrices are fixed literals and are kept
// verbatim. They are close to, but not exact reciprocals of, each other:
// a round trip over the display range reproduces the input to within a
// few thousandths, never exactly. No clamping is applied; use Clamp8 if
// a display range is wanted.
package colorspace

import (
	"image"
	"math"

	"vclab/internal/numeric"
)

// RGB is a pixel in RGB space.
type RGB struct {
	R float64 `json:"R"`
	G float64 `json:"G"`
	B float64 `json:"B"`
}

// YUV is a pixel in YUV space.
type YUV struct {
	Y float64 `json:"Y"`
	U float64 `json:"U"`
	V float64 `json:"V"`
}

// RGBToYUV converts one pixel from RGB to YUV.
func RGBToYUV(r, g, b float64) YUV {
	return YUV{
		Y: 0.299*r + 0.587*g + 0.114*b,
		U: -0.16874*r - 0.33126*g + 0.5*b + 128,
		V: 0.5*r - 0.41869*g - 0.08131*b + 128,
	}
}

// YUVToRGB converts one pixel from YUV to RGB.
func YUVToRGB(y, u, v float64) RGB {
	return RGB{
		R: y + 1.402*(v-128),
		G: y - 0.344136*(u-128) - 0.714136*(v-128),
		B: y + 1.772*(u-128),
	}
}

// PlanesToYUV converts three equal-shaped R, G, B planes elementwise.
func PlanesToYUV(r, g, b [][]float64) (y, u, v [][]float64, err error) {
	rows, cols, err := numeric.SameShape(r, g, b)
	if err != nil {
		return nil, nil, nil, err
	}
	y, u, v = numeric.New[float64](rows, cols), numeric.New[float64](rows, cols), numeric.New[float64](rows, cols)
	for i := 0; i < rows; i += 1 {
		for j := 0; j < cols; j += 1 {
			p := RGBToYUV(r[i][j], g[i][j], b[i][j])
			y[i][j], u[i][j], v[i][j] = p.Y, p.U, p.V
		}
	}
	return y, u, v, nil
}

// PlanesToRGB converts three equal-shaped Y, U, V planes elementwise.
func PlanesToRGB(y, u, v [][]float64) (r, g, b [][]float64, err error) {
	rows, cols, err := numeric.SameShape(y, u, v)
	if err != nil {
		return nil, nil, nil, err
	}
	r, g, b = numeric.New[float64](rows, cols), numeric.New[float64](rows, cols), numeric.New[float64](rows, cols)
	for i := 0; i < rows; i += 1 {
		for j := 0; j < cols; j += 1 {
			p := YUVToRGB(y[i][j], u[i][j], v[i][j])
			r[i][j], g[i][j], b[i][j] = p.R, p.G, p.B
		}
	}
	return r, g, b, nil
}

// ImagePlanes extracts 8-bit R, G, B planes from a decoded image.
func ImagePlanes(img image.Image) (r, g, b [][]float64) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	r, g, b = numeric.New[float64](h, w), numeric.New[float64](h, w), numeric.New[float64](h, w)
	for y := 0; y < h; y += 1 {
		for x := 0; x < w; x += 1 {
			cr, cg, cb, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			r[y][x] = float64(cr >> 8)
			g[y][x] = float64(cg >> 8)
			b[y][x] = float64(cb >> 8)
		}
	}
	return r, g, b
}

// Clamp8 rounds x and clamps it to [0, 255].
func Clamp8(x float64) uint8 {
	switch {
	case math.IsNaN(x) || x <= 0:
		return 0
	case x >= 255:
		return 255
	}
	return uint8(math.Round(x))
}
