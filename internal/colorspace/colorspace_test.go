package colorspace

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"vclab/internal/numeric"
)

const eps = 1e-9

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestRGBToYUV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		want    YUV
	}{
		{"black", 0, 0, 0, YUV{0, 128, 128}},
		{"white", 255, 255, 255, YUV{255, 128, 128}},
		{"sample", 24, 240, 0, YUV{148.056, 44.44784, 39.5144}},
		{"pure red", 255, 0, 0, YUV{76.245, 84.9713, 255.5}},
		{"negative passes through", -10, 0, 0, YUV{-2.99, 129.6874, 123}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RGBToYUV(tt.r, tt.g, tt.b)
			if !near(got.Y, tt.want.Y, eps) || !near(got.U, tt.want.U, eps) || !near(got.V, tt.want.V, eps) {
				t.Errorf("RGBToYUV(%v, %v, %v) = %+v, want %+v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestYUVToRGB(t *testing.T) {
	tests := []struct {
		name    string
		y, u, v float64
		want    RGB
	}{
		{"neutral", 100, 128, 128, RGB{100, 100, 100}},
		{"v offset", 0, 128, 138, RGB{14.02, -7.14136, 0}},
		{"u offset", 0, 138, 128, RGB{0, -3.44136, 17.72}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := YUVToRGB(tt.y, tt.u, tt.v)
			if !near(got.R, tt.want.R, eps) || !near(got.G, tt.want.G, eps) || !near(got.B, tt.want.B, eps) {
				t.Errorf("YUVToRGB(%v, %v, %v) = %+v, want %+v", tt.y, tt.u, tt.v, got, tt.want)
			}
		})
	}
}

// The coefficient sets are not exact reciprocals: over [0,255] the
// residual stays below 0.01 but is not zero.
func TestRoundTripResidual(t *testing.T) {
	maxResidual := 0.0
	for r := 0.0; r <= 255; r += 15 {
		for g := 0.0; g <= 255; g += 15 {
			for b := 0.0; b <= 255; b += 15 {
				yuv := RGBToYUV(r, g, b)
				rgb := YUVToRGB(yuv.Y, yuv.U, yuv.V)
				for _, d := range []float64{rgb.R - r, rgb.G - g, rgb.B - b} {
					maxResidual = math.Max(maxResidual, math.Abs(d))
				}
			}
		}
	}

	if maxResidual >= 0.01 {
		t.Errorf("round trip residual %v exceeds 0.01", maxResidual)
	}
	if maxResidual == 0 {
		t.Error("round trip was exact; the literal coefficients must not be reciprocal")
	}
}

func TestPlanesToYUV(t *testing.T) {
	r := [][]float64{{24, 255}, {0, 10}}
	g := [][]float64{{240, 0}, {0, 20}}
	b := [][]float64{{0, 0}, {0, 30}}

	y, u, v, err := PlanesToYUV(r, g, b)
	if err != nil {
		t.Fatalf("PlanesToYUV() unexpected error: %v", err)
	}

	for i := range r {
		for j := range r[i] {
			want := RGBToYUV(r[i][j], g[i][j], b[i][j])
			if y[i][j] != want.Y || u[i][j] != want.U || v[i][j] != want.V {
				t.Errorf("pixel (%d,%d) = (%v,%v,%v), want %+v", i, j, y[i][j], u[i][j], v[i][j], want)
			}
		}
	}

	r2, g2, b2, err := PlanesToRGB(y, u, v)
	if err != nil {
		t.Fatalf("PlanesToRGB() unexpected error: %v", err)
	}
	for _, pair := range [][2][][]float64{{r, r2}, {g, g2}, {b, b2}} {
		if !numeric.ApproxEqual(pair[0], pair[1], 0.01) {
			t.Errorf("plane round trip drifted: %v vs %v", pair[0], pair[1])
		}
	}
}

func TestPlanesShapeMismatch(t *testing.T) {
	r := [][]float64{{1, 2}}
	g := [][]float64{{1, 2}}
	b := [][]float64{{1}}

	if _, _, _, err := PlanesToYUV(r, g, b); !errors.Is(err, numeric.ErrShapeMismatch) {
		t.Errorf("PlanesToYUV() error = %v, want ErrShapeMismatch", err)
	}
	if _, _, _, err := PlanesToRGB(r, [][]float64{{1, 2}, {3, 4}}, r); !errors.Is(err, numeric.ErrShapeMismatch) {
		t.Errorf("PlanesToRGB() error = %v, want ErrShapeMismatch", err)
	}
}

func TestImagePlanes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 24, G: 240, B: 0, A: 255})
	img.Set(1, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	r, g, b := ImagePlanes(img)
	if r[0][0] != 24 || g[0][0] != 240 || b[0][0] != 0 {
		t.Errorf("pixel 0 = (%v,%v,%v)", r[0][0], g[0][0], b[0][0])
	}
	if r[0][1] != 1 || g[0][1] != 2 || b[0][1] != 3 {
		t.Errorf("pixel 1 = (%v,%v,%v)", r[0][1], g[0][1], b[0][1])
	}
}

func TestClamp8(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-5, 0},
		{0, 0},
		{12.4, 12},
		{12.5, 13},
		{254.6, 255},
		{300, 255},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := Clamp8(tt.in); got != tt.want {
			t.Errorf("Clamp8(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
