package media

import (
	"image"
	"time"

	"vclab/internal/colorspace"
	"vclab/internal/metrics"
	"vclab/internal/numeric"
)

// ChannelStats summarises one plane.
type ChannelStats struct {
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

// YUVStats summarises an image after per-pixel RGB to YUV conversion.
type YUVStats struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Y      ChannelStats `json:"Y"`
	U      ChannelStats `json:"U"`
	V      ChannelStats `json:"V"`
}

// ImageYUVStats decodes src, converting every pixel to YUV. Images larger
// than MaxImageDimension or MaxImagePixels are downscaled first.
func ImageYUVStats(src string) (*YUVStats, error) {
	start := time.Now()
	img, err := LoadImageConstrained(src, MaxImageDimension, MaxImagePixels)
	var stats *YUVStats
	if err == nil {
		stats, err = ComputeYUVStats(img)
	}
	metrics.ObserveImage("yuv_stats", "imaging", start, err)
	return stats, err
}

// ComputeYUVStats converts every pixel of img to YUV and summarises each
// plane.
func ComputeYUVStats(img image.Image) (*YUVStats, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, numeric.InvalidInputf("image has no pixels")
	}

	y, u, v, err := colorspace.PlanesToYUV(colorspace.ImagePlanes(img))
	if err != nil {
		return nil, err
	}

	return &YUVStats{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Y:      summarise(y),
		U:      summarise(u),
		V:      summarise(v),
	}, nil
}

func summarise(plane [][]float64) ChannelStats {
	stats := ChannelStats{Min: plane[0][0], Max: plane[0][0]}
	sum, n := 0.0, 0
	for _, row := range plane {
		for _, x := range row {
			stats.Min = min(stats.Min, x)
			stats.Max = max(stats.Max, x)
			sum += x
			n++
		}
	}
	stats.Mean = sum / float64(n)
	return stats
}
