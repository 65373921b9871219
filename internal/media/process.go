package media

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vclab/internal/logging"
	"vclab/internal/metrics"
	"vclab/internal/numeric"

	"github.com/disintegration/imaging"
)

// DefaultJPEGQuality is used when a Processor is created with quality 0.
const DefaultJPEGQuality = 75

// Processor runs in-process image operations and writes their results to
// an output directory.
type Processor struct {
	outputDir   string
	jpegQuality int
}

// NewProcessor creates a Processor writing to outputDir.
func NewProcessor(outputDir string, jpegQuality int) *Processor {
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	return &Processor{outputDir: outputDir, jpegQuality: jpegQuality}
}

// writableExt maps an input extension to one imaging can encode. WebP has
// no encoder and becomes PNG.
func writableExt(ext string) string {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff":
		return ext
	default:
		return ".png"
	}
}

// outputFile builds <src stem>.<tag><ext> under the output directory. Tags
// carry the parameters that change the result, so different settings never
// share a file.
func (p *Processor) outputFile(src, tag, ext string) string {
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(p.outputDir, fmt.Sprintf("%s.%s%s", stem, tag, ext))
}

func (p *Processor) save(img image.Image, dst string, quality int) error {
	err := imaging.Save(img, dst,
		imaging.JPEGQuality(quality),
		imaging.PNGCompressionLevel(png.BestCompression),
	)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", filepath.Base(dst), err)
	}
	return nil
}

// Resize shrinks src by factor in both dimensions. libvips is used when
// available; imaging is the fallback.
func (p *Processor) Resize(src string, factor float64) (string, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return "", numeric.InvalidInputf("scale factor must be a positive number, got %v", factor)
	}
	dst := p.outputFile(src, "resized-x"+strconv.FormatFloat(factor, 'g', -1, 64), writableExt(Ext(src)))

	if IsVipsAvailable() && vipsCanWrite(Ext(dst)) {
		start := time.Now()
		err := resizeWithVips(src, dst, factor, p.jpegQuality)
		metrics.ObserveImage("resize", "vips", start, err)
		if err == nil {
			return dst, nil
		}
		if errors.Is(err, ErrInvalidImage) {
			return "", err
		}
		logging.Warn("vips resize of %s failed, falling back to imaging: %v", filepath.Base(src), err)
	}

	start := time.Now()
	err := p.resizeWithImaging(src, dst, factor)
	metrics.ObserveImage("resize", "imaging", start, err)
	if err != nil {
		return "", err
	}
	return dst, nil
}

func (p *Processor) resizeWithImaging(src, dst string, factor float64) error {
	img, err := openImage(src)
	if err != nil {
		return err
	}
	bounds := img.Bounds()
	width := max(1, int(math.Round(float64(bounds.Dx())/factor)))
	height := max(1, int(math.Round(float64(bounds.Dy())/factor)))

	logging.Debug("Resizing %s from %dx%d to %dx%d", filepath.Base(src), bounds.Dx(), bounds.Dy(), width, height)
	return p.save(imaging.Resize(img, width, height, imaging.Lanczos), dst, p.jpegQuality)
}

// Grayscale writes a gray version of src.
func (p *Processor) Grayscale(src string) (string, error) {
	start := time.Now()
	dst := p.outputFile(src, "bw", writableExt(Ext(src)))

	img, err := openImage(src)
	if err == nil {
		err = p.save(imaging.Grayscale(img), dst, p.jpegQuality)
	}
	metrics.ObserveImage("grayscale", "imaging", start, err)
	if err != nil {
		return "", err
	}
	return dst, nil
}

// Compress re-encodes src with maximum PNG compression for PNG inputs and
// as JPEG at quality otherwise. A quality of 0 selects the processor's
// default.
func (p *Processor) Compress(src string, quality int) (string, error) {
	if quality == 0 {
		quality = p.jpegQuality
	}
	if quality < 1 || quality > 100 {
		return "", numeric.InvalidInputf("quality must be between 1 and 100, got %d", quality)
	}

	ext := ".jpg"
	if Ext(src) == ".png" {
		ext = ".png"
	}
	dst := p.outputFile(src, "compressed-q"+strconv.Itoa(quality), ext)

	start := time.Now()
	img, err := openImage(src)
	if err == nil {
		err = p.save(img, dst, quality)
	}
	metrics.ObserveImage("compress", "imaging", start, err)
	if err != nil {
		return "", err
	}
	return dst, nil
}
