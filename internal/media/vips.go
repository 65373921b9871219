package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"vclab/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// vipsLogging maps the application log level to the libvips level and a
// handler that forwards libvips messages to package logging. libvips
// levels follow GLib, where a smaller value is more severe.
func vipsLogging(appLevel logging.LogLevel) (vips.LogLevel, func(string, vips.LogLevel, string)) {
	forward := func(minLevel vips.LogLevel) func(string, vips.LogLevel, string) {
		return func(domain string, level vips.LogLevel, msg string) {
			if level > minLevel {
				return
			}
			switch level {
			case vips.LogLevelError, vips.LogLevelCritical:
				logging.Error("[%s] %s", domain, msg)
			case vips.LogLevelWarning:
				logging.Warn("[%s] %s", domain, msg)
			default:
				logging.Debug("[%s] %s", domain, msg)
			}
		}
	}

	switch appLevel {
	case logging.LevelDebug:
		return vips.LogLevelInfo, forward(vips.LogLevelInfo)
	case logging.LevelWarn:
		return vips.LogLevelError, forward(vips.LogLevelError)
	case logging.LevelError:
		return vips.LogLevelCritical, forward(vips.LogLevelCritical)
	default:
		return vips.LogLevelWarning, forward(vips.LogLevelWarning)
	}
}

// InitVips initializes the libvips library. It should be called once at
// startup; later calls are no-ops.
func InitVips() error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	// Logging must be configured before Startup to take effect.
	level, handler := vipsLogging(logging.GetLevel())
	vips.LoggingSettings(handler, level)

	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
		ReportLeaks:      false,
		CacheTrace:       false,
		CollectStats:     false,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

// ShutdownVips cleans up libvips resources. libvips cannot be restarted in
// the same process afterwards.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized and available
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// vipsCanWrite reports whether the vips path handles an output extension.
func vipsCanWrite(ext string) bool {
	return ext == ".jpg" || ext == ".jpeg" || ext == ".png"
}

// resizeWithVips shrinks src by factor with Lanczos3 and writes dst as
// JPEG (at quality) or PNG, chosen by the extension of dst.
func resizeWithVips(src, dst string, factor float64, quality int) error {
	if !IsVipsAvailable() {
		return fmt.Errorf("libvips not available")
	}

	ref, err := vips.LoadImageFromFile(src, vips.NewImportParams())
	if err != nil {
		return fmt.Errorf("%w: vips failed to load image: %v", ErrInvalidImage, err)
	}
	defer ref.Close()

	logging.Debug("Vips loaded %s: %dx%d, scaling by 1/%v", filepath.Base(src), ref.Width(), ref.Height(), factor)

	if err := ref.Resize(1/factor, vips.KernelLanczos3); err != nil {
		return fmt.Errorf("vips resize failed: %w", err)
	}

	var data []byte
	if ext := Ext(dst); ext == ".png" {
		data, _, err = ref.ExportPng(vips.NewPngExportParams())
	} else {
		data, _, err = ref.ExportJpeg(&vips.JpegExportParams{
			Quality:        quality,
			StripMetadata:  false,
			OptimizeCoding: true,
		})
	}
	if err != nil {
		return fmt.Errorf("vips export failed: %w", err)
	}

	return os.WriteFile(dst, data, 0o644)
}
