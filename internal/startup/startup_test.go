package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
	if info.OS == "" || info.Arch == "" {
		t.Errorf("Expected OS and Arch to be set, got %q/%q", info.OS, info.Arch)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		setEnv   bool
		want     string
	}{
		{"unset uses default", "", false, "default"},
		{"set value wins", "custom", true, "custom"},
		{"empty uses default", "", true, "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "VCLAB_TEST_GETENV"
			if tt.setEnv {
				t.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}
			if got := getEnv(key, "default"); got != tt.want {
				t.Errorf("getEnv() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"true", false, true},
		{"0", true, false},
		{"FALSE", true, false},
		{"maybe", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("VCLAB_TEST_BOOL", tt.value)
			if got := getEnvBool("VCLAB_TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"", 75},
		{"90", 90},
		{" 1 ", 1},
		{"100", 100},
		{"0", 75},
		{"101", 75},
		{"abc", 75},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("VCLAB_TEST_INT", tt.value)
			if got := getEnvInt("VCLAB_TEST_INT", 75, 1, 100); got != tt.want {
				t.Errorf("getEnvInt(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 10 * time.Minute},
		{"90s", 90 * time.Second},
		{"1h", time.Hour},
		{"-5s", 10 * time.Minute},
		{"soon", 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("VCLAB_TEST_DURATION", tt.value)
			if got := getEnvDuration("VCLAB_TEST_DURATION", 10*time.Minute); got != tt.want {
				t.Errorf("getEnvDuration(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{512 << 20, "512.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()
	t.Setenv("WORK_DIR", filepath.Join(root, "work"))
	t.Setenv("DATABASE_DIR", filepath.Join(root, "db"))
	t.Setenv("PORT", "18080")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("MAX_UPLOAD_MB", "8")
	t.Setenv("TRANSCODE_TIMEOUT", "30s")
	t.Setenv("JPEG_QUALITY", "60")
	t.Setenv("FFMPEG_PATH", "/opt/ffmpeg/bin/ffmpeg")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Port != "18080" {
		t.Errorf("Port = %q", config.Port)
	}
	if config.MetricsEnabled {
		t.Error("MetricsEnabled should be false")
	}
	if config.MaxUploadBytes != 8<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", config.MaxUploadBytes, 8<<20)
	}
	if config.TranscodeTimeout != 30*time.Second {
		t.Errorf("TranscodeTimeout = %v", config.TranscodeTimeout)
	}
	if config.JPEGQuality != 60 {
		t.Errorf("JPEGQuality = %d", config.JPEGQuality)
	}
	if config.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("FFmpegPath = %q", config.FFmpegPath)
	}
	if config.FFprobePath != "ffprobe" {
		t.Errorf("FFprobePath = %q, want default", config.FFprobePath)
	}

	if want := filepath.Join(root, "work", "uploads"); config.UploadDir != want {
		t.Errorf("UploadDir = %q, want %q", config.UploadDir, want)
	}
	if want := filepath.Join(root, "work", "outputs"); config.OutputDir != want {
		t.Errorf("OutputDir = %q, want %q", config.OutputDir, want)
	}
	if want := filepath.Join(root, "db", "vclab.db"); config.DatabasePath != want {
		t.Errorf("DatabasePath = %q, want %q", config.DatabasePath, want)
	}
	if !config.TranscodingEnabled {
		t.Error("TranscodingEnabled should be true for a writable output directory")
	}
	for _, dir := range []string{config.UploadDir, config.OutputDir, config.DatabaseDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s should exist as a directory", dir)
		}
	}
}

func TestLoadConfigDatabaseDirIsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WORK_DIR", filepath.Join(root, "work"))
	t.Setenv("DATABASE_DIR", file)

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() should fail when DATABASE_DIR is a file")
	}
}

func TestEnsureDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := ensureDirectory(dir, "test"); err != nil {
		t.Fatalf("ensureDirectory() error = %v", err)
	}
	if err := ensureDirectory(dir, "test"); err != nil {
		t.Errorf("ensureDirectory() on existing dir error = %v", err)
	}
}

func TestGetRoutes(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/dct/encode", func(_ http.ResponseWriter, _ *http.Request) {}).Methods("POST").Name("dctEncode")
	router.HandleFunc("/healthz", func(_ http.ResponseWriter, _ *http.Request) {})

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("GetRoutes() returned %d routes, want 2", len(routes))
	}
	if routes[0] != (RouteInfo{Method: "POST", Path: "/api/dct/encode", Name: "dctEncode"}) {
		t.Errorf("routes[0] = %+v", routes[0])
	}
	if routes[1].Method != "*" || routes[1].Path != "/healthz" {
		t.Errorf("routes[1] = %+v", routes[1])
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/dct/encode", "api/dct"},
		{"/api/jobs", "api/jobs"},
		{"/healthz", "healthz"},
		{"/", ""},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
