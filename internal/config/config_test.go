package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/docs-crawler/internal/config"
)

func TestPlatformWithDefault(t *testing.T) {
	cfg, err := config.WithDefault().Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if cfg.DataDir() != "data" {
		t.Errorf("expected DataDir 'data', got %q", cfg.DataDir())
	}
	if cfg.ListenAddr() != ":3600" {
		t.Errorf("expected ListenAddr ':3600', got %q", cfg.ListenAddr())
	}
	if cfg.DefaultHitRate() != 1.0 {
		t.Errorf("expected DefaultHitRate 1.0, got %f", cfg.DefaultHitRate())
	}
	if cfg.DefaultMaxDepth() != 3 {
		t.Errorf("expected DefaultMaxDepth 3, got %d", cfg.DefaultMaxDepth())
	}
	if cfg.DefaultQueueCapacity() != 1000 {
		t.Errorf("expected DefaultQueueCapacity 1000, got %d", cfg.DefaultQueueCapacity())
	}
	if cfg.DefaultMaxURLs() != 0 {
		t.Errorf("expected DefaultMaxURLs 0 (unbounded), got %d", cfg.DefaultMaxURLs())
	}
	if cfg.LogRingSize() != 10000 {
		t.Errorf("expected LogRingSize 10000, got %d", cfg.LogRingSize())
	}
}

func TestPlatformBuild_RejectsEmptyDataDir(t *testing.T) {
	_, err := config.WithDefault().WithDataDir("").Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestPlatformWithConfigFile_FileDoesNotExist(t *testing.T) {
	_, err := config.WithConfigFile("/nonexistent/path/config.json")
	if !errors.Is(err, config.ErrFileDoesNotExist) {
		t.Errorf("expected ErrFileDoesNotExist, got: %v", err)
	}
}

func TestPlatformWithConfigFile_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.json")
	if err := os.WriteFile(configPath, []byte("{invalid"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	_, err := config.WithConfigFile(configPath)
	if !errors.Is(err, config.ErrConfigParsingFail) {
		t.Errorf("expected ErrConfigParsingFail, got: %v", err)
	}
}

func TestPlatformWithConfigFile_PartialOverridesDefault(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "platform.json")
	data := `{"dataDir": "/var/lib/crawld", "defaultMaxDepth": 7}`
	if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := config.WithConfigFile(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DataDir() != "/var/lib/crawld" {
		t.Errorf("expected overridden DataDir, got %q", cfg.DataDir())
	}
	if cfg.DefaultMaxDepth() != 7 {
		t.Errorf("expected overridden DefaultMaxDepth 7, got %d", cfg.DefaultMaxDepth())
	}
	// Fields not present in the file keep their default.
	if cfg.ListenAddr() != ":3600" {
		t.Errorf("expected default ListenAddr, got %q", cfg.ListenAddr())
	}
}

func TestNewJobConfig_FillsDefaultsFromPlatform(t *testing.T) {
	platform, _ := config.WithDefault().WithDefaultMaxDepth(4).WithDefaultHitRate(2.5).Build()

	cfg, err := config.NewJobConfig(config.JobConfigInput{Origin: "https://example.com/"}, platform)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MaxDepth() != 4 {
		t.Errorf("expected MaxDepth defaulted to 4, got %d", cfg.MaxDepth())
	}
	if cfg.HitRate() != 2.5 {
		t.Errorf("expected HitRate defaulted to 2.5, got %f", cfg.HitRate())
	}
	if cfg.MaxQueueCapacity() != platform.DefaultQueueCapacity() {
		t.Errorf("expected MaxQueueCapacity defaulted, got %d", cfg.MaxQueueCapacity())
	}
	if cfg.MaxURLsToVisit() != 0 {
		t.Errorf("expected MaxURLsToVisit defaulted to 0 (unbounded), got %d", cfg.MaxURLsToVisit())
	}
}

func TestNewJobConfig_RejectsNonHTTPOrigin(t *testing.T) {
	platform, _ := config.WithDefault().Build()
	_, err := config.NewJobConfig(config.JobConfigInput{Origin: "ftp://example.com"}, platform)
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for non-http(s) origin, got %v", err)
	}
}

func TestNewJobConfig_RejectsOutOfRangeFields(t *testing.T) {
	platform, _ := config.WithDefault().Build()

	cases := []config.JobConfigInput{
		{Origin: "https://example.com", MaxDepth: 0 - -1001},
		{Origin: "https://example.com", MaxDepth: 1, HitRate: 0.01},
		{Origin: "https://example.com", MaxDepth: 1, HitRate: 1, MaxQueueCapacity: 1},
		{Origin: "https://example.com", MaxDepth: 1, HitRate: 1, MaxQueueCapacity: 100, MaxURLsToVisit: 20000, HasMaxURLsToVisit: true},
	}

	for i, in := range cases {
		if _, err := config.NewJobConfig(in, platform); !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
}

func TestNewJobConfig_ZeroMaxURLsToVisitMeansUnboundedWhenExplicit(t *testing.T) {
	platform, _ := config.WithDefault().WithDefaultMaxURLs(50).Build()

	cfg, err := config.NewJobConfig(config.JobConfigInput{
		Origin:            "https://example.com",
		MaxDepth:          1,
		HitRate:           1,
		MaxQueueCapacity:  100,
		MaxURLsToVisit:    0,
		HasMaxURLsToVisit: true,
	}, platform)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxURLsToVisit() != 0 {
		t.Errorf("expected explicit 0 to mean unbounded, not the platform default 50, got %d", cfg.MaxURLsToVisit())
	}
}
