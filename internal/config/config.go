package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"noticekit/internal/compare"
	"noticekit/internal/notice"
)

// FileName is the configuration file looked up from the working directory upwards.
const FileName = "noticekit.toml"

// Config is the decoded configuration.
type Config struct {
	Limits  notice.Limits `toml:"limits"`
	Compare CompareConfig `toml:"compare"`
	// Path is the file the config was loaded from; empty for defaults.
	Path string `toml:"-"`
}

// CompareConfig configures regression comparison.
type CompareConfig struct {
	AcceptanceThresholdPercent float64 `toml:"acceptance_threshold_percent"`
	ReferenceReport            string  `toml:"reference_report"`
	LatestReport               string  `toml:"latest_report"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	opts := compare.DefaultOptions()
	return Config{
		Limits: notice.DefaultLimits(),
		Compare: CompareConfig{
			AcceptanceThresholdPercent: opts.ThresholdPercent,
			ReferenceReport:            opts.ReferenceName,
			LatestReport:               opts.LatestName,
		},
	}
}

// CompareOptions converts the compare section into compare.Options.
func (c Config) CompareOptions() compare.Options {
	return compare.Options{
		ReferenceName:    c.Compare.ReferenceReport,
		LatestName:       c.Compare.LatestReport,
		ThresholdPercent: c.Compare.AcceptanceThresholdPercent,
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest config above startDir, or Default when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes the config at path. Keys that are not set keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	for _, key := range []string{
		"max_total_validation_notices",
		"max_per_notice_type_and_severity",
		"max_export_per_notice_type",
	} {
		if meta.IsDefined("limits", key) {
			if err := checkPositive(cfg.Limits, key); err != nil {
				return Config{}, fmt.Errorf("%s: [limits].%s %w", path, key, err)
			}
		}
	}
	if cfg.Compare.AcceptanceThresholdPercent < 0 {
		return Config{}, fmt.Errorf("%s: [compare].acceptance_threshold_percent must not be negative", path)
	}
	if cfg.Compare.ReferenceReport == "" || cfg.Compare.LatestReport == "" {
		return Config{}, fmt.Errorf("%s: [compare] report names must not be empty", path)
	}
	cfg.Path = path
	return cfg, nil
}

func checkPositive(l notice.Limits, key string) error {
	var v int
	switch key {
	case "max_total_validation_notices":
		v = l.MaxTotalValidationNotices
	case "max_per_notice_type_and_severity":
		v = l.MaxPerNoticeTypeAndSeverity
	case "max_export_per_notice_type":
		v = l.MaxExportPerNoticeType
	}
	if v <= 0 {
		return fmt.Errorf("must be positive, got %d", v)
	}
	return nil
}
