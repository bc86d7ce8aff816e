package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"noticekit/internal/config"
	"noticekit/internal/observ"
	"noticekit/internal/prof"
)

const configFileHint = config.FileName

// app carries state shared by subcommands for one invocation.
type app struct {
	log     *zap.Logger
	cfg     config.Config
	timer   *observ.Timer
	timings bool
	prof    *prof.Session
}

// triState is the parsed value of an auto|on|off flag.
type triState string

const (
	triAuto triState = "auto"
	triOn   triState = "on"
	triOff  triState = "off"
)

func readTriState(flag, value string) (triState, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return triAuto, nil
	case "on":
		return triOn, nil
	case "off":
		return triOff, nil
	default:
		return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
}

// enabled resolves auto against whether f is a terminal.
func (s triState) enabled(f *os.File) bool {
	switch s {
	case triOn:
		return true
	case triOff:
		return false
	default:
		return f != nil && isTerminal(f)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()

	colorFlag, err := flags.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	colorMode, err := readTriState("color", colorFlag)
	if err != nil {
		return err
	}
	color.NoColor = !colorMode.enabled(os.Stdout)

	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if a.log, err = newLogger(verbose); err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	if a.timings, err = flags.GetBool("timings"); err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	a.timer = observ.NewTimer()

	var profOpts prof.Options
	for name, dst := range map[string]*string{
		"cpu-profile":   &profOpts.CPUPath,
		"mem-profile":   &profOpts.MemPath,
		"runtime-trace": &profOpts.TracePath,
	} {
		if *dst, err = flags.GetString(name); err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
	}
	if profOpts.Enabled() {
		if a.prof, err = prof.Start(profOpts); err != nil {
			return fmt.Errorf("failed to start profiling: %w", err)
		}
	}

	configPath, err := flags.GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	idx := a.timer.Begin("config")
	if configPath != "" {
		a.cfg, err = config.Load(configPath)
	} else {
		a.cfg, err = config.Discover(".")
	}
	a.timer.End(idx, a.cfg.Path)
	if err != nil {
		return err
	}
	if a.cfg.Path != "" {
		a.log.Debug("config loaded", zap.String("path", a.cfg.Path))
	}
	return nil
}

func (a *app) finish(out io.Writer) {
	if err := a.prof.Stop(); err != nil {
		printError(out, err)
	}
	if a.timer != nil {
		if a.log != nil {
			a.log.Debug("phase timings", a.timer.Fields()...)
		}
		if a.timings {
			fmt.Fprint(out, a.timer.Summary())
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// newLogger builds a development logger when verbose, otherwise a production
// logger that only reports warnings and above. Both write to stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.Sampling = nil
	return cfg.Build()
}

var errorPrefix = color.New(color.FgRed, color.Bold)

func printError(out io.Writer, err error) {
	fmt.Fprintf(out, "%s %v\n", errorPrefix.Sprint("error:"), err)
}
