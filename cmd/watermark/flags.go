package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/UnendingLoop/BatchWatermark/internal/model"
	"github.com/spf13/pflag"
)

// envSource - откуда берем значения для незаданных флагов (wbf/config в проде)
type envSource interface {
	GetString(key string) string
}

type cliOptions struct {
	batch     model.BatchOptions
	watermark model.WatermarkOptions
	logLevel  string
	// spacingDefaulted is true when neither the flag nor the env set spacing
	spacingDefaulted bool
}

// флаг -> переменная окружения, порядок важен только для детерминированных ошибок
var envFallbacks = []struct {
	flag string
	env  string
}{
	{"input", "WM_INPUT"},
	{"output", "WM_OUTPUT"},
	{"error", "WM_ERROR"},
	{"watermark", "WM_WATERMARK"},
	{"opacity", "WM_OPACITY"},
	{"max-width", "WM_MAX_WIDTH"},
	{"max-height", "WM_MAX_HEIGHT"},
	{"spacing", "WM_SPACING"},
	{"watermark-scale", "WM_WATERMARK_SCALE"},
	{"log-level", "LOG_LEVEL"},
}

// parseFlags reads the command line, fills what was not given from env and validates the result.
// Precedence: flag, then env, then default.
func parseFlags(args []string, env envSource, out io.Writer) (*cliOptions, error) {
	opts := &cliOptions{watermark: model.NewWatermarkOptions()}

	fs := pflag.NewFlagSet("watermark", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.SortFlags = false

	fs.StringVarP(&opts.batch.InputDir, "input", "i", "", "folder with source images (required)")
	fs.StringVarP(&opts.batch.OutputDir, "output", "o", "", "output folder or minio://bucket/prefix (required)")
	fs.StringVarP(&opts.batch.ErrorDir, "error", "e", "", "folder for images that failed processing")
	fs.StringVarP(&opts.watermark.Path, "watermark", "w", model.DefaultWatermarkPath, "watermark image")
	fs.Float64VarP(&opts.watermark.Opacity, "opacity", "p", model.DefaultOpacity, "watermark opacity, 0..1")
	fs.IntVar(&opts.batch.MaxWidth, "max-width", 0, "downscale images wider than this, 0 - no limit")
	fs.IntVar(&opts.batch.MaxHeight, "max-height", 0, "downscale images taller than this, 0 - no limit")
	fs.IntVarP(&opts.batch.Spacing, "spacing", "s", model.CLISpacing, "gap between watermark tiles in px")
	fs.Float64Var(&opts.watermark.Scale, "watermark-scale", model.DefaultWatermarkScale, "watermark scale factor (alias -ws)")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	if err := fs.Parse(normalizeArgs(args)); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if env != nil {
		for _, fb := range envFallbacks {
			if fs.Changed(fb.flag) {
				continue
			}
			v := strings.TrimSpace(env.GetString(fb.env))
			if v == "" {
				continue
			}
			if err := fs.Set(fb.flag, v); err != nil {
				return nil, fmt.Errorf("invalid %s=%q: %w", fb.env, v, err)
			}
		}
	}
	opts.spacingDefaulted = !fs.Changed("spacing")

	if err := opts.batch.Validate(); err != nil {
		return nil, err
	}
	if err := opts.watermark.Validate(); err != nil {
		return nil, err
	}

	return opts, nil
}

// normalizeArgs rewrites the two-letter -ws alias, pflag shorthands are single-letter only.
// Без этого pflag разберет -ws как -w со значением "s".
func normalizeArgs(args []string) []string {
	res := make([]string, 0, len(args))
	for i, a := range args {
		if a == "--" {
			res = append(res, args[i:]...)
			break
		}
		switch {
		case a == "-ws":
			a = "--watermark-scale"
		case strings.HasPrefix(a, "-ws="):
			a = "--watermark-scale=" + strings.TrimPrefix(a, "-ws=")
		}
		res = append(res, a)
	}
	return res
}
