package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/tinify"
	"github.com/GriffinCanCode/tinify/internal/infrastructure/config"
	"github.com/GriffinCanCode/tinify/internal/logging"
)

// options are the parsed command-line flags.
type options struct {
	key         string
	configPath  string
	outDir      string
	suffix      string
	width       int
	height      int
	method      string
	convert     string
	preserve    string
	concurrency int
	validate    bool
	dev         bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{}
	fs := flag.NewFlagSet("tinify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.key, "key", "", "API key (overrides TINIFY_KEY)")
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.outDir, "out", "", "Output directory (default: next to the input)")
	fs.StringVar(&opts.suffix, "suffix", ".min", "Suffix inserted before the extension of output files")
	fs.IntVar(&opts.width, "width", 0, "Resize to this width")
	fs.IntVar(&opts.height, "height", 0, "Resize to this height")
	fs.StringVar(&opts.method, "method", "", "Resize method: scale, fit, cover or thumb")
	fs.StringVar(&opts.convert, "convert", "", "Comma separated media types to convert to")
	fs.StringVar(&opts.preserve, "preserve", "", "Comma separated metadata to keep: copyright, creation, location")
	fs.IntVar(&opts.concurrency, "concurrency", 2, "Files compressed in parallel")
	fs.BoolVar(&opts.validate, "validate", false, "Only check that the API key is valid")
	fs.BoolVar(&opts.dev, "dev", false, "Development logging (console, debug level)")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if opts.concurrency < 1 {
		return nil, nil, fmt.Errorf("concurrency must be at least 1, got %d", opts.concurrency)
	}
	if opts.method == "" && (opts.width > 0 || opts.height > 0) {
		opts.method = tinify.MethodScale
	}
	return opts, fs.Args(), nil
}

func loadConfig(opts *options) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFile(opts.configPath)
	}
	return config.Load()
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, files, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.key != "" {
		cfg.API.Key = opts.key
	}

	logCfg := logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development || opts.dev}
	if opts.dev {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		logger = logging.NewDefault()
		logger.Warn("invalid logging configuration, using defaults", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	shared := tinify.FromConfig(cfg, logger)

	if opts.validate {
		if err := shared.Validate(ctx); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(stdout, "API key is valid")
		return nil
	}

	if len(files) == 0 {
		return errors.New("no input files")
	}

	if err := compressAll(ctx, shared, files, opts, logger, stdout); err != nil {
		return err
	}

	if n, ok := shared.CompressionCount(); ok {
		logger.Info("compression count", zap.Int64("count", n))
		fmt.Fprintf(stdout, "Compressions this month: %d\n", n)
	}
	return nil
}

// compressAll uploads each file, applies the requested commands and writes
// the result. The first failure cancels files not yet started.
func compressAll(ctx context.Context, shared *tinify.Shared, files []string, opts *options, logger *zap.Logger, stdout io.Writer) error {
	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)

	results := make([]string, len(files))
	for i, path := range files {
		g.Go(func() error {
			out, err := compressFile(ctx, shared, path, opts)
			if err != nil {
				logger.Error("compression failed", zap.String("file", path), zap.Error(err))
				return fmt.Errorf("%s: %w", path, err)
			}
			logger.Info("compressed", zap.String("file", path), zap.String("output", out))
			results[i] = fmt.Sprintf("%s -> %s", path, out)
			return nil
		})
	}
	err := g.Wait()

	for _, line := range results {
		if line != "" {
			fmt.Fprintln(stdout, line)
		}
	}
	return err
}

func compressFile(ctx context.Context, shared *tinify.Shared, path string, opts *options) (string, error) {
	source, err := shared.FromFile(ctx, path)
	if err != nil {
		return "", err
	}
	source = applyCommands(source, opts)

	result, err := source.Result(ctx)
	if err != nil {
		return "", err
	}

	ext, _ := result.Extension()
	out := outputPath(path, opts.outDir, opts.suffix, ext)
	if err := result.ToFile(out); err != nil {
		return "", err
	}
	return out, nil
}

func applyCommands(source *tinify.Source, opts *options) *tinify.Source {
	if opts.width > 0 || opts.height > 0 {
		source = source.Resize(tinify.ResizeOptions{Method: opts.method, Width: opts.width, Height: opts.height})
	}
	if types := splitList(opts.convert); len(types) > 0 {
		source = source.Convert(tinify.ConvertOptions{Type: types})
	}
	if fields := splitList(opts.preserve); len(fields) > 0 {
		source = source.Preserve(fields...)
	}
	return source
}

// outputPath places the result next to the input, or in outDir, inserting
// suffix before the extension. A non-empty ext replaces the input's
// extension, so conversions get the right file type.
func outputPath(input, outDir, suffix, ext string) string {
	dir, base := filepath.Split(input)
	if outDir != "" {
		dir = outDir
	}
	origExt := filepath.Ext(base)
	stem := strings.TrimSuffix(base, origExt)
	if ext != "" {
		origExt = "." + ext
	}
	return filepath.Join(dir, stem+suffix+origExt)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
