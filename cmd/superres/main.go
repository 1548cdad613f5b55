// Package main provides the superres command line tool.
//
// Usage:
//
//	superres [flags] <input>
//	superres convert <model.json> <model.json.zst>
//	superres version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/born-ml/superres/backend/cpu"
	"github.com/born-ml/superres/backend/webgpu"
	"github.com/born-ml/superres/engine"
	"github.com/born-ml/superres/internal/imageio"
	"github.com/born-ml/superres/internal/logging"
	"github.com/born-ml/superres/loader"
	"github.com/born-ml/superres/nn"
	"github.com/born-ml/superres/tensor"
)

const version = "v0.1.0"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	model      string
	output     string
	backend    string
	workers    int
	activation string
	verbose    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "version":
			_, _ = fmt.Fprintf(stdout, "superres %s\n", version)
			return exitOK
		case "convert":
			return convert(args[1:], stderr)
		}
	}

	fs := flag.NewFlagSet("superres", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.model, "model", "scale2.0x_model.json", "Model file (JSON, optionally zstd-compressed)")
	fs.StringVar(&opts.output, "o", "out.png", "Output image; format follows the extension")
	fs.StringVar(&opts.backend, "backend", "auto", "Compute device: auto, cpu or webgpu")
	fs.IntVar(&opts.workers, "workers", runtime.NumCPU(), "Output planes computed concurrently per layer")
	fs.StringVar(&opts.activation, "activation", "leaky", "Activation after each layer: leaky, leaky:<slope>, relu or identity")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose (debug) logging")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: superres [flags] <input>\n       superres convert <in> <out>\n       superres version\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() != 1 {
		_, _ = fmt.Fprintln(stderr, "superres: missing input image")
		fs.Usage()
		return exitUsage
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	if err := upscale(ctx, fs.Arg(0), opts); err != nil {
		_, _ = fmt.Fprintf(stderr, "superres: %v\n", err)
		return exitError
	}
	return exitOK
}

func upscale(ctx context.Context, input string, opts options) error {
	log := logging.Logger()

	act, err := nn.ParseActivation(opts.activation)
	if err != nil {
		return err
	}
	model, err := loader.Load(opts.model, loader.WithActivation(act))
	if err != nil {
		return err
	}
	img, err := imageio.Load(input)
	if err != nil {
		return err
	}

	backend, err := openBackend(opts.backend)
	if err != nil {
		return err
	}
	defer backend.Release()
	log.Info("backend selected", "backend", backend.Name(), "workers", opts.workers)

	up, err := engine.NewUpscaler(engine.New(backend, engine.Config{Workers: opts.workers}), model)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := up.Upscale(ctx, img)
	if err != nil {
		return err
	}
	stats := backend.Stats()
	log.Info("upscaled",
		"input", fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()),
		"output", fmt.Sprintf("%dx%d", out.Bounds().Dx(), out.Bounds().Dy()),
		"elapsed", time.Since(start).Round(time.Millisecond),
		"dispatches", stats.Dispatches,
		"peak_bytes", stats.PeakMemoryBytes)

	return imageio.Save(opts.output, out)
}

func openBackend(name string) (tensor.Backend, error) {
	switch name {
	case "cpu":
		return cpu.New(), nil
	case "webgpu":
		return webgpu.Open()
	case "auto":
		b, err := webgpu.Open()
		if err != nil {
			logging.Logger().Warn("webgpu unavailable, falling back to cpu", "error", err)
			return cpu.New(), nil
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want auto, cpu or webgpu)", name)
	}
}

// convert rewrites a model file, compressing or decompressing by extension.
func convert(args []string, stderr io.Writer) int {
	if len(args) != 2 {
		_, _ = fmt.Fprintln(stderr, "Usage: superres convert <in> <out>")
		return exitUsage
	}
	model, err := loader.Load(args[0])
	if err == nil {
		err = loader.Save(args[1], model)
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "superres: %v\n", err)
		return exitError
	}
	return exitOK
}
