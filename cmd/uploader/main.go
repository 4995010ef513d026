package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/kirillkom/exam-lab-uploader/internal/adapters/console"
	"github.com/kirillkom/exam-lab-uploader/internal/bootstrap"
	"github.com/kirillkom/exam-lab-uploader/internal/config"
	"github.com/kirillkom/exam-lab-uploader/internal/infrastructure/filesource"
	"github.com/kirillkom/exam-lab-uploader/internal/observability/logging"
)

const (
	exitSuccess = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return exitUsage
	}

	flags := flag.NewFlagSet("uploader", flag.ContinueOnError)
	flags.SetOutput(stderr)
	endpoint := flags.String("endpoint", cfg.UploadEndpoint, "upload endpoint URL")
	noColor := flags.Bool("no-color", false, "disable coloured output")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: uploader [-endpoint URL] [-no-color] FILE")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return exitUsage
	}
	if flags.NArg() > 1 {
		flags.Usage()
		return exitUsage
	}
	cfg.UploadEndpoint = *endpoint

	logger := logging.NewJSONLoggerTo(stderr, "uploader", cfg.LogLevel)

	controller, err := bootstrap.NewUploadController(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "uploader: %v\n", err)
		return exitUsage
	}

	if path := flags.Arg(0); path != "" {
		file, err := filesource.Select(path)
		if err != nil {
			fmt.Fprintf(stderr, "uploader: %v\n", err)
			return exitUsage
		}
		if !filesource.IsPDFHint(file) {
			logger.Warn("selected_file_not_pdf", "filename", file.Name, "mime_type", file.MIMEType)
		}
		controller.SelectFile(file)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome := controller.Submit(ctx)

	renderer := console.NewRenderer(stdout, !*noColor && isTerminal(stdout))
	if err := renderer.Render(outcome); err != nil {
		logger.Error("render_failed", "error", err)
	}

	if outcome.IsSuccess() {
		return exitSuccess
	}
	return exitFailure
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
