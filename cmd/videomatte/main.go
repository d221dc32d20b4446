package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lumakit/videomatte/internal/domain/entity"
	"github.com/lumakit/videomatte/internal/infra/config"
	"github.com/lumakit/videomatte/internal/infra/ffmpeg"
	"github.com/lumakit/videomatte/internal/infra/metrics"
	"github.com/lumakit/videomatte/internal/infra/onnx"
	"github.com/lumakit/videomatte/internal/infra/tracing"
	"github.com/lumakit/videomatte/internal/usecase"
	"github.com/lumakit/videomatte/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "source video file (mp4/avi/mov/mkv/webm)")
		outputPath = flag.String("output", "", "destination video file")
		modelName  = flag.String("model", onnx.DefaultModel,
			"segmentation model: "+strings.Join(onnx.Models(), ", "))
		preserveAlpha = flag.Bool("alpha", false,
			"keep transparency (VP9/WebM output) instead of compositing onto black")
	)
	flag.Parse()

	if *inputPath == "" || *outputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: videomatte -input in.mp4 -output out.mp4 [-model u2net] [-alpha]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	// Tracing (non-fatal if the collector is unavailable)
	if cfg.OTLPEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(ctx)
		}
	}

	var metricsSrv *http.Server
	if cfg.MetricsPort > 0 {
		metricsSrv = metrics.StartServer(ctx, cfg.MetricsPort, log)
	}

	// Pipeline wiring
	prober := ffmpeg.NewProber(cfg.FFprobeBin)
	extractor := ffmpeg.NewExtractor(cfg.FFmpegBin, prober, log)
	assembler := ffmpeg.NewAssembler(cfg.FFmpegBin, log)
	engine := onnx.NewEngine(cfg.ModelDir, cfg.OrtLibrary, log)
	batch := usecase.NewBatchProcessor(engine, log)

	mode := entity.AlphaOpaque
	if *preserveAlpha {
		mode = entity.AlphaPreserve
	}

	pipe := usecase.NewPipeline(extractor, batch, assembler, log, usecase.PipelineConfig{
		TempDir:   cfg.TempDir,
		AlphaMode: mode,
	})

	// The pipeline runs on a worker goroutine; this goroutine only renders
	// events, so the worker never waits on terminal output.
	events := make(chan entity.Event, 64)
	go func() {
		onProgress := func(current, total int) {
			events <- entity.ProgressEvent(current, total)
		}
		if err := pipe.Run(ctx, *inputPath, *outputPath, *modelName, onProgress); err != nil {
			events <- entity.ErrorEvent(err)
			return
		}
		events <- entity.DoneEvent(*outputPath)
	}()

	exitCode := 0
render:
	for ev := range events {
		switch ev.Type {
		case entity.EventProgress:
			pct := ev.Current * 100 / ev.Total
			fmt.Fprintf(os.Stderr, "\rframe %d/%d (%d%%)", ev.Current, ev.Total, pct)
		case entity.EventDone:
			fmt.Fprintln(os.Stderr)
			log.Info("output saved", zap.String("path", ev.Output))
			break render
		case entity.EventError:
			fmt.Fprintln(os.Stderr)
			log.Error("processing failed", zap.String("error", ev.Err))
			exitCode = 1
			break render
		}
	}

	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		metricsSrv.Shutdown(shutdownCtx)
		shutdownCancel()
	}

	log.Sync()
	os.Exit(exitCode)
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
