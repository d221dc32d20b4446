package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lumakit/videomatte/internal/domain/entity"
	"github.com/lumakit/videomatte/internal/domain/port"
	"github.com/lumakit/videomatte/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Pipeline is the end-to-end entry point: extract frames, segment them with
// one reused model session, reassemble at the source framerate. Each run owns
// a uniquely named workspace that is removed on every exit path. The stage
// components stay independently usable through their ports; Run is just the
// recommended sequencing of them.
type Pipeline struct {
	extractor port.FrameExtractor
	batch     *BatchProcessor
	assembler port.VideoAssembler
	logger    *zap.Logger
	tempDir   string
	alphaMode entity.AlphaMode
}

type PipelineConfig struct {
	// TempDir hosts the per-run workspace.
	TempDir string
	// AlphaMode selects the reassembly output format.
	AlphaMode entity.AlphaMode
}

func NewPipeline(
	extractor port.FrameExtractor,
	batch *BatchProcessor,
	assembler port.VideoAssembler,
	logger *zap.Logger,
	cfg PipelineConfig,
) *Pipeline {
	mode := cfg.AlphaMode
	if mode == "" {
		mode = entity.AlphaOpaque
	}
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Pipeline{
		extractor: extractor,
		batch:     batch,
		assembler: assembler,
		logger:    logger,
		tempDir:   tempDir,
		alphaMode: mode,
	}
}

// Run processes one video end-to-end. Failures from any stage propagate to
// the caller after workspace cleanup has run; no stage is retried.
func (p *Pipeline) Run(ctx context.Context, inputPath string, outputPath string, modelName string, onProgress entity.ProgressFunc) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "Pipeline.Run")
	defer span.End()

	span.SetAttributes(
		attribute.String("video.input", inputPath),
		attribute.String("model.name", modelName),
	)

	metrics.ActivePipelines.Inc()
	defer metrics.ActivePipelines.Dec()

	totalTimer := time.Now()
	if err := p.runStages(ctx, inputPath, outputPath, modelName, onProgress); err != nil {
		metrics.VideosProcessedTotal.WithLabelValues("failed").Inc()
		return err
	}

	metrics.VideosProcessedTotal.WithLabelValues("completed").Inc()
	metrics.StageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())
	return nil
}

func (p *Pipeline) runStages(ctx context.Context, inputPath string, outputPath string, modelName string, onProgress entity.ProgressFunc) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(p.tempDir, "videomatte-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	defer os.RemoveAll(workDir)

	framesDir := filepath.Join(workDir, "frames")
	outputFramesDir := filepath.Join(workDir, "output_frames")

	log := p.logger.With(
		zap.String("input", inputPath),
		zap.String("model", modelName),
	)
	log.Info("pipeline started", zap.String("workspace", workDir))

	// Extract
	exStart := time.Now()
	exCtx, exSpan := tracer.Start(ctx, "extract_frames")
	result, err := p.extractor.Extract(exCtx, inputPath, framesDir)
	exSpan.End()
	if err != nil {
		log.Error("frame extraction failed", zap.Error(err))
		return err
	}
	metrics.StageDuration.WithLabelValues("extract").Observe(time.Since(exStart).Seconds())

	// Segment
	segStart := time.Now()
	segCtx, segSpan := tracer.Start(ctx, "segment_frames")
	err = p.batch.Process(segCtx, framesDir, outputFramesDir, modelName, onProgress)
	segSpan.End()
	if err != nil {
		log.Error("segmentation failed", zap.Error(err))
		return err
	}
	metrics.StageDuration.WithLabelValues("segment").Observe(time.Since(segStart).Seconds())

	// Assemble
	asmStart := time.Now()
	asmCtx, asmSpan := tracer.Start(ctx, "assemble_video")
	err = p.assembler.Assemble(asmCtx, outputFramesDir, outputPath, result.Framerate, p.alphaMode)
	asmSpan.End()
	if err != nil {
		log.Error("video assembly failed", zap.Error(err))
		return err
	}
	metrics.StageDuration.WithLabelValues("assemble").Observe(time.Since(asmStart).Seconds())

	log.Info("pipeline completed",
		zap.Int("frame_count", result.FrameCount),
		zap.String("framerate", result.Framerate.String()),
		zap.String("output", outputPath),
	)
	return nil
}
