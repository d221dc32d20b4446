package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/lumakit/videomatte/internal/domain/entity"
	"github.com/lumakit/videomatte/internal/domain/port"
	"go.uber.org/zap"
)

// FramePattern is the shared frame naming convention: a fixed-width 1-based
// index so lexical order equals display order.
const FramePattern = "frame_%05d.png"

// Extractor decodes every frame of a video into lossless PNGs. PNG keeps the
// full spatial resolution and avoids chroma subsampling artifacts that a
// lossy intermediate would smear into the segmentation masks.
type Extractor struct {
	bin    string
	prober port.VideoProber
	logger *zap.Logger
}

func NewExtractor(ffmpegBin string, prober port.VideoProber, logger *zap.Logger) *Extractor {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &Extractor{bin: ffmpegBin, prober: prober, logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, videoPath string, framesDir string) (*port.ExtractionResult, error) {
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create frames dir: %v", entity.ErrExtraction, err)
	}

	// Probe first: a container without a decodable video stream fails here,
	// before any decoding starts.
	info, err := e.prober.Probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, e.bin,
		"-i", videoPath,
		"-y",
		filepath.Join(framesDir, FramePattern),
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg: %v, output: %s", entity.ErrExtraction, err, string(output))
	}

	frames, err := filepath.Glob(filepath.Join(framesDir, "frame_*.png"))
	if err != nil {
		return nil, fmt.Errorf("%w: glob frames: %v", entity.ErrExtraction, err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames decoded from video", entity.ErrExtraction)
	}
	sort.Strings(frames)

	e.logger.Info("frames extracted",
		zap.Int("count", len(frames)),
		zap.String("framerate", info.Framerate.String()),
		zap.String("codec", info.Codec),
	)

	return &port.ExtractionResult{
		Framerate:  info.Framerate,
		FrameCount: len(frames),
		FramePaths: frames,
	}, nil
}
