package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/lumakit/videomatte/internal/domain/entity"
	"go.uber.org/zap"
)

// Assembler re-encodes a processed frame sequence into a single video at the
// source framerate.
//
// Opaque mode encodes H.264/yuv420p, which has no alpha plane; the frames'
// transparency is composited onto a black background with an explicit overlay
// graph. A plain RGBA->yuv420p conversion would instead drop the alpha channel
// and leave the original background visible. Preserve mode encodes
// VP9/yuva420p WebM and keeps the alpha channel intact.
type Assembler struct {
	bin    string
	logger *zap.Logger
}

func NewAssembler(ffmpegBin string, logger *zap.Logger) *Assembler {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &Assembler{bin: ffmpegBin, logger: logger}
}

func (a *Assembler) Assemble(ctx context.Context, framesDir string, outputPath string, rate entity.Framerate, mode entity.AlphaMode) error {
	frames, err := filepath.Glob(filepath.Join(framesDir, "frame_*.png"))
	if err != nil {
		return fmt.Errorf("%w: glob frames: %v", entity.ErrEncoding, err)
	}
	if len(frames) == 0 {
		return fmt.Errorf("%w: no frames in %s", entity.ErrEncoding, framesDir)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("%w: create output dir: %v", entity.ErrEncoding, err)
	}

	pattern := filepath.Join(framesDir, FramePattern)

	var args []string
	switch mode {
	case entity.AlphaPreserve:
		args = []string{
			"-framerate", rate.String(),
			"-i", pattern,
			"-c:v", "libvpx-vp9",
			"-pix_fmt", "yuva420p",
			"-b:v", "0", "-crf", "30",
			"-y",
			outputPath,
		}
	default:
		// Black canvas sized to the frames via scale2ref, frames overlaid on
		// top, then the alpha-free pixel format for broad playback support.
		// The canvas runs at the same rate as the frames so overlay does not
		// resample the output.
		args = []string{
			"-framerate", rate.String(),
			"-i", pattern,
			"-f", "lavfi", "-i", "color=c=black:r=" + rate.String(),
			"-filter_complex", "[1][0]scale2ref[bg][fg];[bg][fg]overlay=shortest=1,format=yuv420p",
			"-c:v", "libx264",
			"-movflags", "+faststart",
			"-y",
			outputPath,
		}
	}

	cmd := exec.CommandContext(ctx, a.bin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: ffmpeg: %v, output: %s", entity.ErrEncoding, err, string(output))
	}

	a.logger.Info("video assembled",
		zap.Int("frame_count", len(frames)),
		zap.String("framerate", rate.String()),
		zap.String("alpha_mode", string(mode)),
		zap.String("output", outputPath),
	)

	return nil
}
