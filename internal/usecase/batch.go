package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lumakit/videomatte/internal/domain/entity"
	"github.com/lumakit/videomatte/internal/domain/port"
	"github.com/lumakit/videomatte/internal/infra/metrics"
	"go.uber.org/zap"
)

// BatchProcessor runs every frame of an extracted sequence through one model
// session. Loading the model dominates segmentation cost, so the session is
// constructed exactly once per batch and reused for all frames; per-frame
// reloads are disallowed by construction.
type BatchProcessor struct {
	segmenter port.Segmenter
	logger    *zap.Logger
}

func NewBatchProcessor(segmenter port.Segmenter, logger *zap.Logger) *BatchProcessor {
	return &BatchProcessor{segmenter: segmenter, logger: logger}
}

// Process segments each frame in srcDir into dstDir under the same filename,
// invoking onProgress (if non-nil) with (1-based index, total) after each
// frame. Frames are processed strictly in name order. Any inference failure
// aborts the whole batch; frames already written are left for the caller's
// workspace cleanup to discard.
func (b *BatchProcessor) Process(ctx context.Context, srcDir string, dstDir string, modelName string, onProgress entity.ProgressFunc) error {
	// Load before any frame I/O: a bad model name must fail while the
	// destination directory does not even exist yet.
	session, err := b.segmenter.Load(ctx, modelName)
	if err != nil {
		return err
	}
	defer session.Close()

	names, err := listFrameNames(srcDir)
	if err != nil {
		return fmt.Errorf("list frames in %s: %w", srcDir, err)
	}

	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("create output frames dir: %w", err)
	}

	total := len(names)
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		in, err := os.ReadFile(filepath.Join(srcDir, name))
		if err != nil {
			return fmt.Errorf("read frame %s: %w", name, err)
		}

		out, err := session.Infer(ctx, in)
		if err != nil {
			return fmt.Errorf("frame %s: %w", name, err)
		}

		if err := os.WriteFile(filepath.Join(dstDir, name), out, 0644); err != nil {
			return fmt.Errorf("write frame %s: %w", name, err)
		}

		metrics.FramesSegmentedTotal.Inc()
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	b.logger.Info("batch segmentation complete",
		zap.Int("frames", total),
		zap.String("model", modelName),
	)
	return nil
}

// listFrameNames returns the frame filenames in srcDir sorted by name, so
// processing order equals temporal order regardless of how the filesystem
// enumerates entries.
func listFrameNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "frame_") && strings.HasSuffix(name, ".png") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
