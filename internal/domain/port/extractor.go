package port

import (
	"context"

	"github.com/lumakit/videomatte/internal/domain/entity"
)

// ExtractionResult describes the frame sequence an extractor produced.
type ExtractionResult struct {
	Framerate  entity.Framerate
	FrameCount int
	FramePaths []string
}

// FrameExtractor decodes a video into an ordered sequence of lossless frame
// images in framesDir, named so lexical order equals display order.
type FrameExtractor interface {
	Extract(ctx context.Context, videoPath string, framesDir string) (*ExtractionResult, error)
}
