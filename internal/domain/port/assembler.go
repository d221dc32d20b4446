package port

import (
	"context"

	"github.com/lumakit/videomatte/internal/domain/entity"
)

// VideoAssembler encodes the ordered frame sequence in framesDir into a
// single video at exactly the given framerate. The alpha mode decides whether
// transparency survives the output codec or is composited onto a background.
type VideoAssembler interface {
	Assemble(ctx context.Context, framesDir string, outputPath string, rate entity.Framerate, mode entity.AlphaMode) error
}
