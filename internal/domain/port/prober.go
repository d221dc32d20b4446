package port

import (
	"context"

	"github.com/lumakit/videomatte/internal/domain/entity"
)

// ProbeInfo is the stream metadata the pipeline needs from a source video.
type ProbeInfo struct {
	Framerate entity.Framerate
	Codec     string
	Container string
	Width     int
	Height    int
}

// VideoProber reads container metadata without decoding any frame data.
type VideoProber interface {
	Probe(ctx context.Context, videoPath string) (*ProbeInfo, error)
}
