package entity

// AlphaMode selects how the reassembler treats the alpha channel the
// segmentation stage produced.
type AlphaMode string

const (
	// AlphaOpaque composites transparency onto an opaque black background and
	// encodes H.264/yuv420p MP4. Lossy by design: yuv420p has no alpha plane.
	AlphaOpaque AlphaMode = "opaque"

	// AlphaPreserve keeps the alpha channel, encoding VP9/yuva420p WebM.
	AlphaPreserve AlphaMode = "preserve"
)
