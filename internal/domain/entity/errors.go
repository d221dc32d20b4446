package entity

import "errors"

// Stage error sentinels. Every failure a pipeline stage returns wraps exactly
// one of these, so callers can classify with errors.Is without parsing
// messages. All of them are terminal for the current run; nothing is retried.
var (
	// ErrProbe: the container cannot be read or has no decodable video stream.
	ErrProbe = errors.New("probe failed")

	// ErrExtraction: decoding frames out of the source video failed partway.
	// Partial frame output is undefined and discarded with the workspace.
	ErrExtraction = errors.New("frame extraction failed")

	// ErrUnknownModel: the model identifier is not in the registry. Raised
	// before any frame file is touched.
	ErrUnknownModel = errors.New("unknown model")

	// ErrInference: segmentation of a single frame failed. The whole batch
	// fails with it; there is no partial-success mode.
	ErrInference = errors.New("inference failed")

	// ErrEncoding: reassembly failed, including the empty frame set case.
	ErrEncoding = errors.New("video encoding failed")
)
