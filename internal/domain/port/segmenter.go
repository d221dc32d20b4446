package port

import "context"

// Session is a loaded segmentation model. Loading is expensive; inference on
// a loaded session is cheap and must be reused across a whole batch. Infer
// takes one encoded image's bytes and returns the same image re-encoded with
// an alpha channel derived from the model's foreground probability map.
// Implementations serialize concurrent Infer calls. Close releases the model.
type Session interface {
	Infer(ctx context.Context, imageBytes []byte) ([]byte, error)
	Close() error
}

// Segmenter constructs model sessions by name. Unrecognized names fail fast,
// before any frame work begins.
type Segmenter interface {
	Load(ctx context.Context, modelName string) (Session, error)
}
