package onnx

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "image/jpeg"

	"github.com/lumakit/videomatte/internal/domain/entity"
	"github.com/lumakit/videomatte/internal/domain/port"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

// Engine loads segmentation models through ONNX Runtime. The runtime
// environment is process-global and initialized on first load; sessions are
// per-Load handles that stay cheap to reuse across a whole frame batch.
type Engine struct {
	modelDir string
	ortLib   string
	logger   *zap.Logger
}

func NewEngine(modelDir string, ortLibrary string, logger *zap.Logger) *Engine {
	return &Engine{modelDir: modelDir, ortLib: ortLibrary, logger: logger}
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

func (e *Engine) initRuntime() error {
	ortInitOnce.Do(func() {
		if e.ortLib != "" {
			ort.SetSharedLibraryPath(e.ortLib)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// Load builds a session for the named model. Unknown names fail before any
// file access so a bad identifier never reaches frame work.
func (e *Engine) Load(ctx context.Context, modelName string) (port.Session, error) {
	spec, ok := registry[modelName]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			entity.ErrUnknownModel, modelName, strings.Join(Models(), ", "))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(e.modelDir, spec.file)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("model weights for %q not found at %s: %w", modelName, path, err)
	}

	if err := e.initRuntime(); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	// Input/output names vary between model exports; read them off the model
	// itself instead of hardcoding per-export names.
	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("inspect model %s: %w", path, err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("model %s declares no inputs or outputs", path)
	}

	sess, err := ort.NewDynamicAdvancedSession(path,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}

	e.logger.Info("model session loaded",
		zap.String("model", modelName),
		zap.String("path", path),
		zap.Int("input_size", spec.inputSize),
	)

	return &Session{name: modelName, spec: spec, sess: sess}, nil
}

// Session is one loaded model. The mutex serializes Infer calls: ONNX Runtime
// sessions are not safe for concurrent Run on shared device state.
type Session struct {
	name string
	spec modelSpec
	sess *ort.DynamicAdvancedSession

	mu sync.Mutex
}

// Infer decodes one frame image, runs the segmentation network, and
// re-encodes the frame as PNG with the predicted foreground opacity attached
// as its alpha channel. Deterministic for a fixed model and input bytes; it
// never retries internally.
func (s *Session) Infer(ctx context.Context, imageBytes []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: decode frame: %v", entity.ErrInference, err)
	}

	size := s.spec.inputSize
	input, err := ort.NewTensor(ort.NewShape(1, 3, int64(size), int64(size)),
		preprocess(img, size, s.spec.mean, s.spec.std))
	if err != nil {
		return nil, fmt.Errorf("%w: build input tensor: %v", entity.ErrInference, err)
	}
	defer input.Destroy()

	// Output left nil so the runtime allocates it at whatever shape the model
	// produces; only the first plane is the saliency map we need.
	outputs := []ort.Value{nil}
	s.mu.Lock()
	err = s.sess.Run([]ort.Value{input}, outputs)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: run model %s: %v", entity.ErrInference, s.name, err)
	}
	defer outputs[0].Destroy()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("%w: model %s returned non-float32 output", entity.ErrInference, s.name)
	}
	data := out.GetData()
	if len(data) < size*size {
		return nil, fmt.Errorf("%w: model %s output too small: %d values", entity.ErrInference, s.name, len(data))
	}

	mask := maskPlane(data, size, s.spec.sigmoid)
	result := applyMask(img, mask)

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("%w: encode frame: %v", entity.ErrInference, err)
	}
	return buf.Bytes(), nil
}

// Close releases the underlying runtime session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return nil
	}
	err := s.sess.Destroy()
	s.sess = nil
	return err
}
