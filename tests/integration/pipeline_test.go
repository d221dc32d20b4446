package integration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/lumakit/videomatte/internal/domain/entity"
	"github.com/lumakit/videomatte/internal/domain/port"
	"github.com/lumakit/videomatte/internal/infra/ffmpeg"
	"github.com/lumakit/videomatte/internal/infra/onnx"
	"github.com/lumakit/videomatte/internal/usecase"
	"github.com/lumakit/videomatte/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireFFmpeg(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not installed, skipping integration test", bin)
		}
	}
}

// makeTestVideo renders a 2-second, 10 fps, 320x240 test pattern: 20 frames.
func makeTestVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mp4")
	cmd := exec.Command("ffmpeg",
		"-f", "lavfi", "-i", "testsrc=duration=2:size=320x240:rate=10",
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		"-y", path,
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "generate test video: %s", string(out))
	return path
}

// alphaSession stands in for a real model: it marks every pixel foreground.
// That keeps the end-to-end tests independent of model weights while still
// exercising the PNG decode/encode round trip on every frame.
type alphaSession struct {
	failOnFrame int
	seen        int
}

func (s *alphaSession) Infer(ctx context.Context, imageBytes []byte) ([]byte, error) {
	s.seen++
	if s.failOnFrame > 0 && s.seen == s.failOnFrame {
		return nil, fmt.Errorf("%w: synthetic failure on frame %d", entity.ErrInference, s.seen)
	}

	img, err := png.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInference, err)
	}

	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out.SetNRGBA(x, y, color.NRGBA{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(bl >> 8),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInference, err)
	}
	return buf.Bytes(), nil
}

func (s *alphaSession) Close() error { return nil }

type alphaSegmenter struct {
	session *alphaSession
}

func (f *alphaSegmenter) Load(ctx context.Context, modelName string) (port.Session, error) {
	return f.session, nil
}

func newFFmpegStack(t *testing.T) (*ffmpeg.Extractor, *ffmpeg.Assembler) {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	prober := ffmpeg.NewProber("")
	return ffmpeg.NewExtractor("", prober, log), ffmpeg.NewAssembler("", log)
}

func TestExtractProducesNumberedFrames(t *testing.T) {
	requireFFmpeg(t)

	video := makeTestVideo(t)
	extractor, _ := newFFmpegStack(t)
	framesDir := filepath.Join(t.TempDir(), "frames")

	result, err := extractor.Extract(context.Background(), video, framesDir)
	require.NoError(t, err)

	assert.Equal(t, 20, result.FrameCount)
	assert.Equal(t, entity.Framerate{Num: 10, Den: 1}, result.Framerate)

	// Indices 1..N, zero padded, no gaps.
	for i := 1; i <= 20; i++ {
		name := fmt.Sprintf("frame_%05d.png", i)
		_, err := os.Stat(filepath.Join(framesDir, name))
		assert.NoError(t, err, "missing %s", name)
	}
}

func TestExtractFailsOnGarbageInput(t *testing.T) {
	requireFFmpeg(t)

	garbage := filepath.Join(t.TempDir(), "garbage.mp4")
	require.NoError(t, os.WriteFile(garbage, []byte("this is not a video"), 0644))

	extractor, _ := newFFmpegStack(t)
	_, err := extractor.Extract(context.Background(), garbage, filepath.Join(t.TempDir(), "frames"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrProbe) || errors.Is(err, entity.ErrExtraction))
}

func TestAssembleEmptyDirFails(t *testing.T) {
	requireFFmpeg(t)

	_, assembler := newFFmpegStack(t)
	err := assembler.Assemble(context.Background(), t.TempDir(),
		filepath.Join(t.TempDir(), "out.mp4"), entity.Framerate{Num: 10, Den: 1}, entity.AlphaOpaque)

	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrEncoding))
}

func TestAssembleRoundTripKeepsFrameCount(t *testing.T) {
	requireFFmpeg(t)

	video := makeTestVideo(t)
	extractor, assembler := newFFmpegStack(t)

	framesDir := filepath.Join(t.TempDir(), "frames")
	result, err := extractor.Extract(context.Background(), video, framesDir)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out", "rebuilt.mp4")
	err = assembler.Assemble(context.Background(), framesDir, out, result.Framerate, entity.AlphaOpaque)
	require.NoError(t, err)

	reextracted, err := extractor.Extract(context.Background(), out, filepath.Join(t.TempDir(), "frames2"))
	require.NoError(t, err)
	assert.InDelta(t, result.FrameCount, reextracted.FrameCount, 1)
	assert.Equal(t, result.Framerate, reextracted.Framerate)
}

func TestPipelineEndToEnd(t *testing.T) {
	requireFFmpeg(t)

	video := makeTestVideo(t)
	extractor, assembler := newFFmpegStack(t)
	log, err := logger.New("error")
	require.NoError(t, err)

	tempDir := t.TempDir()
	batch := usecase.NewBatchProcessor(&alphaSegmenter{session: &alphaSession{}}, log)
	pipe := usecase.NewPipeline(extractor, batch, assembler, log, usecase.PipelineConfig{
		TempDir:   tempDir,
		AlphaMode: entity.AlphaOpaque,
	})

	output := filepath.Join(t.TempDir(), "out", "result.mp4")

	var current []int
	totals := map[int]bool{}
	err = pipe.Run(context.Background(), video, output, "u2net",
		func(cur, total int) {
			current = append(current, cur)
			totals[total] = true
		})
	require.NoError(t, err)

	// Progress called exactly N times, strictly increasing, constant total.
	require.Len(t, current, 20)
	for i, c := range current {
		assert.Equal(t, i+1, c)
	}
	assert.Equal(t, map[int]bool{20: true}, totals)

	// The output decodes back into the same number of frames.
	reextracted, err := extractor.Extract(context.Background(), output, filepath.Join(t.TempDir(), "check"))
	require.NoError(t, err)
	assert.Equal(t, 20, reextracted.FrameCount)

	// The workspace is gone.
	leftovers, err := filepath.Glob(filepath.Join(tempDir, "videomatte-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestPipelineMidBatchFailure(t *testing.T) {
	requireFFmpeg(t)

	video := makeTestVideo(t)
	extractor, assembler := newFFmpegStack(t)
	log, err := logger.New("error")
	require.NoError(t, err)

	tempDir := t.TempDir()
	batch := usecase.NewBatchProcessor(&alphaSegmenter{session: &alphaSession{failOnFrame: 7}}, log)
	pipe := usecase.NewPipeline(extractor, batch, assembler, log, usecase.PipelineConfig{
		TempDir: tempDir,
	})

	output := filepath.Join(t.TempDir(), "out", "result.mp4")
	err = pipe.Run(context.Background(), video, output, "u2net", nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrInference))

	// Nothing outside the (deleted) workspace.
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
	leftovers, globErr := filepath.Glob(filepath.Join(tempDir, "videomatte-*"))
	require.NoError(t, globErr)
	assert.Empty(t, leftovers)
}

// TestPipelineWithRealModel runs the full stack including ONNX inference.
// It needs real weights, so it only runs when VIDEOMATTE_MODEL_DIR points at
// a directory containing u2net.onnx.
func TestPipelineWithRealModel(t *testing.T) {
	requireFFmpeg(t)

	modelDir := os.Getenv("VIDEOMATTE_MODEL_DIR")
	if modelDir == "" {
		t.Skip("VIDEOMATTE_MODEL_DIR not set, skipping real-model test")
	}
	if _, err := os.Stat(filepath.Join(modelDir, "u2net.onnx")); err != nil {
		t.Skip("u2net.onnx not found, skipping real-model test")
	}

	video := makeTestVideo(t)
	extractor, assembler := newFFmpegStack(t)
	log, err := logger.New("error")
	require.NoError(t, err)

	engine := onnx.NewEngine(modelDir, os.Getenv("VIDEOMATTE_ORT_LIBRARY"), log)
	batch := usecase.NewBatchProcessor(engine, log)
	pipe := usecase.NewPipeline(extractor, batch, assembler, log, usecase.PipelineConfig{
		TempDir: t.TempDir(),
	})

	output := filepath.Join(t.TempDir(), "result.mp4")
	err = pipe.Run(context.Background(), video, output, "u2net", nil)
	require.NoError(t, err)

	reextracted, err := extractor.Extract(context.Background(), output, filepath.Join(t.TempDir(), "check"))
	require.NoError(t, err)
	assert.Equal(t, 20, reextracted.FrameCount)
}
