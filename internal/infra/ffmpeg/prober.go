package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/lumakit/videomatte/internal/domain/entity"
	"github.com/lumakit/videomatte/internal/domain/port"
)

// Prober reads stream metadata with a single ffprobe JSON call. It never
// decodes frame data.
type Prober struct {
	bin string
}

func NewProber(ffprobeBin string) *Prober {
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	return &Prober{bin: ffprobeBin}
}

func (p *Prober) Probe(ctx context.Context, videoPath string) (*port.ProbeInfo, error) {
	cmd := exec.CommandContext(ctx, p.bin,
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		videoPath,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe %q: %v", entity.ErrProbe, videoPath, err)
	}

	return ParseProbeJSON(out)
}

// ParseProbeJSON converts raw ffprobe JSON output into a ProbeInfo.
// Exported so probing is testable without a real ffprobe binary.
func ParseProbeJSON(data []byte) (*port.ProbeInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse ffprobe JSON: %v", entity.ErrProbe, err)
	}

	video := primaryVideoStream(raw.Streams)
	if video == nil {
		return nil, fmt.Errorf("%w: no video stream", entity.ErrProbe)
	}

	rate, err := entity.ParseFramerate(video.RFrameRate)
	if err != nil {
		return nil, fmt.Errorf("%w: stream %d: %v", entity.ErrProbe, video.Index, err)
	}

	return &port.ProbeInfo{
		Framerate: rate,
		Codec:     video.CodecName,
		Container: raw.Format.FormatName,
		Width:     video.Width,
		Height:    video.Height,
	}, nil
}

// primaryVideoStream returns the first video stream that is not an attached
// picture (cover art shows up as a video stream in many containers).
func primaryVideoStream(streams []ffprobeStream) *ffprobeStream {
	for i := range streams {
		s := &streams[i]
		if s.CodecType == "video" && s.Disposition["attached_pic"] != 1 {
			return s
		}
	}
	return nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type ffprobeStream struct {
	Index       int            `json:"index"`
	CodecName   string         `json:"codec_name"`
	CodecType   string         `json:"codec_type"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	RFrameRate  string         `json:"r_frame_rate"`
	Disposition map[string]int `json:"disposition"`
}
