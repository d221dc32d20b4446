package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Framerate is a video frame rate kept as the exact rational reported by the
// container (e.g. 30000/1001 for NTSC). Passing the rational straight back to
// the encoder avoids the drift a float round-trip would introduce.
type Framerate struct {
	Num int
	Den int
}

// ParseFramerate parses ffprobe's r_frame_rate form, "num/den" or a bare
// integer.
func ParseFramerate(s string) (Framerate, error) {
	s = strings.TrimSpace(s)
	num, den := s, "1"
	if i := strings.IndexByte(s, '/'); i >= 0 {
		num, den = s[:i], s[i+1:]
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return Framerate{}, fmt.Errorf("parse framerate %q: %w", s, err)
	}
	d, err := strconv.Atoi(den)
	if err != nil {
		return Framerate{}, fmt.Errorf("parse framerate %q: %w", s, err)
	}
	if n <= 0 || d <= 0 {
		return Framerate{}, fmt.Errorf("non-positive framerate %q", s)
	}
	return Framerate{Num: n, Den: d}, nil
}

// FPS reduces the rational to frames per second.
func (f Framerate) FPS() float64 {
	if f.Den == 0 {
		return 0
	}
	return float64(f.Num) / float64(f.Den)
}

// String renders the form ffmpeg's -framerate flag accepts.
func (f Framerate) String() string {
	return strconv.Itoa(f.Num) + "/" + strconv.Itoa(f.Den)
}

// IsZero reports whether the framerate is unset.
func (f Framerate) IsZero() bool {
	return f.Num == 0
}
