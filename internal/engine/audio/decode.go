package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// ErrUnsupportedFormat is returned for file extensions with no decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Extensions lists the file extensions Decode accepts.
var Extensions = []string{".wav", ".mp3", ".flac", ".ogg", ".oga"}

// Clip is a fully decoded audio buffer at the output sample rate.
type Clip struct {
	Name   string
	buffer *beep.Buffer
}

// NewClip buffers s into a clip with the given format.
func NewClip(name string, format beep.Format, s beep.Streamer) *Clip {
	buf := beep.NewBuffer(format)
	buf.Append(s)
	return &Clip{Name: name, buffer: buf}
}

// Format returns the buffer format.
func (c *Clip) Format() beep.Format {
	return c.buffer.Format()
}

// Len returns the clip length in samples.
func (c *Clip) Len() int {
	return c.buffer.Len()
}

// Duration returns the clip length.
func (c *Clip) Duration() time.Duration {
	return c.buffer.Format().SampleRate.D(c.buffer.Len())
}

// Streamer returns a new streamer over the whole clip, positioned at 0.
func (c *Clip) Streamer() beep.StreamSeeker {
	return c.buffer.Streamer(0, c.buffer.Len())
}

// Supported reports whether name has a decodable extension.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Decode decodes data into a clip resampled to rate. The decoder is chosen
// from the extension of name.
func Decode(data []byte, name string, rate beep.SampleRate) (*Clip, error) {
	rc := io.NopCloser(bytes.NewReader(data))

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".wav":
		streamer, format, err = wav.Decode(rc)
	case ".mp3":
		streamer, format, err = mp3.Decode(rc)
	case ".flac":
		streamer, format, err = flac.Decode(rc)
	case ".ogg", ".oga":
		streamer, format, err = vorbis.Decode(rc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", strings.TrimPrefix(ext, "."), err)
	}
	defer streamer.Close()

	var src beep.Streamer = streamer
	if rate != 0 && format.SampleRate != rate {
		src = beep.Resample(4, format.SampleRate, rate, streamer)
		format.SampleRate = rate
	}

	clip := NewClip(filepath.Base(name), format, src)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", strings.TrimPrefix(ext, "."), err)
	}
	return clip, nil
}
