package camera

import (
	"bytes"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"

	"github.com/ayoisaiah/moodmap/internal/apperr"
)

const (
	DefaultQuality  = 70
	DefaultMaxWidth = 640
)

var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

// ErrNoFrame means the device has not produced a usable frame yet. Capture
// cycles that see it are skipped silently.
var ErrNoFrame = &apperr.Error{
	Message: "no camera frame is available",
}

// SplitJPEG is a bufio.SplitFunc that yields complete JPEG images from an
// MJPEG byte stream. Bytes before the first start-of-image marker are
// discarded.
func SplitJPEG(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	start := bytes.Index(data, jpegSOI)
	if start == -1 {
		if atEOF {
			return len(data), nil, nil
		}

		return 0, nil, nil
	}

	end := bytes.Index(data[start+len(jpegSOI):], jpegEOI)
	if end == -1 {
		if atEOF {
			return len(data), nil, nil
		}

		return 0, nil, nil
	}

	stop := start + len(jpegSOI) + end + len(jpegEOI)

	return stop, data[start:stop], nil
}

// Encoder turns raw device frames into the still image sent to the
// classifier.
type Encoder struct {
	Quality  int
	MaxWidth int
}

// NewEncoder returns an Encoder. Out of range values fall back to the
// defaults.
func NewEncoder(quality, maxWidth int) *Encoder {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}

	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}

	return &Encoder{
		Quality:  quality,
		MaxWidth: maxWidth,
	}
}

// Encode decodes frame, scales it down to MaxWidth if it is wider and
// re-encodes it as a JPEG. Empty or undecodable frames return ErrNoFrame.
func (e *Encoder) Encode(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, ErrNoFrame
	}

	src, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, ErrNoFrame.Wrap(err)
	}

	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, ErrNoFrame
	}

	var img image.Image = src

	if bounds.Dx() > e.MaxWidth {
		h := bounds.Dy() * e.MaxWidth / bounds.Dx()
		if h < 1 {
			h = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, e.MaxWidth, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

		img = dst
	}

	var buf bytes.Buffer

	err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.Quality})
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
