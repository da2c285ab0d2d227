package camera

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}

	var buf bytes.Buffer

	require.NoError(t, jpeg.Encode(&buf, img, nil))

	return buf.Bytes()
}

func TestSplitJPEG(t *testing.T) {
	cases := []struct {
		name  string
		input []byte
		want  [][]byte
	}{
		{
			name:  "single image with leading noise",
			input: []byte{0x00, 0x01, 0xFF, 0xD8, 0x10, 0x20, 0xFF, 0xD9},
			want:  [][]byte{{0xFF, 0xD8, 0x10, 0x20, 0xFF, 0xD9}},
		},
		{
			name: "two images back to back",
			input: []byte{
				0xFF, 0xD8, 0x01, 0xFF, 0xD9,
				0xFF, 0xD8, 0x02, 0xFF, 0xD9,
			},
			want: [][]byte{
				{0xFF, 0xD8, 0x01, 0xFF, 0xD9},
				{0xFF, 0xD8, 0x02, 0xFF, 0xD9},
			},
		},
		{
			name:  "truncated trailing image is dropped",
			input: []byte{0xFF, 0xD8, 0x01, 0xFF, 0xD9, 0xFF, 0xD8, 0x02},
			want:  [][]byte{{0xFF, 0xD8, 0x01, 0xFF, 0xD9}},
		},
		{
			name:  "no markers",
			input: []byte("not a jpeg"),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scanner := bufio.NewScanner(bytes.NewReader(tc.input))
			scanner.Split(SplitJPEG)

			var got [][]byte

			for scanner.Scan() {
				got = append(got, bytes.Clone(scanner.Bytes()))
			}

			require.NoError(t, scanner.Err())
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEncoderScalesDown(t *testing.T) {
	enc := NewEncoder(70, 32)

	out, err := enc.Encode(testJPEG(t, 128, 64))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestEncoderKeepsSmallFrames(t *testing.T) {
	enc := NewEncoder(0, 0)

	assert.Equal(t, DefaultQuality, enc.Quality)
	assert.Equal(t, DefaultMaxWidth, enc.MaxWidth)

	out, err := enc.Encode(testJPEG(t, 20, 10))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
}

func TestEncoderRejectsUnusableFrames(t *testing.T) {
	enc := NewEncoder(DefaultQuality, DefaultMaxWidth)

	_, err := enc.Encode(nil)
	assert.ErrorIs(t, err, ErrNoFrame)

	_, err = enc.Encode([]byte{0xFF, 0xD8, 0xFF, 0xD9})
	assert.ErrorIs(t, err, ErrNoFrame)
}

func TestClassify(t *testing.T) {
	base := errors.New("exit status 1")

	cases := []struct {
		want   error
		name   string
		stderr string
	}{
		{
			name:   "permission",
			stderr: "/dev/video0: Permission denied",
			want:   ErrPermissionDenied,
		},
		{
			name:   "missing device",
			stderr: "/dev/video0: No such file or directory",
			want:   ErrNoDevice,
		},
		{
			name:   "anything else",
			stderr: "Invalid data found when processing input",
			want:   ErrDeviceLost,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(base, tc.stderr), tc.want)
		})
	}
}

func TestNewCommand(t *testing.T) {
	_, err := NewCommand("", time.Second, nil)
	assert.ErrorIs(t, err, errEmptyCmd)

	_, err = NewCommand(`ffmpeg -i "unterminated`, time.Second, nil)
	assert.ErrorIs(t, err, errParseCmd)

	c, err := NewCommand(DefaultCmd, time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, "ffmpeg", c.args[0])
}

func TestDefaultCommand(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "windows"} {
		c, err := NewCommand(DefaultCommand(goos), time.Second, nil)
		require.NoError(t, err, goos)
		assert.Equal(t, "ffmpeg", c.args[0], goos)
		assert.Equal(t, "-", c.args[len(c.args)-1], goos)
	}

	assert.Contains(t, DefaultCommand("darwin"), "avfoundation")
	assert.Contains(t, DefaultCommand("windows"), "video=Integrated Camera")
	assert.Equal(t, DefaultCmd, DefaultCommand("freebsd"))
}

func TestAcquireMissingBinary(t *testing.T) {
	c, err := NewCommand("moodmap-definitely-not-installed -f v4l2", time.Second, nil)
	require.NoError(t, err)

	_, err = c.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrNoDevice)
}

func TestAcquirePermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	c, err := NewCommand(
		`sh -c 'echo "/dev/video0: Permission denied" >&2; exit 1'`,
		5*time.Second,
		nil,
	)
	require.NoError(t, err)

	_, err = c.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestAcquireStreamsFrames(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	frame := testJPEG(t, 8, 8)
	path := filepath.Join(t.TempDir(), "frame.jpg")

	require.NoError(t, os.WriteFile(path, frame, 0o600))

	c, err := NewCommand("cat "+path, 5*time.Second, nil)
	require.NoError(t, err)

	dev, err := c.Acquire(context.Background())
	require.NoError(t, err)

	got, ok := dev.Frame()
	require.True(t, ok)
	assert.Equal(t, frame, got)

	// cat exits after one frame, which is a lost device
	select {
	case <-dev.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("device did not report completion")
	}

	assert.ErrorIs(t, dev.Err(), ErrDeviceLost)

	require.NoError(t, dev.Release())
	assert.NoError(t, dev.Err())
}

func TestReleaseStopsStream(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	c, err := NewCommand("sleep 30", 50*time.Millisecond, nil)
	require.NoError(t, err)

	dev, err := c.Acquire(context.Background())
	require.NoError(t, err)

	_, ok := dev.Frame()
	assert.False(t, ok)

	require.NoError(t, dev.Release())

	<-dev.Done()
	assert.NoError(t, dev.Err())
	assert.NoError(t, dev.Release())
}
