// Package camera acquires a video device through an external capture command
// and exposes its most recent frame
package camera

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/ayoisaiah/moodmap/internal/apperr"
	"github.com/ayoisaiah/moodmap/internal/osutil"
)

const (
	DefaultCmd = "ffmpeg -hide_banner -loglevel error -f v4l2 -i /dev/video0 " +
		"-f image2pipe -vcodec mjpeg -"
	darwinCmd = "ffmpeg -hide_banner -loglevel error -f avfoundation -framerate 30 " +
		"-i 0 -f image2pipe -vcodec mjpeg -"
	windowsCmd = `ffmpeg -hide_banner -loglevel error -f dshow -i "video=Integrated Camera" ` +
		"-f image2pipe -vcodec mjpeg -"
	DefaultWarmup = 2 * time.Second

	megabyte = 1024 * 1024
)

var (
	ErrPermissionDenied = &apperr.Error{
		Message: "camera access was denied",
	}

	ErrNoDevice = &apperr.Error{
		Message: "no camera device is available",
	}

	ErrDeviceLost = &apperr.Error{
		Message: "camera stopped unexpectedly",
	}

	errEmptyCmd = &apperr.Error{
		Message: "camera command is empty",
	}

	errParseCmd = &apperr.Error{
		Message: "unable to parse camera command",
	}
)

// DefaultCommand returns the capture command for goos. Each command writes
// an MJPEG stream to stdout.
func DefaultCommand(goos string) string {
	switch goos {
	case osutil.Darwin:
		return darwinCmd
	case osutil.Windows:
		return windowsCmd
	default:
		return DefaultCmd
	}
}

// Device is an acquired camera.
type Device interface {
	// Frame returns the latest JPEG frame. ok is false until the device has
	// produced one.
	Frame() (frame []byte, ok bool)
	// Done is closed when the device stops producing frames.
	Done() <-chan struct{}
	// Err explains why Done was closed. It is nil after Release.
	Err() error
	Release() error
}

// Source hands out devices.
type Source interface {
	Acquire(ctx context.Context) (Device, error)
}

// Command is a Source that runs an external program which writes a stream of
// JPEG images to its standard output.
type Command struct {
	logger *slog.Logger
	args   []string
	warmup time.Duration
}

// NewCommand parses cmdline with shell quoting rules.
func NewCommand(cmdline string, warmup time.Duration, logger *slog.Logger) (*Command, error) {
	args, err := shellquote.Split(cmdline)
	if err != nil {
		return nil, errParseCmd.Wrap(err)
	}

	if len(args) == 0 {
		return nil, errEmptyCmd
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Command{
		args:   args,
		warmup: warmup,
		logger: logger,
	}, nil
}

// Acquire starts the capture command. It waits up to the warm-up window for
// the first frame so that permission and device errors surface here instead
// of on the first capture cycle.
func (c *Command) Acquire(ctx context.Context) (Device, error) {
	name, err := exec.LookPath(c.args[0])
	if err != nil {
		return nil, ErrNoDevice.Wrap(err)
	}

	cmd := exec.Command(name, c.args[1:]...)

	s := &Stream{
		cmd:      cmd,
		done:     make(chan struct{}),
		firstOut: make(chan struct{}),
		logger:   c.logger,
	}

	cmd.Stderr = &s.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	err = cmd.Start()
	if err != nil {
		return nil, classify(err, "")
	}

	c.logger.Debug("camera command started", "cmd", c.args[0], "pid", cmd.Process.Pid)

	go s.read(stdout)

	timer := time.NewTimer(c.warmup)
	defer timer.Stop()

	select {
	case <-s.firstOut:
		return s, nil
	case <-s.done:
		select {
		case <-s.firstOut:
			// it produced frames before exiting; the caller sees Done
			return s, nil
		default:
			return nil, s.Err()
		}
	case <-timer.C:
		// no frame yet, capture cycles will skip until one arrives
		return s, nil
	case <-ctx.Done():
		_ = s.Release()
		return nil, ctx.Err()
	}
}

// Stream is a running capture command.
type Stream struct {
	err      error
	cmd      *exec.Cmd
	done     chan struct{}
	firstOut chan struct{}
	logger   *slog.Logger
	frame    []byte
	stderr   lockedBuffer
	mu       sync.Mutex
	first    sync.Once
	released bool
}

func (s *Stream) read(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, megabyte), 64*megabyte)
	scanner.Split(SplitJPEG)

	for scanner.Scan() {
		frame := bytes.Clone(scanner.Bytes())

		s.mu.Lock()
		s.frame = frame
		s.mu.Unlock()

		s.first.Do(func() {
			close(s.firstOut)
		})
	}

	scanErr := scanner.Err()
	waitErr := s.cmd.Wait()

	s.mu.Lock()

	if !s.released {
		switch {
		case waitErr != nil:
			s.err = classify(waitErr, s.stderr.String())
		case scanErr != nil:
			s.err = ErrDeviceLost.Wrap(scanErr)
		default:
			s.err = ErrDeviceLost
		}

		s.logger.Warn("camera command exited", "error", s.err)
	}

	s.mu.Unlock()

	close(s.done)
}

func (s *Stream) Frame() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frame == nil {
		return nil, false
	}

	return s.frame, true
}

func (s *Stream) Done() <-chan struct{} {
	return s.done
}

func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Release stops the capture command and waits for it to exit.
func (s *Stream) Release() error {
	s.mu.Lock()

	if s.released {
		s.mu.Unlock()
		return nil
	}

	s.released = true
	s.mu.Unlock()

	if s.cmd.Process != nil {
		err := s.cmd.Process.Kill()
		if err != nil && !errors.Is(err, os.ErrProcessDone) {
			return err
		}
	}

	<-s.done

	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()

	return nil
}

// classify maps a capture command failure to the camera error taxonomy.
func classify(err error, stderr string) error {
	lower := strings.ToLower(stderr + " " + err.Error())

	switch {
	case strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "operation not permitted"):
		return ErrPermissionDenied.Wrap(err)
	case strings.Contains(lower, "no such file or directory"),
		strings.Contains(lower, "no such device"),
		strings.Contains(lower, "executable file not found"):
		return ErrNoDevice.Wrap(err)
	}

	if msg := strings.TrimSpace(stderr); msg != "" {
		return ErrDeviceLost.Wrap(errors.New(msg))
	}

	return ErrDeviceLost.Wrap(err)
}

type lockedBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
