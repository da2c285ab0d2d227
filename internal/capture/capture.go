// Package capture runs the periodic snapshot and classification cycle while
// tracking is enabled
package capture

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ayoisaiah/moodmap/internal/camera"
	"github.com/ayoisaiah/moodmap/internal/classifier"
	"github.com/ayoisaiah/moodmap/internal/models"
)

const DefaultInterval = 3 * time.Second

// State is the tracking state of the loop.
type State int

const (
	Idle State = iota
	Tracking
)

func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}

	return "idle"
}

type EventKind int

const (
	EventStateChanged EventKind = iota
	EventError
	EventSample
	EventBusy
)

// Event notifies observers of loop activity.
type Event struct {
	Err    error
	Point  *models.Point
	RunID  string
	Sample models.Sample
	Kind   EventKind
	State  State
	Busy   bool
}

// Recorder stores classification results.
type Recorder interface {
	Append(sample models.Sample, pos models.Position) (models.Point, error)
	SetLive(sample models.Sample)
	ClearLive()
}

// Tracker receives newly created heatmap points.
type Tracker interface {
	Track(p models.Point)
}

// Encoder prepares a raw device frame for the classifier.
type Encoder interface {
	Encode(frame []byte) ([]byte, error)
}

// Pointer holds the last known pointer position.
type Pointer struct {
	pos models.Position
	mu  sync.Mutex
}

func (p *Pointer) Set(x, y int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pos = models.Position{X: x, Y: y}
}

func (p *Pointer) Get() models.Position {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.pos
}

// Loop owns the camera while tracking and turns snapshots into samples.
type Loop struct {
	source     camera.Source
	encoder    Encoder
	classifier classifier.Classifier
	recorder   Recorder
	tracker    Tracker
	device     camera.Device
	logger     *slog.Logger
	now        func() time.Time
	onEvent    func(Event)
	cancel     context.CancelFunc
	pointer    *Pointer
	runID      string
	interval   time.Duration
	gen        uint64
	state      State
	starting   *start
	mu         sync.Mutex
	busy       atomic.Bool
	want       bool
}

// start is a camera acquisition in progress. err is set before done is
// closed.
type start struct {
	err  error
	done chan struct{}
}

// Option configures a Loop.
type Option func(*Loop)

func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

func WithTracker(t Tracker) Option {
	return func(l *Loop) {
		l.tracker = t
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithClock overrides the time source used to stamp samples.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		l.now = now
	}
}

// OnEvent registers a callback for loop events. It is never invoked while
// the loop holds its lock, so it may call back into the loop.
func OnEvent(f func(Event)) Option {
	return func(l *Loop) {
		l.onEvent = f
	}
}

// New returns an idle Loop.
func New(
	src camera.Source,
	enc Encoder,
	cls classifier.Classifier,
	rec Recorder,
	opts ...Option,
) *Loop {
	l := &Loop{
		source:     src,
		encoder:    enc,
		classifier: cls,
		recorder:   rec,
		interval:   DefaultInterval,
		logger:     slog.Default(),
		now:        time.Now,
		pointer:    &Pointer{},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Pointer returns the shared pointer position read when a cycle commits.
func (l *Loop) Pointer() *Pointer {
	return l.pointer
}

func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state
}

// Busy reports whether a capture cycle is in flight.
func (l *Loop) Busy() bool {
	return l.busy.Load()
}

func (l *Loop) emit(events ...Event) {
	if l.onEvent == nil {
		return
	}

	for _, e := range events {
		l.onEvent(e)
	}
}

// Enable acquires the camera and starts capturing. The loop stays Idle if
// the camera cannot be acquired. If an acquisition is already in progress,
// Enable waits for it and the loop follows the latest Enable or Disable call
// once it completes.
func (l *Loop) Enable(ctx context.Context) error {
	l.mu.Lock()

	l.want = true

	if l.state == Tracking {
		l.mu.Unlock()
		return nil
	}

	if pending := l.starting; pending != nil {
		l.mu.Unlock()

		select {
		case <-pending.done:
			return pending.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	pending := &start{done: make(chan struct{})}
	l.starting = pending

	l.mu.Unlock()

	defer close(pending.done)

	dev, err := l.source.Acquire(ctx)

	l.mu.Lock()

	l.starting = nil
	wanted := l.want

	if err != nil {
		l.want = false
		pending.err = err

		l.mu.Unlock()

		l.logger.Warn("camera acquisition failed", "error", err)

		if wanted {
			l.emit(Event{Kind: EventError, Err: err, State: Idle})
		}

		return err
	}

	// tracking was switched off while the camera was starting
	if !wanted {
		l.mu.Unlock()

		return dev.Release()
	}

	runCtx, cancel := context.WithCancel(context.Background())

	l.gen++
	l.state = Tracking
	l.device = dev
	l.cancel = cancel
	l.runID = uuid.NewString()

	runID := l.runID

	go l.run(runCtx, l.gen, dev)

	l.mu.Unlock()

	l.logger.Info("tracking started", "run", runID, "interval", l.interval)
	l.emit(Event{Kind: EventStateChanged, State: Tracking, RunID: runID})

	return nil
}

// Disable stops capturing and releases the camera. Results of cycles still
// in flight are discarded. A camera that is still starting is released as
// soon as it is ready.
func (l *Loop) Disable() {
	l.mu.Lock()

	l.want = false

	if l.state == Idle {
		l.mu.Unlock()
		return
	}

	runID := l.runID
	dev := l.stop()

	l.mu.Unlock()

	err := dev.Release()
	if err != nil {
		l.logger.Warn("unable to release camera", "run", runID, "error", err)
	}

	l.logger.Info("tracking stopped", "run", runID)
	l.emit(Event{Kind: EventStateChanged, State: Idle, RunID: runID})
}

// stop moves the loop to Idle and returns the device to release. l.mu must
// be held.
func (l *Loop) stop() camera.Device {
	dev := l.device

	l.gen++
	l.state = Idle
	l.want = false
	l.device = nil
	l.cancel()
	l.cancel = nil
	l.recorder.ClearLive()

	return dev
}

func (l *Loop) run(ctx context.Context, gen uint64, dev camera.Device) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-dev.Done():
			l.deviceLost(gen, dev)
			return
		case <-ticker.C:
			go l.Cycle(ctx)
		}
	}
}

func (l *Loop) deviceLost(gen uint64, dev camera.Device) {
	l.mu.Lock()

	if gen != l.gen || l.state != Tracking {
		l.mu.Unlock()
		return
	}

	runID := l.runID

	l.stop()
	l.mu.Unlock()

	cause := dev.Err()
	if cause == nil {
		cause = camera.ErrDeviceLost
	}

	err := dev.Release()
	if err != nil {
		l.logger.Warn("unable to release camera", "run", runID, "error", err)
	}

	l.logger.Error("camera lost", "run", runID, "error", cause)
	l.emit(
		Event{Kind: EventStateChanged, State: Idle, RunID: runID},
		Event{Kind: EventError, Err: cause, State: Idle, RunID: runID},
	)
}

// Cycle performs one capture and classification. It returns false without
// doing anything if the loop is idle or another cycle is still in flight.
func (l *Loop) Cycle(ctx context.Context) bool {
	if !l.busy.CompareAndSwap(false, true) {
		l.logger.Debug("capture skipped, previous cycle in flight")
		return false
	}

	defer l.busy.Store(false)

	l.mu.Lock()

	if l.state != Tracking {
		l.mu.Unlock()
		return false
	}

	gen, dev, runID := l.gen, l.device, l.runID

	l.mu.Unlock()

	frame, ok := dev.Frame()
	if !ok {
		return true
	}

	img, err := l.encoder.Encode(frame)
	if err != nil {
		if !errors.Is(err, camera.ErrNoFrame) {
			l.logger.Warn("unable to encode frame", "run", runID, "error", err)
		}

		return true
	}

	l.emit(Event{Kind: EventBusy, Busy: true, State: Tracking, RunID: runID})

	result, err := l.classifier.Classify(ctx, img)

	events := l.commit(gen, runID, result, err)
	events = append(events, Event{Kind: EventBusy, State: l.State(), RunID: runID})

	l.emit(events...)

	return true
}

// commit applies a classification outcome if the cycle still belongs to the
// current tracking run. The pointer is read here, at completion time.
func (l *Loop) commit(
	gen uint64,
	runID string,
	result models.Result,
	err error,
) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.gen || l.state != Tracking {
		l.logger.Debug("discarding late classification", "run", runID)
		return nil
	}

	if err != nil {
		l.logger.Warn("classification failed", "run", runID, "error", err)

		return []Event{{Kind: EventError, Err: err, State: Tracking, RunID: runID}}
	}

	sample := models.NewSample(result, l.now())

	l.recorder.SetLive(sample)

	if sample.Emotion == models.None {
		l.logger.Debug("no emotion detected", "run", runID)

		return []Event{{Kind: EventSample, Sample: sample, State: Tracking, RunID: runID}}
	}

	p, err := l.recorder.Append(sample, l.pointer.Get())
	if err != nil {
		l.logger.Warn("unable to record sample", "run", runID, "error", err)
		return nil
	}

	if l.tracker != nil {
		l.tracker.Track(p)
	}

	l.logger.Debug(
		"sample recorded",
		"run", runID,
		"emotion", sample.Emotion,
		"confidence", sample.Confidence,
		"x", p.X,
		"y", p.Y,
	)

	return []Event{{
		Kind:   EventSample,
		Sample: p.Sample,
		Point:  &p,
		State:  Tracking,
		RunID:  runID,
	}}
}
