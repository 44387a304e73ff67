package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/genricoloni/photoframe/internal/domain"
	"github.com/genricoloni/photoframe/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultQueueSize bounds the number of undisplayed messages
const DefaultQueueSize = 2

// ErrAddressNotSet is the address result when geocoding is disabled or the photo has no location
var ErrAddressNotSet = errors.New("address not set")

// Config tunes the worker loop
type Config struct {
	Interval       time.Duration
	QueueSize      int
	ReverseGeocode bool
}

// Worker runs the selection/decode/geocode loop on its own goroutine and
// hands the results to the presentation consumer through a bounded channel.
type Worker struct {
	logger   *zap.Logger
	source   domain.MediaSource
	loader   domain.FrameLoader
	geocoder domain.Geocoder
	cfg      Config
	out      chan domain.Message
	newID    func() string

	mu              sync.Mutex
	running         bool
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	lastDropWarning time.Time
}

// NewWorker creates a stopped worker; geocoder may be nil when reverse geocoding is off
func NewWorker(
	logger *zap.Logger,
	cfg Config,
	source domain.MediaSource,
	loader domain.FrameLoader,
	geocoder domain.Geocoder,
) *Worker {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	return &Worker{
		logger:   logger,
		source:   source,
		loader:   loader,
		geocoder: geocoder,
		cfg:      cfg,
		out:      make(chan domain.Message, cfg.QueueSize),
		newID:    uuid.NewString,
	}
}

// Start launches the loop and returns immediately.
// The loop outlives ctx; it only ends with Stop.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	w.running = true

	loopCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.logger.Info("Pipeline worker starting",
		zap.Duration("interval", w.cfg.Interval),
		zap.Int("queue", w.cfg.QueueSize),
		zap.Bool("reverseGeocode", w.cfg.ReverseGeocode))

	w.wg.Add(1)
	go w.runLoop(loopCtx)
	return nil
}

// Stop ends the loop, waits for an in-flight cycle and closes the message channel
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.cancel()
	w.mu.Unlock()

	// the loop is the only sender, wait for it before closing
	w.wg.Wait()
	close(w.out)

	w.logger.Info("Pipeline worker stopped")
	return nil
}

// Messages returns the channel the consumer drains; it is closed by Stop
func (w *Worker) Messages() <-chan domain.Message {
	return w.out
}

func (w *Worker) runLoop(ctx context.Context) {
	defer w.wg.Done()

	timer := time.NewTimer(w.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Pipeline loop stopped")
			return
		case <-timer.C:
			w.cycle(ctx)
			timer.Reset(w.cfg.Interval)
		}
	}
}

// cycle runs one selection; the provider lock is only held inside GetMedia
func (w *Worker) cycle(ctx context.Context) {
	start := time.Now()

	item, err := w.source.GetMedia()
	if err != nil {
		w.logger.Warn("No media selected this cycle", zap.Error(err))
		return
	}
	if item == nil {
		w.logger.Debug("Playback paused, skipping cycle")
		return
	}

	var msg domain.Message
	switch item.Kind {
	case domain.KindPhoto:
		photo := w.preparePhoto(ctx, item)
		if photo == nil {
			return
		}
		msg = photo
	default:
		msg = &domain.VideoReady{ID: w.newID(), Item: *item}
	}

	metrics.CycleDuration.Observe(time.Since(start).Seconds())
	w.send(msg, string(item.Kind))
}

func (w *Worker) preparePhoto(ctx context.Context, item *domain.MediaItem) *domain.PhotoReady {
	frame, err := w.loader.Load(item.Path, item.Orientation)
	if err != nil {
		metrics.DecodeFailures.Inc()
		w.logger.Error("Failed to load photo, excluding it",
			zap.String("path", item.Path),
			zap.Error(err))
		w.source.MarkFailed(item.Path)
		return nil
	}
	if !frame.Valid() {
		metrics.DecodeFailures.Inc()
		w.logger.Error("Discarding invalid frame",
			zap.String("path", item.Path),
			zap.Int("width", frame.Width),
			zap.Int("height", frame.Height))
		w.source.MarkFailed(item.Path)
		return nil
	}

	address, addrErr := w.resolveAddress(ctx, item)

	return &domain.PhotoReady{
		ID:         w.newID(),
		Item:       *item,
		Frame:      frame,
		Address:    address,
		AddressErr: addrErr,
	}
}

func (w *Worker) resolveAddress(ctx context.Context, item *domain.MediaItem) (string, error) {
	if !w.cfg.ReverseGeocode || w.geocoder == nil || item.Location == nil {
		return "", ErrAddressNotSet
	}

	address, err := w.geocoder.ReverseGeocode(ctx, item.Location.Lat, item.Location.Lon)
	if err != nil {
		w.logger.Warn("Reverse geocoding failed",
			zap.String("path", item.Path),
			zap.Float32("lat", item.Location.Lat),
			zap.Float32("lon", item.Location.Lon),
			zap.Error(err))
		return "", err
	}
	return address, nil
}

// send never blocks, msg is dropped when the queue is full
func (w *Worker) send(msg domain.Message, kind string) {
	select {
	case w.out <- msg:
		metrics.FramesDelivered.WithLabelValues(kind).Inc()
		w.logger.Debug("Message queued", zap.String("id", msg.MessageID()), zap.String("kind", kind))
	default:
		metrics.FramesDropped.Inc()
		w.logChannelFullWarning()
	}
}

// logChannelFullWarning logs at most once per 5 seconds
func (w *Worker) logChannelFullWarning() {
	w.mu.Lock()
	defer w.mu.Unlock()

	const warningInterval = 5 * time.Second
	now := time.Now()

	if now.Sub(w.lastDropWarning) >= warningInterval {
		w.logger.Warn("Presentation queue full, dropping message",
			zap.Int("capacity", cap(w.out)))
		w.lastDropWarning = now
	}
}
