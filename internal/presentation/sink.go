package presentation

import (
	"context"
	"sync"
	"time"

	"github.com/genricoloni/photoframe/internal/domain"
	"go.uber.org/zap"
)

const setWallpaperTimeout = 10 * time.Second

// LogSink reports every frame through the logger; used on headless installs
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a logging sink
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) OnPhotoReady(frame *domain.NormalizedFrame, address string, addressErr error, capturedAt *string, path string) {
	caption := NewCaption(address, addressErr, capturedAt, path)
	if addressErr != nil {
		s.logger.Debug("No address for photo", zap.String("path", path), zap.Error(addressErr))
	}
	s.logger.Info("Showing photo",
		zap.String("path", caption.Path),
		zap.String("location", caption.Location),
		zap.String("date", caption.Date),
		zap.Bool("captionVisible", caption.Visible),
		zap.Int("width", frame.Width),
		zap.Int("height", frame.Height))
}

func (s *LogSink) OnVideoReady(path string) {
	s.logger.Info("Playing video", zap.String("path", path))
}

func (s *LogSink) OnPauseChanged(paused bool) {
	s.logger.Info("Presentation pause changed", zap.Bool("paused", paused))
}

// FrameWriter renders a frame into an image file
type FrameWriter interface {
	Generate(frame *domain.NormalizedFrame) (string, error)
}

// WallpaperSetter displays an image file
type WallpaperSetter interface {
	SetWallpaper(ctx context.Context, imagePath string) error
}

// WallpaperSink shows photos as the desktop background.
// Videos are skipped, the previous photo stays on screen. Rendering and setting run on a
// background goroutine; a photo arriving while one is pending replaces it.
type WallpaperSink struct {
	logger *zap.Logger
	writer FrameWriter
	setter WallpaperSetter
	jobs   chan wallpaperJob

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type wallpaperJob struct {
	frame   *domain.NormalizedFrame
	caption Caption
}

// NewWallpaperSink creates a sink writing through writer and displaying through setter
func NewWallpaperSink(logger *zap.Logger, writer FrameWriter, setter WallpaperSetter) *WallpaperSink {
	return &WallpaperSink{
		logger: logger,
		writer: writer,
		setter: setter,
		jobs:   make(chan wallpaperJob, 1),
	}
}

// Start launches the render goroutine
func (s *WallpaperSink) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	s.running = true

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(runCtx)
	return nil
}

// Stop ends the render goroutine; a pending photo is dropped
func (s *WallpaperSink) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *WallpaperSink) run(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.render(ctx, job)
		}
	}
}

// OnPhotoReady queues the photo and returns at once
func (s *WallpaperSink) OnPhotoReady(frame *domain.NormalizedFrame, address string, addressErr error, capturedAt *string, path string) {
	job := wallpaperJob{frame: frame, caption: NewCaption(address, addressErr, capturedAt, path)}
	for {
		select {
		case s.jobs <- job:
			return
		default:
		}
		select {
		case stale := <-s.jobs:
			s.logger.Debug("Replacing pending wallpaper", zap.String("path", stale.caption.Path))
		default:
		}
	}
}

func (s *WallpaperSink) render(ctx context.Context, job wallpaperJob) {
	path := job.caption.Path
	out, err := s.writer.Generate(job.frame)
	if err != nil {
		s.logger.Error("Failed to render frame", zap.String("path", path), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, setWallpaperTimeout)
	defer cancel()

	if err := s.setter.SetWallpaper(ctx, out); err != nil {
		s.logger.Error("Failed to set wallpaper", zap.String("path", path), zap.Error(err))
		return
	}

	s.logger.Info("Wallpaper updated",
		zap.String("source", path),
		zap.String("location", job.caption.Location),
		zap.String("date", job.caption.Date))
}

func (s *WallpaperSink) OnVideoReady(path string) {
	s.logger.Debug("Wallpaper sink cannot play videos, skipping", zap.String("path", path))
}

func (s *WallpaperSink) OnPauseChanged(paused bool) {
	s.logger.Info("Wallpaper rotation pause changed", zap.Bool("paused", paused))
}
