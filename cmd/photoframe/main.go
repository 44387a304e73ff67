package main

import (
	"context"
	"flag"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/genricoloni/photoframe/internal/config"
	"github.com/genricoloni/photoframe/internal/control"
	"github.com/genricoloni/photoframe/internal/display"
	"github.com/genricoloni/photoframe/internal/domain"
	"github.com/genricoloni/photoframe/internal/executor"
	"github.com/genricoloni/photoframe/internal/geocoder"
	"github.com/genricoloni/photoframe/internal/httpapi"
	"github.com/genricoloni/photoframe/internal/media"
	"github.com/genricoloni/photoframe/internal/pipeline"
	"github.com/genricoloni/photoframe/internal/presentation"
	"github.com/genricoloni/photoframe/internal/processor"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// configPath is the YAML file the app is built from
type configPath string

// AppOptions is the whole dependency graph, shared by main and the tests
var AppOptions = fx.Options(
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),

	fx.Provide(
		newLogger,
		func() configPath { return configPath(config.DefaultPath()) },
		newConfig,
		newScreen,
		newRand,
		newExtractor,
		newProvider,
		newFrameLoader,
		newGeocoder,
		newWorker,
		newBacklight,
		newControlClient,
		newHTTPServer,
		newSink,
		newConsumer,
	),

	fx.Invoke(registerHooks),
)

func main() {
	path := flag.String("config", "", "path to the YAML configuration (default $PHOTOFRAME_CONFIG or ~/.config/photoframe/config.yaml)")
	flag.Parse()

	opts := []fx.Option{AppOptions}
	if *path != "" {
		opts = append(opts, fx.Replace(configPath(*path)))
	}
	app := fx.New(opts...)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		panic(err)
	}
}

// newLogger builds a production logger; PHOTOFRAME_LOG_DEV switches to the console encoder
// and PHOTOFRAME_LOG_LEVEL overrides the level.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if os.Getenv("PHOTOFRAME_LOG_DEV") != "" {
		cfg = zap.NewDevelopmentConfig()
	}

	if lvl := strings.TrimSpace(os.Getenv("PHOTOFRAME_LOG_LEVEL")); lvl != "" {
		level, err := zapcore.ParseLevel(lvl)
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	return cfg.Build()
}

func newConfig(logger *zap.Logger, path configPath) (*config.AppConfig, error) {
	return config.Load(logger, string(path))
}

// newScreen queries the display only when something needs its size
func newScreen(logger *zap.Logger, cfg *config.AppConfig) *domain.ScreenResolution {
	if !cfg.FitFramesToScreen() && cfg.Presentation.Sink != config.SinkWallpaper {
		return nil
	}
	return display.NewScreenResolution(logger)
}

func newRand() *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

func newExtractor(logger *zap.Logger) domain.MetadataExtractor {
	return media.NewExtractor(logger)
}

func newProvider(logger *zap.Logger, cfg *config.AppConfig, extractor domain.MetadataExtractor, rng *rand.Rand) *media.Provider {
	return media.NewProvider(logger, media.ProviderConfig{
		Roots:           cfg.Paths,
		PhotoExtensions: cfg.Media.PhotoExtensions,
		VideoExtensions: cfg.Media.VideoExtensions,
	}, extractor, rng)
}

func newFrameLoader(logger *zap.Logger, cfg *config.AppConfig, screen *domain.ScreenResolution) domain.FrameLoader {
	if !cfg.FitFramesToScreen() {
		screen = nil
	}
	return media.NewFrameLoader(logger, screen)
}

// newGeocoder returns a nil interface when reverse geocoding is off
func newGeocoder(logger *zap.Logger, cfg *config.AppConfig) domain.Geocoder {
	if !cfg.ReverseGeocode {
		return nil
	}
	return geocoder.NewMapboxGeocoder(logger, cfg.Geocoder.Endpoint, cfg.Geocoder.Language, cfg.MapboxAPIKey)
}

func newWorker(
	logger *zap.Logger,
	cfg *config.AppConfig,
	provider *media.Provider,
	loader domain.FrameLoader,
	geo domain.Geocoder,
) *pipeline.Worker {
	return pipeline.NewWorker(logger, pipeline.Config{
		Interval:       time.Duration(cfg.TransitionTime) * time.Second,
		ReverseGeocode: cfg.ReverseGeocode,
	}, provider, loader, geo)
}

func newBacklight(logger *zap.Logger, cfg *config.AppConfig) (domain.Backlight, error) {
	return display.NewBacklight(logger, cfg.Backlight)
}

// newControlClient returns nil when MQTT is off
func newControlClient(
	logger *zap.Logger,
	cfg *config.AppConfig,
	provider *media.Provider,
	backlight domain.Backlight,
) *control.Client {
	if !cfg.MQTT {
		return nil
	}
	dialer := control.NewMQTTDialer(logger, control.MQTTConfig{
		Broker:   cfg.MQTTBroker(),
		ClientID: cfg.MQTTClientID,
		Username: cfg.MQTTUser,
		Password: cfg.MQTTPassword,
	})
	return control.NewClient(logger, dialer, cfg.MQTTTopic, provider, backlight, control.NewBackoff(rand.Float64))
}

// newHTTPServer returns nil when http.listen is off
func newHTTPServer(
	logger *zap.Logger,
	cfg *config.AppConfig,
	provider *media.Provider,
	client *control.Client,
) *httpapi.Server {
	if !cfg.HTTP.Enabled() {
		return nil
	}
	var state func() string
	if client != nil {
		state = func() string { return string(client.State()) }
	}
	return httpapi.NewServer(logger, cfg.HTTP.Listen, provider, state)
}

// newSink falls back to the log sink when no wallpaper tool is available
func newSink(logger *zap.Logger, cfg *config.AppConfig, screen *domain.ScreenResolution) domain.PresentationSink {
	if cfg.Presentation.Sink != config.SinkWallpaper {
		return presentation.NewLogSink(logger)
	}

	setter, err := executor.NewSetter(logger)
	if err != nil {
		logger.Warn("Wallpaper sink unavailable, logging frames instead", zap.Error(err))
		return presentation.NewLogSink(logger)
	}
	writer := processor.NewFrameProcessor(logger, screen, cfg.Presentation.OutputDir)
	return presentation.NewWallpaperSink(logger, writer, setter)
}

func newConsumer(
	logger *zap.Logger,
	sink domain.PresentationSink,
	worker *pipeline.Worker,
	client *control.Client,
	server *httpapi.Server,
) *presentation.Consumer {
	var pauses []<-chan bool
	if client != nil {
		pauses = append(pauses, client.PauseEvents())
	}
	if server != nil {
		pauses = append(pauses, server.PauseEvents())
	}
	return presentation.NewConsumer(logger, sink, worker.Messages(), pauses...)
}

// lifecycle is implemented by sinks that own a goroutine
type lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// registerHooks starts the consumer first so it stops last; the backlight closes after everything
func registerHooks(
	lc fx.Lifecycle,
	logger *zap.Logger,
	consumer *presentation.Consumer,
	worker *pipeline.Worker,
	sink domain.PresentationSink,
	backlight domain.Backlight,
	client *control.Client,
	server *httpapi.Server,
) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return display.CloseBacklight(backlight)
		},
	})
	if s, ok := sink.(lifecycle); ok {
		lc.Append(fx.Hook{OnStart: s.Start, OnStop: s.Stop})
	}
	lc.Append(fx.Hook{OnStart: consumer.Start, OnStop: consumer.Stop})
	lc.Append(fx.Hook{OnStart: worker.Start, OnStop: worker.Stop})
	if client != nil {
		lc.Append(fx.Hook{OnStart: client.Start, OnStop: client.Stop})
	}
	if server != nil {
		lc.Append(fx.Hook{OnStart: server.Start, OnStop: server.Stop})
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Photo frame started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			return nil
		},
	})
}
