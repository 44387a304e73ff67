package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	defaultTransitionTime = 30
	defaultMQTTPort       = 1883
	defaultMQTTClientID   = "pi-photo-frame"
	defaultOutputDir      = "/tmp/photoframe"
	defaultHTTPListen     = "127.0.0.1:8090"
	defaultGeocodeLang    = "ro"

	// DefaultGeocodeEndpoint is the Mapbox reverse geocoding template.
	// {lat}, {lon}, {lang} and {token} are substituted per request.
	DefaultGeocodeEndpoint = "https://api.mapbox.com/geocoding/v5/mapbox.places/{lon},{lat}.json?types=place&language={lang}&access_token={token}"

	// DefaultBacklightCommand is run through sh -c, {power} is 0 (on) or 1 (off)
	DefaultBacklightCommand = "echo {power} | sudo tee /sys/class/backlight/*/bl_power"
)

// Backlight drivers
const (
	BacklightShell  = "shell"
	BacklightLogind = "logind"
	BacklightNone   = "none"
)

// Presentation sinks
const (
	SinkLog       = "log"
	SinkWallpaper = "wallpaper"
)

// AppConfig holds application configuration.
// The flat keys are compatible with config files of earlier releases.
type AppConfig struct {
	Paths          []string `yaml:"paths"`
	TransitionTime int      `yaml:"transition_time"`

	MQTT         bool   `yaml:"mqtt"`
	MQTTHost     string `yaml:"mqtt_host"`
	MQTTPort     int    `yaml:"mqtt_port"`
	MQTTUser     string `yaml:"mqtt_user"`
	MQTTPassword string `yaml:"mqtt_password"`
	MQTTTopic    string `yaml:"mqtt_topic"`
	MQTTClientID string `yaml:"mqtt_client_id"`

	ReverseGeocode bool   `yaml:"reverse_geocode"`
	MapboxAPIKey   string `yaml:"mapbox_api_key"`

	Geocoder     GeocoderConfig     `yaml:"geocoder"`
	Media        MediaConfig        `yaml:"media"`
	Backlight    BacklightConfig    `yaml:"backlight"`
	Presentation PresentationConfig `yaml:"presentation"`
	HTTP         HTTPConfig         `yaml:"http"`
}

// GeocoderConfig tunes the reverse geocoding endpoint
type GeocoderConfig struct {
	Endpoint string `yaml:"endpoint"`
	Language string `yaml:"language"`
}

// MediaConfig lists the file extensions considered during selection
type MediaConfig struct {
	PhotoExtensions []string `yaml:"photo_extensions"`
	VideoExtensions []string `yaml:"video_extensions"`
}

// BacklightConfig selects how the display is powered on and off
type BacklightConfig struct {
	Driver  string `yaml:"driver"`
	Command string `yaml:"command"`
	Device  string `yaml:"device"`
}

// PresentationConfig selects the presentation sink
type PresentationConfig struct {
	Sink        string `yaml:"sink"`
	OutputDir   string `yaml:"output_dir"`
	FitToScreen *bool  `yaml:"fit_to_screen"`
}

// HTTPListenOff disables the local control server
const HTTPListenOff = "off"

// HTTPConfig configures the local control server
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// Enabled reports whether the control server should be started
func (h HTTPConfig) Enabled() bool {
	return h.Listen != "" && h.Listen != HTTPListenOff
}

// DefaultPath returns the config location used when neither flag nor env is set
func DefaultPath() string {
	if p := os.Getenv("PHOTOFRAME_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "photoframe", "config.yaml")
}

// Load reads, defaults and validates the YAML configuration at path
func Load(logger *zap.Logger, path string) (*AppConfig, error) {
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded",
		zap.String("file", path),
		zap.Strings("paths", cfg.Paths),
		zap.Int("transitionTime", cfg.TransitionTime),
		zap.Bool("mqtt", cfg.MQTT),
		zap.Bool("reverseGeocode", cfg.ReverseGeocode),
		zap.String("backlight", cfg.Backlight.Driver),
		zap.String("sink", cfg.Presentation.Sink))

	return cfg, nil
}

// Parse decodes YAML bytes, applies defaults and environment overrides, then validates
func Parse(data []byte) (*AppConfig, error) {
	// keys absent from the file keep these values; an explicit zero stays zero
	cfg := AppConfig{TransitionTime: defaultTransitionTime}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.MQTTPort == 0 {
		c.MQTTPort = defaultMQTTPort
	}
	if c.MQTTClientID == "" {
		c.MQTTClientID = defaultMQTTClientID
	}
	if c.Geocoder.Endpoint == "" {
		c.Geocoder.Endpoint = DefaultGeocodeEndpoint
	}
	if c.Geocoder.Language == "" {
		c.Geocoder.Language = defaultGeocodeLang
	}
	if c.Media.PhotoExtensions == nil {
		c.Media.PhotoExtensions = []string{"jpg", "jpeg", "png", "webp"}
	}
	if c.Backlight.Driver == "" {
		c.Backlight.Driver = BacklightShell
	}
	if c.Backlight.Command == "" {
		c.Backlight.Command = DefaultBacklightCommand
	}
	if c.Presentation.Sink == "" {
		c.Presentation.Sink = SinkLog
	}
	if c.Presentation.OutputDir == "" {
		c.Presentation.OutputDir = defaultOutputDir
	}
	if c.Presentation.FitToScreen == nil {
		fit := true
		c.Presentation.FitToScreen = &fit
	}
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = defaultHTTPListen
	}

	for i, p := range c.Paths {
		c.Paths[i] = expandPath(p)
	}
	c.Presentation.OutputDir = expandPath(c.Presentation.OutputDir)
}

// applyEnv lets secrets and the output dir come from the environment
func (c *AppConfig) applyEnv() {
	if v := os.Getenv("PHOTOFRAME_OUTPUT_DIR"); v != "" {
		c.Presentation.OutputDir = expandPath(v)
	}
	if v := os.Getenv("PHOTOFRAME_MQTT_PASSWORD"); v != "" {
		c.MQTTPassword = v
	}
	if v := os.Getenv("PHOTOFRAME_MAPBOX_API_KEY"); v != "" {
		c.MapboxAPIKey = v
	}
}

// Validate reports every configuration problem at once
func (c *AppConfig) Validate() error {
	var err error

	if len(c.Paths) == 0 {
		err = multierr.Append(err, fmt.Errorf("paths: at least one root directory is required"))
	}
	if c.TransitionTime < 1 {
		err = multierr.Append(err, fmt.Errorf("transition_time: must be >= 1, got %d", c.TransitionTime))
	}
	if c.MQTT {
		if c.MQTTHost == "" {
			err = multierr.Append(err, fmt.Errorf("mqtt_host: required when mqtt is enabled"))
		}
		if c.MQTTTopic == "" {
			err = multierr.Append(err, fmt.Errorf("mqtt_topic: required when mqtt is enabled"))
		}
	}
	if c.ReverseGeocode && c.MapboxAPIKey == "" {
		err = multierr.Append(err, fmt.Errorf("mapbox_api_key: required when reverse_geocode is enabled"))
	}

	switch c.Backlight.Driver {
	case BacklightShell, BacklightNone:
	case BacklightLogind:
		if c.Backlight.Device == "" {
			err = multierr.Append(err, fmt.Errorf("backlight.device: required by the logind driver"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("backlight.driver: unknown driver %q", c.Backlight.Driver))
	}

	switch c.Presentation.Sink {
	case SinkLog, SinkWallpaper:
	default:
		err = multierr.Append(err, fmt.Errorf("presentation.sink: unknown sink %q", c.Presentation.Sink))
	}

	return err
}

// MQTTBroker returns the broker address in host:port form
func (c *AppConfig) MQTTBroker() string {
	return fmt.Sprintf("%s:%d", c.MQTTHost, c.MQTTPort)
}

// FitFramesToScreen reports whether frames are downscaled to the display size
func (c *AppConfig) FitFramesToScreen() bool {
	return c.Presentation.FitToScreen == nil || *c.Presentation.FitToScreen
}

// expandPath expands environment variables and a leading ~
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}
