package display

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

// DefaultSysfsRoot is where backlight devices expose max_brightness
const DefaultSysfsRoot = "/sys/class/backlight"

const (
	login1Dest      = "org.freedesktop.login1"
	login1Session   = "/org/freedesktop/login1/session/auto"
	setBrightness   = "org.freedesktop.login1.Session.SetBrightness"
	backlightSubsys = "backlight"
)

// LogindClient is the slice of the login1 session API used to drive the backlight
//
//go:generate mockgen -destination=mocks/logind_client_mock.go -package=mocks github.com/genricoloni/photoframe/internal/display LogindClient
type LogindClient interface {
	// SetBrightness sets the brightness of a device in the given subsystem
	SetBrightness(ctx context.Context, subsystem, name string, value uint32) error

	// Close closes the bus connection
	Close() error
}

// StdLogindClient is the real implementation using godbus
type StdLogindClient struct {
	conn *dbus.Conn
}

// NewStdLogindClient connects to the system bus
func NewStdLogindClient() (*StdLogindClient, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	return &StdLogindClient{conn: conn}, nil
}

// SetBrightness calls login1 on the caller's own session
func (c *StdLogindClient) SetBrightness(ctx context.Context, subsystem, name string, value uint32) error {
	obj := c.conn.Object(login1Dest, dbus.ObjectPath(login1Session))
	return obj.CallWithContext(ctx, setBrightness, 0, subsystem, name, value).Err
}

// Close closes the D-Bus connection
func (c *StdLogindClient) Close() error {
	return c.conn.Close()
}

// LogindBacklight switches a backlight device between zero and its maximum brightness
type LogindBacklight struct {
	logger    *zap.Logger
	client    LogindClient
	device    string
	sysfsRoot string
}

// NewLogindBacklight creates a driver for device, e.g. "rpi_backlight" or "intel_backlight"
func NewLogindBacklight(logger *zap.Logger, client LogindClient, device, sysfsRoot string) *LogindBacklight {
	return &LogindBacklight{
		logger:    logger,
		client:    client,
		device:    device,
		sysfsRoot: sysfsRoot,
	}
}

// SetPower sets the brightness to max_brightness when on and to 0 when off
func (b *LogindBacklight) SetPower(ctx context.Context, on bool) error {
	var value uint32
	if on {
		maxValue, err := b.maxBrightness()
		if err != nil {
			return err
		}
		value = maxValue
	}

	b.logger.Debug("Setting backlight brightness",
		zap.String("device", b.device),
		zap.Uint32("value", value))

	if err := b.client.SetBrightness(ctx, backlightSubsys, b.device, value); err != nil {
		return fmt.Errorf("logind SetBrightness failed: %w", err)
	}
	return nil
}

// Close releases the bus connection
func (b *LogindBacklight) Close() error {
	return b.client.Close()
}

func (b *LogindBacklight) maxBrightness() (uint32, error) {
	path := filepath.Join(b.sysfsRoot, b.device, "max_brightness")
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read max brightness: %w", err)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid max brightness in %s: %w", path, err)
	}
	return uint32(v), nil
}
