package display

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/genricoloni/photoframe/internal/config"
	"github.com/genricoloni/photoframe/internal/domain"
	"go.uber.org/zap"
)

// NewBacklight builds the driver selected in cfg
func NewBacklight(logger *zap.Logger, cfg config.BacklightConfig) (domain.Backlight, error) {
	switch cfg.Driver {
	case config.BacklightShell:
		return NewShellBacklight(logger, cfg.Command), nil
	case config.BacklightLogind:
		client, err := NewStdLogindClient()
		if err != nil {
			return nil, fmt.Errorf("system bus connection failed: %w", err)
		}
		return NewLogindBacklight(logger, client, cfg.Device, DefaultSysfsRoot), nil
	case config.BacklightNone:
		return NewNoopBacklight(logger), nil
	default:
		return nil, fmt.Errorf("unknown backlight driver %q", cfg.Driver)
	}
}

// CloseBacklight releases the driver's resources, if it holds any
func CloseBacklight(b domain.Backlight) error {
	if c, ok := b.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ShellBacklight runs a shell command template; {power} becomes 0 to switch on and 1 to switch off
type ShellBacklight struct {
	logger  *zap.Logger
	command string
}

// NewShellBacklight creates a driver for the given sh -c template
func NewShellBacklight(logger *zap.Logger, command string) *ShellBacklight {
	return &ShellBacklight{logger: logger, command: command}
}

// SetPower runs the command and reports its output on failure
func (b *ShellBacklight) SetPower(ctx context.Context, on bool) error {
	power := "1"
	if on {
		power = "0"
	}
	script := strings.ReplaceAll(b.command, "{power}", power)

	b.logger.Debug("Switching backlight", zap.Bool("on", on), zap.String("command", script))

	out, err := exec.CommandContext(ctx, "sh", "-c", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("backlight command failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// NoopBacklight only logs
type NoopBacklight struct {
	logger *zap.Logger
}

// NewNoopBacklight creates a driver that never touches the hardware
func NewNoopBacklight(logger *zap.Logger) *NoopBacklight {
	return &NoopBacklight{logger: logger}
}

// SetPower logs the requested state
func (b *NoopBacklight) SetPower(_ context.Context, on bool) error {
	b.logger.Info("Backlight switch requested, no driver configured", zap.Bool("on", on))
	return nil
}
