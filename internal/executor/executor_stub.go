//go:build !linux

package executor

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// StubSetter is used on platforms without a supported wallpaper tool
type StubSetter struct {
	logger *zap.Logger
}

// NewSetter returns an error so the caller can fall back to another sink
func NewSetter(logger *zap.Logger) (*StubSetter, error) {
	return nil, fmt.Errorf("wallpaper setting is not supported on %s", runtime.GOOS)
}

// SetWallpaper always fails
func (s *StubSetter) SetWallpaper(ctx context.Context, imagePath string) error {
	return fmt.Errorf("wallpaper setting is not supported on %s", runtime.GOOS)
}

// Name returns the tool name
func (s *StubSetter) Name() string {
	return "none"
}
