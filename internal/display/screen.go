package display

import (
	"github.com/genricoloni/photoframe/internal/domain"
	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

// Fallback geometry when no display can be queried
const (
	FallbackWidth  = 1920
	FallbackHeight = 1080
)

// NewScreenResolution detects the primary screen resolution at startup
func NewScreenResolution(logger *zap.Logger) *domain.ScreenResolution {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		logger.Warn("No active displays detected, falling back to default resolution",
			zap.Int("width", FallbackWidth),
			zap.Int("height", FallbackHeight))
		return &domain.ScreenResolution{Width: FallbackWidth, Height: FallbackHeight}
	}

	// primary display
	bounds := screenshot.GetDisplayBounds(0)
	res := &domain.ScreenResolution{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
	if res.Width <= 0 || res.Height <= 0 {
		logger.Warn("Display reported empty bounds, falling back to default resolution")
		return &domain.ScreenResolution{Width: FallbackWidth, Height: FallbackHeight}
	}

	logger.Info("Screen resolution detected",
		zap.Int("displays", n),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height))

	return res
}
