package media

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/genricoloni/photoframe/internal/domain"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // WebP format support
)

// ErrCorruptImage is returned for images that decode to non-positive dimensions
var ErrCorruptImage = errors.New("corrupted image")

// FrameLoader decodes, normalizes and optionally downscales photos into owned frames
type FrameLoader struct {
	logger *zap.Logger
	screen *domain.ScreenResolution // nil disables fitting
}

// NewFrameLoader creates a loader; frames larger than screen are fitted into it
func NewFrameLoader(logger *zap.Logger, screen *domain.ScreenResolution) *FrameLoader {
	return &FrameLoader{
		logger: logger,
		screen: screen,
	}
}

// Load decodes the file at path and returns an upright frame
func (l *FrameLoader) Load(path string, orientation uint32) (*domain.NormalizedFrame, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrCorruptImage, bounds.Dx(), bounds.Dy())
	}

	upright := Normalize(img, orientation)
	if l.screen != nil && l.screen.Width > 0 && l.screen.Height > 0 {
		upright = imaging.Fit(upright, l.screen.Width, l.screen.Height, imaging.Lanczos)
	}

	frame := FrameFromImage(upright)
	if !frame.Valid() {
		return nil, fmt.Errorf("%w after rotation: %dx%d", ErrCorruptImage, frame.Width, frame.Height)
	}

	l.logger.Debug("Frame decoded",
		zap.String("path", path),
		zap.Uint32("orientation", orientation),
		zap.Int("width", frame.Width),
		zap.Int("height", frame.Height))

	return frame, nil
}

// FrameFromImage copies img into a tightly packed frame buffer
func FrameFromImage(img *image.NRGBA) *domain.NormalizedFrame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := w * 4

	pix := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		start := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*stride:(y+1)*stride], img.Pix[start:start+stride])
	}

	return &domain.NormalizedFrame{
		Pix:        pix,
		Width:      w,
		Height:     h,
		Stride:     stride,
		ColorModel: domain.ColorModelNRGBA,
		HasAlpha:   !img.Opaque(),
	}
}
