package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/genricoloni/photoframe/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultBlurRadius = 20.0
	jpegQuality       = 90
	frameFilename     = "current_frame.jpg"
)

// FrameProcessor letterboxes frames onto a blurred, screen-sized backdrop and writes them to disk
type FrameProcessor struct {
	logger     *zap.Logger
	res        *domain.ScreenResolution // nil keeps the frame geometry
	outputDir  string
	blurRadius float64
}

// NewFrameProcessor creates a processor writing into outputDir
func NewFrameProcessor(logger *zap.Logger, res *domain.ScreenResolution, outputDir string) *FrameProcessor {
	return &FrameProcessor{
		logger:     logger,
		res:        res,
		outputDir:  outputDir,
		blurRadius: defaultBlurRadius,
	}
}

// Compose centers the whole photo on a blurred copy of itself that fills the screen.
// Without a screen resolution the image is returned unchanged.
func (p *FrameProcessor) Compose(img image.Image) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}
	if p.res == nil || p.res.Width <= 0 || p.res.Height <= 0 {
		return imaging.Clone(img), nil
	}

	background := imaging.Fill(img, p.res.Width, p.res.Height, imaging.Center, imaging.Lanczos)
	background = imaging.Blur(background, p.blurRadius)

	photo := imaging.Fit(img, p.res.Width, p.res.Height, imaging.Lanczos)
	pb := photo.Bounds()
	offset := image.Pt((p.res.Width-pb.Dx())/2, (p.res.Height-pb.Dy())/2)

	p.logger.Debug("Composed frame",
		zap.Int("screenW", p.res.Width),
		zap.Int("screenH", p.res.Height),
		zap.Int("photoW", pb.Dx()),
		zap.Int("photoH", pb.Dy()))

	return imaging.Paste(background, photo, offset), nil
}

// Generate composes the frame, encodes it as JPEG and atomically replaces the output file.
// It returns the absolute path of the written image.
func (p *FrameProcessor) Generate(frame *domain.NormalizedFrame) (string, error) {
	if !frame.Valid() {
		return "", fmt.Errorf("invalid frame")
	}

	result, err := p.Compose(frame.Image())
	if err != nil {
		return "", fmt.Errorf("failed to compose frame: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, result, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode frame: %w", err)
	}

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(p.outputDir, ".frame-*.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write frame: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write frame: %w", err)
	}

	outputPath := filepath.Join(p.outputDir, frameFilename)
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return "", fmt.Errorf("failed to replace frame file: %w", err)
	}

	p.logger.Debug("Frame written", zap.String("path", outputPath), zap.Int("bytes", buf.Len()))

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return outputPath, nil
	}
	return absPath, nil
}
