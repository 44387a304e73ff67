package media

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/genricoloni/photoframe/internal/domain"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"go.uber.org/zap"
)

const (
	exifDateTimeLayout = "2006:01:02 15:04:05"
	capturedAtLayout   = "2006-01-02 15:04:05"
)

// Extractor reads EXIF metadata with goexif
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a new EXIF metadata extractor
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract never fails. A file without a parseable EXIF block yields orientation 0 and no
// location or capture time; a parseable block without an orientation tag yields 1.
func (e *Extractor) Extract(path string) domain.Metadata {
	unreadable := domain.Metadata{Orientation: domain.OrientationUnknown}

	f, err := os.Open(path)
	if err != nil {
		e.logger.Debug("Cannot open file for EXIF", zap.String("path", path), zap.Error(err))
		return unreadable
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		e.logger.Debug("No exif data", zap.String("path", path), zap.Error(err))
		return unreadable
	}

	meta := domain.Metadata{
		Orientation: readOrientation(x),
		Location:    readLocation(x),
		CapturedAt:  readCapturedAt(x),
	}

	e.logger.Debug("Extracted EXIF",
		zap.String("path", path),
		zap.Uint32("orientation", meta.Orientation),
		zap.Bool("hasLocation", meta.Location != nil),
		zap.Bool("hasDate", meta.CapturedAt != nil))

	return meta
}

func readOrientation(x *exif.Exif) uint32 {
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return domain.OrientationNormal
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return domain.OrientationNormal
	}
	return uint32(v)
}

// readLocation requires both coordinate triplets, a partial fix is dropped
func readLocation(x *exif.Exif) *domain.Location {
	lat, err := readDegrees(x, exif.GPSLatitude)
	if err != nil {
		return nil
	}
	lon, err := readDegrees(x, exif.GPSLongitude)
	if err != nil {
		return nil
	}
	return &domain.Location{Lat: float32(lat), Lon: float32(lon)}
}

// readDegrees converts a (degrees, minutes, seconds) rational triplet to decimal degrees
func readDegrees(x *exif.Exif, name exif.FieldName) (float64, error) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, err
	}
	if tag.Format() != tiff.RatVal || tag.Count < 3 {
		return 0, fmt.Errorf("%s: expected 3 rationals, got %d", name, tag.Count)
	}

	var parts [3]float64
	for i := range parts {
		num, denom, err := tag.Rat2(i)
		if err != nil {
			return 0, err
		}
		if denom == 0 {
			return 0, fmt.Errorf("%s: zero denominator", name)
		}
		parts[i] = float64(num) / float64(denom)
	}
	return parts[0] + parts[1]/60 + parts[2]/3600, nil
}

func readCapturedAt(x *exif.Exif) *string {
	tag, err := x.Get(exif.DateTime)
	if err != nil {
		return nil
	}
	raw, err := tag.StringVal()
	if err != nil {
		return nil
	}
	t, err := time.Parse(exifDateTimeLayout, strings.TrimRight(strings.TrimSpace(raw), "\x00"))
	if err != nil {
		return nil
	}
	s := t.Format(capturedAtLayout)
	return &s
}
