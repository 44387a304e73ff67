package domain

import "image"

// MediaKind distinguishes photos from videos
type MediaKind string

const (
	// KindPhoto is a still image that goes through EXIF extraction and decoding
	KindPhoto MediaKind = "photo"
	// KindVideo is handed to the presentation layer by path only
	KindVideo MediaKind = "video"
)

// Orientation codes as stored in the EXIF orientation tag.
// OrientationUnknown marks a file whose EXIF block could not be parsed at all.
const (
	OrientationUnknown uint32 = 0
	OrientationNormal  uint32 = 1
)

// Location is a GPS fix in decimal degrees
type Location struct {
	Lat float32
	Lon float32
}

// Metadata is what the extractor reads from an image container
type Metadata struct {
	// Orientation is 0 when EXIF is unreadable, otherwise 1..8 (1 when the tag is missing)
	Orientation uint32
	// Location is nil unless both latitude and longitude were present
	Location *Location
	// CapturedAt is the formatted capture time, nil when absent or malformed
	CapturedAt *string
}

// MediaItem is a file picked by the selector.
// Only photos carry orientation, location and capture time.
type MediaItem struct {
	Kind        MediaKind
	Path        string
	Orientation uint32
	Location    *Location
	CapturedAt  *string
}

// ColorModelNRGBA is 8-bit non-premultiplied RGBA, 4 bytes per pixel
const ColorModelNRGBA = "nrgba"

// NormalizedFrame is an upright, fully decoded pixel buffer.
// The buffer is owned by whoever holds the frame; it is never shared between goroutines.
type NormalizedFrame struct {
	Pix        []byte
	Width      int
	Height     int
	Stride     int
	ColorModel string
	HasAlpha   bool
}

// Valid reports whether the frame has positive geometry and enough pixels to back it
func (f *NormalizedFrame) Valid() bool {
	if f == nil || f.Width <= 0 || f.Height <= 0 || f.Stride < f.Width*4 {
		return false
	}
	return len(f.Pix) >= f.Stride*(f.Height-1)+f.Width*4
}

// Image rebuilds a drawable image on top of the frame buffer.
// It must only be called by the goroutine that owns the frame.
func (f *NormalizedFrame) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    f.Pix,
		Stride: f.Stride,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// Message is a unit of work handed from the pipeline worker to the presentation consumer.
// It is either a *PhotoReady or a *VideoReady.
type Message interface {
	MessageID() string
}

// PhotoReady carries a decoded photo and its caption data
type PhotoReady struct {
	ID    string
	Item  MediaItem
	Frame *NormalizedFrame
	// Address is the reverse geocoded place name, valid when AddressErr is nil
	Address    string
	AddressErr error
}

// MessageID returns the correlation id of the message
func (m *PhotoReady) MessageID() string { return m.ID }

// VideoReady carries a video path for the presentation layer to play
type VideoReady struct {
	ID   string
	Item MediaItem
}

// MessageID returns the correlation id of the message
func (m *VideoReady) MessageID() string { return m.ID }

// ControlNotification is an inbound publish on the control channel
type ControlNotification struct {
	Topic   string
	Payload []byte
}

// ScreenResolution holds the display dimensions
type ScreenResolution struct {
	Width  int
	Height int
}
