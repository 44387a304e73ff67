package domain

import "context"

// MetadataExtractor reads orientation, GPS and capture time from an image file.
// Implementations never fail: unreadable metadata degrades to defaults.
type MetadataExtractor interface {
	Extract(path string) Metadata
}

// MediaSource hands out the next media item to show
type MediaSource interface {
	// GetMedia returns nil, nil when playback is paused
	GetMedia() (*MediaItem, error)

	// MarkFailed excludes a file that could not be decoded from future selections
	MarkFailed(path string)
}

// PlaybackControl is the shared pause flag.
// Both the control channel and local UI controls write through it.
type PlaybackControl interface {
	SetPaused(paused bool)
	Paused() bool
}

// FrameLoader decodes an image file into an upright frame
type FrameLoader interface {
	Load(path string, orientation uint32) (*NormalizedFrame, error)
}

// Geocoder maps a GPS fix to a human readable place name
type Geocoder interface {
	// ReverseGeocode performs one blocking lookup
	ReverseGeocode(ctx context.Context, lat, lon float32) (string, error)
}

// Backlight switches the physical display on or off
type Backlight interface {
	SetPower(ctx context.Context, on bool) error
}

// PresentationSink applies pipeline output to the screen.
// All methods are called from the consumer goroutine only and must not block.
type PresentationSink interface {
	OnPhotoReady(frame *NormalizedFrame, address string, addressErr error, capturedAt *string, path string)
	OnVideoReady(path string)
	OnPauseChanged(paused bool)
}

// ControlConn is one live connection to the publish/subscribe broker
type ControlConn interface {
	// Subscribe registers interest in a topic
	Subscribe(ctx context.Context, topic string) error

	// Poll blocks until the next inbound notification or a connection error
	Poll(ctx context.Context) (ControlNotification, error)

	// Disconnect tears the connection down; it is safe to call more than once
	Disconnect()
}

// ControlDialer opens control-channel connections
type ControlDialer interface {
	Dial(ctx context.Context) (ControlConn, error)
}
