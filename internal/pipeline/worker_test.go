package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/genricoloni/photoframe/internal/domain"
	"github.com/genricoloni/photoframe/internal/geocoder"
	"github.com/genricoloni/photoframe/internal/media"
	"github.com/genricoloni/photoframe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	mu     sync.Mutex
	item   *domain.MediaItem
	err    error
	failed []string
	calls  int
}

func (s *fakeSource) GetMedia() (*domain.MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.item == nil {
		return nil, s.err
	}
	item := *s.item
	return &item, s.err
}

func (s *fakeSource) MarkFailed(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, path)
}

type fakeLoader struct {
	frame *domain.NormalizedFrame
	err   error
}

func (l *fakeLoader) Load(string, uint32) (*domain.NormalizedFrame, error) {
	if l.err != nil {
		return nil, l.err
	}
	// a fresh buffer per call, frames are never shared
	f := *l.frame
	f.Pix = append([]byte(nil), l.frame.Pix...)
	return &f, nil
}

type fakeGeocoder struct {
	place string
	err   error
	calls int
}

func (g *fakeGeocoder) ReverseGeocode(context.Context, float32, float32) (string, error) {
	g.calls++
	return g.place, g.err
}

func smallFrame() *domain.NormalizedFrame {
	return &domain.NormalizedFrame{Pix: make([]byte, 16), Width: 2, Height: 2, Stride: 8, ColorModel: domain.ColorModelNRGBA}
}

func photoItem(loc *domain.Location) *domain.MediaItem {
	when := "2023-08-14 17:05:09"
	return &domain.MediaItem{Kind: domain.KindPhoto, Path: "/photos/a.jpg", Orientation: 1, Location: loc, CapturedAt: &when}
}

func TestWorker_Cycle(t *testing.T) {
	cluj := &domain.Location{Lat: 46.77, Lon: 23.59}
	geoErr := errors.New("network error: connection refused")

	tests := []struct {
		name            string
		item            *domain.MediaItem
		sourceErr       error
		loaderErr       error
		reverseGeocode  bool
		geocoder        *fakeGeocoder
		expectMessage   bool
		expectAddress   string
		expectAddrErr   error
		expectGeoCalls  int
		expectMarkedBad bool
	}{
		{
			name:           "Photo with address",
			item:           photoItem(cluj),
			reverseGeocode: true,
			geocoder:       &fakeGeocoder{place: "Cluj-Napoca"},
			expectMessage:  true,
			expectAddress:  "Cluj-Napoca",
			expectGeoCalls: 1,
		},
		{
			name:           "Geocoding disabled",
			item:           photoItem(cluj),
			geocoder:       &fakeGeocoder{place: "Cluj-Napoca"},
			expectMessage:  true,
			expectAddrErr:  ErrAddressNotSet,
			expectGeoCalls: 0,
		},
		{
			name:           "Photo without location",
			item:           photoItem(nil),
			reverseGeocode: true,
			geocoder:       &fakeGeocoder{place: "Cluj-Napoca"},
			expectMessage:  true,
			expectAddrErr:  ErrAddressNotSet,
			expectGeoCalls: 0,
		},
		{
			name:           "Empty geocode result",
			item:           photoItem(cluj),
			reverseGeocode: true,
			geocoder:       &fakeGeocoder{err: geocoder.ErrEmptyResponse},
			expectMessage:  true,
			expectAddrErr:  geocoder.ErrEmptyResponse,
			expectGeoCalls: 1,
		},
		{
			name:           "Geocode transport failure",
			item:           photoItem(cluj),
			reverseGeocode: true,
			geocoder:       &fakeGeocoder{err: geoErr},
			expectMessage:  true,
			expectAddrErr:  geoErr,
			expectGeoCalls: 1,
		},
		{
			name:            "Decode failure excludes the file",
			item:            photoItem(nil),
			loaderErr:       media.ErrCorruptImage,
			geocoder:        &fakeGeocoder{},
			expectMarkedBad: true,
		},
		{
			name:      "Paused",
			geocoder:  &fakeGeocoder{},
			sourceErr: nil,
		},
		{
			name:      "Selection exhausted",
			sourceErr: media.ErrNotFound,
			geocoder:  &fakeGeocoder{},
		},
		{
			name:          "Video",
			item:          &domain.MediaItem{Kind: domain.KindVideo, Path: "/videos/clip.mp4"},
			geocoder:      &fakeGeocoder{},
			expectMessage: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{item: tt.item, err: tt.sourceErr}
			loader := &fakeLoader{frame: smallFrame(), err: tt.loaderErr}
			w := NewWorker(zap.NewNop(), Config{Interval: time.Hour, ReverseGeocode: tt.reverseGeocode}, source, loader, tt.geocoder)

			w.cycle(context.Background())

			assert.Equal(t, tt.expectGeoCalls, tt.geocoder.calls)
			if tt.expectMarkedBad {
				assert.Equal(t, []string{tt.item.Path}, source.failed)
			} else {
				assert.Empty(t, source.failed)
			}

			if !tt.expectMessage {
				assert.Len(t, w.out, 0)
				return
			}
			require.Len(t, w.out, 1)
			msg := <-w.out
			assert.NotEmpty(t, msg.MessageID())

			if tt.item.Kind == domain.KindVideo {
				video, ok := msg.(*domain.VideoReady)
				require.True(t, ok, "expected *VideoReady, got %T", msg)
				assert.Equal(t, tt.item.Path, video.Item.Path)
				return
			}

			photo, ok := msg.(*domain.PhotoReady)
			require.True(t, ok, "expected *PhotoReady, got %T", msg)
			assert.True(t, photo.Frame.Valid())
			assert.Equal(t, tt.expectAddress, photo.Address)
			if tt.expectAddrErr != nil {
				assert.ErrorIs(t, photo.AddressErr, tt.expectAddrErr)
			} else {
				assert.NoError(t, photo.AddressErr)
			}
		})
	}
}

func TestWorker_InvalidFrameIsDiscarded(t *testing.T) {
	source := &fakeSource{item: photoItem(nil)}
	loader := &fakeLoader{frame: &domain.NormalizedFrame{Width: 0, Height: 4}}
	w := NewWorker(zap.NewNop(), Config{Interval: time.Hour}, source, loader, nil)

	w.cycle(context.Background())

	assert.Len(t, w.out, 0)
	assert.Equal(t, []string{"/photos/a.jpg"}, source.failed)
}

func TestWorker_FullQueueDrops(t *testing.T) {
	source := &fakeSource{item: photoItem(nil)}
	w := NewWorker(zap.NewNop(), Config{Interval: time.Hour, QueueSize: 1}, source, &fakeLoader{frame: smallFrame()}, nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			w.cycle(context.Background())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle blocked on a full queue")
	}
	assert.Len(t, w.out, 1)
}

func TestWorker_UniqueIDs(t *testing.T) {
	source := &fakeSource{item: &domain.MediaItem{Kind: domain.KindVideo, Path: "/v.mp4"}}
	w := NewWorker(zap.NewNop(), Config{Interval: time.Hour, QueueSize: 2}, source, nil, nil)

	w.cycle(context.Background())
	w.cycle(context.Background())

	first, second := <-w.out, <-w.out
	assert.NotEqual(t, first.MessageID(), second.MessageID())
}

func TestWorker_StartStop(t *testing.T) {
	source := &fakeSource{item: &domain.MediaItem{Kind: domain.KindVideo, Path: "/v.mp4"}}
	w := NewWorker(zap.NewNop(), Config{Interval: 10 * time.Millisecond}, source, nil, nil)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()), "second Start is a no-op")

	select {
	case msg := <-w.Messages():
		assert.IsType(t, &domain.VideoReady{}, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no message produced")
	}

	require.NoError(t, w.Stop(context.Background()))
	require.NoError(t, w.Stop(context.Background()), "second Stop is a no-op")

	// drain, the channel must be closed
	for range w.Messages() {
	}
}

func TestWorker_KeepsRunningAfterErrors(t *testing.T) {
	source := &fakeSource{err: media.ErrNotFound}
	w := NewWorker(zap.NewNop(), Config{Interval: 5 * time.Millisecond}, source, nil, nil)

	require.NoError(t, w.Start(context.Background()))
	require.Eventually(t, func() bool {
		source.mu.Lock()
		defer source.mu.Unlock()
		return source.calls >= 3
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, w.Stop(context.Background()))
}

// TestWorker_RotatedPhotoWithAddress runs the real provider, loader and geocoder against
// one photo with orientation 6, GPS and a capture time.
func TestWorker_RotatedPhotoWithAddress(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a full two second cycle")
	}

	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	root := t.TempDir()
	testutil.WriteFile(t, root, "cluj.jpg", testutil.JPEG(64, 32, testutil.HalvesLeftRight(64, red, blue), &testutil.EXIF{
		Orientation: 6,
		DateTime:    "2023:08:14 17:05:09",
		Latitude:    testutil.DMS(46, 46, 12),
		Longitude:   testutil.DMS(23, 35, 24),
	}))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"features":[{"place_name":"Cluj-Napoca"}]}`)
	}))
	defer server.Close()

	logger := zap.NewNop()
	provider := media.NewProvider(logger, media.ProviderConfig{
		Roots:           []string{root},
		PhotoExtensions: []string{"jpg"},
	}, media.NewExtractor(logger), rand.New(rand.NewPCG(1, 2)))
	geo := geocoder.NewMapboxGeocoder(logger, server.URL+"/{lon},{lat}.json?access_token={token}", "ro", "pk.test")

	w := NewWorker(logger, Config{Interval: 2 * time.Second, ReverseGeocode: true}, provider, media.NewFrameLoader(logger, nil), geo)
	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop(context.Background()) }()

	var msg domain.Message
	select {
	case msg = <-w.Messages():
	case <-time.After(5 * time.Second):
		t.Fatal("no message within one cycle")
	}

	photo, ok := msg.(*domain.PhotoReady)
	require.True(t, ok, "expected *PhotoReady, got %T", msg)

	require.NoError(t, photo.AddressErr)
	assert.Equal(t, "Cluj-Napoca", photo.Address)
	require.NotNil(t, photo.Item.CapturedAt)
	assert.Equal(t, "2023-08-14 17:05:09", *photo.Item.CapturedAt)

	// rotated clockwise: the left (red) half of the source is now on top
	require.Equal(t, 32, photo.Frame.Width)
	require.Equal(t, 64, photo.Frame.Height)
	img := photo.Frame.Image()
	top, bottom := img.NRGBAAt(16, 8), img.NRGBAAt(16, 56)
	assert.True(t, top.R > 200 && top.B < 60, "top should be red, got %v", top)
	assert.True(t, bottom.B > 200 && bottom.R < 60, "bottom should be blue, got %v", bottom)
}
