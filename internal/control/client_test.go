package control

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/genricoloni/photoframe/internal/control/mocks"
	"github.com/genricoloni/photoframe/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const testTopic = "home/frame/power"

type recordedSleep struct {
	delays []time.Duration
	// stopAfter cancels the run once this many sleeps were recorded, zero never cancels
	stopAfter int
	cancel    context.CancelFunc
}

func (r *recordedSleep) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	if r.stopAfter > 0 && len(r.delays) >= r.stopAfter {
		r.cancel()
		return ctx.Err()
	}
	return nil
}

func newTestClient(ctrl *gomock.Controller) (*Client, *mocks.MockControlDialer, *mocks.MockPlaybackControl, *mocks.MockBacklight) {
	dialer := mocks.NewMockControlDialer(ctrl)
	playback := mocks.NewMockPlaybackControl(ctrl)
	backlight := mocks.NewMockBacklight(ctrl)
	c := NewClient(zap.NewNop(), dialer, testTopic, playback, backlight, NewBackoff(nil))
	return c, dialer, playback, backlight
}

func TestClient_GivesUpAfterRetryBudget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, dialer, _, _ := newTestClient(ctrl)
	dialer.EXPECT().Dial(gomock.Any()).Return(nil, errors.New("connection refused")).Times(DefaultMaxRetries + 1)

	rec := &recordedSleep{}
	c.sleep = rec.sleep

	err := c.Run(context.Background())

	require.ErrorIs(t, err, ErrGaveUp)
	assert.Equal(t, StateGaveUp, c.State())
	require.Len(t, rec.delays, DefaultMaxRetries)
	assert.Equal(t, time.Second, rec.delays[0])
	assert.Equal(t, 2*time.Second, rec.delays[1])
	assert.Equal(t, 60*time.Second, rec.delays[DefaultMaxRetries-1])
}

func TestClient_AppliesNotifications(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, dialer, playback, backlight := newTestClient(ctrl)
	conn := mocks.NewMockControlConn(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recordedSleep{stopAfter: 1, cancel: cancel}
	c.sleep = rec.sleep

	gomock.InOrder(
		dialer.EXPECT().Dial(gomock.Any()).Return(conn, nil),
		conn.EXPECT().Subscribe(gomock.Any(), testTopic).Return(nil),

		conn.EXPECT().Poll(gomock.Any()).Return(domain.ControlNotification{Topic: testTopic, Payload: []byte("0")}, nil),
		backlight.EXPECT().SetPower(gomock.Any(), false).Return(nil),
		playback.EXPECT().SetPaused(true),

		conn.EXPECT().Poll(gomock.Any()).Return(domain.ControlNotification{Topic: "other/topic", Payload: []byte("1")}, nil),

		conn.EXPECT().Poll(gomock.Any()).Return(domain.ControlNotification{Topic: testTopic, Payload: []byte("1")}, nil),
		backlight.EXPECT().SetPower(gomock.Any(), true).Return(errors.New("sudo: a password is required")),
		playback.EXPECT().SetPaused(false),

		conn.EXPECT().Poll(gomock.Any()).Return(domain.ControlNotification{Topic: testTopic, Payload: []byte("on")}, nil),
		backlight.EXPECT().SetPower(gomock.Any(), false).Return(nil),
		playback.EXPECT().SetPaused(true),

		conn.EXPECT().Poll(gomock.Any()).Return(domain.ControlNotification{}, errors.New("connection reset by peer")),
		conn.EXPECT().Disconnect(),
	)

	err := c.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// backlight failure did not count as a channel error
	assert.Equal(t, []time.Duration{time.Second}, rec.delays)

	select {
	case paused := <-c.PauseEvents():
		assert.True(t, paused, "only the latest pause value is kept")
	default:
		t.Fatal("expected a pause event")
	}
}

func TestClient_SuccessfulPollResetsRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, dialer, playback, backlight := newTestClient(ctrl)
	conn := mocks.NewMockControlConn(ctrl)
	backlight.EXPECT().SetPower(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	playback.EXPECT().SetPaused(gomock.Any()).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recordedSleep{stopAfter: 5, cancel: cancel}
	c.sleep = rec.sleep

	refused := errors.New("connection refused")
	gomock.InOrder(
		dialer.EXPECT().Dial(gomock.Any()).Return(nil, refused).Times(3),
		dialer.EXPECT().Dial(gomock.Any()).Return(conn, nil),
		conn.EXPECT().Subscribe(gomock.Any(), testTopic).Return(nil),
		conn.EXPECT().Poll(gomock.Any()).Return(domain.ControlNotification{Topic: testTopic, Payload: []byte("1")}, nil),
		conn.EXPECT().Poll(gomock.Any()).Return(domain.ControlNotification{}, errors.New("keepalive timeout")),
		conn.EXPECT().Disconnect(),
		dialer.EXPECT().Dial(gomock.Any()).Return(nil, refused),
	)

	err := c.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	want := []time.Duration{1, 2, 4, 1, 2}
	require.Len(t, rec.delays, len(want))
	for i, w := range want {
		assert.Equal(t, w*time.Second, rec.delays[i], "delay %d", i)
	}
}

func TestClient_SubscribedSessionResetsRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, dialer, _, _ := newTestClient(ctrl)
	conn := mocks.NewMockControlConn(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recordedSleep{stopAfter: 4, cancel: cancel}
	c.sleep = rec.sleep

	// the broker accepts every connection and drops it before any message
	dialer.EXPECT().Dial(gomock.Any()).Return(conn, nil).Times(4)
	conn.EXPECT().Subscribe(gomock.Any(), testTopic).Return(nil).Times(4)
	conn.EXPECT().Poll(gomock.Any()).Return(domain.ControlNotification{}, errors.New("connection lost")).Times(4)
	conn.EXPECT().Disconnect().Times(4)

	err := c.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second, time.Second}, rec.delays)
	assert.Equal(t, 1, c.backoff.Retries())
}

func TestClient_HungBacklightTimesOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, dialer, playback, backlight := newTestClient(ctrl)
	c.backlightTimeout = 20 * time.Millisecond
	conn := mocks.NewMockControlConn(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recordedSleep{stopAfter: 1, cancel: cancel}
	c.sleep = rec.sleep

	gomock.InOrder(
		dialer.EXPECT().Dial(gomock.Any()).Return(conn, nil),
		conn.EXPECT().Subscribe(gomock.Any(), testTopic).Return(nil),
		conn.EXPECT().Poll(gomock.Any()).Return(domain.ControlNotification{Topic: testTopic, Payload: []byte("0")}, nil),
		backlight.EXPECT().SetPower(gomock.Any(), false).DoAndReturn(func(ctx context.Context, _ bool) error {
			<-ctx.Done()
			return ctx.Err()
		}),
		playback.EXPECT().SetPaused(true),
		conn.EXPECT().Poll(gomock.Any()).Return(domain.ControlNotification{}, errors.New("connection reset by peer")),
		conn.EXPECT().Disconnect(),
	)

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("a hung backlight blocked the control loop")
	}
	assert.True(t, <-c.PauseEvents())
}

func TestClient_SubscribeFailureReconnects(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, dialer, _, _ := newTestClient(ctrl)
	conn := mocks.NewMockControlConn(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recordedSleep{stopAfter: 1, cancel: cancel}
	c.sleep = rec.sleep

	gomock.InOrder(
		dialer.EXPECT().Dial(gomock.Any()).Return(conn, nil),
		conn.EXPECT().Subscribe(gomock.Any(), testTopic).Return(errors.New("not authorized")),
		conn.EXPECT().Disconnect(),
	)

	err := c.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateBackoff, c.State())
}

func TestClient_StartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, dialer, _, _ := newTestClient(ctrl)
	dialing := make(chan struct{})
	dialer.EXPECT().Dial(gomock.Any()).DoAndReturn(func(ctx context.Context) (domain.ControlConn, error) {
		close(dialing)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	assert.Equal(t, StateIdle, c.State())
	require.NoError(t, c.Start(context.Background()))

	select {
	case <-dialing:
	case <-time.After(2 * time.Second):
		t.Fatal("client never dialed")
	}
	assert.Equal(t, StateConnecting, c.State())

	require.NoError(t, c.Stop(context.Background()))
	require.NoError(t, c.Stop(context.Background()))

	_, open := <-c.PauseEvents()
	assert.False(t, open, "pause events are closed on stop")
}

func TestClient_NotifyKeepsLatest(t *testing.T) {
	c := NewClient(zap.NewNop(), nil, testTopic, nil, nil, nil)

	c.notify(true)
	c.notify(false)
	c.notify(true)
	c.notify(false)

	assert.False(t, <-c.PauseEvents())
	select {
	case v := <-c.PauseEvents():
		t.Fatalf("unexpected extra event %v", v)
	default:
	}
}
