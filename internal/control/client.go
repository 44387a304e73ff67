package control

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/genricoloni/photoframe/internal/domain"
	"github.com/genricoloni/photoframe/internal/metrics"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=mocks/control_mock.go -package=mocks github.com/genricoloni/photoframe/internal/domain ControlConn,ControlDialer,PlaybackControl,Backlight

// ErrGaveUp is returned by Run once the retry budget is exhausted.
// The client stays down for the rest of the process lifetime.
var ErrGaveUp = errors.New("control channel gave up reconnecting")

// State is the observable phase of the reconnect state machine
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateSubscribed State = "subscribed"
	StatePolling    State = "polling"
	StateBackoff    State = "backoff"
	StateGaveUp     State = "gave_up"
)

var allStates = []State{StateIdle, StateConnecting, StateSubscribed, StatePolling, StateBackoff, StateGaveUp}

// PowerOnPayload is the only payload that resumes playback
const PowerOnPayload = "1"

// DefaultBacklightTimeout bounds one backlight switch
const DefaultBacklightTimeout = 10 * time.Second

// Client keeps a subscription to the control topic alive and applies notifications
// to the shared pause flag and the display backlight.
type Client struct {
	logger    *zap.Logger
	dialer    domain.ControlDialer
	topic     string
	playback  domain.PlaybackControl
	backlight domain.Backlight
	backoff   *Backoff
	sleep     func(ctx context.Context, d time.Duration) error
	events    chan bool

	backlightTimeout time.Duration

	mu      sync.RWMutex
	state   State
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewClient creates an idle client; backoff may be nil for the default policy
func NewClient(
	logger *zap.Logger,
	dialer domain.ControlDialer,
	topic string,
	playback domain.PlaybackControl,
	backlight domain.Backlight,
	backoff *Backoff,
) *Client {
	if backoff == nil {
		backoff = NewBackoff(nil)
	}
	c := &Client{
		logger:    logger,
		dialer:    dialer,
		topic:     topic,
		playback:  playback,
		backlight: backlight,
		backoff:   backoff,
		sleep:     sleepContext,
		events:    make(chan bool, 1),
		state:     StateIdle,

		backlightTimeout: DefaultBacklightTimeout,
	}
	c.publishState(StateIdle)
	return c
}

// Start runs the state machine on its own goroutine and returns immediately
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}
	c.running = true

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Error("Control channel stopped", zap.Error(err))
		}
	}()

	c.logger.Info("Control channel client started", zap.String("topic", c.topic))
	return nil
}

// Stop cancels the state machine and waits for it to exit
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()
	close(c.events)

	c.logger.Info("Control channel client stopped")
	return nil
}

// PauseEvents emits the pause flag after each applied notification.
// Only the latest value is kept when the reader falls behind.
func (c *Client) PauseEvents() <-chan bool {
	return c.events
}

// State returns the current phase
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Run drives connect, subscribe, poll and backoff until ctx ends or the retry budget runs out
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay, ok := c.backoff.Next()
		if !ok {
			c.setState(StateGaveUp)
			c.logger.Error("Control channel retry budget exhausted, giving up",
				zap.Int("retries", c.backoff.Retries()-1),
				zap.Error(err))
			return ErrGaveUp
		}

		c.setState(StateBackoff)
		metrics.ControlReconnects.Inc()
		c.logger.Warn("Control channel error, reconnecting",
			zap.Int("retry", c.backoff.Retries()),
			zap.Duration("delay", delay),
			zap.Error(err))

		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// session runs one connection until it fails
func (c *Client) session(ctx context.Context) error {
	c.setState(StateConnecting)

	conn, err := c.dialer.Dial(ctx)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Disconnect()

	if err := conn.Subscribe(ctx, c.topic); err != nil {
		return fmt.Errorf("subscribe failed: %w", err)
	}
	// a connection that subscribed counts as a successful poll
	c.backoff.Reset()
	c.setState(StateSubscribed)
	c.logger.Info("Subscribed to control topic", zap.String("topic", c.topic))

	c.setState(StatePolling)
	for {
		n, err := conn.Poll(ctx)
		if err != nil {
			return fmt.Errorf("poll failed: %w", err)
		}
		c.backoff.Reset()
		c.handle(ctx, n)
	}
}

// handle applies one notification; backlight failures never reach the state machine
func (c *Client) handle(ctx context.Context, n domain.ControlNotification) {
	if n.Topic != c.topic {
		c.logger.Debug("Ignoring notification on foreign topic", zap.String("topic", n.Topic))
		return
	}

	metrics.ControlNotifications.Inc()
	payload := string(n.Payload)
	on := payload == PowerOnPayload
	paused := !on

	c.logger.Info("Received control notification",
		zap.String("payload", payload),
		zap.Bool("paused", paused))

	c.switchBacklight(ctx, on)

	c.playback.SetPaused(paused)
	c.notify(paused)
}

func (c *Client) switchBacklight(ctx context.Context, on bool) {
	ctx, cancel := context.WithTimeout(ctx, c.backlightTimeout)
	defer cancel()

	if err := c.backlight.SetPower(ctx, on); err != nil {
		c.logger.Warn("Failed to switch backlight", zap.Bool("on", on), zap.Error(err))
	}
}

// notify keeps only the latest pause value in the buffer
func (c *Client) notify(paused bool) {
	select {
	case c.events <- paused:
		return
	default:
	}
	select {
	case <-c.events:
	default:
	}
	select {
	case c.events <- paused:
	default:
	}
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.publishState(s)
}

func (c *Client) publishState(s State) {
	for _, st := range allStates {
		v := 0.0
		if st == s {
			v = 1
		}
		metrics.ControlState.WithLabelValues(string(st)).Set(v)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
