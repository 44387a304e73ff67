package presentation

import (
	"context"
	"sync"

	"github.com/genricoloni/photoframe/internal/domain"
	"go.uber.org/zap"
)

// Consumer owns the presentation side: one goroutine drains the pipeline and the pause
// sources and calls the sink, so sinks never see concurrent calls.
type Consumer struct {
	logger   *zap.Logger
	sink     domain.PresentationSink
	messages <-chan domain.Message
	pauses   []<-chan bool

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewConsumer creates a consumer; nil pause sources are ignored
func NewConsumer(logger *zap.Logger, sink domain.PresentationSink, messages <-chan domain.Message, pauses ...<-chan bool) *Consumer {
	var sources []<-chan bool
	for _, p := range pauses {
		if p != nil {
			sources = append(sources, p)
		}
	}
	return &Consumer{
		logger:   logger,
		sink:     sink,
		messages: messages,
		pauses:   sources,
	}
}

// Start launches the consumer goroutine
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}
	c.running = true

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	// merged pause events only ever reach the sink from the consumer goroutine
	merged := make(chan bool)
	for _, src := range c.pauses {
		c.wg.Add(1)
		go c.forward(runCtx, src, merged)
	}

	c.wg.Add(1)
	go c.run(runCtx, merged)

	c.logger.Info("Presentation consumer started", zap.Int("pauseSources", len(c.pauses)))
	return nil
}

// Stop ends the consumer; messages still queued are discarded
func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()
	c.logger.Info("Presentation consumer stopped")
	return nil
}

func (c *Consumer) forward(ctx context.Context, src <-chan bool, dst chan<- bool) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-src:
			if !ok {
				return
			}
			select {
			case dst <- v:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (c *Consumer) run(ctx context.Context, pauses <-chan bool) {
	defer c.wg.Done()

	messages := c.messages
	for {
		select {
		case <-ctx.Done():
			return
		case paused := <-pauses:
			c.sink.OnPauseChanged(paused)
		case msg, ok := <-messages:
			if !ok {
				c.logger.Info("Pipeline channel closed")
				messages = nil
				continue
			}
			c.dispatch(msg)
		}
	}
}

func (c *Consumer) dispatch(msg domain.Message) {
	switch m := msg.(type) {
	case *domain.PhotoReady:
		c.logger.Debug("Presenting photo", zap.String("id", m.ID), zap.String("path", m.Item.Path))
		c.sink.OnPhotoReady(m.Frame, m.Address, m.AddressErr, m.Item.CapturedAt, m.Item.Path)
	case *domain.VideoReady:
		c.logger.Debug("Presenting video", zap.String("id", m.ID), zap.String("path", m.Item.Path))
		c.sink.OnVideoReady(m.Item.Path)
	default:
		c.logger.Warn("Unknown pipeline message", zap.String("id", msg.MessageID()))
	}
}
