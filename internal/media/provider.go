package media

import (
	"math/rand/v2"
	"sync"

	"github.com/genricoloni/photoframe/internal/domain"
	"github.com/genricoloni/photoframe/internal/metrics"
	"go.uber.org/zap"
)

// Provider owns selection, EXIF extraction and the shared pause flag.
// It is the only object mutated from more than one goroutine; every method takes mu.
type Provider struct {
	logger    *zap.Logger
	selector  *Selector
	extractor domain.MetadataExtractor
	roots     []string
	photoExts map[string]struct{}
	videoExts map[string]struct{}
	allExts   map[string]struct{}

	mu     sync.Mutex
	paused bool
	failed map[string]struct{} // files that failed to decode this run
}

// ProviderConfig lists the roots and extensions the provider selects from
type ProviderConfig struct {
	Roots           []string
	PhotoExtensions []string
	VideoExtensions []string
}

// NewProvider creates a provider; rng drives every random choice
func NewProvider(logger *zap.Logger, cfg ProviderConfig, extractor domain.MetadataExtractor, rng *rand.Rand) *Provider {
	p := &Provider{
		logger:    logger,
		extractor: extractor,
		roots:     append([]string(nil), cfg.Roots...),
		photoExts: ExtensionSet(cfg.PhotoExtensions),
		videoExts: ExtensionSet(cfg.VideoExtensions),
		allExts:   ExtensionSet(cfg.PhotoExtensions, cfg.VideoExtensions),
		failed:    make(map[string]struct{}),
	}
	// exclude runs inside GetMedia, mu is already held
	p.selector = NewSelector(logger, rng, func(path string) bool {
		_, bad := p.failed[path]
		return bad
	})
	return p
}

// GetMedia selects the next item. While paused it returns nil, nil without touching the disk.
// Selection failures are returned as errors and are retryable on the next tick.
func (p *Provider) GetMedia() (*domain.MediaItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		return nil, nil
	}

	path, err := p.selector.Select(p.roots, p.allExts)
	if err != nil {
		metrics.SelectionMisses.Inc()
		return nil, err
	}

	ext := Extension(path)
	if _, ok := p.photoExts[ext]; ok {
		meta := p.extractor.Extract(path)
		p.logger.Debug("Found a valid photo", zap.String("path", path))
		return &domain.MediaItem{
			Kind:        domain.KindPhoto,
			Path:        path,
			Orientation: meta.Orientation,
			Location:    meta.Location,
			CapturedAt:  meta.CapturedAt,
		}, nil
	}

	p.logger.Debug("Found a valid video", zap.String("path", path))
	return &domain.MediaItem{Kind: domain.KindVideo, Path: path}, nil
}

// MarkFailed keeps path out of future selections
func (p *Provider) MarkFailed(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[path] = struct{}{}
	p.logger.Info("File excluded from rotation", zap.String("path", path), zap.Int("excluded", len(p.failed)))
}

// SetPaused writes the shared pause flag; the last writer wins
func (p *Provider) SetPaused(paused bool) {
	p.mu.Lock()
	p.setPausedLocked(paused)
	p.mu.Unlock()

	p.logger.Info("Playback state changed", zap.Bool("paused", paused))
}

// setPausedLocked keeps the gauge in step with the flag; mu must be held
func (p *Provider) setPausedLocked(paused bool) {
	p.paused = paused
	if paused {
		metrics.Paused.Set(1)
	} else {
		metrics.Paused.Set(0)
	}
}

// Paused reads the shared pause flag
func (p *Provider) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// TogglePaused flips the pause flag and returns the new value
func (p *Provider) TogglePaused() bool {
	p.mu.Lock()
	paused := !p.paused
	p.setPausedLocked(paused)
	p.mu.Unlock()

	p.logger.Info("Playback toggled", zap.Bool("paused", paused))
	return paused
}
