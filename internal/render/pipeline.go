package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/talgya/hexworks/internal/cell"
)

// Pipeline caches rendered assets and fills misses asynchronously.
type Pipeline struct {
	cache *lru.Cache[cell.State, Asset]
	queue chan cell.State

	mu      sync.Mutex
	pending map[cell.State]struct{}
}

// NewPipeline creates a pipeline holding at most size assets, with room for
// queue outstanding requests.
func NewPipeline(size, queue int) (*Pipeline, error) {
	cache, err := lru.New[cell.State, Asset](size)
	if err != nil {
		return nil, fmt.Errorf("asset cache: %w", err)
	}
	return &Pipeline{
		cache:   cache,
		queue:   make(chan cell.State, queue),
		pending: make(map[cell.State]struct{}),
	}, nil
}

// Request returns the cached asset for s. On a miss it returns a placeholder
// and schedules s for rendering; it never blocks.
func (p *Pipeline) Request(s cell.State) (Asset, bool) {
	if a, ok := p.cache.Get(s); ok {
		return a, true
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.pending[s]; !ok {
		select {
		case p.queue <- s:
			p.pending[s] = struct{}{}
		default:
			// Queue full; a later request will retry.
		}
	}
	return Placeholder(s), false
}

// Len returns the number of cached assets.
func (p *Pipeline) Len() int { return p.cache.Len() }

// Run renders queued states until ctx is done.
func (p *Pipeline) Run(ctx context.Context) {
	slog.Debug("render pipeline started")
	for {
		select {
		case <-ctx.Done():
			slog.Debug("render pipeline stopped", "cached", p.cache.Len())
			return
		case s := <-p.queue:
			p.cache.Add(s, Render(s))
			p.mu.Lock()
			delete(p.pending, s)
			p.mu.Unlock()
		}
	}
}
