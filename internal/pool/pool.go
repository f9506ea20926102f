// Package pool provides thread-safe pools of reusable per-entity buffers.
// The RK4 integrator draws its k-stage staging maps from here so a step does
// not allocate; other transient per-entity scratch can share the mechanism.
package pool

import (
	"errors"
	"log"
	"sync"

	"github.com/san-kum/physim/internal/ecs"
)

var ErrInvalidConfig = errors.New("pool: invalid configuration")

// Warnf receives pool resize notices when logging is enabled. Overridable.
var Warnf = log.Printf

// Config sizes a pool. The zero value is invalid; use DefaultConfig.
type Config struct {
	// InitialCapacity is the map capacity hint for freshly allocated buffers.
	InitialCapacity int
	// MaxPoolSize caps how many idle buffers the pool retains; surplus
	// buffers are released on return.
	MaxPoolSize int
	// GrowthFactor reserved for capacity expansion policies; must be >= 1.
	GrowthFactor float64
	// LogResize emits a notice whenever the pool allocates a new buffer.
	LogResize bool
}

func DefaultConfig() Config {
	return Config{InitialCapacity: 64, MaxPoolSize: 8, GrowthFactor: 2.0}
}

func (c Config) Validate() error {
	if c.InitialCapacity < 0 || c.MaxPoolSize <= 0 {
		return ErrInvalidConfig
	}
	if c.GrowthFactor < 1.0 {
		return ErrInvalidConfig
	}
	return nil
}

// Stats is a snapshot of pool behavior for tuning.
type Stats struct {
	Hits     int
	Misses   int
	Resizes  int
	PoolSize int
	PeakSize int
}

// HitRate returns the percentage of acquisitions served from the pool.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Pool hands out cleared map[Entity]V buffers and takes them back through
// guards. Serialized by an internal mutex; acquisitions are few per step so
// contention stays low.
type Pool[V any] struct {
	mu      sync.Mutex
	buffers []map[ecs.Entity]V
	cfg     Config
	stats   Stats
}

func New[V any]() (*Pool[V], error) {
	return NewWithConfig[V](DefaultConfig())
}

func NewWithConfig[V any](cfg Config) (*Pool[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pool[V]{cfg: cfg}, nil
}

// Acquire returns a guard over a cleared buffer. Release the guard to return
// the buffer; contents are undefined between acquisitions.
func (p *Pool[V]) Acquire() *Guard[V] {
	p.mu.Lock()
	var buf map[ecs.Entity]V
	if n := len(p.buffers); n > 0 {
		buf = p.buffers[n-1]
		p.buffers = p.buffers[:n-1]
		clear(buf)
		p.stats.Hits++
	} else {
		buf = make(map[ecs.Entity]V, p.cfg.InitialCapacity)
		p.stats.Misses++
		p.stats.Resizes++
		if p.cfg.LogResize {
			Warnf("pool: allocating new buffer (hit rate %.1f%%)", p.stats.HitRate())
		}
	}
	p.stats.PoolSize = len(p.buffers)
	p.mu.Unlock()
	return &Guard[V]{pool: p, Buf: buf}
}

func (p *Pool[V]) release(buf map[ecs.Entity]V) {
	p.mu.Lock()
	if len(p.buffers) < p.cfg.MaxPoolSize {
		p.buffers = append(p.buffers, buf)
		p.stats.PoolSize = len(p.buffers)
		if p.stats.PoolSize > p.stats.PeakSize {
			p.stats.PeakSize = p.stats.PoolSize
		}
	}
	// At capacity the buffer is dropped for the GC.
	p.mu.Unlock()
}

func (p *Pool[V]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Pool[V]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buffers)
}

// Clear drops all retained buffers.
func (p *Pool[V]) Clear() {
	p.mu.Lock()
	p.buffers = nil
	p.stats.PoolSize = 0
	p.mu.Unlock()
}

// Guard scopes a borrowed buffer. Release returns it to the pool; releasing
// twice is a no-op.
type Guard[V any] struct {
	pool *Pool[V]
	Buf  map[ecs.Entity]V
}

func (g *Guard[V]) Release() {
	if g.Buf == nil {
		return
	}
	g.pool.release(g.Buf)
	g.Buf = nil
}
