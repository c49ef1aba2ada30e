// Package state is the core API for the node. It guards the chain for
// concurrent callers and keeps storage, the digest cache and metrics in
// step with it.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/quartzledger/quartz/foundation/blockchain/block"
	"github.com/quartzledger/quartz/foundation/blockchain/chain"
	"github.com/quartzledger/quartz/foundation/blockchain/digest"
	"github.com/quartzledger/quartz/foundation/blockchain/storage"
)

// defaultCacheSize is used when the config doesn't set one.
const defaultCacheSize = 128

// =============================================================================

// Config represents the configuration required to start the node state.
type Config struct {
	Storage     storage.Storage
	EvHandler   block.EventHandler
	MaxAttempts uint64
	CacheSize   int
	Registerer  prometheus.Registerer
}

// State manages the chain and everything derived from it.
type State struct {
	mu sync.RWMutex

	evHandler   block.EventHandler
	maxAttempts uint64
	chain       *chain.Chain
	storage     storage.Storage
	cache       *lru.Cache[digest.Digest, block.Block]
	metrics     *metrics
}

// New constructs the node state. Blocks found in storage are loaded and must
// form a valid chain. When storage is empty a new genesis block is mined
// and written.
func New(ctx context.Context, cfg Config) (*State, error) {
	if cfg.Storage == nil {
		return nil, errors.New("state: storage is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}

	cache, err := lru.New[digest.Digest, block.Block](size)
	if err != nil {
		return nil, fmt.Errorf("constructing digest cache: %w", err)
	}

	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m, err := newMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	chainCfg := chain.Config{
		MaxAttempts: cfg.MaxAttempts,
		EvHandler:   ev,
	}

	// Load all existing blocks from storage into memory for processing.
	blocks, err := storage.ReadAll(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("reading storage: %w", err)
	}

	var c *chain.Chain
	switch len(blocks) {
	case 0:
		ev("state: New: storage is empty: mining genesis")

		c, err = chain.New(ctx, chainCfg)
		if err != nil {
			return nil, err
		}

		if err := cfg.Storage.Write(storage.NewBlockData(c.Genesis())); err != nil {
			return nil, fmt.Errorf("writing genesis: %w", err)
		}

	default:
		ev("state: New: loaded blocks[%d] from storage", len(blocks))

		c, err = chain.FromBlocks(blocks, chainCfg)
		if err != nil {
			return nil, err
		}

		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("stored chain is invalid: %w", err)
		}
	}

	for _, b := range c.Blocks() {
		cache.Add(b.Digest, b)
	}
	m.chainLength.Set(float64(c.Len()))

	s := State{
		evHandler:   ev,
		maxAttempts: cfg.MaxAttempts,
		chain:       c,
		storage:     cfg.Storage,
		cache:       cache,
		metrics:     m,
	}

	return &s, nil
}

// Shutdown releases the storage.
func (s *State) Shutdown() error {
	s.evHandler("state: Shutdown: started")
	defer s.evHandler("state: Shutdown: completed")

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storage.Close()
}
