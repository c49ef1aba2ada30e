package state

import (
	"github.com/quartzledger/quartz/foundation/blockchain/block"
	"github.com/quartzledger/quartz/foundation/blockchain/digest"
)

// Blocks returns a copy of the chain's blocks.
func (s *State) Blocks() []block.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.Blocks()
}

// Tip returns the latest block.
func (s *State) Tip() block.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.Tip()
}

// Len returns the number of blocks in the chain.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.Len()
}

// Validate checks the whole chain.
func (s *State) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.Validate()
}

// BlockByDigest locates the block with the specified digest.
func (s *State) BlockByDigest(d digest.Digest) (block.Block, bool) {
	if b, ok := s.cache.Get(d); ok {
		s.metrics.cacheHits.Inc()
		return b, true
	}
	s.metrics.cacheMisses.Inc()

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := s.chain.Len() - 1; i >= 0; i-- {
		b, _ := s.chain.Block(i)
		if b.Digest == d {
			s.cache.Add(d, b)
			return b, true
		}
	}

	return block.Block{}, false
}
