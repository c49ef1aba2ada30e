package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/quartzledger/quartz/foundation/blockchain/block"
	"github.com/quartzledger/quartz/foundation/blockchain/storage"
)

// MineNewBlock derives a payload with the data from the current tip, mines
// it and adds the result to the chain. The lock is not held while mining, so
// if another block lands first this one fails validation and is rejected.
func (s *State) MineNewBlock(ctx context.Context, data string) (block.Block, error) {
	s.mu.RLock()
	p := s.chain.DeriveNext(data)
	s.mu.RUnlock()

	s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d]", p.ID)

	b, err := block.Mine(ctx, p, s.maxAttempts, s.evHandler)
	if err != nil {
		if errors.Is(err, block.ErrNotSolved) {
			s.metrics.attempts.Add(float64(s.maxAttempts))
		}
		return block.Block{}, err
	}
	s.metrics.attempts.Add(float64(b.Nonce + 1))

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return block.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: update local state")

	if err := s.updateLocalState(b); err != nil {
		return block.Block{}, err
	}

	return b, nil
}

// ProcessProposedBlock takes a block mined elsewhere and adds it to the chain
// if it follows the current tip.
func (s *State) ProcessProposedBlock(b block.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: blk[%d]", b.Payload.ID)
	defer s.evHandler("state: ProcessProposedBlock: completed: blk[%d]", b.Payload.ID)

	return s.updateLocalState(b)
}

// =============================================================================

// updateLocalState validates the block against the tip, writes it to
// storage and then appends it to the chain.
func (s *State) updateLocalState(b block.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := b.Validate(s.chain.Tip()); err != nil {
		s.metrics.rejected.Inc()
		s.evHandler("state: updateLocalState: REJECTED: %s", err)
		return err
	}

	s.evHandler("state: updateLocalState: write to storage")

	if err := s.storage.Write(storage.NewBlockData(b)); err != nil {
		return fmt.Errorf("writing block %d: %w", b.Payload.ID, err)
	}

	if err := s.chain.TryAddBlock(b); err != nil {
		return err
	}

	s.cache.Add(b.Digest, b)
	s.metrics.mined.Inc()
	s.metrics.chainLength.Set(float64(s.chain.Len()))

	return nil
}
