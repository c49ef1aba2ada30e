// Package chain maintains an ordered, append only sequence of mined blocks
// and provides the rules for extending it and choosing between two chains.
package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/quartzledger/quartz/foundation/blockchain/block"
)

// ErrEmpty is returned when a chain is built from no blocks.
var ErrEmpty = errors.New("chain must hold at least the genesis block")

// Config represents the settings a chain mines and reports with.
type Config struct {
	MaxAttempts uint64             // Zero means mining is unbounded.
	EvHandler   block.EventHandler // Receives diagnostics, may be nil.
}

// Chain represents a sequence of blocks starting at genesis. A Chain is not
// safe for concurrent use.
type Chain struct {
	blocks      []block.Block
	maxAttempts uint64
	evHandler   block.EventHandler
}

// New constructs a chain seeded with a freshly mined genesis block.
func New(ctx context.Context, cfg Config) (*Chain, error) {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(string, ...any) {}
	}

	genesis, err := block.Genesis(ctx, cfg.MaxAttempts, ev)
	if err != nil {
		return nil, fmt.Errorf("mining genesis: %w", err)
	}

	c := Chain{
		blocks:      make([]block.Block, 1, 2),
		maxAttempts: cfg.MaxAttempts,
		evHandler:   ev,
	}
	c.blocks[0] = genesis

	return &c, nil
}

// FromBlocks constructs a chain over a copy of the provided blocks, such as
// those read back from storage. The blocks are not validated here, call
// Validate before trusting the result.
func FromBlocks(blocks []block.Block, cfg Config) (*Chain, error) {
	if len(blocks) == 0 {
		return nil, ErrEmpty
	}

	ev := cfg.EvHandler
	if ev == nil {
		ev = func(string, ...any) {}
	}

	c := Chain{
		blocks:      append([]block.Block(nil), blocks...),
		maxAttempts: cfg.MaxAttempts,
		evHandler:   ev,
	}

	return &c, nil
}

// Len returns the number of blocks in the chain.
func (c *Chain) Len() int {
	return len(c.blocks)
}

// Genesis returns the first block.
func (c *Chain) Genesis() block.Block {
	return c.blocks[0]
}

// Tip returns the latest block.
func (c *Chain) Tip() block.Block {
	return c.blocks[len(c.blocks)-1]
}

// Block returns the block at the specified index.
func (c *Chain) Block(i int) (block.Block, bool) {
	if i < 0 || i >= len(c.blocks) {
		return block.Block{}, false
	}
	return c.blocks[i], true
}

// Blocks returns a copy of the blocks in chain order.
func (c *Chain) Blocks() []block.Block {
	return append([]block.Block(nil), c.blocks...)
}

// DeriveNext builds the payload for the block that would follow the tip.
func (c *Chain) DeriveNext(data string) block.Payload {
	tip := c.Tip()
	return block.NewPayload(tip.Payload.ID+1, data, tip.Digest)
}

// MineNext derives the next payload from the tip and mines it. The chain
// is not changed, pass the result to TryAddBlock.
func (c *Chain) MineNext(ctx context.Context, data string) (block.Block, error) {
	return block.Mine(ctx, c.DeriveNext(data), c.maxAttempts, c.evHandler)
}

// TryAddBlock validates the block against the tip and appends it. On
// failure the chain is left as is and the validation error is returned.
func (c *Chain) TryAddBlock(b block.Block) error {
	c.evHandler("chain: TryAddBlock: validate: blk[%d]: tip[%d]", b.Payload.ID, c.Tip().Payload.ID)

	if err := b.Validate(c.Tip()); err != nil {
		c.evHandler("chain: TryAddBlock: validation error >> %s", err)
		return fmt.Errorf("try add block: %w", err)
	}

	c.blocks = append(c.blocks, b)
	c.evHandler("chain: TryAddBlock: added: blk[%d]: digest[%s]", b.Payload.ID, b.Digest)

	return nil
}

// Validate walks the chain checking every block against the one before it.
// Genesis is trusted and not checked.
func (c *Chain) Validate() error {
	for i := 1; i < len(c.blocks); i++ {
		if err := c.blocks[i].Validate(c.blocks[i-1]); err != nil {
			c.evHandler("chain: Validate: validation error >> %s", err)
			return err
		}
	}

	return nil
}

// IsValid is the boolean form of Validate.
func (c *Chain) IsValid() bool {
	return c.Validate() == nil
}
