// Package memory implements the ability to read and write blocks to memory
// using a slice.
package memory

import (
	"fmt"
	"sync"

	"github.com/quartzledger/quartz/foundation/blockchain/storage"
)

// Memory represents the storage implementation for reading and storing
// blocks in memory using a slice. This implements the storage.Storage
// interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []storage.BlockData
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write appends the block. The block id must match the position it
// will be stored at, starting with genesis at 0.
func (m *Memory) Write(blockData storage.BlockData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l := uint64(len(m.blocks)); blockData.Payload.ID != l {
		return fmt.Errorf("got id %d, exp %d: %w", blockData.Payload.ID, l, storage.ErrOutOfOrder)
	}

	m.blocks = append(m.blocks, blockData)

	return nil
}

// GetBlock returns the block stored with the specified id.
func (m *Memory) GetBlock(id uint64) (storage.BlockData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id >= uint64(len(m.blocks)) {
		return storage.BlockData{}, fmt.Errorf("id %d: %w", id, storage.ErrNotFound)
	}

	return m.blocks[id], nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with genesis.
func (m *Memory) ForEach() storage.Iterator {
	return &memoryIterator{storage: m}
}

// Reset removes every block.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = nil
	return nil
}

// =============================================================================

// memoryIterator walks the blocks held by a Memory value. This implements
// the storage.Iterator interface.
type memoryIterator struct {
	storage *Memory // Access to the storage API.
	current uint64  // Next block id to read.
	eoc     bool    // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block.
func (mi *memoryIterator) Next() (storage.BlockData, error) {
	if mi.eoc {
		return storage.BlockData{}, storage.ErrEndOfChain
	}

	blockData, err := mi.storage.GetBlock(mi.current)
	if err != nil {
		mi.eoc = true
		return storage.BlockData{}, storage.ErrEndOfChain
	}

	mi.current++

	return blockData, nil
}

// Done returns the end of chain value.
func (mi *memoryIterator) Done() bool {
	return mi.eoc
}
