// Package disk implements the ability to read and write blocks to disk
// with one json file per block.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/quartzledger/quartz/foundation/blockchain/storage"
)

// Disk represents the storage implementation for reading and storing blocks
// in their own separate files on disk. This implements the storage.Storage
// interface.
type Disk struct {
	dbPath string
}

// New constructs a Disk value rooted at the specified directory, creating
// it if needed.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each new block and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified block and stores it on disk in a file labeled
// with the block id.
func (d *Disk) Write(blockData storage.BlockData) error {

	// Marshal the block for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(blockData, "", "  ")
	if err != nil {
		return err
	}

	// Blocks are only ever appended in id order.
	if id := blockData.Payload.ID; id > 0 {
		if _, err := os.Stat(d.getPath(id - 1)); err != nil {
			return fmt.Errorf("id %d has no parent on disk: %w", id, storage.ErrOutOfOrder)
		}
	}

	// An existing file means the caller
	// is out of step with what is on disk.
	f, err := os.OpenFile(d.getPath(blockData.Payload.ID), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("id %d already written: %w", blockData.Payload.ID, storage.ErrOutOfOrder)
		}
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return err
	}

	return nil
}

// GetBlock locates and returns the contents of the specified block by id.
func (d *Disk) GetBlock(id uint64) (storage.BlockData, error) {
	f, err := os.Open(d.getPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.BlockData{}, fmt.Errorf("id %d: %w", id, storage.ErrNotFound)
		}
		return storage.BlockData{}, err
	}
	defer f.Close()

	var blockData storage.BlockData
	if err := json.NewDecoder(f).Decode(&blockData); err != nil {
		return storage.BlockData{}, fmt.Errorf("decoding block %d: %w", id, err)
	}

	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with genesis.
func (d *Disk) ForEach() storage.Iterator {
	return &diskIterator{disk: d}
}

// Reset removes every block file from the directory.
func (d *Disk) Reset() error {
	for id := uint64(0); ; id++ {
		err := os.Remove(d.getPath(id))
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// getPath forms the path to the specified block.
func (d *Disk) getPath(id uint64) string {
	return filepath.Join(d.dbPath, strconv.FormatUint(id, 10)+".json")
}

// =============================================================================

// diskIterator represents the iteration implementation for walking
// through and reading blocks on disk. This implements the storage.Iterator
// interface.
type diskIterator struct {
	disk    *Disk  // Access to the disk API.
	current uint64 // Next block id to read.
	eoc     bool   // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from disk.
func (di *diskIterator) Next() (storage.BlockData, error) {
	if di.eoc {
		return storage.BlockData{}, storage.ErrEndOfChain
	}

	blockData, err := di.disk.GetBlock(di.current)
	if errors.Is(err, storage.ErrNotFound) {
		di.eoc = true
		return storage.BlockData{}, storage.ErrEndOfChain
	}

	di.current++

	return blockData, err
}

// Done returns the end of chain value.
func (di *diskIterator) Done() bool {
	return di.eoc
}
