// Package kv implements the ability to read and write blocks to a badger
// key value database.
package kv

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/quartzledger/quartz/foundation/blockchain/storage"
)

var tipKey = []byte("chain:tip")

// KV represents the storage implementation for reading and storing blocks
// in badger. This implements the storage.Storage interface.
type KV struct {
	db *badger.DB
}

// New opens, or creates, the badger database at the specified directory.
func New(dbPath string) (*KV, error) {
	return open(badger.DefaultOptions(dbPath).WithLogger(nil))
}

// NewInMemory constructs a KV value that keeps nothing on disk.
func NewInMemory() (*KV, error) {
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func open(opts badger.Options) (*KV, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}

	return &KV{db: db}, nil
}

// Close releases the database.
func (kv *KV) Close() error {
	return kv.db.Close()
}

// Write stores the block and moves the tip to it within one transaction.
// The block id must be the one after the current tip.
func (kv *KV) Write(blockData storage.BlockData) error {
	val, err := json.Marshal(blockData)
	if err != nil {
		return err
	}

	return kv.db.Update(func(txn *badger.Txn) error {
		exp := uint64(0)

		item, err := txn.Get(tipKey)
		switch {
		case err == nil:
			if err := item.Value(func(v []byte) error {
				exp = binary.BigEndian.Uint64(v) + 1
				return nil
			}); err != nil {
				return err
			}

		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		id := blockData.Payload.ID
		if id != exp {
			return fmt.Errorf("got id %d, exp %d: %w", id, exp, storage.ErrOutOfOrder)
		}

		if err := txn.Set(blockKey(id), val); err != nil {
			return err
		}

		return txn.Set(tipKey, encodeID(id))
	})
}

// GetBlock returns the block stored with the specified id.
func (kv *KV) GetBlock(id uint64) (storage.BlockData, error) {
	var blockData storage.BlockData

	err := kv.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("id %d: %w", id, storage.ErrNotFound)
			}
			return err
		}

		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &blockData)
		})
	})
	if err != nil {
		return storage.BlockData{}, err
	}

	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with genesis.
func (kv *KV) ForEach() storage.Iterator {
	return &kvIterator{kv: kv}
}

// Reset drops every key in the database.
func (kv *KV) Reset() error {
	return kv.db.DropAll()
}

// =============================================================================

func blockKey(id uint64) []byte {
	return append([]byte("block:"), encodeID(id)...)
}

func encodeID(id uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return b[:]
}

// kvIterator walks the blocks in id order. This implements the
// storage.Iterator interface.
type kvIterator struct {
	kv      *KV    // Access to the database.
	current uint64 // Next block id to read.
	eoc     bool   // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block.
func (ki *kvIterator) Next() (storage.BlockData, error) {
	if ki.eoc {
		return storage.BlockData{}, storage.ErrEndOfChain
	}

	blockData, err := ki.kv.GetBlock(ki.current)
	if errors.Is(err, storage.ErrNotFound) {
		ki.eoc = true
		return storage.BlockData{}, storage.ErrEndOfChain
	}

	ki.current++

	return blockData, err
}

// Done returns the end of chain value.
func (ki *kvIterator) Done() bool {
	return ki.eoc
}
