// Package storage defines the versioned form blocks take when they are
// written out and the behavior required of any package that stores them.
package storage

import (
	"errors"
	"fmt"

	"github.com/quartzledger/quartz/foundation/blockchain/block"
	"github.com/quartzledger/quartz/foundation/blockchain/digest"
)

// Version is the encoding version written with every block.
const Version uint16 = 1

// Set of errors shared by the storage implementations.
var (
	ErrVersion    = errors.New("unsupported block encoding version")
	ErrOutOfOrder = errors.New("block is out of order")
	ErrNotFound   = errors.New("block does not exist")
	ErrEndOfChain = errors.New("end of chain")
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(id uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// PayloadData represents the stored form of a block payload.
type PayloadData struct {
	ID         uint64 `json:"id"`
	Data       string `json:"data"`
	Timestamp  int64  `json:"timestamp"`
	PrevDigest string `json:"prev_digest"`
}

// BlockData represents what is written to storage for each block.
type BlockData struct {
	Version uint16      `json:"version"`
	Digest  string      `json:"digest"`
	Nonce   uint64      `json:"nonce"`
	Payload PayloadData `json:"payload"`
}

// NewBlockData constructs the value to write to storage.
func NewBlockData(b block.Block) BlockData {
	return BlockData{
		Version: Version,
		Digest:  b.Digest.String(),
		Nonce:   b.Nonce,
		Payload: PayloadData{
			ID:         b.Payload.ID,
			Data:       b.Payload.Data,
			Timestamp:  b.Payload.Timestamp,
			PrevDigest: b.Payload.PrevDigest.String(),
		},
	}
}

// ToBlock converts the stored form back into a block. The block is not
// validated, that is left to the chain.
func ToBlock(bd BlockData) (block.Block, error) {
	if bd.Version != Version {
		return block.Block{}, fmt.Errorf("block %d has version %d: %w", bd.Payload.ID, bd.Version, ErrVersion)
	}

	d, err := digest.FromHex(bd.Digest)
	if err != nil {
		return block.Block{}, fmt.Errorf("block %d: %w", bd.Payload.ID, err)
	}

	prev, err := digest.FromHex(bd.Payload.PrevDigest)
	if err != nil {
		return block.Block{}, fmt.Errorf("block %d previous: %w", bd.Payload.ID, err)
	}

	b := block.Block{
		Digest: d,
		Nonce:  bd.Nonce,
		Payload: block.Payload{
			ID:         bd.Payload.ID,
			Data:       bd.Payload.Data,
			Timestamp:  bd.Payload.Timestamp,
			PrevDigest: prev,
		},
	}

	return b, nil
}

// ReadAll walks the storage from genesis and returns every block in order.
func ReadAll(s Storage) ([]block.Block, error) {
	var blocks []block.Block

	iter := s.ForEach()
	for bd, err := iter.Next(); !iter.Done(); bd, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		b, err := ToBlock(bd)
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, b)
	}

	return blocks, nil
}

// WriteAll writes the blocks in order to storage.
func WriteAll(s Storage, blocks []block.Block) error {
	for _, b := range blocks {
		if err := s.Write(NewBlockData(b)); err != nil {
			return fmt.Errorf("writing block %d: %w", b.Payload.ID, err)
		}
	}

	return nil
}
