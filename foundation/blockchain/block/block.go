// Package block provides the unmined payload and mined block types along with
// the proof of work and validation rules that link blocks into a chain.
package block

import (
	"context"
	"encoding/json"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/quartzledger/quartz/foundation/blockchain/digest"
)

// DifficultyPrefix is the leading pattern a digest encoding must carry for
// the block to be considered mined.
const DifficultyPrefix = "00"

// ErrNotSolved is returned by Mine when the attempt budget is used up
// before a nonce is found.
var ErrNotSolved = errors.New("no solution found within attempt budget")

// EventHandler receives diagnostic messages from mining and validation.
type EventHandler func(v string, args ...any)

// =============================================================================

// Payload represents the content and linkage of a block before the proof of
// work is performed.
type Payload struct {
	ID         uint64        // Position in the chain, genesis is 0.
	Data       string        // Content supplied by the caller.
	Timestamp  int64         // Seconds since the epoch when the payload was built.
	PrevDigest digest.Digest // Digest of the block this one follows.
}

// NewPayload constructs a payload stamped with the current time.
func NewPayload(id uint64, data string, prevDigest digest.Digest) Payload {
	return Payload{
		ID:         id,
		Data:       data,
		Timestamp:  time.Now().UTC().Unix(),
		PrevDigest: prevDigest,
	}
}

// Block represents a payload with the nonce and digest that solve the proof
// of work for it.
type Block struct {
	Digest  digest.Digest
	Nonce   uint64
	Payload Payload
}

// Mine searches for a nonce, starting at zero, that produces a digest whose
// binary encoding starts with DifficultyPrefix. A maxAttempts of zero places
// no bound on the search. The search stops early if the context is done.
func Mine(ctx context.Context, p Payload, maxAttempts uint64, ev EventHandler) (Block, error) {
	ev = orNop(ev)

	if !utf8.ValidString(p.Data) {
		ev("block: Mine: MINING: REJECTED: blk[%d]: %s", p.ID, ErrData)
		return Block{}, ErrData
	}

	ev("block: Mine: MINING: started: blk[%d]", p.ID)
	defer ev("block: Mine: MINING: completed: blk[%d]", p.ID)

	nonce, d, err := solve(ctx, maxAttempts, ev, func(nonce uint64) digest.Digest {
		return Hash(p, nonce)
	})
	if err != nil {
		ev("block: Mine: MINING: FAILED: blk[%d]: %s", p.ID, err)
		return Block{}, err
	}

	ev("block: Mine: MINING: SOLVED: blk[%d]: prevBlk[%s]: newBlk[%s]: nonce[%d]", p.ID, p.PrevDigest, d, nonce)

	b := Block{
		Digest:  d,
		Nonce:   nonce,
		Payload: p,
	}

	return b, nil
}

// Hash computes the digest of the canonical encoding of the payload fields
// and the nonce. Mining and verification both go through here so the field
// order can't drift between them. Data must be valid UTF-8 for the digest to
// be unique to it.
func Hash(p Payload, nonce uint64) digest.Digest {
	doc := struct {
		ID         uint64        `json:"id"`
		Nonce      uint64        `json:"nonce"`
		Data       string        `json:"naked"`
		Timestamp  int64         `json:"timestamp"`
		PrevDigest digest.Digest `json:"p_hash"`
	}{
		ID:         p.ID,
		Nonce:      nonce,
		Data:       p.Data,
		Timestamp:  p.Timestamp,
		PrevDigest: p.PrevDigest,
	}

	// A struct of strings, integers and a byte array can't fail to marshal.
	data, _ := json.Marshal(doc)

	return digest.Sum(data)
}

// =============================================================================

// solve runs the nonce search shared by block mining and genesis seeding.
func solve(ctx context.Context, maxAttempts uint64, ev EventHandler, hash func(nonce uint64) digest.Digest) (uint64, digest.Digest, error) {
	var attempts uint64
	for nonce := uint64(0); ; nonce++ {
		if maxAttempts > 0 && attempts == maxAttempts {
			return 0, digest.Digest{}, ErrNotSolved
		}

		if ctx.Err() != nil {
			return 0, digest.Digest{}, ctx.Err()
		}

		attempts++
		if attempts%1_000_000 == 0 {
			ev("block: solve: MINING: attempts[%d]", attempts)
		}

		d := hash(nonce)
		if d.HasBinPrefix(DifficultyPrefix) {
			return nonce, d, nil
		}
	}
}

func orNop(ev EventHandler) EventHandler {
	if ev == nil {
		return func(string, ...any) {}
	}
	return ev
}
