package block

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/quartzledger/quartz/foundation/blockchain/digest"
)

// GenesisData is the content carried by every genesis block.
const GenesisData = "genesis"

// Genesis mines the first block of a new chain. Its previous digest comes from
// RandomDigest so no two chains share a well known starting point.
func Genesis(ctx context.Context, maxAttempts uint64, ev EventHandler) (Block, error) {
	prev, err := RandomDigest(ctx, maxAttempts, ev)
	if err != nil {
		return Block{}, fmt.Errorf("seeding genesis: %w", err)
	}

	return Mine(ctx, NewPayload(0, GenesisData, prev), maxAttempts, ev)
}

// RandomDigest picks a random seed and searches for a nonce that makes the
// digest of the pair satisfy the same difficulty rule as mining.
func RandomDigest(ctx context.Context, maxAttempts uint64, ev EventHandler) (digest.Digest, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return digest.Digest{}, fmt.Errorf("reading random seed: %w", err)
	}
	seed := binary.BigEndian.Uint64(buf[:])

	_, d, err := solve(ctx, maxAttempts, orNop(ev), func(nonce uint64) digest.Digest {
		doc := struct {
			Nonce uint64 `json:"nonce"`
			Rand  uint64 `json:"rand"`
		}{
			Nonce: nonce,
			Rand:  seed,
		}

		data, _ := json.Marshal(doc)
		return digest.Sum(data)
	})

	return d, err
}
