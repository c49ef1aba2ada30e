package block_test

import (
	"context"
	"errors"
	"testing"

	"github.com/quartzledger/quartz/foundation/blockchain/block"
	"github.com/quartzledger/quartz/foundation/blockchain/digest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Mine(t *testing.T) {
	t.Log("Given the need to mine a payload.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen mining without a bound.", testID)
		{
			p := block.NewPayload(1, "foo", digest.Sum([]byte("prev")))

			b, err := block.Mine(context.Background(), p, 0, t.Logf)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine the payload: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to mine the payload.", success, testID)

			if !b.Digest.HasBinPrefix(block.DifficultyPrefix) {
				t.Fatalf("\t%s\tTest %d:\tShould have the difficulty prefix: %s", failed, testID, b.Digest.Bin())
			}
			t.Logf("\t%s\tTest %d:\tShould have the difficulty prefix.", success, testID)

			if got := block.Hash(b.Payload, b.Nonce); got != b.Digest {
				t.Fatalf("\t%s\tTest %d:\tShould reproduce the digest from payload and nonce.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reproduce the digest from payload and nonce.", success, testID)

			if b.Payload != p {
				t.Fatalf("\t%s\tTest %d:\tShould carry the payload unchanged.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould carry the payload unchanged.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen mining with an attempt budget.", testID)
		{
			p := block.NewPayload(7, "budget", digest.Sum([]byte("budget")))

			b, err := block.Mine(context.Background(), p, 0, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine the payload: %v", failed, testID, err)
			}

			if b.Nonce > 0 {
				if _, err := block.Mine(context.Background(), p, b.Nonce, nil); !errors.Is(err, block.ErrNotSolved) {
					t.Fatalf("\t%s\tTest %d:\tShould not solve with a budget below the nonce: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould not solve with a budget below the nonce.", success, testID)
			}

			got, err := block.Mine(context.Background(), p, b.Nonce+1, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould solve with a budget covering the nonce: %v", failed, testID, err)
			}

			if got != b {
				t.Fatalf("\t%s\tTest %d:\tShould find the same block again.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould find the same block again.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the context is cancelled.", testID)
		{
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := block.Mine(ctx, block.NewPayload(1, "foo", digest.Digest{}), 0, nil)
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest %d:\tShould stop with a cancelled error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould stop with a cancelled error.", success, testID)
		}
	}
}

func Test_InvalidData(t *testing.T) {
	t.Log("Given the need to hash only data the canonical encoding keeps intact.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen mining data that is not valid utf-8.", testID)
		{
			p := block.NewPayload(1, "pay\xff", digest.Sum([]byte("prev")))

			if _, err := block.Mine(context.Background(), p, 0, nil); !errors.Is(err, block.ErrData) {
				t.Fatalf("\t%s\tTest %d:\tShould refuse to mine the payload: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse to mine the payload.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen one byte of stored data is swapped for an invalid one.", testID)
		{
			prev, err := block.Genesis(context.Background(), 0, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine genesis: %v", failed, testID, err)
			}

			b, err := block.Mine(context.Background(), block.NewPayload(1, "pay\u00ff", prev.Digest), 0, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to mine the block.", success, testID)

			tampered := b
			tampered.Payload.Data = "pay\xfe"

			err = tampered.Validate(prev)
			if !errors.Is(err, block.ErrData) || !block.IsValidationError(err) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the tampered block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the tampered block.", success, testID)

			if err := b.Validate(prev); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould still accept the original block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould still accept the original block.", success, testID)
		}
	}
}

func Test_Genesis(t *testing.T) {
	t.Log("Given the need to start a new chain.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen mining two genesis blocks.", testID)
		{
			g1, err := block.Genesis(context.Background(), 0, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine genesis: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to mine genesis.", success, testID)

			if g1.Payload.ID != 0 || g1.Payload.Data != block.GenesisData {
				t.Fatalf("\t%s\tTest %d:\tShould have id 0 and the genesis marker: %+v", failed, testID, g1.Payload)
			}
			t.Logf("\t%s\tTest %d:\tShould have id 0 and the genesis marker.", success, testID)

			if !g1.Digest.HasBinPrefix(block.DifficultyPrefix) || !g1.Payload.PrevDigest.HasBinPrefix(block.DifficultyPrefix) {
				t.Fatalf("\t%s\tTest %d:\tShould have the prefix on both digests.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have the prefix on both digests.", success, testID)

			g2, err := block.Genesis(context.Background(), 0, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine genesis: %v", failed, testID, err)
			}

			if g1.Payload.PrevDigest == g2.Payload.PrevDigest {
				t.Fatalf("\t%s\tTest %d:\tShould seed each genesis differently.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould seed each genesis differently.", success, testID)
		}
	}
}

func Test_Validate(t *testing.T) {
	prev, err := block.Genesis(context.Background(), 0, nil)
	if err != nil {
		t.Fatalf("mining genesis: %v", err)
	}

	next, err := block.Mine(context.Background(), block.NewPayload(1, "foo", prev.Digest), 0, nil)
	if err != nil {
		t.Fatalf("mining next: %v", err)
	}

	type table struct {
		name   string
		block  func() block.Block
		result error
	}

	tt := []table{
		{
			name:   "valid",
			block:  func() block.Block { return next },
			result: nil,
		},
		{
			name: "prev-digest",
			block: func() block.Block {
				b := next
				b.Payload.PrevDigest[5] ^= 0xff
				return b
			},
			result: block.ErrPrevDigest,
		},
		{
			name: "id",
			block: func() block.Block {
				b := next
				b.Payload.ID = 5
				return b
			},
			result: block.ErrID,
		},
		{
			name: "difficulty",
			block: func() block.Block {
				b := next
				b.Digest[0] = 0xff
				return b
			},
			result: block.ErrDifficulty,
		},
		{
			name: "digest",
			block: func() block.Block {
				b := next
				b.Digest[31] ^= 0x01
				return b
			},
			result: block.ErrDigest,
		},
		{
			name: "data",
			block: func() block.Block {
				b := next
				b.Payload.Data = "bar"
				return b
			},
			result: block.ErrDigest,
		},
		{
			name: "invalid-utf8",
			block: func() block.Block {
				b := next
				b.Payload.Data = "foo\xfe"
				return b
			},
			result: block.ErrData,
		},
	}

	t.Log("Given the need to validate a block against its predecessor.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen checking the %q case.", testID, tst.name)
				{
					err := tst.block().Validate(prev)

					switch tst.result {
					case nil:
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be valid: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould be valid.", success, testID)

					default:
						if !errors.Is(err, tst.result) {
							t.Fatalf("\t%s\tTest %d:\tShould fail with %q: got %v", failed, testID, tst.result, err)
						}
						t.Logf("\t%s\tTest %d:\tShould fail with %q.", success, testID, tst.result)

						if !block.IsValidationError(err) {
							t.Fatalf("\t%s\tTest %d:\tShould be a validation error.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould be a validation error: %s", success, testID, err)
					}
				}
			}

			t.Run(tst.name, f)
		}
	}
}
