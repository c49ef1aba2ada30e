package chain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/quartzledger/quartz/foundation/blockchain/block"
	"github.com/quartzledger/quartz/foundation/blockchain/chain"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_NewAndAppend(t *testing.T) {
	t.Log("Given the need to build a chain from genesis.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen constructing a new chain.", testID)
		{
			c, err := chain.New(context.Background(), chain.Config{EvHandler: t.Logf})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct a chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to construct a chain.", success, testID)

			if c.Len() != 1 || c.Tip().Payload.ID != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould hold only genesis: len[%d] tip[%d]", failed, testID, c.Len(), c.Tip().Payload.ID)
			}
			t.Logf("\t%s\tTest %d:\tShould hold only genesis.", success, testID)

			if !c.Genesis().Digest.HasBinPrefix(block.DifficultyPrefix) {
				t.Fatalf("\t%s\tTest %d:\tShould have a mined genesis.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have a mined genesis.", success, testID)

			b, err := c.MineNext(context.Background(), "foo")
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine the next block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to mine the next block.", success, testID)

			if err := c.TryAddBlock(b); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to add the block.", success, testID)

			tip := c.Tip()
			if c.Len() != 2 || tip.Payload.ID != 1 || tip.Payload.Data != "foo" {
				t.Fatalf("\t%s\tTest %d:\tShould have the new tip: len[%d] tip[%d]", failed, testID, c.Len(), tip.Payload.ID)
			}
			t.Logf("\t%s\tTest %d:\tShould have the new tip.", success, testID)

			if tip.Payload.PrevDigest != c.Genesis().Digest {
				t.Fatalf("\t%s\tTest %d:\tShould link the tip to genesis.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould link the tip to genesis.", success, testID)

			if err := c.Validate(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould have a valid chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould have a valid chain.", success, testID)
		}
	}
}

func Test_Rejections(t *testing.T) {
	c := newChain(t, 2)
	tip := c.Tip()

	type table struct {
		name    string
		payload block.Payload
		result  error
	}

	wrongPrev := tip.Digest
	wrongPrev[3] ^= 0x10

	tt := []table{
		{
			name:    "prev-digest",
			payload: block.NewPayload(tip.Payload.ID+1, "bad", wrongPrev),
			result:  block.ErrPrevDigest,
		},
		{
			name:    "skipped-id",
			payload: block.NewPayload(tip.Payload.ID+2, "bad", tip.Digest),
			result:  block.ErrID,
		},
		{
			name:    "repeated-id",
			payload: block.NewPayload(tip.Payload.ID, "bad", tip.Digest),
			result:  block.ErrID,
		},
	}

	t.Log("Given the need to reject blocks that don't follow the tip.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen adding a %q block.", testID, tst.name)
				{
					b, err := block.Mine(context.Background(), tst.payload, 0, nil)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to mine the block: %v", failed, testID, err)
					}

					before := c.Len()
					err = c.TryAddBlock(b)
					if !errors.Is(err, tst.result) {
						t.Fatalf("\t%s\tTest %d:\tShould be rejected with %q: %v", failed, testID, tst.result, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be rejected with %q.", success, testID, tst.result)

					if c.Len() != before || c.Tip() != tip {
						t.Fatalf("\t%s\tTest %d:\tShould leave the chain unchanged.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould leave the chain unchanged.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_TamperedDigest(t *testing.T) {
	c := newChain(t, 4)

	t.Log("Given the need to detect a change to any stored digest.")
	{
		for testID := 0; testID < c.Len(); testID++ {
			for _, pos := range []int{0, 1, 17, 31} {
				f := func(t *testing.T) {
					t.Logf("\tTest %d:\tWhen byte %d of block %d digest changes.", testID, pos, testID)
					{
						blocks := c.Blocks()
						blocks[testID].Digest[pos] ^= 0x01

						tampered, err := chain.FromBlocks(blocks, chain.Config{})
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to build the chain: %v", failed, testID, err)
						}

						if tampered.IsValid() {
							t.Fatalf("\t%s\tTest %d:\tShould be an invalid chain.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould be an invalid chain.", success, testID)
					}
				}

				t.Run(fmt.Sprintf("block%d-byte%d", testID, pos), f)
			}
		}

		if !c.IsValid() {
			t.Fatalf("\t%s\tShould leave the original chain valid.", failed)
		}
		t.Logf("\t%s\tShould leave the original chain valid.", success)
	}
}

func Test_FromBlocks(t *testing.T) {
	t.Log("Given the need to rebuild a chain from blocks.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen there are no blocks.", testID)
		{
			if _, err := chain.FromBlocks(nil, chain.Config{}); !errors.Is(err, chain.ErrEmpty) {
				t.Fatalf("\t%s\tTest %d:\tShould refuse an empty chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse an empty chain.", success, testID)
		}
	}
}

func Test_Upgrade(t *testing.T) {
	long := newChain(t, 5)
	short := newChain(t, 3)

	invalid := func(c *chain.Chain) *chain.Chain {
		blocks := c.Blocks()
		blocks[1].Payload.Data = "tampered"

		bad, err := chain.FromBlocks(blocks, chain.Config{})
		if err != nil {
			t.Fatalf("building invalid chain: %v", err)
		}
		return bad
	}

	clone := func(c *chain.Chain) *chain.Chain {
		cc, err := chain.FromBlocks(c.Blocks(), chain.Config{})
		if err != nil {
			t.Fatalf("cloning chain: %v", err)
		}
		return cc
	}

	type table struct {
		name   string
		local  *chain.Chain
		remote *chain.Chain
		expLen int
		expGen *chain.Chain
	}

	tt := []table{
		{name: "remote-longer", local: clone(short), remote: clone(long), expLen: 5, expGen: long},
		{name: "local-longer", local: clone(long), remote: clone(short), expLen: 5, expGen: long},
		{name: "tie-keeps-local", local: clone(short), remote: clone(short), expLen: 3, expGen: short},
		{name: "local-invalid", local: invalid(long), remote: clone(short), expLen: 3, expGen: short},
		{name: "remote-invalid", local: clone(short), remote: invalid(long), expLen: 3, expGen: short},
	}

	t.Log("Given the need to choose between two chains.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling the %q case.", testID, tst.name)
				{
					got, err := chain.Upgrade(tst.local, tst.remote)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to choose a chain: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to choose a chain.", success, testID)

					if got.Len() != tst.expLen || got.Genesis() != tst.expGen.Genesis() {
						t.Fatalf("\t%s\tTest %d:\tShould choose the expected chain: len[%d]", failed, testID, got.Len())
					}
					t.Logf("\t%s\tTest %d:\tShould choose the expected chain.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}

		testID := len(tt)
		t.Logf("\tTest %d:\tWhen a tie keeps the local chain.", testID)
		{
			local := clone(short)

			got, err := chain.Upgrade(local, clone(short))
			if err != nil || got != local {
				t.Fatalf("\t%s\tTest %d:\tShould return the local chain itself: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould return the local chain itself.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen both chains are invalid.", testID)
		{
			got, err := chain.Upgrade(invalid(short), invalid(long))
			if !errors.Is(err, chain.ErrBothChainsInvalid) {
				t.Fatalf("\t%s\tTest %d:\tShould fail with the fatal error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould fail with the fatal error.", success, testID)

			if got != nil {
				t.Fatalf("\t%s\tTest %d:\tShould not return a chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not return a chain.", success, testID)
		}
	}
}

// =============================================================================

// newChain mines a valid chain with the specified number of blocks.
func newChain(t *testing.T, n int) *chain.Chain {
	t.Helper()

	c, err := chain.New(context.Background(), chain.Config{})
	if err != nil {
		t.Fatalf("constructing chain: %v", err)
	}

	for i := 1; i < n; i++ {
		b, err := c.MineNext(context.Background(), fmt.Sprintf("data-%d", i))
		if err != nil {
			t.Fatalf("mining block %d: %v", i, err)
		}

		if err := c.TryAddBlock(b); err != nil {
			t.Fatalf("adding block %d: %v", i, err)
		}
	}

	return c
}
