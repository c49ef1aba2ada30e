package public

import (
	"github.com/quartzledger/quartz/foundation/blockchain/block"
	"github.com/quartzledger/quartz/foundation/validate"
)

type payload struct {
	ID         uint64 `json:"id"`
	Data       string `json:"data"`
	Timestamp  int64  `json:"timestamp"`
	PrevDigest string `json:"prev_digest"`
}

type blk struct {
	Digest  string  `json:"digest"`
	Nonce   uint64  `json:"nonce"`
	Payload payload `json:"payload"`
}

func toBlock(b block.Block) blk {
	return blk{
		Digest: b.Digest.String(),
		Nonce:  b.Nonce,
		Payload: payload{
			ID:         b.Payload.ID,
			Data:       b.Payload.Data,
			Timestamp:  b.Payload.Timestamp,
			PrevDigest: b.Payload.PrevDigest.String(),
		},
	}
}

func toBlocks(blocks []block.Block) []blk {
	out := make([]blk, len(blocks))
	for i, b := range blocks {
		out[i] = toBlock(b)
	}
	return out
}

type status struct {
	Length      int    `json:"length"`
	TipID       uint64 `json:"tip_id"`
	TipDigest   string `json:"tip_digest"`
	Valid       bool   `json:"valid"`
	Error       string `json:"error,omitempty"`
	Subscribers int    `json:"subscribers"`
}

// NewBlock is what a client posts to have a block mined.
type NewBlock struct {
	Data string `json:"data" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (nb NewBlock) Validate() error {
	return validate.Check(nb)
}
