// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/quartzledger/quartz/business/web/errs"
	"github.com/quartzledger/quartz/foundation/blockchain/block"
	"github.com/quartzledger/quartz/foundation/blockchain/digest"
	"github.com/quartzledger/quartz/foundation/blockchain/state"
	"github.com/quartzledger/quartz/foundation/blockchain/storage"
	"github.com/quartzledger/quartz/foundation/events"
	"github.com/quartzledger/quartz/foundation/validate"
	"github.com/quartzledger/quartz/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of chain endpoints.
type Handlers struct {
	Log           *zap.SugaredLogger
	State         *state.State
	WS            websocket.Upgrader
	Evts          *events.Events
	MiningTimeout time.Duration
}

// Chain returns every block in the chain.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toBlocks(h.State.Blocks()), http.StatusOK)
}

// Status returns the length and tip of the chain, whether it validates and
// how many event subscribers are connected.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tip := h.State.Tip()

	st := status{
		Length:      h.State.Len(),
		TipID:       tip.Payload.ID,
		TipDigest:   tip.Digest.String(),
		Valid:       true,
		Subscribers: h.Evts.Count(),
	}

	if err := h.State.Validate(); err != nil {
		st.Valid = false
		st.Error = err.Error()
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// BlockByDigest returns the block with the digest in the path.
func (h Handlers) BlockByDigest(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	d, err := digest.FromHex(web.Param(r, "digest"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	b, ok := h.State.BlockByDigest(d)
	if !ok {
		return errs.NewTrusted(fmt.Errorf("block %s not found", d), http.StatusNotFound)
	}

	return web.Respond(ctx, w, toBlock(b), http.StatusOK)
}

// MineBlock mines a block carrying the posted data and adds it to the chain.
func (h Handlers) MineBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nb NewBlock
	if err := web.Decode(r, &nb); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if h.MiningTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.MiningTimeout)
		defer cancel()
	}

	h.Log.Infow("mine block", "traceid", v.TraceID, "data", nb.Data)

	b, err := h.State.MineNewBlock(ctx, nb.Data)
	if err != nil {
		switch {
		case errors.Is(err, block.ErrNotSolved), errors.Is(err, context.DeadlineExceeded):
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		case errors.Is(err, context.Canceled):

			// The client went away, there is no one to respond to.
			h.Log.Infow("mine block", "traceid", v.TraceID, "status", "client cancelled")
			return nil
		case block.IsValidationError(err):
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return err
	}

	return web.Respond(ctx, w, toBlock(b), http.StatusCreated)
}

// ProposeBlock takes a block mined elsewhere and adds it to the chain if it
// follows the current tip.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var blockData storage.BlockData
	if err := web.Decode(r, &blockData); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	b, err := storage.ToBlock(blockData)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode block: %w", err), http.StatusBadRequest)
	}

	if err := h.State.ProcessProposedBlock(b); err != nil {
		if block.IsValidationError(err) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return err
	}

	return web.Respond(ctx, w, toBlock(b), http.StatusCreated)
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the blockchain.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting to receive events and send them to the client.
	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
