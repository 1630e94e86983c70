// Package anchorgrp maintains the group of handlers for anchoring
// transactions into the ledger and querying them back.
package anchorgrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/medchain/medchain/business/sys/validate"
	"github.com/medchain/medchain/business/web/errs"
	"github.com/medchain/medchain/foundation/events"
	"github.com/medchain/medchain/foundation/ledger/consensus"
	"github.com/medchain/medchain/foundation/ledger/database"
	"github.com/medchain/medchain/foundation/ledger/state"
	"github.com/medchain/medchain/foundation/web"
)

// Handlers manages the set of anchoring endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Ledger *state.State
	WS     websocket.Upgrader
	Evts   *events.Events
}

// Submit admits a transaction and immediately attempts finalization,
// returning the confirmation receipt. A failed quorum leaves the
// transaction pending and reports a conflict so the caller can retry.
func (h Handlers) Submit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req AnchorRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	tx := database.Tx{}
	for k, val := range req.Payload {
		tx[k] = val
	}
	tx[database.FieldType] = req.Type

	h.Log.Infow("anchor submit", "traceid", v.TraceID, "type", req.Type)

	receipt, err := h.Ledger.SubmitAndFinalize(tx)
	if err != nil {
		switch {
		case errors.Is(err, consensus.ErrConsensusNotReached):
			return errs.NewTrusted(err, http.StatusConflict)
		case errors.Is(err, consensus.ErrEmptyPool):
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return fmt.Errorf("finalizing anchor: %w", err)
	}

	return web.Respond(ctx, w, receipt, http.StatusCreated)
}

// Query returns the ledger location of the specified transaction, sealed
// blocks first, then the pending pool.
func (h Handlers) Query(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txID := web.Param(r, "txid")

	result, found := h.Ledger.QueryTransaction(txID)
	if !found {
		return errs.NewTrusted(fmt.Errorf("transaction %q not found", txID), http.StatusNotFound)
	}

	return web.Respond(ctx, w, result, http.StatusOK)
}

// QueryByType returns all sealed transactions of the specified type in
// block order.
func (h Handlers) QueryByType(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txType := web.Param(r, "type")

	results := h.Ledger.QueryByType(txType)
	if results == nil {
		results = []state.TxResult{}
	}

	return web.Respond(ctx, w, results, http.StatusOK)
}

// Info returns a summary of the ledger.
func (h Handlers) Info(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Ledger.Info(), http.StatusOK)
}

// Validate revalidates the whole chain and reports a structured reason for
// every failing block.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	faults := h.Ledger.Validate()

	resp := ValidateResponse{
		IsValid: len(faults) == 0,
		Faults:  faults,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to provide ledger events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(ev); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
