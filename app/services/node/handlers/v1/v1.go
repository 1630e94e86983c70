// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/medchain/medchain/app/services/node/handlers/v1/anchorgrp"
	"github.com/medchain/medchain/foundation/events"
	"github.com/medchain/medchain/foundation/ledger/state"
	"github.com/medchain/medchain/foundation/web"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log    *zap.SugaredLogger
	Ledger *state.State
	Evts   *events.Events
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	agh := anchorgrp.Handlers{
		Log:    cfg.Log,
		Ledger: cfg.Ledger,
		WS:     websocket.Upgrader{},
		Evts:   cfg.Evts,
	}
	app.Handle(http.MethodPost, version, "/anchor", agh.Submit)
	app.Handle(http.MethodGet, version, "/anchor/:txid", agh.Query)
	app.Handle(http.MethodGet, version, "/anchor/type/:type", agh.QueryByType)
	app.Handle(http.MethodGet, version, "/chain/info", agh.Info)
	app.Handle(http.MethodGet, version, "/chain/validate", agh.Validate)
	app.Handle(http.MethodGet, version, "/events", agh.Events)
}
