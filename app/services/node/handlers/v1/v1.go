// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"
	"time"

	"github.com/quartzledger/quartz/app/services/node/handlers/v1/public"
	"github.com/quartzledger/quartz/foundation/blockchain/state"
	"github.com/quartzledger/quartz/foundation/events"
	"github.com/quartzledger/quartz/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log           *zap.SugaredLogger
	State         *state.State
	Evts          *events.Events
	MiningTimeout time.Duration
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:           cfg.Log,
		State:         cfg.State,
		Evts:          cfg.Evts,
		MiningTimeout: cfg.MiningTimeout,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/chain", pbl.Chain)
	app.Handle(http.MethodGet, version, "/chain/status", pbl.Status)
	app.Handle(http.MethodGet, version, "/blocks/:digest", pbl.BlockByDigest)
	app.Handle(http.MethodPost, version, "/blocks", pbl.MineBlock)
	app.Handle(http.MethodPost, version, "/blocks/propose", pbl.ProposeBlock)
}
