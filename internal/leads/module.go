package leads

import (
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/leads/handler"
	"leadflow_backend/internal/sheets"
	"leadflow_backend/platform/logger"
)

// Module bundles the lead intake workflow and its HTTP surface.
type Module struct {
	handler *handler.Handler
}

var _ apphttp.Module = (*Module)(nil)

// NewModule wires the intake handler. workflow and store are nil when
// startup could not build them; the routes then answer 503 instead of
// crashing the process.
func NewModule(workflow *Workflow, store *sheets.Store, health handler.Health, log *logger.Logger) *Module {
	var processor handler.Processor
	if workflow != nil {
		processor = workflow
	}
	var reader handler.Store
	if store != nil {
		reader = store
	}
	return &Module{handler: handler.New(processor, reader, health, log)}
}

// Name identifies the module in startup logs.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts the intake routes on the engine root.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Engine, ctx.WebhookLimiter)
}
