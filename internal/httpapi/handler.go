// Package httpapi exposes a chain node over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/branched-services/go-crowdfund"
)

// Node is the chain the handler serves.
type Node interface {
	crowdfund.Backend
	Accounts() []common.Address
	BlockNumber() uint64
	Factories() []common.Address
	Factory(addr common.Address) (*crowdfund.Factory, bool)
	Campaign(addr common.Address) (*crowdfund.Campaign, bool)
}

// Handler routes HTTP requests to a Node. Transactions and calls take the
// same hex JSON shapes the client package sends.
type Handler struct {
	node   Node
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured. Metrics are served
// from gatherer when it is non-nil.
func NewHandler(node Node, logger *slog.Logger, gatherer prometheus.Gatherer) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{node: node, logger: logger.With("component", "httpapi")}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/deploy", h.handleDeploy)
		r.Post("/transactions", h.handleTransaction)
		r.Post("/call", h.handleCall)
		r.Get("/accounts", h.handleAccounts)
		r.Get("/accounts/{address}/balance", h.handleBalance)
		r.Get("/factories", h.handleFactories)
		r.Get("/factories/{address}/campaigns", h.handleFactoryCampaigns)
		r.Get("/campaigns/{address}", h.handleCampaign)
		r.Get("/campaigns/{address}/requests/{index}", h.handleRequest)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
