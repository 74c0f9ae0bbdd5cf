package chain

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Chain.
type Option func(*Chain)

// WithGenesis funds the given accounts when the chain is created. Accounts
// reports them in this order.
func WithGenesis(accounts ...GenesisAccount) Option {
	return func(c *Chain) {
		c.genesis = append(c.genesis, accounts...)
	}
}

// WithLogger sets the logger. Contracts created on the chain log through it too.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegisterer registers the chain's Prometheus metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Chain) {
		c.promRegistry = reg
	}
}

// WithJournal records every accepted transaction in j before it executes.
func WithJournal(j Journal) Option {
	return func(c *Chain) {
		c.journal = j
	}
}
