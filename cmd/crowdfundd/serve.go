package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/branched-services/go-crowdfund"
	"github.com/branched-services/go-crowdfund/chain"
	"github.com/branched-services/go-crowdfund/internal/config"
	"github.com/branched-services/go-crowdfund/internal/httpapi"
	"github.com/branched-services/go-crowdfund/internal/journal"
)

func serveRun(_ *cobra.Command, _ []string, cfg *config.Config) {
	logger := commonRun(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	if err := run(ctx, cfg, logger, ln); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// node is a started chain with its journal.
type node struct {
	chain    *chain.Chain
	journal  *journal.Journal
	registry *prometheus.Registry
}

// startNode opens the journal, replays it onto a fresh dev chain and deploys
// the factory if the chain has none yet.
func startNode(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*node, error) {
	j, err := journal.Open(journal.Config{Path: cfg.JournalPath, Logger: logger})
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c := chain.New(
		chain.WithGenesis(chain.DevAccounts(cfg.DevAccounts, cfg.DevBalance)...),
		chain.WithJournal(j),
		chain.WithLogger(logger),
		chain.WithRegisterer(registry),
	)
	if _, err := c.Replay(ctx); err != nil {
		_ = j.Close()
		return nil, fmt.Errorf("replaying journal: %w", err)
	}

	if cfg.DeployFactory && len(c.Factories()) == 0 {
		deployer := c.Accounts()[0]
		factory, _, err := crowdfund.DeployFactory(ctx, c, deployer)
		if err != nil {
			_ = j.Close()
			return nil, fmt.Errorf("deploying factory: %w", err)
		}
		logger.Info("contract deployed",
			"component", programName,
			"address", factory.Address().Hex(),
			"deployer", deployer.Hex(),
		)
	}
	return &node{chain: c, journal: j, registry: registry}, nil
}

// run serves the HTTP API on ln until ctx is done, then shuts down within the
// configured timeout.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, ln net.Listener) error {
	timeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return err
	}
	n, err := startNode(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := n.journal.Close(); err != nil {
			logger.Error("closing journal", "error", err)
		}
	}()

	srv := &http.Server{
		Handler:           httpapi.NewHandler(n.chain, logger, n.registry).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			"component", programName,
			"addr", ln.Addr().String(),
		)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "component", programName)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the node and serve the HTTP API",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			serveRun(cmd, args, cfg)
		},
	}
	return cmd
}
