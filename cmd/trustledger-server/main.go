package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc/pool"

	server "github.com/agentrep/trustledger/internal"
	"github.com/agentrep/trustledger/internal/config"
	"github.com/agentrep/trustledger/internal/custody"
	"github.com/agentrep/trustledger/internal/eventbus"
	"github.com/agentrep/trustledger/internal/ledger"
	"github.com/agentrep/trustledger/internal/oracle"
	"github.com/agentrep/trustledger/internal/protocol"
	"github.com/agentrep/trustledger/pkg/cerr"
	"github.com/agentrep/trustledger/pkg/clog"
	"github.com/agentrep/trustledger/pkg/panicerr"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	store, err := config.OpenStorage(ctx, &env.StorageEnv)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}

	bus := eventbus.New()
	opts := []ledger.Option{ledger.WithEventBus(bus)}

	var fileRegistry *oracle.FileRegistry
	if env.OracleFile != "" {
		fileRegistry, err = oracle.NewFileRegistry(env.OracleFile)
		if err != nil {
			slog.Error("failed to load oracle file", "path", env.OracleFile, "error", err)
			os.Exit(1)
		}
		opts = append(opts, ledger.WithAuthorizer(fileRegistry))
	}

	l := ledger.New(store, opts...)
	if err := bootstrap(ctx, l, env.GenesisFile); err != nil {
		slog.Error("failed to bootstrap ledger", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(env, ledger.NewServer(l))
	dispatcher := custody.NewDispatcher(bus, custody.NewJournal())
	archive := eventbus.NewArchive(bus, store)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(panicerr.Worker("custody dispatcher", dispatcher.Start))
	p.Go(panicerr.Worker("event archive", archive.Start))
	if fileRegistry != nil {
		p.Go(panicerr.SafeContext("oracle file watcher", fileRegistry.Watch))
	}
	if env.NATSURL != "" {
		nc, err := eventbus.DialNATS(env.NATSURL)
		if err != nil {
			slog.Error("failed to connect nats", "error", err)
			os.Exit(1)
		}
		forwarder := eventbus.NewNATSForwarder(bus, nc, env.NATSSubject)
		p.Go(panicerr.SafeContext("nats forwarder", func(ctx context.Context) error {
			forwarder.Start(ctx)
			return nc.Drain()
		}))
	}
	p.Go(panicerr.SafeContext("http server", func(ctx context.Context) error {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}))
	p.Go(func(ctx context.Context) error {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := p.Wait(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// bootstrap applies the genesis file to a ledger that has none yet.
func bootstrap(ctx context.Context, l *ledger.Ledger, genesisFile string) error {
	_, err := l.Config(ctx)
	if err == nil {
		return nil
	}
	if !cerr.IsCode(err, cerr.FailedPrecondition) {
		return err
	}
	g, err := protocol.LoadGenesis(genesisFile)
	if err != nil {
		return err
	}
	slog.Info("applying genesis", "path", genesisFile, "oracles", len(g.Oracles))
	return l.Genesis(ctx, g)
}
