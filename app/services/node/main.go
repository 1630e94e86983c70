package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"

	"github.com/medchain/medchain/app/services/node/handlers"
	"github.com/medchain/medchain/foundation/events"
	"github.com/medchain/medchain/foundation/ledger/consensus"
	"github.com/medchain/medchain/foundation/ledger/database/storage"
	"github.com/medchain/medchain/foundation/ledger/state"
	"github.com/medchain/medchain/foundation/logger"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		Ledger struct {
			Strategy     string   `conf:"default:pow"`
			Difficulty   int      `conf:"default:2"`
			SnapshotPath string   `conf:"default:zledger/snapshot.json"`
			Validators   []string `conf:"help:validator ids for the quorum vote strategy"`
			Stakes       []string `conf:"help:id-colon-stake pairs for the stake weighted strategy"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Ledger Support

	// The events package provides the fan out of ledger events to any
	// registered websocket client and to the logs.
	evts := events.New()
	defer evts.Shutdown()

	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
	}

	stakes, err := parseStakes(cfg.Ledger.Stakes)
	if err != nil {
		return fmt.Errorf("parsing stakes: %w", err)
	}

	strategy, err := consensus.New(consensus.Config{
		Kind:       cfg.Ledger.Strategy,
		Difficulty: cfg.Ledger.Difficulty,
		Stakes:     stakes,
		Validators: cfg.Ledger.Validators,
		EvHandler:  ev,
	})
	if err != nil {
		return fmt.Errorf("constructing consensus strategy: %w", err)
	}

	store, err := storage.NewDisk(cfg.Ledger.SnapshotPath)
	if err != nil {
		return fmt.Errorf("constructing snapshot store: %w", err)
	}

	ledger, err := state.New(state.Config{
		Strategy:  strategy,
		Store:     store,
		EvHandler: ev,
		Evts:      evts,
	})
	if err != nil {
		return fmt.Errorf("constructing ledger: %w", err)
	}

	// =========================================================================
	// Service Start/Stop Support

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, handlers.DebugMux(build, log)); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing public API support")

	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Ledger:   ledger,
		Evts:     evts,
	})

	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// parseStakes converts id:stake pairs from the configuration into the
// consensus stake table entries.
func parseStakes(pairs []string) ([]consensus.Stake, error) {
	var stakes []consensus.Stake
	for _, pair := range pairs {
		id, value, found := strings.Cut(pair, ":")
		if !found {
			return nil, fmt.Errorf("stake %q is not an id:stake pair", pair)
		}

		stake, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("stake %q: %w", pair, err)
		}

		stakes = append(stakes, consensus.Stake{Validator: id, Stake: stake})
	}

	return stakes, nil
}
