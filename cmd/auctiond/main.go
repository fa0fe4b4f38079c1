package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openhall/gavel/params"
	"github.com/openhall/gavel/pkg/api"
	"github.com/openhall/gavel/pkg/auction"
	"github.com/openhall/gavel/pkg/settle"
	"github.com/openhall/gavel/pkg/storage"
	"github.com/openhall/gavel/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("")

	logger, err := util.NewLoggerWithFile(cfg.Node.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.Node.LogFile)

	// ---- Persistence ----
	store, err := storage.NewStore(cfg.Node.DBPath)
	if err != nil {
		sugar.Fatalw("store_open_failed", "path", cfg.Node.DBPath, "err", err)
	}
	defer store.Close()

	// ---- Settlement bank (receipts journaled to the store) ----
	bank := settle.NewBank(store, sugar)

	engineParams := auction.Params{
		MinRaiseBps: cfg.Auction.MinRaiseBps,
		FeeBps:      cfg.Auction.FeeBps,
	}

	// ---- Engine: resume from snapshot if one exists ----
	var engine *auction.Auction
	snap, err := store.LoadSnapshot()
	if err != nil {
		sugar.Fatalw("snapshot_load_failed", "err", err)
	}
	if snap != nil {
		engine, err = auction.Restore(*snap, engineParams, util.RealClock{}, bank, nil, sugar)
		if err != nil {
			sugar.Fatalw("snapshot_restore_failed", "err", err)
		}
		sugar.Infow("auction_resumed",
			"state", engine.State().String(),
			"deadline", engine.Deadline(),
			"bidders", len(engine.ListBids()))
	} else {
		engine, err = auction.New(cfg.Auction.Duration, engineParams, util.RealClock{}, bank, nil, sugar)
		if err != nil {
			sugar.Fatalw("auction_create_failed", "err", err)
		}
		sugar.Infow("auction_created",
			"duration", cfg.Auction.Duration,
			"deadline", engine.Deadline(),
			"min_raise_bps", cfg.Auction.MinRaiseBps,
			"fee_bps", cfg.Auction.FeeBps)
	}

	// ---- API server ----
	apiServer := api.NewServer(engine, store, engineParams, sugar)

	// Notifications fan out to the log, the journal and WebSocket clients.
	engine.SetSink(auction.MultiSink{
		auction.LogSink{Log: sugar},
		storage.JournalSink{Store: store, Log: sugar},
		apiServer.Sink(),
	})

	// Persist a snapshot after every mutation.
	engine.OnChange = func(s auction.Snapshot) {
		if err := store.SaveSnapshot(s); err != nil {
			sugar.Errorw("snapshot_save_failed", "err", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := apiServer.Start(cfg.Node.APIAddr); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	// Progress logging loop
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sugar.Info("shutting down")
			return
		case <-ticker.C:
			leader := engine.Leader()
			sugar.Infow("auction_progress",
				"state", engine.State().String(),
				"remaining", time.Until(engine.Deadline()).Round(time.Second).String(),
				"leading_amount", leader.Amount,
				"bidders", len(engine.ListBids()),
				"total_held", engine.TotalHeld())
		}
	}
}
