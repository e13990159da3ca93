package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmhodges/clock"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"georemind/config"
	"georemind/httpapi"
	"georemind/locate"
	"georemind/notify"
	"georemind/schedule"
	"georemind/store"
	"georemind/tick"
)

func getLogger() (*zap.SugaredLogger, func() error) {
	logger, _ := zap.NewDevelopment(zap.Fields(zap.String("ns", "georemind")))
	return logger.Sugar(), logger.Sync
}

func main() {
	logger, syncLogs := getLogger()
	defer syncLogs()

	_ = godotenv.Load()

	cfgPath := flag.String("config", os.Getenv("GEOREMIND_CONFIG"), "path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatalw("failed loading configuration", "err", err)
	}

	var kv store.KV
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPgKV(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalw("failed to initialize database", "err", err)
		}
		defer pg.Close()
		kv = pg
	} else {
		logger.Warn("no database configured; state will not survive a restart")
		kv = store.NewMemKV()
	}

	clk := clock.New()
	cache := store.NewEventCache(kv, logger)
	ledger := store.NewNotificationLedger(kv, cfg.DedupWindow, cfg.Retention, logger)
	position := locate.NewLastReport(cfg.LocationMaxAge, clk)

	var notifier notify.Notifier
	if cfg.Telegram.Token != "" {
		tn, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
		if err != nil {
			logger.Fatalw("failed to initialize Telegram delivery", "err", err)
		}
		notifier = tn
	} else {
		logger.Warn("no Telegram credentials configured; reminders will only be logged")
		notifier = &notify.Log{Logger: logger}
	}

	sched := schedule.New(schedule.Options{
		Lead:            cfg.Lead(),
		Tolerance:       cfg.Tolerance(),
		RadiusKm:        cfg.RadiusKm,
		TickTimeout:     cfg.TickTimeout,
		LocationTimeout: cfg.LocationTimeout,
	}, cache, ledger, position, notifier, clk, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infow("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	api := httpapi.NewServer(cache, position, sched, logger)
	srv := &http.Server{Addr: cfg.Listen, Handler: api.Router()}
	go func() {
		logger.Infof("ingest API listening on %s", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorw("ingest API stopped", "err", err)
			cancel()
		}
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	if cfg.TickCron != "" {
		if err := tick.RunCron(ctx, cfg.TickCron, sched.OnTick, logger); err != nil {
			logger.Fatalw("invalid tick schedule", "cron", cfg.TickCron, "err", err)
		}
	} else {
		tick.RunInterval(ctx, cfg.TickInterval, sched.OnTick, logger)
	}
}
