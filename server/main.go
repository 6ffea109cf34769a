package main

import (
	"os"

	"github.com/go-kit/log"

	"go-currency-sync/config"
	"go-currency-sync/engine"
	"go-currency-sync/http"
	"go-currency-sync/limits"
	"go-currency-sync/transfergo"

	nhttp "net/http"
)

func main() {
	w := log.NewSyncWriter(os.Stderr)
	logger := log.NewLogfmtLogger(w)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	cfg := config.Load()

	table := limits.Default()
	if cfg.Limits.File != "" {
		loaded, err := limits.LoadFile(cfg.Limits.File)
		if err != nil {
			logger.Log("msg", "loading limits file", "error", err)
			os.Exit(1)
		}
		table = loaded
	}

	rateService := transfergo.NewCustomService(cfg.API.BaseURL, cfg.API.Timeout)
	rateService = transfergo.NewLoggingService(log.With(logger, "component", "transfergo_rest"), rateService)

	opts := []engine.Option{engine.WithQuiet(cfg.Engine.Quiet)}
	if cfg.Engine.AlwaysLive {
		opts = append(opts, engine.WithAlwaysLive())
	}

	handler := http.NewServer(rateService, table, log.With(logger, "component", "http"), opts...)

	logger.Log("msg", "listening", "addr", cfg.Server.Addr)
	if err := nhttp.ListenAndServe(cfg.Server.Addr, handler); err != nil {
		logger.Log("msg", "server stopped", "error", err)
		os.Exit(1)
	}
}
