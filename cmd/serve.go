package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/room-broker/config"
	"github.com/cwrk-planet/room-broker/internal/metrics"
	"github.com/cwrk-planet/room-broker/internal/provider"
	"github.com/cwrk-planet/room-broker/internal/security"
	"github.com/cwrk-planet/room-broker/internal/service"
	httpx "github.com/cwrk-planet/room-broker/internal/transport/http"
	"github.com/cwrk-planet/room-broker/internal/transport/ws"
	"github.com/cwrk-planet/room-broker/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

func initLogger(cfg *config.Config) {
	logger.Init(logger.Config{
		Env:       logger.ParseEnv(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
}

func serve(c *cli.Context) error {
	// --- config ---
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	initLogger(cfg)
	slog.Info("starting room-broker",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version, "storage", cfg.Storage.Driver)
	for _, w := range cfg.Warnings() {
		slog.Warn("config", "warning", w)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- storage ---
	st, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer st.close()

	// --- metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// --- services ---
	prov := provider.NewClient(provider.Config{
		BaseURL: cfg.Provider.BaseURL,
		Secret:  cfg.Provider.Secret,
		Timeout: cfg.Provider.Timeout,
	})
	signer := security.NewRoomTokenSigner(cfg.Provider.AccessKey, cfg.Provider.Secret, cfg.Token.TTL)

	roomSvc := service.NewRoomService(prov, st.rooms, m)
	tokenSvc := service.NewTokenService(signer, cfg.Token.AllowedRoles, m)
	presenceSvc := service.NewPresenceService(st.rooms, st.participants, m)

	// --- WS ---
	var hub *ws.Hub
	if cfg.Presence.Broadcast {
		hub = ws.NewHub()
	}
	wsServer := ws.NewServer(presenceSvc, hub, m)
	wsServer.SetPingInterval(cfg.Presence.PingInterval)

	// --- HTTP ---
	router := httpx.NewRouter(httpx.Deps{
		Handler:        httpx.NewHandler(roomSvc, tokenSvc),
		WS:             wsServer,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal")
	case err := <-errCh:
		slog.Error("server error", "err", err)
		return err
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctxShutdown); err != nil {
		slog.Warn("http shutdown", "err", err)
	}
	// хайджекнутые WS-соединения закрываем до st.close(), чтобы leave не шли в закрытое хранилище
	if err := wsServer.Shutdown(ctxShutdown); err != nil {
		slog.Warn("ws shutdown", "err", err)
	}
	slog.Info("stopped")

	return nil
}

func createToken(c *cli.Context) error {
	cfg, err := config.LoadSigningConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	signer := security.NewRoomTokenSigner(cfg.Provider.AccessKey, cfg.Provider.Secret, cfg.Token.TTL)
	tokenSvc := service.NewTokenService(signer, cfg.Token.AllowedRoles, nil)

	tok, err := tokenSvc.IssueToken(c.Context, c.String("room"), c.String("role"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, tok)
	return err
}

func verifyToken(c *cli.Context) error {
	cfg, err := config.LoadSigningConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	signer := security.NewRoomTokenSigner(cfg.Provider.AccessKey, cfg.Provider.Secret, cfg.Token.TTL)
	claims, err := signer.ParseAndValidate(c.String("token"))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(claims)
}
