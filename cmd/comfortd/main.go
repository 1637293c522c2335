package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/delonghi-comfort/comfortd/internal/auth"
	"github.com/delonghi-comfort/comfortd/internal/config"
	"github.com/delonghi-comfort/comfortd/internal/core"
	"github.com/delonghi-comfort/comfortd/internal/mqtt"
	"github.com/delonghi-comfort/comfortd/internal/rate"
	"github.com/delonghi-comfort/comfortd/internal/server"
	"github.com/delonghi-comfort/comfortd/plugins/delonghi"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	plugins := []core.Plugin{
		delonghi.NewPlugin(),
	}
	if err := core.ValidatePlugins(plugins); err != nil {
		log.Fatalf("plugins: %v", err)
	}
	for _, plugin := range plugins {
		if plugin.Health() != core.HealthHealthy {
			log.Printf("plugin %s unhealthy: %s", plugin.ID(), plugin.HealthMessage())
		}
	}

	shared := append(auth.MetricsCollectors(), rate.MetricsCollectors()...)
	shared = append(shared, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "comfortd_build_info",
		Help: "Build information",
	}, func() float64 { return 1 }))
	metricsRegistry := core.MetricsRegistry(plugins, shared...)

	registry := core.NewRegistry(plugins)
	httpServer := server.NewHTTPServer(cfg.HTTPAddr, server.NewRouter(registry, plugins, metricsRegistry))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MQTTEnabled() {
		go runBridge(ctx, cfg, plugins)
	}

	go func() {
		log.Printf("comfortd listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}

func runBridge(ctx context.Context, cfg config.Config, plugins []core.Plugin) {
	var client *delonghi.Client
	for _, plugin := range plugins {
		if p, ok := plugin.(delonghi.Plugin); ok && p.Client() != nil {
			client = p.Client()
		}
	}
	if client == nil {
		log.Printf("bridge: delonghi plugin unavailable, not starting")
		return
	}

	broker, err := mqtt.NewClient(mqtt.Config{
		BrokerURL: cfg.MQTTBrokerURL,
		Username:  cfg.MQTTUsername,
		Password:  cfg.MQTTPassword,
	})
	if err != nil {
		log.Printf("bridge: %v", err)
		return
	}
	defer broker.Close()

	bridge := delonghi.NewBridge(client, broker, cfg.MQTTTopicPrefix, cfg.PollInterval)
	if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("bridge: %v", err)
	}
}
