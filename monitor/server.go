package monitor

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Config of the monitoring server
type Config struct {
	Enabled bool
	Port    int
}

var (
	lock             sync.Mutex
	monitoringServer *http.Server
)

// LoopProfilingServer serves /metrics until ShutdownServer is called
func LoopProfilingServer(cfg Config) {
	if !cfg.Enabled {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	lock.Lock()
	monitoringServer = srv
	lock.Unlock()
	log.Info().Str("section", "monitor").Int("port", cfg.Port).Msg("Starting monitoring server")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Str("section", "monitor").Msg("Monitoring server stopped")
	}
}

// ShutdownServer stops the monitoring server if it was started
func ShutdownServer() {
	lock.Lock()
	srv := monitoringServer
	lock.Unlock()
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Str("section", "monitor").Str("action", "terminate").Msg("Unable to shutdown monitoring server")
	}
}
