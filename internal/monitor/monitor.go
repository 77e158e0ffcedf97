// Package monitor serves the health and metrics endpoints.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/krnews/internal/metrics"
)

// NewRouter returns the /health and /metrics routes backed by m.
func NewRouter(m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		stats := m.GetStats()
		status, code := "ok", http.StatusOK
		if !m.Healthy() {
			status, code = "error", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":     status,
			"last_run":   stats["last_run_time"],
			"last_error": stats["last_error"],
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, m.GetStats())
	})

	return r
}

// Serve runs the monitoring server on port until ctx is done.
func Serve(ctx context.Context, port string, m *metrics.Metrics) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           NewRouter(m),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("starting monitoring server", "port", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
