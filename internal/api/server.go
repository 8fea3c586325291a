/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package api implements the HTTP surface of the agent
package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nl2sql-agent/internal/config"
	"nl2sql-agent/internal/logging"
)

const (
	// ServerName is reported by the health endpoint
	ServerName = "nl2sql-agent"

	// ServerVersion is reported by the health endpoint
	ServerVersion = "1.0.0"
)

// Server serves the HTTP API
type Server struct {
	cfg        config.HTTPConfig
	httpServer *http.Server
}

// NewRouter builds the gin engine with every route registered
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Metrics(), AccessLog())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"server":  ServerName,
			"version": ServerVersion,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/get", h.HandleGet)

	api := router.Group("/api")
	{
		api.POST("/query", h.HandleQuery)
		api.GET("/databases", h.HandleListDatabases)
	}

	return router
}

// NewServer creates a server for the handler using the HTTP settings
func NewServer(cfg config.HTTPConfig, h *Handler) *Server {
	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Address,
			Handler:           NewRouter(h),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run listens until the server is shut down. It returns nil after a clean
// Shutdown.
func (s *Server) Run() error {
	var err error
	if s.cfg.TLS.Enabled {
		tlsConfig, tlsErr := loadTLSConfig(s.cfg.TLS)
		if tlsErr != nil {
			return fmt.Errorf("failed to load TLS config: %w", tlsErr)
		}
		s.httpServer.TLSConfig = tlsConfig

		logging.Info("http_server_starting", "address", s.cfg.Address, "tls", true)
		err = s.httpServer.ListenAndServeTLS("", "")
	} else {
		logging.Info("http_server_starting", "address", s.cfg.Address, "tls", false)
		err = s.httpServer.ListenAndServe()
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// loadTLSConfig loads the certificate and key
func loadTLSConfig(cfg config.TLSConfig) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate and key: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
