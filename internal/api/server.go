package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"reversal-alert/internal/strategy"
)

// StatusProvider exposes the in-memory bot state
type StatusProvider interface {
	Snapshot() strategy.Snapshot
}

// Server serves health and status endpoints for the hosting platform
type Server struct {
	router *gin.Engine
	http   *http.Server
}

// NewServer builds the router; call Start to listen on addr
func NewServer(addr string, state StatusProvider) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, state.Snapshot())
	})

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler is the underlying router, for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens in the background; errors other than shutdown go to errc
func (s *Server) Start(errc chan<- error) {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
}

// Shutdown stops the listener
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
