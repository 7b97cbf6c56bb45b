// Package api is the HTTP/JSON control surface: webhook registration,
// outbound messages, health and a few read-only views for operators.
package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"wa-bridge/domain"
	"wa-bridge/errors"
	"wa-bridge/services"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

const maxBodyBytes = 1 << 20

type Server struct {
	log     *slog.Logger
	service services.IWebhookService
	server  *http.Server
}

func NewServer(log *slog.Logger, service services.IWebhookService) *Server {
	return &Server{log: log, service: service}
}

type filterRequest struct {
	ChatID    *string `json:"chatId"`
	GroupName *string `json:"groupName"`
}

// registerRequest accepts both "filter" and the older "filters" key,
// "filter" wins when both are sent.
type registerRequest struct {
	URL     string         `json:"url" binding:"required"`
	Filter  *filterRequest `json:"filter"`
	Filters *filterRequest `json:"filters"`
}

func (r registerRequest) toFilter() domain.Filter {
	f := r.Filter
	if f == nil {
		f = r.Filters
	}
	if f == nil {
		return domain.Filter{}
	}
	return domain.Filter{ChatID: f.ChatID, GroupName: f.GroupName}
}

type unregisterRequest struct {
	URL string `json:"url" binding:"required"`
}

type sendRequest struct {
	To      string `json:"to" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type subscriberResponse struct {
	URL       string    `json:"url"`
	ChatID    *string   `json:"chatId"`
	GroupName *string   `json:"groupName"`
	CreatedAt time.Time `json:"createdAt"`
}

// Handler exposes the routes without listening, tests mount it on httptest.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery(), s.logRequests, limitBody)

	router.POST("/register", s.handleRegister)
	router.POST("/unregister", s.handleUnregister)
	router.POST("/send", s.handleSend)
	router.GET("/health", s.handleHealth)
	router.GET("/webhooks", s.handleWebhooks)
	router.GET("/journal", s.handleJournal)
	router.GET("/stats", s.handleStats)
	return router
}

// Start listens on addr until Stop. Listen errors are logged, not returned.
func (s *Server) Start(addr string) {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.log.Info("Control surface listening", "addr", addr)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.log.Error("Control surface stopped", "error", err)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debug("HTTP request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start))
}

func limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	c.Next()
}

func (s *Server) handleRegister(c *gin.Context) {
	var body registerRequest
	if !s.bind(c, &body) {
		return
	}
	if err := s.service.Register(body.URL, body.toFilter()); err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "registered"})
}

func (s *Server) handleUnregister(c *gin.Context) {
	var body unregisterRequest
	if !s.bind(c, &body) {
		return
	}
	if err := s.service.Unregister(body.URL); err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unregistered"})
}

func (s *Server) handleSend(c *gin.Context) {
	var body sendRequest
	if !s.bind(c, &body) {
		return
	}
	if err := s.service.Send(c.Request.Context(), body.To, body.Message); err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// handleHealth is liveness only, it never checks the session.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleWebhooks(c *gin.Context) {
	subscribers := lo.Map(s.service.List(), func(sub domain.Subscriber, _ int) subscriberResponse {
		return subscriberResponse{
			URL:       sub.URL,
			ChatID:    sub.Filter.ChatID,
			GroupName: sub.Filter.GroupName,
			CreatedAt: sub.CreatedAt,
		}
	})
	c.JSON(http.StatusOK, subscribers)
}

func (s *Server) handleJournal(c *gin.Context) {
	var limit *int
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.abort(c, fmt.Errorf("%w: limit %q is not a number", errors.ErrInvalidInput, raw))
			return
		}
		limit = &n
	}
	entries, err := s.service.Journal(limit)
	if err != nil {
		s.abort(c, err)
		return
	}
	if entries == nil {
		entries = []domain.JournalEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Stats())
}

// bind writes the 400 itself and reports whether the handler can go on.
func (s *Server) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.abort(c, fmt.Errorf("%w: %w", errors.ErrInvalidInput, err))
		return false
	}
	return true
}

func (s *Server) abort(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "status", status, "error", err)
	} else {
		s.log.Info("Request rejected", "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// statusFor checks the most specific sentinels first, a send to a
// malformed recipient is a client error even though the send failed.
func statusFor(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest
	case stderrors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, errors.ErrSessionNotReady):
		return http.StatusServiceUnavailable
	case stderrors.Is(err, errors.ErrSendFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
