// Package server exposes an in-memory KTX texture store over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/woozymasta/ktx"
	"github.com/woozymasta/ktx/internal/logger"
)

// DefaultMaxUploadBytes limits POST /v1/textures bodies.
const DefaultMaxUploadBytes = 256 << 20

// Config configures Server.
type Config struct {
	// MaxUploadBytes caps uploaded container size, both as sent and after an
	// LZ4 or zstd wrapper is removed. 0 means DefaultMaxUploadBytes.
	MaxUploadBytes int64
	// ReadHeaderTimeout is applied by Start. 0 means 30s.
	ReadHeaderTimeout time.Duration
}

// Server serves a Store.
type Server struct {
	store     *Store
	log       logger.Logger
	maxUpload int64
	timeout   time.Duration
}

// ErrorBody is the JSON error payload.
type ErrorBody struct {
	Error string `json:"error"`
}

// CreatedBody is returned by POST /v1/textures.
type CreatedBody struct {
	ID     string `json:"id"`
	Levels int    `json:"levels"`
	Size   int    `json:"size"`
}

// New creates a Server. A nil store starts empty, a nil logger discards.
func New(store *Store, log logger.Logger, cfg Config) *Server {
	if store == nil {
		store = NewStore()
	}
	if log == nil {
		log = logger.Discard()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 30 * time.Second
	}
	return &Server{
		store:     store,
		log:       log.With("component", "server"),
		maxUpload: cfg.MaxUploadBytes,
		timeout:   cfg.ReadHeaderTimeout,
	}
}

// Store returns the served store.
func (s *Server) Store() *Store {
	return s.store
}

// Register mounts the texture routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/textures", s.handleCreate)
	e.GET("/v1/textures", s.handleList)
	e.GET("/v1/textures/:id", s.handleGet)
	e.GET("/v1/textures/:id/data", s.handleData)
	e.GET("/v1/textures/:id/levels/:level", s.handleLevel)
	e.DELETE("/v1/textures/:id", s.handleDelete)
}

// Echo returns an echo instance serving s behind the recover middleware and
// any extra middleware.
func (s *Server) Echo(extra ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(extra...)
	s.Register(e)
	return e
}

// Start listens on addr until ctx is done, then releases all textures.
func (s *Server) Start(ctx context.Context, addr string) error {
	e := s.Echo(middleware.RequestLogger())

	s.log.Info("starting server", "address", addr)
	sc := echo.StartConfig{
		Address: addr,
		BeforeServeFunc: func(srv *http.Server) error {
			srv.ReadHeaderTimeout = s.timeout
			return nil
		},
	}
	err := sc.Start(ctx, e)
	if closeErr := s.store.Close(); closeErr != nil {
		s.log.Warn("release textures", "error", closeErr)
	}
	return err
}

func (s *Server) handleCreate(c *echo.Context) error {
	body := io.LimitReader(c.Request().Body, s.maxUpload+1)
	data, err := io.ReadAll(body)
	if err != nil {
		return writeError(c, http.StatusBadRequest, fmt.Sprintf("read body: %v", err))
	}
	if int64(len(data)) > s.maxUpload {
		return writeError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("container exceeds %d bytes", s.maxUpload))
	}

	k, err := ktx.DecodeWithOptions(bytes.NewReader(data), &ktx.ReadOptions{MaxSize: s.maxUpload})
	if err != nil {
		s.log.Debug("rejected upload", "error", err)
		if errors.Is(err, ktx.ErrTooLarge) {
			return writeError(c, http.StatusRequestEntityTooLarge, err.Error())
		}
		return writeError(c, http.StatusBadRequest, err.Error())
	}

	created := CreatedBody{Levels: k.NumLevels(), Size: k.Storage().Len()}
	created.ID = s.store.Add(k, c.QueryParam("name"))
	s.log.Info("stored texture", "id", created.ID, "levels", created.Levels, "size", created.Size)

	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleList(c *echo.Context) error {
	return c.JSON(http.StatusOK, s.store.List())
}

func (s *Server) handleGet(c *echo.Context) error {
	r, err := s.store.Report(c.Param("id"))
	if err != nil {
		return s.writeStoreError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) handleData(c *echo.Context) error {
	data, err := s.store.Container(c.Param("id"))
	if err != nil {
		return s.writeStoreError(c, err)
	}
	return c.Blob(http.StatusOK, "image/ktx", data)
}

func (s *Server) handleLevel(c *echo.Context) error {
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil || level < 0 {
		return writeError(c, http.StatusBadRequest, fmt.Sprintf("invalid level %q", c.Param("level")))
	}

	data, err := s.store.Level(c.Param("id"), level)
	if err != nil {
		return s.writeStoreError(c, err)
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, data)
}

func (s *Server) handleDelete(c *echo.Context) error {
	id := c.Param("id")
	if err := s.store.Delete(id); err != nil {
		return s.writeStoreError(c, err)
	}
	s.log.Info("deleted texture", "id", id)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) writeStoreError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ktx.ErrLevelOutOfRange):
		return writeError(c, http.StatusNotFound, err.Error())
	default:
		s.log.Error("store", "error", err)
		return writeError(c, http.StatusInternalServerError, err.Error())
	}
}

func writeError(c *echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorBody{Error: msg})
}
