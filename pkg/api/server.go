// Zaparoo Playtime
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Playtime.
//
// Zaparoo Playtime is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Playtime is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Playtime.  If not, see <http://www.gnu.org/licenses/>.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/methods"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/middleware"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/validation"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/config"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/database"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/launcher"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/service/library"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/service/metrics"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/store"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/views"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

const (
	sessionViewsKey = "views"
	maxRequestBody  = 1 << 20
	shutdownTimeout = 5 * time.Second
)

var JSONRPCErrorParseError = models.ErrorObject{
	Code:    -32700,
	Message: "Parse error",
}
var JSONRPCErrorInvalidRequest = models.ErrorObject{
	Code:    -32600,
	Message: "Invalid Request",
}
var JSONRPCErrorMethodNotFound = models.ErrorObject{
	Code:    -32601,
	Message: "Method not found",
}
var JSONRPCErrorInvalidParams = models.ErrorObject{
	Code:    -32602,
	Message: "Invalid params",
}
var JSONRPCErrorInternalError = models.ErrorObject{
	Code:    -32603,
	Message: "Internal error",
}
var JSONRPCErrorServerError = models.ErrorObject{
	Code:    -32000,
	Message: "Server error",
}

// Application errors use the JSON-RPC server error range.
var (
	JSONRPCErrorGameNotFound = models.ErrorObject{
		Code:    -32001,
		Message: "Game not found",
	}
	JSONRPCErrorDuplicateGame = models.ErrorObject{
		Code:    -32002,
		Message: "Game with this name is already tracked",
	}
	JSONRPCErrorLaunchFailed = models.ErrorObject{
		Code:    -32003,
		Message: "Game could not be launched",
	}
	JSONRPCErrorSaveFailed = models.ErrorObject{
		Code:    -32004,
		Message: "Change applied but could not be saved",
	}
	JSONRPCErrorHistoryUnavailable = models.ErrorObject{
		Code:    -32005,
		Message: "Play history is unavailable",
	}
	JSONRPCErrorSessionRequired = models.ErrorObject{
		Code:    -32006,
		Message: "Method requires a websocket session",
	}
)

var ErrMethodNotFound = errors.New("method not found")

// errorObject maps a handler error to the error sent to the client.
func errorObject(err error) models.ErrorObject {
	var valErr *validation.Error
	switch {
	case errors.As(err, &valErr):
		return models.ErrorObject{Code: JSONRPCErrorInvalidParams.Code, Message: valErr.Error()}
	case errors.Is(err, validation.ErrMissingParams),
		errors.Is(err, validation.ErrInvalidParams),
		errors.Is(err, catalog.ErrInvalidPath):
		return JSONRPCErrorInvalidParams
	case errors.Is(err, ErrMethodNotFound):
		return JSONRPCErrorMethodNotFound
	case errors.Is(err, catalog.ErrNotFound):
		return JSONRPCErrorGameNotFound
	case errors.Is(err, catalog.ErrDuplicateName):
		return JSONRPCErrorDuplicateGame
	case errors.Is(err, launcher.ErrLaunchFailure):
		return JSONRPCErrorLaunchFailed
	case errors.Is(err, store.ErrIOFailure):
		return JSONRPCErrorSaveFailed
	case errors.Is(err, methods.ErrHistoryUnavailable):
		return JSONRPCErrorHistoryUnavailable
	case errors.Is(err, methods.ErrNoSession):
		return JSONRPCErrorSessionRequired
	default:
		return models.ErrorObject{Code: JSONRPCErrorServerError.Code, Message: err.Error()}
	}
}

func maybeUUID(req *models.RequestObject) uuid.UUID {
	if req.ID == nil {
		return uuid.Nil
	}
	return *req.ID
}

type Server struct {
	cfg     *config.Instance
	lib     *library.Library
	history database.HistoryDBI
	metrics *metrics.Metrics
	clock   clockwork.Clock
	methods *MethodMap
	melody  *melody.Melody
	limiter *middleware.IPRateLimiter
	router  chi.Router
}

type Option func(*Server)

// WithHistory enables games.history.
func WithHistory(db database.HistoryDBI) Option {
	return func(s *Server) {
		s.history = db
	}
}

// WithMetrics serves the registry on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

func NewServer(cfg *config.Instance, lib *library.Library, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		lib:     lib,
		clock:   clockwork.NewRealClock(),
		methods: NewDefaultMethodMap(),
		melody:  melody.New(),
		limiter: middleware.NewIPRateLimiter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.melody.Upgrader.CheckOrigin = s.checkOrigin
	s.melody.HandleConnect(s.handleConnect)
	s.melody.HandleDisconnect(s.handleDisconnect)
	s.melody.HandleMessage(middleware.WebSocketRateLimitHandler(s.limiter, s.handleWSMessage))
	s.router = s.newRouter()

	return s
}

// Handler returns the HTTP handler for every API route.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Methods() *MethodMap {
	return s.methods
}

// localOrigins are always allowed to open a websocket.
var localOrigins = []string{"localhost", "127.0.0.1", "::1"}

func (s *Server) allowedOrigins() []string {
	origins := []string{"http://localhost:*", "http://127.0.0.1:*"}
	return append(origins, s.cfg.AllowedOrigins()...)
}

// checkOrigin allows non-browser clients, local pages and configured
// origins to upgrade.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, host := range localOrigins {
		if u.Hostname() == host {
			return true
		}
	}
	for _, allowed := range s.cfg.AllowedOrigins() {
		if strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}
	log.Warn().Str("origin", origin).Msg("rejected websocket origin")
	return false
}

func (s *Server) newRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.NoCache)
	r.Use(middleware.HTTPIPFilterMiddleware(middleware.NewIPFilter(s.cfg.AllowedIPs())))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{},
	}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.HTTPRateLimitMiddleware(s.limiter))

		for _, path := range []string{"/api", "/api/v0.1"} {
			r.Get(path, func(w http.ResponseWriter, r *http.Request) {
				err := s.melody.HandleRequest(w, r)
				if err != nil {
					log.Error().Err(err).Str("path", r.URL.Path).Msg("handling websocket request")
				}
			})
			r.With(chimiddleware.Timeout(config.APIRequestTimeout)).Post(path, s.handlePostRequest)
		}
	})

	if s.metrics != nil {
		r.Get("/metrics", s.metrics.Handler().ServeHTTP)
	}

	return r
}

func (s *Server) env(ctx context.Context, remoteAddr string, session *views.Projections) requests.RequestEnv {
	return requests.RequestEnv{
		Context: ctx,
		Clock:   s.clock,
		Config:  s.cfg,
		Library: s.lib,
		History: s.history,
		Session: session,
		IsLocal: middleware.IsLoopbackAddr(remoteAddr),
	}
}

func (s *Server) handleRequest(env requests.RequestEnv, req *models.RequestObject) (any, error) {
	log.Debug().Str("method", req.Method).Msg("received request")

	fn, ok := s.methods.GetMethod(strings.ToLower(req.Method))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, req.Method)
	}

	env.ID = maybeUUID(req)
	env.Params = req.Params

	return fn(env)
}

func marshalResponse(id uuid.UUID, result any) ([]byte, error) {
	resp := models.ResponseObject{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("error marshalling response: %w", err)
	}
	return data, nil
}

func marshalError(id uuid.UUID, errObj models.ErrorObject) ([]byte, error) {
	resp := models.ResponseErrorObject{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &errObj,
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("error marshalling error response: %w", err)
	}
	return data, nil
}

func sendResponse(session *melody.Session, id uuid.UUID, result any) error {
	data, err := marshalResponse(id, result)
	if err != nil {
		return err
	}
	if err := session.Write(data); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func sendError(session *melody.Session, id uuid.UUID, errObj models.ErrorObject) error {
	log.Debug().Int("code", errObj.Code).Str("message", errObj.Message).Msg("sending error")
	data, err := marshalError(id, errObj)
	if err != nil {
		return err
	}
	if err := session.Write(data); err != nil {
		return fmt.Errorf("failed to write error response: %w", err)
	}
	return nil
}

func marshalNotification(method string, payload any) ([]byte, error) {
	var params json.RawMessage
	if payload != nil {
		var err error
		params, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("error marshalling notification params: %w", err)
		}
	}
	data, err := json.Marshal(models.RequestObject{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshalling notification: %w", err)
	}
	return data, nil
}

// handleConnect gives the session its own list and detail views. Both are
// pushed to the client whenever they change.
func (s *Server) handleConnect(session *melody.Session) {
	cat := s.lib.Catalog()
	projections := views.NewProjections(s.cfg.PageSize(), cat.VerifyExecutable)

	push := func(method string, payload any) {
		if session.IsClosed() {
			return
		}
		data, err := marshalNotification(method, payload)
		if err != nil {
			log.Error().Err(err).Str("method", method).Msg("marshalling view update")
			return
		}
		if err := session.Write(data); err != nil {
			log.Debug().Err(err).Str("method", method).Msg("dropped view update")
		}
	}
	projections.List.OnChange(func(r views.Result) {
		push(models.NotificationViewsList, models.NewListResponse(&r, s.clock.Now()))
	})
	projections.Detail.OnChange(func(d *views.Detail) {
		push(models.NotificationViewsDetail, models.NewDetailResponse(d, s.clock.Now()))
	})

	detach := projections.Attach(cat)
	session.Set(sessionViewsKey, projections)
	session.Set("detach", detach)

	log.Debug().Str("remote", session.Request.RemoteAddr).Msg("api client connected")
}

func (*Server) handleDisconnect(session *melody.Session) {
	if v, ok := session.Get("detach"); ok {
		if detach, ok := v.(func()); ok {
			detach()
		}
	}
	log.Debug().Str("remote", session.Request.RemoteAddr).Msg("api client disconnected")
}

func sessionViews(session *melody.Session) *views.Projections {
	v, ok := session.Get(sessionViewsKey)
	if !ok {
		return nil
	}
	p, _ := v.(*views.Projections)
	return p
}

func (s *Server) handleWSMessage(session *melody.Session, msg []byte) {
	// ping command for heartbeat operation
	if string(msg) == "ping" {
		if err := session.Write([]byte("pong")); err != nil {
			log.Error().Err(err).Msg("sending pong")
		}
		return
	}

	if !json.Valid(msg) {
		log.Error().Msg("data not valid json")
		if err := sendError(session, uuid.Nil, JSONRPCErrorParseError); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	var req models.RequestObject
	if err := json.Unmarshal(msg, &req); err != nil || req.JSONRPC != "2.0" || req.Method == "" {
		log.Error().Str("jsonrpc", req.JSONRPC).Msg("invalid request")
		if err := sendError(session, maybeUUID(&req), JSONRPCErrorInvalidRequest); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	if req.ID == nil {
		log.Info().Str("method", req.Method).Msg("received notification, ignoring")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.APIRequestTimeout)
	defer cancel()

	env := s.env(ctx, session.Request.RemoteAddr, sessionViews(session))
	resp, err := s.handleRequest(env, &req)
	if err != nil {
		log.Warn().Err(err).Str("method", req.Method).Msg("request failed")
		if err := sendError(session, *req.ID, errorObject(err)); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	if err := sendResponse(session, *req.ID, resp); err != nil {
		log.Error().Err(err).Msg("error sending response")
	}
}

// handlePostRequest serves a single JSON-RPC request over plain HTTP.
// There is no session, so per-client view methods are unavailable.
func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	write := func(data []byte, err error) {
		if err != nil {
			log.Error().Err(err).Msg("error marshalling post response")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(data); err != nil {
			log.Debug().Err(err).Msg("error writing post response")
		}
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		http.Error(w, "Unsupported Media Type", http.StatusUnsupportedMediaType)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		write(marshalError(uuid.Nil, JSONRPCErrorParseError))
		return
	}
	if !json.Valid(body) {
		write(marshalError(uuid.Nil, JSONRPCErrorParseError))
		return
	}

	var req models.RequestObject
	if err := json.Unmarshal(body, &req); err != nil || req.JSONRPC != "2.0" || req.Method == "" {
		write(marshalError(maybeUUID(&req), JSONRPCErrorInvalidRequest))
		return
	}

	if req.ID == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp, err := s.handleRequest(s.env(r.Context(), r.RemoteAddr, nil), &req)
	if err != nil {
		log.Warn().Err(err).Str("method", req.Method).Msg("request failed")
		write(marshalError(*req.ID, errorObject(err)))
		return
	}
	write(marshalResponse(*req.ID, resp))
}

// broadcastNotifications forwards broker notifications to every connected
// client until ctx is done or the channel is closed.
func (s *Server) broadcastNotifications(ctx context.Context, notifications <-chan models.Notification) {
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("closing notification broadcast via context cancellation")
			return
		case notif, ok := <-notifications:
			if !ok {
				return
			}
			data, err := json.Marshal(models.RequestObject{
				JSONRPC: "2.0",
				Method:  notif.Method,
				Params:  notif.Params,
			})
			if err != nil {
				log.Error().Err(err).Msg("marshalling notification request")
				continue
			}
			if err := s.melody.Broadcast(data); err != nil {
				log.Error().Err(err).Msg("broadcasting notification")
			}
		}
	}
}

// Serve listens on the configured address until ctx is done.
func (s *Server) Serve(ctx context.Context, notifications <-chan models.Notification) error {
	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.cfg.APIListen())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.APIListen(), err)
	}

	go s.broadcastNotifications(ctx, notifications)
	s.limiter.StartCleanup(ctx)

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		if err := s.melody.Close(); err != nil {
			log.Debug().Err(err).Msg("closing websocket sessions")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("error shutting down api server")
		}
	}()

	log.Info().Str("address", listener.Addr().String()).Msg("api server listening")
	err = srv.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("api server stopped: %w", err)
}
