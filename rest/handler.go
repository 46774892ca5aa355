// Package rest exposes a presentation.ViewFactory as a JSON resource.
//
// Routes are relative to the mount point:
//
//	GET    /                list, query parameters become filters
//	POST   /                create
//	GET    /{id}            get
//	PUT    /{id}            update
//	PATCH  /{id}            update
//	DELETE /{id}            soft delete
//	POST   /{id}/reactivate reactivate
//
// The HTTP status is the presenter status. The Accept-Language header selects
// the language of error messages.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goliatone/go-clean-arch/entity"
	"github.com/goliatone/go-clean-arch/metrics"
	"github.com/goliatone/go-clean-arch/presentation"
	"go.uber.org/zap"
)

// ForceAllParam includes soft-deleted entities in a list.
const ForceAllParam = "force_all"

const maxBodyBytes = 1 << 20

// Envelope is the body of every response.
type Envelope struct {
	Data             any                 `json:"data"`
	Errors           []string            `json:"errors"`
	ValidationErrors map[string][]string `json:"validation_errors,omitempty"`
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for failed requests.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics records every request under m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// Handler serves one resource.
type Handler struct {
	factory presentation.ViewFactory
	logger  *zap.Logger
	metrics *metrics.Metrics
	mux     *http.ServeMux
}

// NewHandler creates a Handler over factory.
func NewHandler(factory presentation.ViewFactory, opts ...Option) *Handler {
	h := &Handler{
		factory: factory,
		logger:  zap.NewNop(),
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.mux.HandleFunc("GET /{$}", h.list)
	h.mux.HandleFunc("POST /{$}", h.create)
	h.mux.HandleFunc("GET /{id}", h.get)
	h.mux.HandleFunc("PUT /{id}", h.update)
	h.mux.HandleFunc("PATCH /{id}", h.update)
	h.mux.HandleFunc("DELETE /{id}", h.delete)
	h.mux.HandleFunc("POST /{id}/reactivate", h.reactivate)
	return h
}

// ServeHTTP stores the language negotiated from Accept-Language, if any, in
// the request context and dispatches to the resource routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		tag := presentation.MatchLanguage(accept)
		r = r.WithContext(presentation.ContextWithLanguage(r.Context(), tag))
	}

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(rec, r)

	route := r.Pattern
	if route == "" {
		route = "unmatched"
	}
	h.metrics.RecordHTTPRequest(r.Method, route, rec.status, time.Since(start))
}

func (h *Handler) view(ctx context.Context) presentation.View {
	return h.factory.NewView(ctx)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	forceAll := false
	if raw := query.Get(ForceAllParam); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.badRequest(w, ForceAllParam+" must be a boolean")
			return
		}
		forceAll = v
	}

	filters := entity.Fields{}
	for key, values := range query {
		if key == ForceAllParam || len(values) == 0 {
			continue
		}
		filters[key] = values[0]
	}

	resp, err := h.view(r.Context()).All(r.Context(), forceAll, filters)
	h.respond(w, r, resp, nil, err)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.view(r.Context()).Get(r.Context(), r.PathValue("id"))
	h.respond(w, r, resp, nil, err)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.decode(w, r)
	if !ok {
		return
	}
	resp, err := h.view(r.Context()).Create(r.Context(), fields)
	h.respond(w, r, resp.Response, resp.ValidationErrors, err)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.decode(w, r)
	if !ok {
		return
	}
	fields["id"] = r.PathValue("id")
	resp, err := h.view(r.Context()).Update(r.Context(), fields)
	h.respond(w, r, resp.Response, resp.ValidationErrors, err)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	resp, err := h.view(r.Context()).Delete(r.Context(), r.PathValue("id"))
	h.respond(w, r, resp, nil, err)
}

func (h *Handler) reactivate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.view(r.Context()).Reactivate(r.Context(), r.PathValue("id"))
	h.respond(w, r, resp, nil, err)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (entity.Fields, bool) {
	fields := entity.Fields{}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&fields)
	if errors.Is(err, io.EOF) {
		return entity.Fields{}, true
	}
	// a literal null decodes without error into a nil map
	if err != nil || fields == nil {
		h.badRequest(w, "request body must be a JSON object")
		return nil, false
	}
	return fields, true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, resp presentation.Response, validation map[string][]string, err error) {
	if err != nil {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Envelope{
			Data:   map[string]any{},
			Errors: []string{http.StatusText(http.StatusInternalServerError)},
		})
		return
	}

	errs := resp.Errors
	if errs == nil {
		errs = []string{}
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, Envelope{
		Data:             resp.Body,
		Errors:           errs,
		ValidationErrors: validation,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, Envelope{
		Data:   map[string]any{},
		Errors: []string{message},
	})
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
