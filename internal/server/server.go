package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/intakehq/referral-ocr/internal/checklist"
	"github.com/intakehq/referral-ocr/internal/common"
	"github.com/intakehq/referral-ocr/internal/pipeline"
	"github.com/intakehq/referral-ocr/internal/rules"
)

// Server wires the HTTP surface to the processing components.
type Server struct {
	processor *pipeline.Processor
	batch     *pipeline.Batch
	streams   *pipeline.Streams
	ruleStore *rules.Store
	store     *checklist.Store
	logger    *slog.Logger
}

func New(
	processor *pipeline.Processor,
	batch *pipeline.Batch,
	streams *pipeline.Streams,
	ruleStore *rules.Store,
	store *checklist.Store,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		processor: processor,
		batch:     batch,
		streams:   streams,
		ruleStore: ruleStore,
		store:     store,
		logger:    logger,
	}
}

// Routes builds the chi router for the service.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/extract", s.handleExtract)
	r.Post("/rules", s.handleAddRules)

	r.Route("/checklist", func(r chi.Router) {
		r.Get("/", s.handleListChecklist)
		r.Post("/", s.handleCreateChecklist)
		r.Get("/export", s.handleExportChecklist)
		r.Patch("/{id}", s.handleUpdateChecklist)
	})

	r.Route("/batches", func(r chi.Router) {
		r.Post("/", s.handleStartBatch)
		r.Get("/{id}/events", s.handleBatchEvents)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "error", err)
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps the application error taxonomy onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrTimeout):
		status = http.StatusGatewayTimeout
	}

	body := errorBody{Code: "INTERNAL", Message: "internal error"}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		body = errorBody{Code: appErr.Code, Message: appErr.Message}
	} else if status != http.StatusInternalServerError {
		body = errorBody{Code: http.StatusText(status), Message: err.Error()}
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, body)
}

func (s *Server) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.NewAppError("BAD_JSON", "request body is not valid JSON", common.ErrInvalidInput)
	}
	return nil
}
