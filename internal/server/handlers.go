package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/intakehq/referral-ocr/internal/checklist"
	"github.com/intakehq/referral-ocr/internal/common"
	"github.com/intakehq/referral-ocr/internal/entity"
	"github.com/intakehq/referral-ocr/internal/export"
	"github.com/intakehq/referral-ocr/internal/pipeline"
	"github.com/intakehq/referral-ocr/internal/rules"
)

type extractRequest struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type extractResponse struct {
	Document          entity.Document   `json:"document"`
	Assessment        entity.Assessment `json:"assessment"`
	SuggestedFilename string            `json:"suggested_filename"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Text == "" {
		s.writeError(w, common.ValidationError("text is required"))
		return
	}

	doc, verdict, err := s.processor.Process(r.Context(), req.Text, req.Confidence)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, extractResponse{
		Document:          doc,
		Assessment:        verdict,
		SuggestedFilename: export.SuggestedFilename(doc),
	})
}

func (s *Server) handleAddRules(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, common.WrapError(err, "read rule pack"))
		return
	}
	pack, err := rules.ParsePack(raw)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.ruleStore.Install(pack); err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("rule pack installed", "pack", pack.Name, "rules", len(pack.Rules))
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"pack":         pack.Name,
		"rules_added":  len(pack.Rules),
		"rules_active": s.ruleStore.Len(),
	})
}

type createChecklistRequest struct {
	Document entity.Document `json:"document"`
	Actions  []string        `json:"actions"`
}

func (s *Server) handleCreateChecklist(w http.ResponseWriter, r *http.Request) {
	var req createChecklistRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	rec, err := s.store.UpsertFromDocument(r.Context(), req.Document, req.Actions)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListChecklist(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := checklist.Filter{
		Status:          q.Get("status"),
		Carrier:         q.Get("carrier"),
		Search:          q.Get("search"),
		IncludeArchived: q.Get("include_archived") == "true",
	}

	records, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = []entity.ChecklistRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleUpdateChecklist(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, common.ValidationErrorf("invalid record id: %v", err))
		return
	}

	var req checklist.UpdateRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	rec, err := s.store.Update(r.Context(), id, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleExportChecklist(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context(), checklist.Filter{
		IncludeArchived: r.URL.Query().Get("include_archived") == "true",
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="checklist.xlsx"`)
	if err := export.WriteXLSX(w, records); err != nil {
		s.logger.Error("xlsx export failed", "error", err)
	}
}

type startBatchRequest struct {
	Inputs []pipeline.Input `json:"inputs"`
}

// handleStartBatch kicks off asynchronous processing and returns the batch
// id; progress is polled from the events endpoint.
func (s *Server) handleStartBatch(w http.ResponseWriter, r *http.Request) {
	var req startBatchRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if len(req.Inputs) == 0 {
		s.writeError(w, common.ValidationError("inputs are required"))
		return
	}

	// The batch outlives this request; detach from its cancellation.
	id := uuid.New()
	go s.batch.Run(context.WithoutCancel(r.Context()), id, req.Inputs)

	s.writeJSON(w, http.StatusAccepted, map[string]string{"batch_id": id.String()})
}

func (s *Server) handleBatchEvents(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, common.ValidationErrorf("invalid batch id: %v", err))
		return
	}

	stream, ok := s.streams.Get(id)
	if !ok {
		s.writeError(w, common.NotFoundError(fmt.Sprintf("batch %s", id)))
		return
	}

	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			s.writeError(w, common.ValidationError("offset must be a non-negative integer"))
			return
		}
	}

	events := stream.Events(offset)
	if events == nil {
		events = []pipeline.Event{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"events":      events,
		"next_offset": offset + len(events),
		"done":        stream.Done(),
	})
}
