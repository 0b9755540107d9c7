package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/docex-labs/stakeholder-cli/internal/docstore"
	"github.com/docex-labs/stakeholder-cli/internal/extractor"
	"github.com/docex-labs/stakeholder-cli/internal/model"
	"github.com/docex-labs/stakeholder-cli/internal/query"
	"github.com/docex-labs/stakeholder-cli/internal/registry"
	"github.com/docex-labs/stakeholder-cli/internal/vector"
)

// apiServer bundles everything the HTTP handlers need.
type apiServer struct {
	jobs  *extractor.Manager
	asker *query.Orchestrator
	reg   *registry.Registry
	docs  docstore.Store
	index *vector.Index
}

func initAPI(ctx context.Context) (*apiServer, func(), error) {
	st, err := initStores(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := migrateStores(ctx, st); err != nil {
		st.Close()
		return nil, nil, err
	}

	index, err := initIndex()
	if err != nil {
		st.Close()
		return nil, nil, eris.Wrap(err, "open vector index")
	}

	olc, err := initOllama()
	if err != nil {
		st.Close()
		return nil, nil, eris.Wrap(err, "init ollama client")
	}

	orch, reg := initExtractor(olc)
	asker, err := initQuery(st.graph, index, olc)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	api := &apiServer{
		jobs:  extractor.NewManager(ctx, orch, st.docs, st.graph, index),
		asker: asker,
		reg:   reg,
		docs:  st.docs,
		index: index,
	}
	return api, st.Close, nil
}

func (s *apiServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/models", s.handleModels)
	r.Post("/documents", s.handlePutDocument)
	r.Get("/documents/{id}", s.handleGetDocument)
	r.Post("/extractions", s.handleStartExtraction)
	r.Get("/extractions/{id}", s.handleExtractionStatus)
	r.Get("/extractions/{id}/result", s.handleExtractionResult)
	r.Delete("/extractions/{id}", s.handleCancelExtraction)
	r.Post("/ask", s.handleAsk)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reg.All())
}

func (s *apiServer) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       string            `json:"id"`
		Title    string            `json:"title"`
		Text     string            `json:"text"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	doc := model.Document{ID: req.ID, Title: req.Title, Text: req.Text, Metadata: req.Metadata}
	if err := s.docs.PutDocument(r.Context(), doc); err != nil {
		zap.L().Error("store document", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "store document failed")
		return
	}
	if err := s.index.IndexDocuments(r.Context(), []model.Document{doc}); err != nil {
		zap.L().Error("index document", zap.String("id", doc.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "index document failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": doc.ID})
}

func (s *apiServer) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.docs.GetDocument(r.Context(), id)
	if err != nil {
		var notFound *docstore.NotFoundError
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		zap.L().Error("get document", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get document failed")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *apiServer) handleStartExtraction(w http.ResponseWriter, r *http.Request) {
	var req model.ExtractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DocumentID == "" {
		writeError(w, http.StatusBadRequest, "document_id is required")
		return
	}
	if req.Preference == "" {
		req.Preference = model.Preference(cfg.Extraction.Preference)
	}

	status, err := s.jobs.Start(r.Context(), req)
	if err != nil {
		var notFound *docstore.NotFoundError
		var unknownModel *registry.UnknownModelError
		switch {
		case errors.As(err, &notFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.As(err, &unknownModel):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			zap.L().Error("start extraction", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "start extraction failed")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, status)
}

func (s *apiServer) handleExtractionStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	status, err := s.jobs.Status(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *apiServer) handleExtractionResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := s.jobs.Result(id)
	if err != nil {
		var notFound *extractor.JobNotFoundError
		var notReady *extractor.NotReadyError
		var exhausted *extractor.ExhaustedError
		switch {
		case errors.As(err, &notFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.As(err, &notReady):
			writeError(w, http.StatusConflict, err.Error())
		case errors.As(err, &exhausted):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error": err.Error(),
				"trace": exhausted.Trace,
			})
		default:
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleCancelExtraction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.jobs.Cancel(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": "cancelling"})
}

func (s *apiServer) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := s.asker.Ask(r.Context(), req.Question)
	if err != nil {
		var noAnswer *query.NoAnswerError
		if errors.As(err, &noAnswer) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": "no answer could be produced",
				"trace": noAnswer.Trace,
			})
			return
		}
		zap.L().Error("ask", zap.String("question", req.Question), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, answer)
}
