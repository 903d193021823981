package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Soham2704/Pdf-chat/internal/chunkstore"
	"github.com/Soham2704/Pdf-chat/internal/models"
	"github.com/Soham2704/Pdf-chat/internal/storage"
	"github.com/Soham2704/Pdf-chat/internal/watcher"
	"github.com/Soham2704/Pdf-chat/pkg/utils"
)

type askRequest struct {
	Question string   `json:"question"`
	Files    []string `json:"files,omitempty"`
}

type evidenceView struct {
	ID             string  `json:"id"`
	SourceDocument string  `json:"sourceDocument"`
	PageNumber     int     `json:"pageNumber"`
	Snippet        string  `json:"snippet"`
	Relevance      float64 `json:"relevance"`
}

type askResponse struct {
	Intent   string         `json:"intent"`
	Answer   string         `json:"answer"`
	Chained  bool           `json:"chained,omitempty"`
	Evidence []evidenceView `json:"evidence"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		s.respondError(w, http.StatusBadRequest, "question is required")
		return
	}
	files := req.Files
	if len(files) == 0 {
		files = s.corpus.Sources()
	}
	s.logger.Debug("ask request",
		zap.String("question", utils.Truncate(req.Question, 120)),
		zap.Int("files", len(files)))

	answer, err := s.pipeline.Answer(r.Context(), req.Question, files)
	if err != nil {
		s.logger.Error("ask failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := askResponse{
		Intent:   string(answer.Intent),
		Answer:   answer.Text,
		Chained:  answer.Chained,
		Evidence: make([]evidenceView, 0, len(answer.Evidence)),
	}
	for _, ev := range answer.Evidence {
		resp.Evidence = append(resp.Evidence, evidenceView{
			ID:             ev.Chunk.ID,
			SourceDocument: ev.Chunk.SourceDocument,
			PageNumber:     ev.Chunk.PageNumber,
			Snippet:        ev.Chunk.Text,
			Relevance:      ev.Relevance(),
		})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type ingestRequest struct {
	Paths []string `json:"paths,omitempty"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	paths := req.Paths
	if len(paths) == 0 {
		var err error
		paths, err = watcher.ListPDFs(s.config.Watch.Directories)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if len(paths) == 0 {
		s.respondError(w, http.StatusBadRequest, "no PDF files to ingest")
		return
	}
	s.logger.Debug("ingest request", zap.Int("paths", len(paths)))

	summary, err := s.ingester.IngestFiles(r.Context(), paths)
	if err != nil {
		if errors.Is(err, chunkstore.ErrNoContent) {
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("ingest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, summary)
}

type highlightRequest struct {
	SourceDocument string `json:"sourceDocument"`
	PageNumber     int    `json:"pageNumber"`
	Snippet        string `json:"snippet"`
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req highlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourceDocument == "" || req.Snippet == "" {
		s.respondError(w, http.StatusBadRequest, "sourceDocument and snippet are required")
		return
	}
	if _, err := s.db.GetDocument(r.Context(), req.SourceDocument); err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}

	rects, err := s.lookup.Locate(r.Context(), req.SourceDocument, req.PageNumber, req.Snippet)
	if err != nil {
		s.logger.Error("highlight failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rects == nil {
		rects = []models.Rectangle{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"highlights": rects})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.db.ListDocuments(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.db.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunkCount, err := s.db.CountChunks(ctx)
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]interface{}{
		"documents":         docCount,
		"chunks":            chunkCount,
		"vector_index_size": s.corpus.Size(),
		"sources":           s.corpus.Sources(),
	}
	resp["config"] = map[string]interface{}{
		"chunk_size":           s.config.Ingest.ChunkSize,
		"chunk_overlap":        s.config.Ingest.ChunkOverlap,
		"embedding_model":      s.config.LLM.EmbeddingModel,
		"embedding_dimensions": s.config.LLM.Dimensions,
		"model":                s.config.LLM.Model,
		"database_path":        s.config.Storage.DatabasePath,
		"vector_index_path":    s.config.Storage.VectorIndexPath,
	}
	diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.VectorIndexPath,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
