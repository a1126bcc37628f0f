package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Outcome  string `json:"outcome"`
}

type retrieveRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

type chunkResponse struct {
	Text        string `json:"text"`
	Source      string `json:"source"`
	Position    int    `json:"position"`
	ContentHash string `json:"content_hash"`
}

type retrieveResponse struct {
	Chunks  []chunkResponse `json:"chunks"`
	Context string          `json:"context"`
}

type ingestRequest struct {
	Dir string `json:"dir"`
}

type statsResponse struct {
	Chunks int `json:"chunks"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type handler struct {
	ports Ports
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ask handles POST /ask. Answers always come back with 200; the outcome
// says whether the provider produced them.
func (h *handler) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	turn := h.ports.Conversation.Turn(r.Context(), req.Query)
	respondJSON(w, http.StatusOK, askResponse{
		ID:       turn.ID,
		Question: turn.Question,
		Answer:   turn.Answer.Text,
		Outcome:  turn.Answer.Outcome.String(),
	})
}

// retrieve handles POST /retrieve.
func (h *handler) retrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "invalid request", domain.ErrEmptyQuery)
		return
	}

	var (
		chunks []domain.Chunk
		text   string
	)
	if req.TopK == nil {
		rc, err := h.ports.Retrieval.Retrieve(r.Context(), req.Query)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "retrieval failed", err)
			return
		}
		chunks, text = rc.Chunks, rc.Text
	} else {
		found, err := h.ports.Retrieval.Search(r.Context(), req.Query, *req.TopK)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "retrieval failed", err)
			return
		}
		rc := domain.NewRetrievalContext(found)
		chunks, text = rc.Chunks, rc.Text
	}

	resp := retrieveResponse{Chunks: make([]chunkResponse, len(chunks)), Context: text}
	for i, c := range chunks {
		resp.Chunks[i] = chunkResponse{
			Text:        c.Text,
			Source:      c.SourceLabel,
			Position:    c.Position,
			ContentHash: c.ContentHash,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// ingest handles POST /ingest.
func (h *handler) ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	dir := req.Dir
	if dir == "" {
		dir = h.ports.DefaultDir
	}

	report, err := h.ports.Ingester.Ingest(r.Context(), dir)
	if err != nil {
		var ingestErr *domain.IngestError
		if errors.As(err, &ingestErr) && ingestErr.Op != "store" {
			respondError(w, http.StatusBadRequest, "ingest failed", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "ingest failed", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// stats handles GET /stats.
func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	n, err := h.ports.Retrieval.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "count failed", err)
		return
	}
	respondJSON(w, http.StatusOK, statsResponse{Chunks: n})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("%s: %v", message, err)
	} else {
		logger.Debug("%s: %v", message, err)
	}
	msg := message
	if err != nil {
		msg = message + ": " + err.Error()
	}
	respondJSON(w, status, errorResponse{Error: http.StatusText(status), Message: msg})
}
