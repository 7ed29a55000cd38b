package service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/w-h-a/knowledge"
	"github.com/w-h-a/knowledge/namespace"
	"github.com/w-h-a/knowledge/store"
)

// TenantHeader carries the caller's identity key; it becomes the
// namespace prefix when multi-tenancy is on.
const TenantHeader = "X-Api-Key-Id"

// Knowledge is the slice of the pipeline the HTTP surface needs.
type Knowledge interface {
	Ingest(ctx context.Context, documents []knowledge.Document, ns string) (int, error)
	Search(ctx context.Context, query string, ns string) ([]store.Match, error)
	Answer(ctx context.Context, question string, ns string) (knowledge.Answer, error)
	Chat(ctx context.Context, messages []knowledge.Message, ns string, opts ...knowledge.ChatOption) (knowledge.ChatResult, error)
	Reset(ctx context.Context) (store.Stats, error)
}

type Handler struct {
	knowledge   Knowledge
	multiTenant bool
	logger      *slog.Logger
}

func New(k Knowledge, opts ...Option) *Handler {
	if k == nil {
		panic("knowledge service is required")
	}

	options := NewOptions(opts...)

	return &Handler{
		knowledge:   k,
		multiTenant: options.MultiTenant,
		logger:      options.Logger,
	}
}

func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()

	router.Use(h.logRequests)

	router.HandleFunc("/upload", h.Upload).Methods(http.MethodPost)
	router.HandleFunc("/question-answer", h.QuestionAnswer).Methods(http.MethodPost)
	router.HandleFunc("/chat", h.Chat).Methods(http.MethodPost)
	router.HandleFunc("/search", h.Search).Methods(http.MethodPost)
	router.HandleFunc("/reset", h.Reset).Methods(http.MethodPost)

	return router
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if !h.decode(w, r, &req) {
		return
	}

	documents := make([]knowledge.Document, 0, len(req.Files))
	for _, file := range req.Files {
		documents = append(documents, knowledge.Document{
			Content:  file.Content,
			Path:     file.Path,
			Metadata: map[string]any{"url": file.Path},
		})
	}

	chunks, err := h.knowledge.Ingest(r.Context(), documents, h.namespaceFrom(r, req.scope))
	if err != nil {
		h.error(w, "Error updating vector store", err)
		return
	}

	h.write(w, http.StatusOK, uploadResponse{
		Message: "Upload successful",
		Chunks:  chunks,
	})
}

func (h *Handler) QuestionAnswer(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !h.decode(w, r, &req) {
		return
	}

	answer, err := h.knowledge.Answer(r.Context(), req.Question, h.namespaceFrom(r, req.scope))
	if err != nil {
		h.error(w, "Error querying vector store", err)
		return
	}

	h.write(w, http.StatusOK, questionResponse{
		Message:    "Query successful",
		Question:   answer.Question,
		Answer:     answer.Answer,
		References: answer.References,
	})
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !h.decode(w, r, &req) {
		return
	}

	opts := []knowledge.ChatOption{}
	if len(req.SystemPrompt) > 0 {
		opts = append(opts, knowledge.WithSystemPrompt(req.SystemPrompt))
	}
	if len(req.Model) > 0 {
		opts = append(opts, knowledge.WithModel(req.Model))
	}

	result, err := h.knowledge.Chat(r.Context(), req.Messages, h.namespaceFrom(r, req.scope), opts...)
	if err != nil {
		h.error(w, "Error querying vector store", err)
		return
	}

	h.write(w, http.StatusOK, chatResponse{
		Message:    "Query successful",
		Text:       result.Text,
		References: result.References,
		Messages:   result.Messages,
	})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !h.decode(w, r, &req) {
		return
	}

	matches, err := h.knowledge.Search(r.Context(), req.Query, h.namespaceFrom(r, req.scope))
	if err != nil {
		h.error(w, "Error querying vector store", err)
		return
	}

	h.write(w, http.StatusOK, searchResponse{
		Message: "Query successful",
		Data:    matches,
	})
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if _, err := h.knowledge.Reset(r.Context()); err != nil {
		h.error(w, "Error resetting vector store", err)
		return
	}

	h.write(w, http.StatusOK, messageResponse{
		Message: "Reset successful",
	})
}

// namespaceFrom prefers an explicit topic over a raw namespace field, then
// scopes by the caller's identity key when multi-tenancy is on.
func (h *Handler) namespaceFrom(r *http.Request, scope scope) string {
	ns := scope.Topic
	if len(ns) == 0 {
		ns = scope.Namespace
	}
	return namespace.Resolve(ns, r.Header.Get(TenantHeader), h.multiTenant)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Info("handled request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
