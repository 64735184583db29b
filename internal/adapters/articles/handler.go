// Package articles exposes the article store over HTTP.
package articles

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"stockcore/pkg/domain"
)

const (
	collectionPath = "/articulos"
	greeting       = "¡Hola Mundo!"
)

// Service is the store surface the handler depends on.
type Service interface {
	List(ctx context.Context) (domain.Collection, error)
	Create(ctx context.Context, fields domain.Article) (domain.Article, error)
	Update(ctx context.Context, code string, partial domain.Article) (domain.Article, error)
	Delete(ctx context.Context, code string) (domain.Article, error)
}

// Handler routes article requests to a Service.
type Handler struct {
	Store  Service
	Logger *zap.Logger
}

// NewHandler constructs an article HTTP handler.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Store: s, Logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, http.StatusInternalServerError, "article store not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.EscapedPath(), "/")
	switch {
	case path == "":
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			methodNotAllowed(w, http.MethodGet, http.MethodHead)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(greeting))
	case path == collectionPath:
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case strings.HasPrefix(path, collectionPath+"/"):
		code, ok := articleCode(strings.TrimPrefix(path, collectionPath+"/"))
		if !ok {
			writeError(w, http.StatusNotFound, "route not found")
			return
		}
		switch r.Method {
		case http.MethodPut:
			h.handleUpdate(w, r, code)
		case http.MethodDelete:
			h.handleDelete(w, r, code)
		default:
			methodNotAllowed(w, http.MethodPut, http.MethodDelete)
		}
	default:
		writeError(w, http.StatusNotFound, "route not found")
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.List(r.Context())
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if list == nil {
		list = domain.Collection{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.readArticle(w, r)
	if !ok {
		return
	}
	created, err := h.Store.Create(r.Context(), fields)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, code string) {
	partial, ok := h.readArticle(w, r)
	if !ok {
		return
	}
	updated, err := h.Store.Update(r.Context(), code, partial)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, code string) {
	removed, err := h.Store.Delete(r.Context(), code)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

func (h *Handler) readArticle(w http.ResponseWriter, r *http.Request) (domain.Article, bool) {
	a, err := decodeArticle(w, r)
	if err == nil {
		return a, true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return domain.Article{}, false
	}
	h.logger().Debug("rejected request body", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusBadRequest, "request body must be a JSON object")
	return domain.Article{}, false
}

func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case domain.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger().Error("article request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// articleCode unescapes a single path segment. Unescaped slashes are not
// part of any article route.
func articleCode(segment string) (string, bool) {
	if segment == "" || strings.Contains(segment, "/") {
		return "", false
	}
	code, err := url.PathUnescape(segment)
	if err != nil {
		return "", false
	}
	return code, true
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
