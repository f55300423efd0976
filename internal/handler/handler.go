package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmorgan81/fourpanel/internal/image"
	"github.com/dmorgan81/fourpanel/internal/log"
	"github.com/dmorgan81/fourpanel/internal/page"
	"github.com/dmorgan81/fourpanel/internal/panel"
	"github.com/dmorgan81/fourpanel/internal/wordlist"
	"github.com/samber/do"
)

const (
	PanelPath  = "/api/v1/make4pannel"
	HealthPath = "/api/v1/health"

	msgWordRequired  = "Word parameter is required"
	msgWordInvalid   = "Word is not a recognized dictionary word"
	msgGenerateError = "Failed to generate 4-panel representation"
)

type Generator interface {
	Generate(context.Context, string) ([]byte, error)
}

type Params struct {
	Generator  Generator
	Dictionary *wordlist.Dictionary
	Validate   bool
	Templator  *page.Templator
	StaticDir  string
	CORSOrigin string
	Logger     *slog.Logger
}

type Handler struct {
	generator  Generator
	dictionary *wordlist.Dictionary
	validate   bool
	templator  *page.Templator
	corsOrigin string
	logger     *slog.Logger
	mux        *http.ServeMux
}

func NewHandler(i *do.Injector) (*Handler, error) {
	validate := do.MustInvokeNamed[bool](i, "validate_words")
	params := Params{
		Generator:  do.MustInvoke[*panel.Generator](i),
		Validate:   validate,
		Templator:  do.MustInvoke[*page.Templator](i),
		StaticDir:  do.MustInvokeNamed[string](i, "static_dir"),
		CORSOrigin: do.MustInvokeNamed[string](i, "cors_origin"),
		Logger:     do.MustInvoke[*slog.Logger](i),
	}
	if validate {
		dictionary, err := do.Invoke[*wordlist.Dictionary](i)
		if err != nil {
			return nil, err
		}
		params.Dictionary = dictionary
	}
	return New(params)
}

func New(p Params) (*Handler, error) {
	if p.Generator == nil {
		return nil, errors.New("generator is required")
	}
	if p.Validate && p.Dictionary == nil {
		return nil, errors.New("dictionary is required when validation is enabled")
	}
	if p.Templator == nil {
		p.Templator = &page.Templator{}
	}
	if p.Logger == nil {
		p.Logger = log.FromContextOrDiscard(context.Background())
	}

	h := &Handler{
		generator:  p.Generator,
		dictionary: p.Dictionary,
		validate:   p.Validate,
		templator:  p.Templator,
		corsOrigin: p.CORSOrigin,
		logger:     p.Logger.WithGroup("Handler"),
		mux:        http.NewServeMux(),
	}
	h.routes(p.StaticDir)
	return h, nil
}

func (h *Handler) routes(staticDir string) {
	h.mux.HandleFunc("GET "+PanelPath, h.handlePanel)
	h.mux.HandleFunc("GET "+HealthPath, h.handleHealth)

	if staticDir != "" {
		h.mux.Handle("GET /", http.FileServer(http.Dir(staticDir)))
	} else {
		h.mux.HandleFunc("GET /{$}", h.handleIndex)
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	h.withRequestContext(h.withCORS(h.mux)).ServeHTTP(w, r)
}

// GET /api/v1/make4pannel?word=
func (h *Handler) handlePanel(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContextOrDiscard(r.Context())

	values := r.URL.Query()["word"]
	if len(values) != 1 || strings.TrimSpace(values[0]) == "" {
		logger.Info("rejected request", "reason", "missing word", "values", len(values))
		jsonError(w, msgWordRequired, http.StatusBadRequest)
		return
	}
	word := strings.TrimSpace(values[0])
	logger = logger.With("word", word)

	if h.validate && !h.dictionary.IsValid(word) {
		logger.Info("rejected request", "reason", "not in dictionary")
		jsonError(w, msgWordInvalid, http.StatusBadRequest)
		return
	}

	// Upstream calls run to completion even if the client goes away.
	ctx := log.NewContext(context.WithoutCancel(r.Context()), logger)
	img, err := h.generator.Generate(ctx, word)
	if err != nil {
		logger.Error("failed to generate panel", errorAttrs(err)...)
		jsonError(w, msgGenerateError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", panel.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		logger.Warn("failed to write image", log.Err(err))
		return
	}
	logger.Info("served panel", "bytes", len(img))
}

// GET /api/v1/health
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"validate": h.validate,
		"words":    h.dictionary.Len(),
	})
}

// GET /
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	html, err := h.templator.Template(r.Context(), page.Params{
		Endpoint: PanelPath,
		Words:    h.dictionary.Len(),
		Validate: h.validate,
	})
	if err != nil {
		log.FromContextOrDiscard(r.Context()).Error("failed to render index", log.Err(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(html)
}

func errorAttrs(err error) []any {
	attrs := []any{log.Err(err)}
	var statusErr *image.StatusError
	if errors.As(err, &statusErr) {
		attrs = append(attrs, "upstream_status", statusErr.StatusCode, "upstream_body", statusErr.Body)
	}
	return attrs
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
