package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
)

// Editor is the subset of arbor.Editor served over HTTP.
type Editor interface {
	Open(ctx context.Context, pageID string, tree []domain.Component) (*domain.Document, error)
	Load(ctx context.Context, pageID string) (*domain.Document, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, pageID string) error
	Resolve(ctx context.Context, g domain.Gesture, tree []domain.Component) domain.Placement
	Drop(ctx context.Context, pageID string, g domain.Gesture) (domain.Placement, *domain.Document, error)
	Dispatch(ctx context.Context, pageID string, action domain.Action) (*domain.Document, bool, error)
}

var _ Editor = (*arbor.Editor)(nil)

// Server exposes an Editor as a JSON API.
type Server struct {
	Editor  Editor
	Streams *StreamManager

	spec     *openapi3.T
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams sets the stream manager used for /pages/{id}/events.
// Register its Publish method as the editor change listener to feed it.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics exposes the metrics of gatherer at /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for editor.
func NewHandler(editor Editor, opts ...Option) (http.Handler, error) {
	server := &Server{Editor: editor}
	for _, opt := range opts {
		opt(server)
	}
	if server.logger == nil {
		server.logger = logging.NewNop()
	}
	if server.Streams == nil {
		server.Streams = NewStreamManager(server.logger)
	}

	// 1. Load the API description
	spec, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	server.spec = spec
	validator, err := newRequestValidator(spec)
	if err != nil {
		return nil, err
	}

	// 2. Routes
	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(RawSpec())
	})
	if server.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(validator.middleware)

		r.Get("/health", server.GetHealth)
		r.Get("/info", server.GetInfo)
		r.Post("/resolve", server.Resolve)
		r.Get("/pages", server.ListPages)
		r.Route("/pages/{pageId}", func(r chi.Router) {
			r.Get("/", server.GetPage)
			r.Post("/", server.OpenPage)
			r.Delete("/", server.DeletePage)
			r.Post("/drop", server.Drop)
			r.Post("/actions", server.Dispatch)
			r.Post("/undo", server.Undo)
			r.Post("/redo", server.Redo)
			r.Get("/events", server.SubscribeEvents)
		})
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Last-Event-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Draggable is an item as reported by the drag-and-drop toolkit: an id plus
// the loosely typed data attached to it.
type Draggable struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data,omitempty"`
}

// DropRequest is the body of a drop. Either the decoded gesture (drag, target)
// or the raw active and over items must be set; the raw items win.
type DropRequest struct {
	domain.Gesture
	Active *Draggable `json:"active,omitempty"`
	Over   *Draggable `json:"over,omitempty"`
}

// gesture returns the decoded gesture of the request.
func (req DropRequest) gesture() (domain.Gesture, error) {
	if req.Active == nil {
		return req.Gesture, nil
	}

	drag, err := domain.DecodeDrag(req.Active.ID, req.Active.Data)
	if err != nil {
		return domain.Gesture{}, err
	}
	g := domain.Gesture{Drag: drag, TabHover: req.TabHover}
	if req.Over != nil {
		g.Target, err = domain.DecodeTarget(req.Over.ID, req.Over.Data)
		if err != nil {
			return domain.Gesture{}, err
		}
	}
	return g, nil
}

// ResolveRequest is a drop against a tree supplied by the caller.
type ResolveRequest struct {
	DropRequest
	Components []domain.Component `json:"components"`
}

// OpenRequest carries the initial tree of a page.
type OpenRequest struct {
	Components []domain.Component `json:"components"`
}

// DropResponse is the outcome of a drop.
type DropResponse struct {
	Placement  domain.Placement   `json:"placement"`
	Diagnostic *domain.Diagnostic `json:"diagnostic,omitempty"`
	Document   *domain.Document   `json:"document,omitempty"`
}

// ActionResponse is the outcome of a dispatched action.
type ActionResponse struct {
	Changed  bool             `json:"changed"`
	Document *domain.Document `json:"document"`
}

func newDropResponse(p domain.Placement, doc *domain.Document) DropResponse {
	resp := DropResponse{Placement: p, Document: doc}
	if d, rejected := p.Rejected(); rejected {
		resp.Diagnostic = &d
	}
	return resp
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec != nil && s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "arbor-http",
		"version":     arbor.Version,
		"api_version": apiVersion,
	})
}

// Resolve handles the POST /resolve request.
func (s *Server) Resolve(w http.ResponseWriter, r *http.Request) {
	var body ResolveRequest
	if !s.decode(w, r, &body) {
		return
	}
	g, err := body.gesture()
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid gesture: %v", err), http.StatusBadRequest)
		return
	}

	p := s.Editor.Resolve(r.Context(), g, body.Components)
	s.writeJSON(w, http.StatusOK, newDropResponse(p, nil))
}

// ListPages handles the GET /pages request.
func (s *Server) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.Editor.List(r.Context())
	if err != nil {
		s.fail(w, "ListPages", err)
		return
	}
	if pages == nil {
		pages = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"pages": pages})
}

// GetPage handles the GET /pages/{pageId} request.
func (s *Server) GetPage(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Editor.Load(r.Context(), chi.URLParam(r, "pageId"))
	if err != nil {
		s.fail(w, "GetPage", err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// OpenPage handles the POST /pages/{pageId} request.
func (s *Server) OpenPage(w http.ResponseWriter, r *http.Request) {
	var body OpenRequest
	if r.ContentLength != 0 && !s.decode(w, r, &body) {
		return
	}
	doc, err := s.Editor.Open(r.Context(), chi.URLParam(r, "pageId"), body.Components)
	if err != nil {
		s.fail(w, "OpenPage", err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// DeletePage handles the DELETE /pages/{pageId} request.
func (s *Server) DeletePage(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.Delete(r.Context(), chi.URLParam(r, "pageId")); err != nil {
		s.fail(w, "DeletePage", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Drop handles the POST /pages/{pageId}/drop request.
func (s *Server) Drop(w http.ResponseWriter, r *http.Request) {
	var body DropRequest
	if !s.decode(w, r, &body) {
		return
	}
	g, err := body.gesture()
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid gesture: %v", err), http.StatusBadRequest)
		return
	}

	p, doc, err := s.Editor.Drop(r.Context(), chi.URLParam(r, "pageId"), g)
	if err != nil {
		s.fail(w, "Drop", err)
		return
	}
	s.writeJSON(w, http.StatusOK, newDropResponse(p, doc))
}

// Dispatch handles the POST /pages/{pageId}/actions request.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if !s.decode(w, r, &raw) {
		return
	}
	action, err := domain.DecodeAction(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid action: %v", err), http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, action)
}

// Undo handles the POST /pages/{pageId}/undo request.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, domain.Undo{})
}

// Redo handles the POST /pages/{pageId}/redo request.
func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, domain.Redo{})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, action domain.Action) {
	doc, changed, err := s.Editor.Dispatch(r.Context(), chi.URLParam(r, "pageId"), action)
	if err != nil {
		s.fail(w, "Dispatch", err)
		return
	}
	s.writeJSON(w, http.StatusOK, ActionResponse{Changed: changed, Document: doc})
}

// SubscribeEvents handles the GET /pages/{pageId}/events request (SSE).
// The first event carries the whole page as additions; later events carry diffs.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	pageID := chi.URLParam(r, "pageId")
	doc, err := s.Editor.Load(r.Context(), pageID)
	if err != nil {
		s.fail(w, "SubscribeEvents", err)
		return
	}

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		for _, field := range strings.Split(watch, ",") {
			watchList = append(watchList, strings.TrimSpace(field))
		}
	}

	ch, cancel := s.Streams.Subscribe(pageID)
	defer cancel()
	s.logger.Info("SSE: Subscribing to page updates", "page_id", pageID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	snapshot := domain.Diff(nil, doc)
	if snapshot == nil {
		snapshot = &domain.TreeDiff{PageID: doc.ID, Revision: doc.Revision, CanUndo: doc.History.CanUndo(), CanRedo: doc.History.CanRedo()}
	}
	if initial, err := json.Marshal(snapshot); err == nil {
		fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", initial)
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "page_id", pageID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !watched(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// watched reports whether a diff touches one of the watched sections.
// An empty watch list accepts everything.
func watched(msg string, watchList []string) bool {
	if len(watchList) == 0 {
		return true
	}
	var diff domain.TreeDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watchList {
		switch field {
		case "added":
			if len(diff.Added) > 0 {
				return true
			}
		case "removed":
			if len(diff.Removed) > 0 {
				return true
			}
		case "moved":
			if len(diff.Moved) > 0 {
				return true
			}
		case "updated":
			if len(diff.Updated) > 0 {
				return true
			}
		}
	}
	return false
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// fail maps domain errors to HTTP status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidTree):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrInvalidPageID), errors.Is(err, domain.ErrUnknownAction):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
		s.logger.Error(op+" failed", "err", err)
	}
}
