package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/MDWio/ohif-viewer/api"
	"github.com/MDWio/ohif-viewer/filemanager"
	"github.com/MDWio/ohif-viewer/interfaces"
	"github.com/MDWio/ohif-viewer/loader"
	"github.com/MDWio/ohif-viewer/metrics"
	"github.com/go-chi/chi/v5"
)

const (
	// maxResolveBodySize bounds the JSON body of a resolve request; study
	// collections can be large.
	maxResolveBodySize = 16 * 1024 * 1024

	defaultMaxUploadSize = 512 * 1024 * 1024
)

// RequestError provides structured error information for HTTP responses.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Resolver starts instance retrievals. *loader.Service implements it.
type Resolver interface {
	Resolve(ctx context.Context, ds *interfaces.Dataset, studies []interfaces.Study) (*loader.Pending, error)
}

// Files is the file registry exposed over HTTP. *filemanager.Manager implements it.
type Files interface {
	interfaces.FileManager
	interfaces.FileLoader
	List() []filemanager.File
}

// Recorder receives request metrics. *metrics.MetricsServer implements it.
type Recorder interface {
	ObserveResolve(strategy, outcome string, d time.Duration)
	ObserveFileAdded()
	ObserveBytesServed(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveResolve(string, string, time.Duration) {}
func (nopRecorder) ObserveFileAdded()                            {}
func (nopRecorder) ObserveBytesServed(int)                       {}

// Handler serves the resolve and file registry API.
type Handler struct {
	resolver       Resolver
	files          Files
	recorder       Recorder
	requestTimeout time.Duration
	maxUploadSize  int64
	log            *slog.Logger
}

// NewHandler creates the API handler. recorder may be nil.
func NewHandler(resolver Resolver, files Files, recorder Recorder, cfg *api.HTTPServerConfig, log *slog.Logger) *Handler {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	h := &Handler{
		resolver:      resolver,
		files:         files,
		recorder:      recorder,
		maxUploadSize: defaultMaxUploadSize,
		log:           log,
	}
	if cfg != nil {
		h.requestTimeout = cfg.RequestTimeout
		if cfg.MaxUploadSize > 0 {
			h.maxUploadSize = cfg.MaxUploadSize
		}
	}
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/resolve", h.HandleResolve)
	r.Post("/api/files", h.HandleAddFile)
	r.Get("/api/files", h.HandleListFiles)
	r.Get("/api/files/{handle}", h.HandleGetFile)
}

// HandleResolve resolves a dataset into instance bytes.
//
// URL format: POST /api/resolve
//
// Request body: JSON, see api.ResolveRequest
//
// Response: the instance bytes, with the serving strategy in api.StrategyHeader.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req api.ResolveRequest
	body := http.MaxBytesReader(w, r.Body, maxResolveBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.writeError(w, &RequestError{StatusCode: http.StatusBadRequest, Err: fmt.Errorf("invalid resolve request: %w", err)})
		return
	}

	ctx := r.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	pending, err := h.resolver.Resolve(ctx, req.Dataset, req.Studies)
	if err != nil {
		h.recorder.ObserveResolve(loader.StrategyNone.String(), metrics.OutcomeNoLoader, time.Since(start))
		h.log.Debug("No loader for dataset", "err", err)
		h.writeError(w, err)
		return
	}

	strategy := pending.Strategy().String()
	data, err := pending.Wait(ctx)
	if err != nil {
		h.recorder.ObserveResolve(strategy, metrics.OutcomeError, time.Since(start))
		h.log.Warn("Resolution failed",
			slog.String("strategy", strategy),
			slog.Duration("duration", time.Since(start)),
			"err", err)
		h.writeError(w, err)
		return
	}

	h.recorder.ObserveResolve(strategy, metrics.OutcomeSuccess, time.Since(start))
	h.recorder.ObserveBytesServed(len(data))

	h.log.Debug("Resolved dataset",
		slog.String("strategy", strategy),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	w.Header().Set(api.StrategyHeader, strategy)
	h.writeBytes(w, data)
}

// HandleAddFile registers the request body with the file manager.
//
// URL format: POST /api/files?name=<file name>
//
// Response: JSON, see api.AddFileResponse
func (h *Handler) HandleAddFile(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.dcm"
	}

	blob, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadSize))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.writeError(w, &RequestError{StatusCode: status, Err: fmt.Errorf("failed to read request body: %w", err)})
		return
	}
	if len(blob) == 0 {
		h.writeError(w, &RequestError{StatusCode: http.StatusBadRequest, Err: errors.New("empty request body")})
		return
	}

	handle, err := h.files.Add(r.Context(), blob, name)
	if err != nil {
		h.log.Error("Failed to register file", slog.String("name", name), "err", err)
		h.writeError(w, err)
		return
	}
	h.recorder.ObserveFileAdded()

	h.writeJSON(w, http.StatusCreated, api.AddFileResponse{Handle: handle, Size: len(blob)})
}

// HandleListFiles lists registered files, oldest first.
func (h *Handler) HandleListFiles(w http.ResponseWriter, r *http.Request) {
	files := h.files.List()
	resp := make([]api.FileInfo, 0, len(files))
	for _, f := range files {
		resp = append(resp, api.FileInfo{
			Handle:  f.Handle,
			Name:    f.Name,
			Size:    f.Size,
			AddedAt: f.AddedAt.UTC().Format(time.RFC3339),
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleGetFile returns the bytes of a registered file.
//
// URL format: GET /api/files/{handle}, with or without the dicomfile: prefix.
func (h *Handler) HandleGetFile(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	data, err := h.files.LoadFile(r.Context(), handle)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.recorder.ObserveBytesServed(len(data))
	h.writeBytes(w, data)
}

func (h *Handler) writeBytes(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", api.ContentTypeDICOM)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Debug("Failed to write response", "err", err)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	h.writeJSON(w, status, api.ErrorResponse{Error: msg})
}

// StatusFor maps an error onto the HTTP status returned to API clients.
func StatusFor(err error) int {
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.StatusCode
	case errors.Is(err, interfaces.ErrNoValidLoader):
		return http.StatusUnprocessableEntity
	case errors.Is(err, interfaces.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, interfaces.ErrInstanceNotFound),
		errors.Is(err, interfaces.ErrFileNotRegistered),
		errors.Is(err, interfaces.ErrContentNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, interfaces.ErrEmptyImage):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
