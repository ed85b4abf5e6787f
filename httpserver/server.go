package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/MDWio/ohif-viewer/api"
	"github.com/MDWio/ohif-viewer/interfaces"
	"github.com/MDWio/ohif-viewer/metrics"
	"github.com/flashbots/go-utils/httplogger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/atomic"
)

// blobStoreProbeTimeout bounds the blob store check made by /readyz.
const blobStoreProbeTimeout = 2 * time.Second

// Server serves the loader API next to its health endpoints. It reports
// ready while it is not draining and its blob store answers.
type Server struct {
	cfg      *api.HTTPServerConfig
	draining atomic.Bool
	log      *slog.Logger

	srv        *http.Server
	metricsSrv *metrics.MetricsServer
	handler    *Handler
	blobs      interfaces.BlobStore
}

// New creates the API server. blobs is probed by /readyz and may be nil.
// metricsSrv may be nil, in which case no metrics listener is started.
func New(cfg *api.HTTPServerConfig, handler *Handler, blobs interfaces.BlobStore, metricsSrv *metrics.MetricsServer) (*Server, error) {
	if cfg == nil || handler == nil {
		return nil, errors.New("httpserver: config and handler are required")
	}

	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	srv := &Server{
		cfg:        cfg,
		log:        log,
		metricsSrv: metricsSrv,
		handler:    handler,
		blobs:      blobs,
	}

	srv.srv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.getRouter(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return srv, nil
}

func (srv *Server) getRouter() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)

	mux.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return httplogger.LoggingMiddlewareSlog(srv.log, next)
		})
		srv.handler.RegisterRoutes(r)

		r.Get("/livez", srv.handleLivez)
		r.Get("/readyz", srv.handleReadyz)
		r.Get("/drain", srv.handleDrain)
		r.Get("/undrain", srv.handleUndrain)
	})

	if srv.cfg.EnablePprof {
		srv.log.Info("pprof API enabled")
		mux.Mount("/debug", middleware.Profiler())
	}
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (srv *Server) handleLivez(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, "alive")
}

// handleReadyz fails while draining or while the blob store spooling
// registered files is unreachable, since resolutions relaying through the
// file manager would fail.
func (srv *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if srv.draining.Load() {
		writeStatus(w, http.StatusServiceUnavailable, "draining")
		return
	}

	if srv.blobs != nil {
		ctx, cancel := context.WithTimeout(r.Context(), blobStoreProbeTimeout)
		defer cancel()
		if !srv.blobs.Available(ctx) {
			srv.log.Warn("Blob store unavailable", slog.String("store", srv.blobs.Name()))
			writeStatus(w, http.StatusServiceUnavailable, "blob store unavailable")
			return
		}
	}

	writeStatus(w, http.StatusOK, "ready")
}

// handleDrain stops /readyz from reporting ready, then holds the request for
// DrainDuration so in-flight resolutions can finish before shutdown.
func (srv *Server) handleDrain(w http.ResponseWriter, r *http.Request) {
	if srv.draining.Swap(true) {
		writeStatus(w, http.StatusOK, "already draining")
		return
	}

	srv.log.Info("Draining", slog.Duration("duration", srv.cfg.DrainDuration))

	select {
	case <-time.After(srv.cfg.DrainDuration):
		srv.log.Info("Drain period completed")
	case <-r.Context().Done():
	}

	writeStatus(w, http.StatusOK, "draining")
}

func (srv *Server) handleUndrain(w http.ResponseWriter, r *http.Request) {
	if !srv.draining.Swap(false) {
		writeStatus(w, http.StatusOK, "already ready")
		return
	}

	srv.log.Info("Accepting resolutions again")
	writeStatus(w, http.StatusOK, "ready")
}

func (srv *Server) metricsEnabled() bool {
	return srv.metricsSrv != nil && srv.cfg.MetricsAddr != ""
}

// RunInBackground starts the API listener and, when configured, the metrics
// listener. Listener failures are logged.
func (srv *Server) RunInBackground() {
	if srv.metricsEnabled() {
		go func() {
			srv.log.Info("Starting metrics server", "metricsAddress", srv.cfg.MetricsAddr)
			if err := srv.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				srv.log.Error("Metrics server failed", "err", err)
			}
		}()
	}

	go func() {
		srv.log.Info("Starting HTTP server", "listenAddress", srv.cfg.ListenAddr)
		if err := srv.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.log.Error("HTTP server failed", "err", err)
		}
	}()
}

// Shutdown stops both listeners, each within GracefulShutdownDuration.
func (srv *Server) Shutdown() {
	srv.shutdown("HTTP server", srv.srv.Shutdown)
	if srv.metricsEnabled() {
		srv.shutdown("Metrics server", srv.metricsSrv.Shutdown)
	}
}

func (srv *Server) shutdown(name string, stop func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), srv.cfg.GracefulShutdownDuration)
	defer cancel()

	if err := stop(ctx); err != nil {
		srv.log.Error("Graceful shutdown failed", slog.String("server", name), "err", err)
		return
	}
	srv.log.Info("Gracefully stopped", slog.String("server", name))
}
