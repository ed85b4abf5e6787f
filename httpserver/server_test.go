package httpserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MDWio/ohif-viewer/api"
	"github.com/MDWio/ohif-viewer/interfaces"
	"github.com/MDWio/ohif-viewer/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type downStore struct {
	*storage.MemoryBackend
}

func (downStore) Available(context.Context) bool { return false }

func newTestServer(t *testing.T, pprof bool) http.Handler {
	t.Helper()
	return newTestServerWithStore(t, pprof, storage.NewMemoryBackend(nil))
}

func newTestServerWithStore(t *testing.T, pprof bool, blobs interfaces.BlobStore) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &api.HTTPServerConfig{ListenAddr: "127.0.0.1:0", Log: log, EnablePprof: pprof}

	srv, err := New(cfg, NewHandler(nil, nil, nil, cfg, log), blobs, nil)
	require.NoError(t, err)
	return srv.srv.Handler
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestNew_RequiresHandler(t *testing.T) {
	_, err := New(&api.HTTPServerConfig{}, nil, nil, nil)
	assert.Error(t, err)
}

func TestHealthAndDrain(t *testing.T) {
	h := newTestServer(t, false)

	assert.Equal(t, http.StatusOK, get(h, "/livez").Code)
	assert.Equal(t, http.StatusOK, get(h, "/readyz").Code)

	rec := get(h, "/drain")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"draining"}`, rec.Body.String())

	rec = get(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"draining"}`, rec.Body.String())
	assert.JSONEq(t, `{"status":"already draining"}`, get(h, "/drain").Body.String())

	assert.Equal(t, http.StatusOK, get(h, "/livez").Code)

	assert.JSONEq(t, `{"status":"ready"}`, get(h, "/undrain").Body.String())
	assert.Equal(t, http.StatusOK, get(h, "/readyz").Code)
	assert.JSONEq(t, `{"status":"already ready"}`, get(h, "/undrain").Body.String())
}

func TestReadyz_BlobStoreDown(t *testing.T) {
	h := newTestServerWithStore(t, false, downStore{storage.NewMemoryBackend(nil)})

	rec := get(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"blob store unavailable"}`, rec.Body.String())
	assert.Equal(t, http.StatusOK, get(h, "/livez").Code)
}

func TestReadyz_NoBlobStore(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(newTestServerWithStore(t, false, nil), "/readyz").Code)
}

func TestPprofMount(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, get(newTestServer(t, false), "/debug/pprof/").Code)
	assert.Equal(t, http.StatusOK, get(newTestServer(t, true), "/debug/pprof/").Code)
}
