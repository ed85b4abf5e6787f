package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MDWio/ohif-viewer/api"
	"github.com/MDWio/ohif-viewer/interfaces"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()

	r.Post("/api/resolve", func(w http.ResponseWriter, r *http.Request) {
		var req api.ResolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Dataset == nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(api.ErrorResponse{Error: "invalid dicom data loader"})
			return
		}
		w.Header().Set(api.StrategyHeader, "dataset")
		w.Write([]byte("bytes-for-" + req.Dataset.SOPInstanceUID))
	})
	r.Post("/api/files", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(api.AddFileResponse{Handle: "dicomfile:" + r.URL.Query().Get("name"), Size: len(body)})
	})
	r.Get("/api/files", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]api.FileInfo{{Handle: "dicomfile:a", Name: "a.dcm", Size: 1}})
	})
	r.Get("/api/files/{handle}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "handle") != "dicomfile:a.dcm" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("a"))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoaderClient_Resolve(t *testing.T) {
	srv := newFakeServer(t)
	client := &LoaderClient{ServerAddr: srv.URL + "/", HTTPClient: srv.Client()}

	data, strategy, err := client.Resolve(context.Background(), api.ResolveRequest{
		Dataset: &interfaces.Dataset{SOPInstanceUID: "1.2.3"},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes-for-1.2.3"), data)
	assert.Equal(t, "dataset", strategy)

	_, _, err = client.Resolve(context.Background(), api.ResolveRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrNoValidLoader)

	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "invalid dicom data loader", respErr.Message)
}

func TestLoaderClient_Files(t *testing.T) {
	srv := newFakeServer(t)
	client := &LoaderClient{ServerAddr: srv.URL}
	ctx := context.Background()

	handle, err := client.AddFile(ctx, []byte("xyz"), "a.dcm")
	require.NoError(t, err)
	assert.Equal(t, "dicomfile:a.dcm", handle)

	data, err := client.LoadFile(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)

	_, err = client.LoadFile(ctx, "dicomfile:missing")
	assert.ErrorIs(t, err, interfaces.ErrFileNotRegistered)
	assert.ErrorIs(t, err, interfaces.ErrInstanceNotFound)

	files, err := client.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.dcm", files[0].Name)
}

func TestLoaderClient_ConnectionError(t *testing.T) {
	client := &LoaderClient{ServerAddr: "http://127.0.0.1:1"}
	_, err := client.ListFiles(context.Background())
	assert.Error(t, err)
}
