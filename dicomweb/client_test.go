package dicomweb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MDWio/ohif-viewer/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeMultipart(w http.ResponseWriter, boundary string, parts ...string) {
	w.Header().Set("Content-Type", fmt.Sprintf(`multipart/related; type="application/dicom"; boundary=%s`, boundary))
	w.WriteHeader(http.StatusOK)
	for _, p := range parts {
		fmt.Fprintf(w, "--%s\r\nContent-Type: application/dicom\r\n\r\n%s\r\n", boundary, p)
	}
	fmt.Fprintf(w, "--%s--\r\n", boundary)
}

func TestInstanceURL(t *testing.T) {
	assert.Equal(t, "https://pacs/rs/studies/1.2/series/3.4/instances/5.6",
		InstanceURL("https://pacs/rs", "1.2", "3.4", "5.6"))
	assert.Equal(t, "https://pacs/rs/studies/1.2/series/3.4/instances/5.6",
		InstanceURL("https://pacs/rs/", "1.2", "3.4", "5.6"))
}

func TestRetrieveInstance_FirstPart(t *testing.T) {
	var gotPath, gotAccept, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		gotAuth = r.Header.Get("Authorization")
		writeMultipart(w, "frontier", "first-part-bytes", "second-part-bytes")
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), nil, testLogger())
	data, err := client.RetrieveInstance(context.Background(), interfaces.RetrieveInstanceRequest{
		WADORoot:          srv.URL + "/rs",
		StudyInstanceUID:  "1.2",
		SeriesInstanceUID: "3.4",
		SOPInstanceUID:    "5.6",
		Headers:           http.Header{"Authorization": []string{"Bearer t"}},
	})

	require.NoError(t, err)
	assert.Equal(t, []byte("first-part-bytes"), data)
	assert.Equal(t, "/rs/studies/1.2/series/3.4/instances/5.6", gotPath)
	assert.Equal(t, instanceAccept, gotAccept)
	assert.Equal(t, "Bearer t", gotAuth)
}

func TestRetrieveInstance_NonMultipartBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/dicom")
		_, _ = w.Write([]byte("raw"))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), nil, testLogger())
	data, err := client.RetrieveInstance(context.Background(), interfaces.RetrieveInstanceRequest{
		WADORoot: srv.URL, StudyInstanceUID: "1", SeriesInstanceUID: "2", SOPInstanceUID: "3",
	})

	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), data)
}

func TestRetrieveInstance_MultipartWithoutBoundary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "multipart/related")
		_, _ = w.Write([]byte("garbage"))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), nil, testLogger())
	_, err := client.RetrieveInstance(context.Background(), interfaces.RetrieveInstanceRequest{
		WADORoot: srv.URL, StudyInstanceUID: "1", SeriesInstanceUID: "2", SOPInstanceUID: "3",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boundary")
}

func TestRetrieveInstance_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, target: interfaces.ErrUnauthorized},
		{name: "not found", status: http.StatusNotFound, target: interfaces.ErrInstanceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			var intercepted []error
			client := NewClient(srv.Client(), nil, testLogger())
			_, err := client.RetrieveInstance(context.Background(), interfaces.RetrieveInstanceRequest{
				WADORoot: srv.URL, StudyInstanceUID: "1", SeriesInstanceUID: "2", SOPInstanceUID: "3",
				ErrorInterceptor: func(_ context.Context, err error) {
					intercepted = append(intercepted, err)
				},
			})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			var httpErr *HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Contains(t, httpErr.Body, "nope")

			require.Len(t, intercepted, 1)
			assert.Same(t, err, intercepted[0])
		})
	}
}

func TestRetrieveInstance_RequestInterceptorOverridesClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	clientCalls, requestCalls := 0, 0
	client := NewClient(srv.Client(), func(context.Context, error) { clientCalls++ }, testLogger())

	_, err := client.RetrieveInstance(context.Background(), interfaces.RetrieveInstanceRequest{
		WADORoot: srv.URL, StudyInstanceUID: "1", SeriesInstanceUID: "2", SOPInstanceUID: "3",
		ErrorInterceptor: func(context.Context, error) { requestCalls++ },
	})
	require.Error(t, err)
	assert.Equal(t, 0, clientCalls)
	assert.Equal(t, 1, requestCalls)

	_, err = client.RetrieveInstance(context.Background(), interfaces.RetrieveInstanceRequest{
		WADORoot: srv.URL, StudyInstanceUID: "1", SeriesInstanceUID: "2", SOPInstanceUID: "3",
	})
	require.Error(t, err)
	assert.Equal(t, 1, clientCalls)
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func TestRetrieveInstance_HooksOrder(t *testing.T) {
	var order []string
	hook := func(name string) interfaces.RequestHook {
		return func(next interfaces.Doer) interfaces.Doer {
			return doerFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.Do(r)
			})
		}
	}

	base := doerFunc(func(r *http.Request) (*http.Response, error) {
		order = append(order, "client")
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/dicom"}},
			Body:       io.NopCloser(strings.NewReader("ok")),
		}, nil
	})

	client := NewClient(base, nil, testLogger())
	data, err := client.RetrieveInstance(context.Background(), interfaces.RetrieveInstanceRequest{
		WADORoot: "http://pacs", StudyInstanceUID: "1", SeriesInstanceUID: "2", SOPInstanceUID: "3",
		RequestHooks: []interfaces.RequestHook{hook("outer"), hook("inner")},
	})

	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, []string{"outer", "inner", "client"}, order)
}

func TestRetrieveInstance_ConnectionError(t *testing.T) {
	connErr := errors.New("connection refused")
	base := doerFunc(func(r *http.Request) (*http.Response, error) {
		return nil, connErr
	})

	var intercepted error
	client := NewClient(base, func(_ context.Context, err error) { intercepted = err }, testLogger())
	_, err := client.RetrieveInstance(context.Background(), interfaces.RetrieveInstanceRequest{
		WADORoot: "http://pacs", StudyInstanceUID: "1", SeriesInstanceUID: "2", SOPInstanceUID: "3",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, connErr)
	assert.Equal(t, err, intercepted)
}

func TestFetch(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Token")
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("wado-uri-bytes"))
	}))
	defer srv.Close()

	var intercepted int
	client := NewClient(srv.Client(), func(context.Context, error) { intercepted++ }, testLogger())

	data, err := client.Fetch(context.Background(), srv.URL+"/wado?objectUID=1", http.Header{"X-Token": []string{"abc"}})
	require.NoError(t, err)
	assert.Equal(t, []byte("wado-uri-bytes"), data)
	assert.Equal(t, "abc", gotHeader)
	assert.Equal(t, 0, intercepted)

	_, err = client.Fetch(context.Background(), srv.URL+"/missing", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrInstanceNotFound)
	assert.Equal(t, "", gotHeader)
	assert.Equal(t, 1, intercepted)
}

func TestFetch_InvalidURL(t *testing.T) {
	client := NewClient(nil, nil, nil)
	_, err := client.Fetch(context.Background(), "://bad", nil)
	require.Error(t, err)
}

func TestLogErrorInterceptor(t *testing.T) {
	var buf strings.Builder
	log := slog.New(slog.NewTextHandler(&buf, nil))
	interceptor := LogErrorInterceptor(log)

	interceptor(context.Background(), &HTTPError{StatusCode: http.StatusUnauthorized, URL: "http://pacs/x"})
	interceptor(context.Background(), errors.New("dial tcp: refused"))

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "status=401")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "refused")
}

func TestBearerToken(t *testing.T) {
	h := BearerToken("secret").AuthorizationHeader(context.Background())
	assert.Equal(t, "Bearer secret", h.Get("Authorization"))

	h.Set("Authorization", "changed")
	assert.Equal(t, "Bearer secret", BearerToken("secret").AuthorizationHeader(context.Background()).Get("Authorization"))

	assert.Empty(t, BearerToken("").AuthorizationHeader(context.Background()))
}
