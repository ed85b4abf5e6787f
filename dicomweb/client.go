package dicomweb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MDWio/ohif-viewer/interfaces"
)

// instanceAccept asks for the instance as a multipart/related body of
// application/dicom parts in whatever transfer syntax the server holds.
const instanceAccept = `multipart/related; type="application/dicom"; transfer-syntax=*`

// Client retrieves instances from DICOMweb servers. It implements both
// interfaces.InstanceRetriever (WADO-RS) and interfaces.Fetcher (WADO-URI and
// plain links).
type Client struct {
	httpClient  interfaces.Doer
	interceptor interfaces.ErrorInterceptor
	log         *slog.Logger
}

// NewClient creates a client. interceptor is used for Fetch, and for
// RetrieveInstance requests that carry none; it may be nil.
func NewClient(httpClient interfaces.Doer, interceptor interfaces.ErrorInterceptor, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		httpClient:  httpClient,
		interceptor: interceptor,
		log:         log,
	}
}

// InstanceURL builds the WADO-RS URL of a single instance.
func InstanceURL(wadoRoot, studyUID, seriesUID, sopUID string) string {
	return fmt.Sprintf("%s/studies/%s/series/%s/instances/%s",
		strings.TrimSuffix(wadoRoot, "/"),
		url.PathEscape(studyUID),
		url.PathEscape(seriesUID),
		url.PathEscape(sopUID))
}

// RetrieveInstance fetches one instance with WADO-RS and returns the first
// part of the multipart response. Request hooks wrap the HTTP client in
// order, the first hook being the outermost.
func (c *Client) RetrieveInstance(ctx context.Context, req interfaces.RetrieveInstanceRequest) ([]byte, error) {
	start := time.Now()
	target := InstanceURL(req.WADORoot, req.StudyInstanceUID, req.SeriesInstanceUID, req.SOPInstanceUID)

	interceptor := req.ErrorInterceptor
	if interceptor == nil {
		interceptor = c.interceptor
	}

	httpReq, err := newRequest(ctx, target, req.Headers)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", instanceAccept)

	doer := c.httpClient
	for i := len(req.RequestHooks) - 1; i >= 0; i-- {
		doer = req.RequestHooks[i](doer)
	}

	data, err := c.do(doer, httpReq, readFirstPart)
	if err != nil {
		intercept(ctx, interceptor, err)
		return nil, err
	}

	c.log.Debug("Retrieved instance",
		slog.String("sop_instance_uid", req.SOPInstanceUID),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// Fetch performs a plain GET of target.
func (c *Client) Fetch(ctx context.Context, target string, headers http.Header) ([]byte, error) {
	httpReq, err := newRequest(ctx, target, headers)
	if err != nil {
		return nil, err
	}

	data, err := c.do(c.httpClient, httpReq, readBody)
	if err != nil {
		intercept(ctx, c.interceptor, err)
		return nil, err
	}

	c.log.Debug("Fetched url",
		slog.String("url", target),
		slog.Int("size", len(data)))

	return data, nil
}

func newRequest(ctx context.Context, target string, headers http.Header) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, values := range headers {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	return httpReq, nil
}

func (c *Client) do(doer interfaces.Doer, req *http.Request, read func(*http.Response) ([]byte, error)) ([]byte, error) {
	resp, err := doer.Do(req)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to send request to %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(req, resp)
	}

	data, err := read(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", req.URL, err)
	}
	return data, nil
}

func intercept(ctx context.Context, interceptor interfaces.ErrorInterceptor, err error) {
	if interceptor != nil {
		interceptor(ctx, err)
	}
}

func readBody(resp *http.Response) ([]byte, error) {
	return io.ReadAll(resp.Body)
}

// readFirstPart returns the first part of a multipart body, or the whole body
// when the server did not answer with a multipart media type.
func readFirstPart(resp *http.Response) ([]byte, error) {
	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return io.ReadAll(resp.Body)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, errors.New("multipart response without boundary")
	}

	part, err := multipart.NewReader(resp.Body, boundary).NextPart()
	if err != nil {
		return nil, fmt.Errorf("failed to read first part: %w", err)
	}
	defer part.Close()

	return io.ReadAll(part)
}
