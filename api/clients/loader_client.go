package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/MDWio/ohif-viewer/api"
	"github.com/MDWio/ohif-viewer/interfaces"
)

// ResponseError is returned when the loader server answers with a non-2xx status.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("loader server returned error %d: %s", e.StatusCode, e.Message)
}

// Is maps the status code back onto the sentinel the server translated.
func (e *ResponseError) Is(target error) bool {
	switch target {
	case interfaces.ErrNoValidLoader:
		return e.StatusCode == http.StatusUnprocessableEntity
	case interfaces.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case interfaces.ErrInstanceNotFound:
		return e.StatusCode == http.StatusNotFound
	default:
		return false
	}
}

// LoaderClient talks to a remote loader server.
type LoaderClient struct {
	// ServerAddr is the base URL of the loader server
	ServerAddr string

	// HTTPClient defaults to http.DefaultClient
	HTTPClient *http.Client
}

// Resolve asks the server to resolve req and returns the instance bytes and
// the name of the strategy that served them.
func (c *LoaderClient) Resolve(ctx context.Context, req api.ResolveRequest) ([]byte, string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("could not encode resolve request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/resolve", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("could not read resolve response: %w", err)
	}
	return data, resp.Header.Get(api.StrategyHeader), nil
}

// AddFile registers blob with the server's file manager and returns its handle.
func (c *LoaderClient) AddFile(ctx context.Context, blob []byte, name string) (string, error) {
	path := "/api/files?name=" + url.QueryEscape(name)
	resp, err := c.do(ctx, http.MethodPost, path, "application/octet-stream", bytes.NewReader(blob))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed api.AddFileResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("could not parse add file response: %w", err)
	}
	return parsed.Handle, nil
}

// LoadFile downloads a registered file.
func (c *LoaderClient) LoadFile(ctx context.Context, handle string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/files/"+url.PathEscape(handle), "", nil)
	if err != nil {
		var respErr *ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", interfaces.ErrFileNotRegistered, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// ListFiles returns every file registered with the server.
func (c *LoaderClient) ListFiles(ctx context.Context) ([]api.FileInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/files", "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed []api.FileInfo
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("could not parse file list: %w", err)
	}
	return parsed, nil
}

func (c *LoaderClient) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	target := strings.TrimSuffix(c.ServerAddr, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		var parsed api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || parsed.Error == "" {
			parsed.Error = http.StatusText(resp.StatusCode)
		}
		return nil, &ResponseError{StatusCode: resp.StatusCode, Message: parsed.Error}
	}
	return resp, nil
}
