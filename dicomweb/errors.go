package dicomweb

import (
	"fmt"
	"io"
	"net/http"

	"github.com/MDWio/ohif-viewer/interfaces"
)

// maxErrorBody bounds how much of an error response body is kept.
const maxErrorBody = 512

// HTTPError is returned when a DICOMweb server answers with a non-success status.
// It matches interfaces.ErrUnauthorized for 401 and interfaces.ErrInstanceNotFound
// for 404 with errors.Is.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func newHTTPError(req *http.Request, resp *http.Response) *HTTPError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		URL:        req.URL.String(),
		Body:       string(body),
	}
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

// Is reports whether the status code maps onto target.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case interfaces.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case interfaces.ErrInstanceNotFound:
		return e.StatusCode == http.StatusNotFound
	default:
		return false
	}
}
