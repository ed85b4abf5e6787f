package interfaces

import (
	"context"
	"net/http"
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestHook decorates the Doer used for a single retrieval, e.g. to add retries.
type RequestHook func(next Doer) Doer

// ErrorInterceptor observes transport failures before they are returned to the caller.
type ErrorInterceptor func(ctx context.Context, err error)

// HeaderProvider produces the authorization headers for outgoing requests.
type HeaderProvider interface {
	AuthorizationHeader(ctx context.Context) http.Header
}

// HeaderProviderFunc adapts a function to HeaderProvider.
type HeaderProviderFunc func(ctx context.Context) http.Header

// AuthorizationHeader calls f(ctx).
func (f HeaderProviderFunc) AuthorizationHeader(ctx context.Context) http.Header {
	return f(ctx)
}

// RetrieveInstanceRequest identifies one instance on a DICOMweb (WADO-RS) server.
type RetrieveInstanceRequest struct {
	WADORoot          string
	StudyInstanceUID  string
	SeriesInstanceUID string
	SOPInstanceUID    string

	Headers          http.Header
	ErrorInterceptor ErrorInterceptor
	RequestHooks     []RequestHook
}

// InstanceRetriever performs multipart instance retrieval.
type InstanceRetriever interface {
	RetrieveInstance(ctx context.Context, req RetrieveInstanceRequest) ([]byte, error)
}

// Fetcher performs a plain point-to-point retrieval of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers http.Header) ([]byte, error)
}

// FileLoader returns the bytes of a file registered with the file manager.
type FileLoader interface {
	LoadFile(ctx context.Context, handle string) ([]byte, error)
}

// FileManager registers blobs and hands out handles usable by a FileLoader.
type FileManager interface {
	Add(ctx context.Context, blob []byte, name string) (string, error)
}

// ImageCache returns decoded images, loading and caching them on a miss.
type ImageCache interface {
	LoadAndCacheImage(ctx context.Context, imageID string) (*Image, error)
}
