package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MDWio/ohif-viewer/interfaces"
)

// BlobStoreFactory creates blob stores from location URIs.
type BlobStoreFactory struct {
	log *slog.Logger
}

var _ interfaces.BlobStoreFactory = (*BlobStoreFactory)(nil)

func NewBlobStoreFactory(logger *slog.Logger) *BlobStoreFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlobStoreFactory{log: logger}
}

// BlobStoreFor creates a blob store from a location URI:
//
//   - mem:// - process memory
//   - file:///var/lib/viewer/blobs - local file system
//   - s3://[ACCESS_KEY:SECRET_KEY@]bucket/prefix?region=eu-west-1&endpoint=http://minio:9000&path_style=true
//   - ipfs://host:5001/viewer-blobs?timeout=30s - IPFS node MFS
func (f *BlobStoreFactory) BlobStoreFor(location interfaces.BlobStoreLocation) (interfaces.BlobStore, error) {
	u, err := location.Parse()
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "mem":
		return NewMemoryBackend(f.log), nil
	case "file":
		return f.createFileBackend(u)
	case "s3":
		return f.createS3Backend(u)
	case "ipfs":
		return f.createIPFSBackend(u)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", interfaces.ErrInvalidLocationURI, u.Scheme)
	}
}

// CreateMultiStore creates a MultiBlobStore over every location that could be
// parsed. Returns an error if none could.
func (f *BlobStoreFactory) CreateMultiStore(locations []interfaces.BlobStoreLocation) (interfaces.BlobStore, error) {
	stores := make([]interfaces.BlobStore, 0, len(locations))

	for _, loc := range locations {
		store, err := f.BlobStoreFor(loc)
		if err != nil {
			f.log.Warn("Failed to create blob store",
				"err", err,
				slog.String("location", string(loc)))
			continue
		}
		stores = append(stores, store)
	}

	if len(stores) == 0 {
		return nil, fmt.Errorf("no valid blob stores created")
	}
	if len(stores) == 1 {
		return stores[0], nil
	}

	return NewMultiBlobStore(stores, f.log), nil
}

// createFileBackend accepts file:///absolute/path and file://./relative/path.
func (f *BlobStoreFactory) createFileBackend(u *url.URL) (interfaces.BlobStore, error) {
	path := u.Path
	if u.Host != "" {
		path = u.Host + "/" + strings.TrimPrefix(path, "/")
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path in %s", interfaces.ErrInvalidLocationURI, u.String())
	}

	return NewFileBackend(path, f.log)
}

func (f *BlobStoreFactory) createS3Backend(u *url.URL) (interfaces.BlobStore, error) {
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing bucket in %s", interfaces.ErrInvalidLocationURI, u.Redacted())
	}

	query := u.Query()
	cfg := S3Config{
		Bucket:   u.Host,
		Prefix:   strings.TrimPrefix(u.Path, "/"),
		Region:   query.Get("region"),
		Endpoint: query.Get("endpoint"),
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if v := query.Get("path_style"); v != "" {
		pathStyle, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid path_style %q", interfaces.ErrInvalidLocationURI, v)
		}
		cfg.PathStyle = pathStyle
	}
	if u.User != nil {
		cfg.AccessKey = u.User.Username()
		cfg.SecretKey, _ = u.User.Password()
	}

	return NewS3Backend(cfg, f.log)
}

func (f *BlobStoreFactory) createIPFSBackend(u *url.URL) (interfaces.BlobStore, error) {
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing host in %s", interfaces.ErrInvalidLocationURI, u.String())
	}
	port := u.Port()
	if port == "" {
		port = "5001"
	}

	timeout := 30 * time.Second
	if v := u.Query().Get("timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid timeout %q", interfaces.ErrInvalidLocationURI, v)
		}
		timeout = d
	}

	dir := u.Path
	if strings.Trim(dir, "/") == "" {
		dir = "/dicom-blobs"
	}

	return NewIPFSBackend(host, port, dir, timeout, f.log), nil
}
