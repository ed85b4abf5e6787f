package interfaces

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
)

// ContentID is a 32-byte SHA-256 hash uniquely identifying a spooled blob.
type ContentID [32]byte

// ComputeID calculates content ID from data.
func ComputeID(data []byte) ContentID {
	return ContentID(sha256.Sum256(data))
}

// String returns hex representation.
func (id ContentID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first 8 bytes in hex, for logging.
func (id ContentID) Short() string {
	return hex.EncodeToString(id[:8])
}

// Equal compares two content IDs.
func (id ContentID) Equal(other ContentID) bool {
	return bytes.Equal(id[:], other[:])
}

// BlobStoreLocation is a URI selecting a blob store backend.
//
//	mem://
//	file:///var/lib/viewer/blobs
//	s3://bucket/prefix?region=eu-west-1
//	ipfs://127.0.0.1:5001/viewer
type BlobStoreLocation string

// Parse validates the location and returns the parsed URL.
func (loc BlobStoreLocation) Parse() (*url.URL, error) {
	parsed, err := url.Parse(string(loc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLocationURI, err)
	}

	switch parsed.Scheme {
	case "mem", "file", "s3", "ipfs":
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocationURI, parsed.Scheme)
	}
	return parsed, nil
}

var (
	// ErrContentNotFound is returned when requested content cannot be found in the blob store.
	ErrContentNotFound = errors.New("content not found")

	// ErrBackendUnavailable is returned when a blob store is not accessible.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidLocationURI is returned when a blob store URI is malformed or unsupported.
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)

// BlobStore provides content-addressed storage for blobs registered with the file manager.
type BlobStore interface {
	// Fetch retrieves data by content ID.
	Fetch(ctx context.Context, id ContentID) ([]byte, error)

	// Store saves data and returns its content ID.
	Store(ctx context.Context, data []byte) (ContentID, error)

	// Available checks if backend is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this backend.
	LocationURI() string
}

// BlobStoreFactory creates blob stores from location URIs.
type BlobStoreFactory interface {
	BlobStoreFor(location BlobStoreLocation) (BlobStore, error)
	CreateMultiStore(locations []BlobStoreLocation) (BlobStore, error)
}
