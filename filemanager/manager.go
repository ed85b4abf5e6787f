// Package filemanager registers DICOM blobs under opaque "dicomfile:<uuid>"
// handles and serves them back to the loader. Blob bytes are spooled to a
// content-addressed interfaces.BlobStore; the manager only keeps the handle
// index in memory.
package filemanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MDWio/ohif-viewer/interfaces"
	"github.com/google/uuid"
)

// HandlePrefix is the scheme of every handle issued by the manager.
const HandlePrefix = "dicomfile:"

// File describes a registered blob.
type File struct {
	Handle    string               `json:"handle"`
	Name      string               `json:"name"`
	Size      int                  `json:"size"`
	ContentID interfaces.ContentID `json:"-"`
	AddedAt   time.Time            `json:"addedAt"`
}

// Manager implements interfaces.FileManager and interfaces.FileLoader.
type Manager struct {
	store interfaces.BlobStore
	log   *slog.Logger

	mu    sync.RWMutex
	files map[string]File
}

func New(store interfaces.BlobStore, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		store: store,
		log:   log,
		files: make(map[string]File),
	}
}

// Add spools blob to the store and returns a new handle for it. Every call
// issues a distinct handle, even for identical bytes.
func (m *Manager) Add(ctx context.Context, blob []byte, name string) (string, error) {
	id, err := m.store.Store(ctx, blob)
	if err != nil {
		return "", fmt.Errorf("failed to store %s: %w", name, err)
	}

	handle := HandlePrefix + uuid.NewString()
	f := File{
		Handle:    handle,
		Name:      name,
		Size:      len(blob),
		ContentID: id,
		AddedAt:   time.Now(),
	}

	m.mu.Lock()
	m.files[handle] = f
	m.mu.Unlock()

	m.log.Debug("Registered file",
		slog.String("handle", handle),
		slog.String("name", name),
		slog.String("content_id", id.Short()),
		slog.Int("size", len(blob)))

	return handle, nil
}

// LoadFile returns the bytes registered under handle. A handle without the
// dicomfile: prefix is looked up with it added.
func (m *Manager) LoadFile(ctx context.Context, handle string) ([]byte, error) {
	f, ok := m.Stat(handle)
	if !ok {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrFileNotRegistered, handle)
	}

	data, err := m.store.Fetch(ctx, f.ContentID)
	if errors.Is(err, interfaces.ErrContentNotFound) {
		return nil, fmt.Errorf("%w: %s lost from %s", interfaces.ErrFileNotRegistered, handle, m.store.Name())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", handle, err)
	}
	return data, nil
}

// Stat returns the metadata of a registered file.
func (m *Manager) Stat(handle string) (File, bool) {
	if !strings.HasPrefix(handle, HandlePrefix) {
		handle = HandlePrefix + handle
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[handle]
	return f, ok
}

// List returns every registered file, oldest first.
func (m *Manager) List() []File {
	m.mu.RLock()
	files := make([]File, 0, len(m.files))
	for _, f := range m.files {
		files = append(files, f)
	}
	m.mu.RUnlock()

	sort.Slice(files, func(i, j int) bool {
		if files[i].AddedAt.Equal(files[j].AddedAt) {
			return files[i].Handle < files[j].Handle
		}
		return files[i].AddedAt.Before(files[j].AddedAt)
	})
	return files
}
