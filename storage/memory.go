package storage

import (
	"context"
	"log/slog"
	"sync"

	"github.com/MDWio/ohif-viewer/interfaces"
)

// MemoryBackend keeps blobs in process memory. Content is lost on restart.
type MemoryBackend struct {
	mu    sync.RWMutex
	blobs map[interfaces.ContentID][]byte
	log   *slog.Logger
}

func NewMemoryBackend(log *slog.Logger) *MemoryBackend {
	if log == nil {
		log = slog.Default()
	}
	return &MemoryBackend{
		blobs: make(map[interfaces.ContentID][]byte),
		log:   log,
	}
}

// Fetch returns a copy of the blob stored under id.
func (b *MemoryBackend) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	b.mu.RLock()
	data, ok := b.blobs[id]
	b.mu.RUnlock()
	if !ok {
		return nil, interfaces.ErrContentNotFound
	}
	return append([]byte(nil), data...), nil
}

func (b *MemoryBackend) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	id := interfaces.ComputeID(data)

	b.mu.Lock()
	if _, exists := b.blobs[id]; !exists {
		b.blobs[id] = append([]byte(nil), data...)
	}
	b.mu.Unlock()

	b.log.Debug("Stored content in memory",
		slog.String("content_id", id.Short()),
		slog.Int("size", len(data)))

	return id, nil
}

func (b *MemoryBackend) Available(ctx context.Context) bool {
	return true
}

func (b *MemoryBackend) Name() string {
	return "memory"
}

func (b *MemoryBackend) LocationURI() string {
	return "mem://"
}
