package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MDWio/ohif-viewer/interfaces"
)

// MultiBlobStore writes to every available store and reads from the first
// one holding the content, in configuration order.
type MultiBlobStore struct {
	stores []interfaces.BlobStore
	log    *slog.Logger
}

func NewMultiBlobStore(stores []interfaces.BlobStore, logger *slog.Logger) *MultiBlobStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &MultiBlobStore{
		stores: stores,
		log:    logger,
	}
}

// Fetch tries every available store in order. ErrContentNotFound is returned
// only when no store failed for another reason.
func (m *MultiBlobStore) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	start := time.Now()
	var errs []error

	for _, store := range m.stores {
		if !store.Available(ctx) {
			m.log.Debug("Backend unavailable",
				slog.String("backend_name", store.Name()),
				slog.String("content_id", id.Short()))
			continue
		}

		data, err := store.Fetch(ctx, id)
		if err == nil {
			m.log.Debug("Fetched content",
				slog.String("backend_name", store.Name()),
				slog.String("content_id", id.Short()),
				slog.Duration("duration", time.Since(start)))
			return data, nil
		}

		if !errors.Is(err, interfaces.ErrContentNotFound) {
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
		}
		m.log.Debug("Failed to fetch from backend",
			slog.String("backend_name", store.Name()),
			slog.String("content_id", id.Short()),
			"err", err)
	}

	if len(errs) == 0 {
		return nil, interfaces.ErrContentNotFound
	}

	m.log.Error("All backends failed to fetch content",
		slog.String("content_id", id.Short()),
		slog.Int("failed_backends", len(errs)),
		slog.Duration("duration", time.Since(start)))

	return nil, fmt.Errorf("all backends failed to fetch %s: %w", id.Short(), errors.Join(errs...))
}

// Store saves data to all available stores and succeeds when at least one did.
func (m *MultiBlobStore) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	start := time.Now()
	var result interfaces.ContentID
	var success bool
	var errs []error

	for _, store := range m.stores {
		if !store.Available(ctx) {
			m.log.Debug("Backend unavailable", slog.String("backend_name", store.Name()))
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), interfaces.ErrBackendUnavailable))
			continue
		}

		id, err := store.Store(ctx, data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
			m.log.Debug("Failed to store to backend",
				slog.String("backend_name", store.Name()),
				"err", err)
			continue
		}

		if !success {
			result = id
			success = true
		} else if !result.Equal(id) {
			m.log.Warn("Inconsistent hashes from backends",
				slog.String("backend_name", store.Name()),
				slog.String("expected_id", result.String()),
				slog.String("actual_id", id.String()))
		}
	}

	if !success {
		m.log.Error("All backends failed to store data",
			slog.Int("failed_backends", len(errs)),
			slog.Duration("duration", time.Since(start)))
		return result, fmt.Errorf("all backends failed to store data: %w", errors.Join(errs...))
	}

	m.log.Debug("Stored content",
		slog.String("content_id", result.Short()),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

// Available checks if any store is available.
func (m *MultiBlobStore) Available(ctx context.Context) bool {
	for _, store := range m.stores {
		if store.Available(ctx) {
			return true
		}
	}
	return false
}

func (m *MultiBlobStore) Name() string {
	return "multi-store"
}

func (m *MultiBlobStore) LocationURI() string {
	locations := make([]string, 0, len(m.stores))
	for _, store := range m.stores {
		locations = append(locations, store.LocationURI())
	}
	return "multi:[" + strings.Join(locations, ",") + "]"
}
