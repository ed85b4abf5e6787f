// Package imagecache keeps recently loaded images in a bounded LRU cache.
//
// Misses are loaded through an interfaces.FileLoader keyed by image id.
// Concurrent misses for the same id share a single load.
package imagecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MDWio/ohif-viewer/interfaces"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"
)

const DefaultSize = 256

// Stats are cumulative counters of cache activity.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
}

// Cache implements interfaces.ImageCache.
type Cache struct {
	images *lru.Cache[string, *interfaces.Image]
	loader interfaces.FileLoader
	group  singleflight.Group
	log    *slog.Logger

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache holding at most size images. A size <= 0 uses DefaultSize.
func New(size int, loader interfaces.FileLoader, log *slog.Logger) (*Cache, error) {
	if loader == nil {
		return nil, errors.New("imagecache: loader is required")
	}
	if size <= 0 {
		size = DefaultSize
	}
	if log == nil {
		log = slog.Default()
	}

	c := &Cache{loader: loader, log: log}

	images, err := lru.NewWithEvict(size, func(imageID string, _ *interfaces.Image) {
		c.evictions.Inc()
		c.log.Debug("Evicted image", slog.String("image_id", imageID))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}
	c.images = images

	return c, nil
}

// LoadAndCacheImage returns the cached image for imageID, loading it on a miss.
// A caller whose ctx ends stops waiting; the shared load keeps running for
// the other waiters.
func (c *Cache) LoadAndCacheImage(ctx context.Context, imageID string) (*interfaces.Image, error) {
	if img, ok := c.images.Get(imageID); ok {
		c.hits.Inc()
		return img, nil
	}
	c.misses.Inc()

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(imageID, func() (interface{}, error) {
		if img, ok := c.images.Get(imageID); ok {
			return img, nil
		}

		data, err := c.loader.LoadFile(loadCtx, imageID)
		if err != nil {
			return nil, err
		}

		img := &interfaces.Image{
			ImageID: imageID,
			Data:    &interfaces.ImageData{ByteArray: data},
		}
		c.images.Add(imageID, img)

		c.log.Debug("Cached image",
			slog.String("image_id", imageID),
			slog.Int("size", len(data)))
		return img, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("failed to load image %s: %w", imageID, res.Err)
		}
		return res.Val.(*interfaces.Image), nil
	}
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Len:       c.images.Len(),
	}
}
