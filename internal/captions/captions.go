// Package captions discovers images in a directory and describes each one with a
// captioning backend, caching results by file content.
package captions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"healthpage/internal/core"
	"healthpage/internal/logger"
	"healthpage/internal/store"
)

// DefaultConcurrency bounds parallel caption requests.
const DefaultConcurrency = 4

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Captioner describes one image.
type Captioner interface {
	Caption(ctx context.Context, path string, data []byte, mimeType string) (string, error)
}

// Cache stores captions keyed by path, content hash and captioner name.
type Cache interface {
	GetCachedCaption(path, contentHash, captioner string) (string, bool, error)
	CacheCaption(path, contentHash, captioner, caption string) error
}

// Collector captions every supported image in a directory.
type Collector struct {
	captioner   Captioner
	name        string
	cache       Cache
	concurrency int
}

// NewCollector creates a collector. name identifies the backend in the cache; cache may be nil.
func NewCollector(captioner Captioner, name string, cache Cache, concurrency int) *Collector {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Collector{captioner: captioner, name: name, cache: cache, concurrency: concurrency}
}

// ImageFiles lists the supported images in dir, sorted by path.
func ImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := imageTypes[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Collect returns a path to caption mapping. Files that cannot be read or captioned
// are skipped with a warning; only an unreadable directory or cancellation is an error.
func (c *Collector) Collect(ctx context.Context, dir string) (map[string]string, error) {
	paths, err := ImageFiles(dir)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	captions := make(map[string]string, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			caption, ok := c.captionFile(gctx, path)
			if !ok {
				return nil
			}
			mu.Lock()
			captions[path] = caption
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("Captioned images", "directory", dir, "found", len(paths), "captioned", len(captions))
	return captions, nil
}

func (c *Collector) captionFile(ctx context.Context, path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Skipping unreadable image", "path", path, "error", err.Error())
		return "", false
	}

	hash := store.ContentHash(data)
	if c.cache != nil {
		cached, ok, err := c.cache.GetCachedCaption(path, hash, c.name)
		if err != nil {
			logger.Warn("Caption cache lookup failed", "path", path, "error", err.Error())
		} else if ok {
			logger.Debug("Caption cache hit", "path", path)
			return cached, true
		}
	}

	mimeType := imageTypes[strings.ToLower(filepath.Ext(path))]
	caption, err := c.captioner.Caption(ctx, path, data, mimeType)
	if err != nil {
		logger.Warn("Skipping image that failed to caption", "path", path, "error", err.Error())
		return "", false
	}
	caption = strings.TrimSpace(caption)
	if caption == "" {
		logger.Warn("Skipping image with empty caption", "path", path)
		return "", false
	}

	if c.cache != nil {
		if err := c.cache.CacheCaption(path, hash, c.name, caption); err != nil {
			logger.Warn("Failed to cache caption", "path", path, "error", err.Error())
		}
	}
	return caption, true
}

// Assets converts a caption mapping into image assets sorted by path.
func Assets(captions map[string]string) []core.ImageAsset {
	assets := make([]core.ImageAsset, 0, len(captions))
	for path, caption := range captions {
		assets = append(assets, core.ImageAsset{Path: path, Caption: caption})
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Path < assets[j].Path })
	return assets
}

// Static returns fixed captions, for tests and pre-captioned image sets.
type Static map[string]string

func (s Static) Caption(_ context.Context, path string, _ []byte, _ string) (string, error) {
	if caption, ok := s[filepath.Base(path)]; ok {
		return caption, nil
	}
	if caption, ok := s[path]; ok {
		return caption, nil
	}
	return "", fmt.Errorf("no caption for %s", path)
}
