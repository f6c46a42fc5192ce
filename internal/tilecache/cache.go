// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package tilecache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/waytrace/internal/logging"
	"github.com/tomtom215/waytrace/internal/metrics"
	"github.com/tomtom215/waytrace/internal/tile"
)

// Options configures a Cache.
type Options struct {
	BaseURL string
	APIKey  string
	Dir     string

	// MetaDir holds the badger metadata store; empty keeps metadata in
	// memory for the life of the Cache.
	MetaDir string
	// Meta is an already-open store. The cache does not close it.
	Meta *MetaStore

	IgnoreCache bool

	Concurrency   int
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
	UserAgent     string

	RetryAttempts int
	RetryDelay    time.Duration

	BreakerFailures int
	BreakerTimeout  time.Duration

	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client

	// Progress receives a progress bar during Prefetch; nil disables it.
	Progress io.Writer
}

// Cache is a directory of downloaded tiles.
type Cache struct {
	opts     Options
	client   *client
	meta     *MetaStore
	ownsMeta bool
	group    singleflight.Group

	// refreshed holds tiles downloaded by this Cache; with IgnoreCache they
	// are not requested again.
	refreshed sync.Map
}

// New creates the cache directory if needed and opens the metadata store.
func New(opts Options) (*Cache, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("tile server URL is required")
	}
	if opts.Dir == "" {
		return nil, errors.New("tile cache directory is required")
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create tile cache: %w", err)
	}

	c := &Cache{
		opts:   opts,
		client: newClient(&opts),
		meta:   opts.Meta,
	}
	if c.meta == nil {
		var meta *MetaStore
		var err error
		if opts.MetaDir != "" {
			meta, err = OpenMetaStore(opts.MetaDir)
		} else {
			meta, err = OpenInMemoryMetaStore()
		}
		if err != nil {
			return nil, err
		}
		c.meta = meta
		c.ownsMeta = true
	}
	return c, nil
}

// Close releases the metadata store if the cache opened it.
func (c *Cache) Close() error {
	if c.ownsMeta && c.meta != nil {
		return c.meta.Close()
	}
	return nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.opts.Dir
}

// IgnoreCache reports whether cached tiles are re-requested.
func (c *Cache) IgnoreCache() bool {
	return c.opts.IgnoreCache
}

// Path returns where t is stored, whether or not it exists.
func (c *Cache) Path(t tile.Tile) string {
	return filepath.Join(c.opts.Dir, t.Name()+".png")
}

// Timestamp returns the modification time of the cached tile, or the zero
// time when it is not cached.
func (c *Cache) Timestamp(t tile.Tile) time.Time {
	fi, err := os.Stat(c.Path(t))
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}

// Newest returns the latest Timestamp among tiles.
func (c *Cache) Newest(tiles []tile.Tile) time.Time {
	var newest time.Time
	for _, t := range tiles {
		if ts := c.Timestamp(t); ts.After(newest) {
			newest = ts
		}
	}
	return newest
}

// Get returns the path of t, downloading it when it is missing or when the
// cache is ignored. With IgnoreCache each tile is requested at most once per
// Cache.
func (c *Cache) Get(ctx context.Context, t tile.Tile) (string, error) {
	path := c.Path(t)

	v, err, _ := c.group.Do(t.String(), func() (interface{}, error) {
		if c.fresh(t, path) {
			metrics.RecordTileCacheHit()
			return path, nil
		}
		metrics.RecordTileCacheMiss()
		if err := c.download(ctx, t, path); err != nil {
			return "", err
		}
		return path, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// fresh reports whether the file at path can be used without a request.
// It is only called inside the singleflight group for t.
func (c *Cache) fresh(t tile.Tile, path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if !c.opts.IgnoreCache {
		return true
	}
	_, ok := c.refreshed.Load(t)
	return ok
}

// download requests t and stores it at path.
func (c *Cache) download(ctx context.Context, t tile.Tile, path string) error {
	etag := c.storedETag(t, path)

	res, err := c.client.fetch(ctx, t, etag)
	if err != nil {
		return fmt.Errorf("fetch tile %s: %w", t, err)
	}

	now := time.Now()
	if res.NotModified {
		if err := os.Chtimes(path, now, now); err != nil {
			return fmt.Errorf("touch tile %s: %w", t, err)
		}
		logging.Debug().Str("tile", t.String()).Msg("Tile not modified")
	} else {
		if err := writeAtomic(path, res.Body); err != nil {
			return fmt.Errorf("store tile %s: %w", t, err)
		}
		logging.Debug().Str("tile", t.String()).Int("bytes", len(res.Body)).Msg("Downloaded tile")
	}
	c.refreshed.Store(t, struct{}{})

	if c.meta != nil {
		m := Meta{ETag: res.ETag, FetchedAt: now, Size: int64(len(res.Body))}
		if res.NotModified {
			if old, ok, _ := c.meta.Get(t); ok {
				m.Size = old.Size
			}
		}
		if err := c.meta.Put(t, m); err != nil {
			logging.Warn().Err(err).Str("tile", t.String()).Msg("Failed to store tile metadata")
		}
	}
	return nil
}

// storedETag returns the ETag to revalidate an existing file with.
func (c *Cache) storedETag(t tile.Tile, path string) string {
	if c.meta == nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	m, ok, err := c.meta.Get(t)
	if err != nil || !ok {
		return ""
	}
	return m.ETag
}

// Meta returns the stored metadata for t, if any.
func (c *Cache) Meta(t tile.Tile) (Meta, bool, error) {
	if c.meta == nil {
		return Meta{}, false, nil
	}
	return c.meta.Get(t)
}

// Prefetch downloads every tile not yet cached, Concurrency at a time.
// The first error cancels the remaining downloads and is returned.
func (c *Cache) Prefetch(ctx context.Context, tiles []tile.Tile) error {
	seen := make(map[tile.Tile]bool, len(tiles))
	unique := make([]tile.Tile, 0, len(tiles))
	for _, t := range tiles {
		if !seen[t] {
			seen[t] = true
			unique = append(unique, t)
		}
	}

	var bar *progressbar.ProgressBar
	if c.opts.Progress != nil {
		bar = progressbar.NewOptions(len(unique),
			progressbar.OptionSetWriter(c.opts.Progress),
			progressbar.OptionSetDescription("Downloading tiles"),
			progressbar.OptionShowCount(),
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for _, t := range unique {
		g.Go(func() error {
			if _, err := c.Get(gctx, t); err != nil {
				return err
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Info().Int("tiles", len(unique)).Str("dir", c.opts.Dir).Msg("Tiles ready")
	return nil
}

// writeAtomic writes data to path through a temporary file and rename.
func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".tile-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
