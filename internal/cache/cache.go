// Package cache persists acquired transcripts as per-video JSON files so
// repeat runs skip the network.
package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/scottidler/ytx"
)

// Cache stores one JSON file per video and language under a directory.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// Option customizes the cache.
type Option func(*Cache)

// WithLogger sets the logger used for cache hits and write failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// DefaultDir returns the standard cache location for the current user.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache directory: %w", err)
	}
	return filepath.Join(base, "ytx", "transcripts"), nil
}

// New creates a cache rooted at dir. The directory is created lazily on the
// first save.
func New(dir string, opts ...Option) *Cache {
	c := &Cache{
		dir:    dir,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the cached transcript for the video in the given language.
// Any failure, a missing file included, is a miss; the cache never blocks
// acquisition.
func (c *Cache) Load(videoID, lang string) (*ytx.Transcript, bool) {
	path := c.entryPath(videoID, lang)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var transcript ytx.Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		c.logger.Debug("discarding unreadable cache entry", "path", path, "error", err)
		return nil, false
	}
	if transcript.VideoID != videoID {
		c.logger.Debug("discarding mismatched cache entry", "path", path, "video_id", transcript.VideoID)
		return nil, false
	}

	c.logger.Debug("cache hit", "video_id", videoID, "lang", lang)
	return &transcript, true
}

// Save writes the transcript keyed by its actual language, which can differ
// from the requested one when caption selection fell back to another track.
func (c *Cache) Save(transcript *ytx.Transcript) error {
	path := c.entryPath(transcript.VideoID, transcript.Language)

	writer, err := newAtomicWriter(path)
	if err != nil {
		return fmt.Errorf("cache transcript: %w", err)
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(transcript); err != nil {
		writer.abort()
		return fmt.Errorf("cache transcript: %w", err)
	}
	if err := writer.commit(); err != nil {
		return fmt.Errorf("cache transcript: %w", err)
	}

	c.logger.Debug("cached transcript", "video_id", transcript.VideoID, "lang", transcript.Language)
	return nil
}

func (c *Cache) entryPath(videoID, lang string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s-%s.json", videoID, lang))
}
