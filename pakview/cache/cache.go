// Package cache keeps UnrealPak listings on disk, keyed by the digest of the
// archive they describe, so unchanged archives are not listed twice.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
)

const (
	defaultShardPrefixLen = 2
	defaultDirPerm        = 0o700
	fileSuffix            = ".zst"
)

// Cache stores zstd-compressed listings under dir/<algorithm>/<shard>/<hex>.zst.
type Cache struct {
	dir            string
	shardPrefixLen int
	dirPerm        os.FileMode

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Option configures a Cache.
type Option func(*Cache)

// WithShardPrefixLen sets the number of hex characters used for sharding.
// Use 0 to disable sharding. Defaults to 2.
func WithShardPrefixLen(n int) Option {
	return func(c *Cache) {
		c.shardPrefixLen = n
	}
}

// WithDirPerm sets the permissions of created cache directories.
func WithDirPerm(mode os.FileMode) Option {
	return func(c *Cache) {
		c.dirPerm = mode
	}
}

// New creates a cache rooted at dir, creating it if needed.
func New(dir string, opts ...Option) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache dir is empty")
	}
	c := &Cache{
		dir:            dir,
		shardPrefixLen: defaultShardPrefixLen,
		dirPerm:        defaultDirPerm,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.shardPrefixLen < 0 {
		return nil, errors.New("shard prefix length must be >= 0")
	}
	if err := os.MkdirAll(dir, c.dirPerm); err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	c.enc = enc
	c.dec = dec
	return c, nil
}

// DefaultDir returns the per-user cache directory for pakview.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "pakview"), nil
}

// Get returns the listing stored for key. Corrupt entries are treated as
// misses.
func (c *Cache) Get(key digest.Digest) ([]byte, bool) {
	path, err := c.path(key)
	if err != nil {
		return nil, false
	}
	compressed, err := os.ReadFile(path) //nolint:gosec // path is derived from a validated digest
	if err != nil {
		return nil, false
	}
	data, err := c.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores listing under key, replacing any previous entry atomically.
func (c *Cache) Put(key digest.Digest, listing []byte) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, c.dirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "listing-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(c.enc.EncodeAll(listing, nil)); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Delete removes the entry for key, if any.
func (c *Cache) Delete(key digest.Digest) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Close releases the codec resources.
func (c *Cache) Close() error {
	c.dec.Close()
	return c.enc.Close()
}

func (c *Cache) path(key digest.Digest) (string, error) {
	if err := key.Validate(); err != nil {
		return "", fmt.Errorf("invalid cache key %q: %w", key, err)
	}
	hexHash := key.Encoded()
	name := hexHash + fileSuffix
	if c.shardPrefixLen == 0 || len(hexHash) <= c.shardPrefixLen {
		return filepath.Join(c.dir, key.Algorithm().String(), name), nil
	}
	return filepath.Join(c.dir, key.Algorithm().String(), hexHash[:c.shardPrefixLen], name), nil
}
