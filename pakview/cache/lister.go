package cache

import (
	"context"
	"fmt"
	"io"
	"os"

	pakerrors "github.com/flaneur2020/pakview/pakview/errors"
	"github.com/flaneur2020/pakview/pakview/lister"
	"github.com/flaneur2020/pakview/pakview/logger"
	"github.com/opencontainers/go-digest"
)

// ProgressCallback is called while an archive is being fingerprinted
// current: bytes hashed so far
// total: archive size
type ProgressCallback func(current int64, total int64)

// Lister wraps another lister.Lister and serves repeated listings of the
// same archive content from a Cache.
type Lister struct {
	next     lister.Lister
	cache    *Cache
	salt     string
	progress ProgressCallback
}

var _ lister.Lister = (*Lister)(nil)

// ListerOption configures a caching Lister.
type ListerOption func(*Lister)

// WithKeySalt mixes s into every cache key, typically the listing tool and
// its arguments, so different tools do not share entries.
func WithKeySalt(s string) ListerOption {
	return func(l *Lister) {
		l.salt = s
	}
}

// WithProgress reports fingerprinting progress to fn.
func WithProgress(fn ProgressCallback) ListerOption {
	return func(l *Lister) {
		l.progress = fn
	}
}

// NewLister returns a Lister that consults c before delegating to next.
func NewLister(next lister.Lister, c *Cache, opts ...ListerOption) *Lister {
	l := &Lister{
		next:  next,
		cache: c,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Lister) List(ctx context.Context, archivePath string) ([]byte, error) {
	archiveDigest, err := Fingerprint(ctx, archivePath, l.progress)
	if err != nil {
		// A hash that failed leaves nothing to key on, so the delegate runs
		// uncached and reports the deadline or its own failure itself.
		cacheErr := pakerrors.ErrCache.WithDetail("archive", archivePath).WithCause(err)
		if ctx.Err() != nil {
			logger.Debug("Listing %s without cache: %v", archivePath, cacheErr)
		} else {
			logger.Warn("Listing %s without cache: %v", archivePath, cacheErr)
		}
		return l.next.List(ctx, archivePath)
	}
	key := l.key(archiveDigest)

	if out, ok := l.cache.Get(key); ok {
		logger.Info("Listing cache hit for %s (%s)", archivePath, archiveDigest.Encoded()[:12])
		return out, nil
	}
	logger.Debug("Listing cache miss for %s (%s)", archivePath, archiveDigest.Encoded()[:12])

	out, err := l.next.List(ctx, archivePath)
	if err != nil {
		return nil, err
	}

	// An empty listing usually means the tool failed; keep retrying it.
	if len(out) == 0 {
		return out, nil
	}
	if err := l.cache.Put(key, out); err != nil {
		logger.Warn("Failed to cache listing for %s: %v", archivePath, err)
	}
	return out, nil
}

func (l *Lister) key(archiveDigest digest.Digest) digest.Digest {
	if l.salt == "" {
		return archiveDigest
	}
	return digest.FromString(archiveDigest.String() + "\x00" + l.salt)
}

// Fingerprint returns the canonical digest of the file at path.
func Fingerprint(ctx context.Context, path string, progress ProgressCallback) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	var r io.Reader = &ctxReader{ctx: ctx, reader: f}
	if progress != nil {
		progress(0, info.Size())
		r = &progressReader{
			reader:   r,
			total:    info.Size(),
			callback: progress,
		}
	}

	d, err := digest.Canonical.FromReader(r)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return d, nil
}

// ctxReader stops a long hash once ctx is done.
type ctxReader struct {
	ctx    context.Context
	reader io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.reader.Read(p)
}

// progressReader wraps an io.Reader to report hashing progress
type progressReader struct {
	reader   io.Reader
	total    int64
	current  int64
	callback ProgressCallback
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n == 0 {
		return n, err
	}
	pr.current += int64(n)
	if pr.callback != nil {
		pr.callback(pr.current, pr.total)
	}
	return n, err
}
