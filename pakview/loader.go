package pakview

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	pakerrors "github.com/flaneur2020/pakview/pakview/errors"
	"github.com/flaneur2020/pakview/pakview/lister"
	"github.com/flaneur2020/pakview/pakview/logger"
	"golang.org/x/sync/errgroup"
)

// DefaultExtensions are the archive extensions accepted by default.
var DefaultExtensions = []string{".pak"}

type ArchiveLoader interface {
	// Load validates path, lists it and builds the archive view.
	Load(ctx context.Context, path string) (*Archive, error)
}

// LoaderOption configures an ArchiveLoader.
type LoaderOption func(*archiveLoader)

// WithTimeout bounds how long the listing tool may run. Zero disables the
// limit.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *archiveLoader) {
		l.timeout = d
	}
}

// WithExtensions replaces the accepted archive extensions. Matching is case
// insensitive and the leading dot is optional.
func WithExtensions(exts ...string) LoaderOption {
	return func(l *archiveLoader) {
		l.extensions = normalizeExtensions(exts)
	}
}

type archiveLoader struct {
	lister     lister.Lister
	timeout    time.Duration
	extensions []string
}

func NewArchiveLoader(l lister.Lister, opts ...LoaderOption) ArchiveLoader {
	loader := &archiveLoader{
		lister:     l,
		extensions: normalizeExtensions(DefaultExtensions),
	}
	for _, opt := range opts {
		opt(loader)
	}
	return loader
}

func (l *archiveLoader) Load(ctx context.Context, path string) (*Archive, error) {
	if err := l.validate(path); err != nil {
		return nil, err
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	out, err := l.lister.List(ctx, path)
	if err != nil {
		return nil, err
	}

	entries, diags := ParseAllWithDiagnostics(string(out))
	if len(diags) > 0 {
		logger.Warn("%s: %d listing lines could not be parsed", path, len(diags))
		for _, d := range diags {
			logger.Debug("%s: line %d: %s", path, d.Line, d.Text)
		}
	}
	logger.Info("Parsed %d entries from %s", len(entries), path)

	return &Archive{
		Path:        path,
		Entries:     entries,
		Tree:        BuildTree(entries),
		Diagnostics: diags,
	}, nil
}

func (l *archiveLoader) validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return pakerrors.ErrArchiveNotFound.WithDetail("path", path)
		}
		return pakerrors.ErrArchiveNotFound.WithDetail("path", path).WithCause(err)
	}
	if !info.Mode().IsRegular() {
		return pakerrors.ErrUnsupportedArchive.
			WithMessage("not a regular file").
			WithDetail("path", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range l.extensions {
		if ext == allowed {
			return nil
		}
	}
	return pakerrors.ErrUnsupportedArchive.
		WithDetail("path", path).
		WithDetail("accepted", strings.Join(l.extensions, ","))
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// LoadAll loads several archives concurrently. Results are returned in the
// order of paths; the first failure cancels the remaining loads.
func LoadAll(ctx context.Context, loader ArchiveLoader, paths []string, concurrency int) ([]*Archive, error) {
	archives := make([]*Archive, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			archive, err := loader.Load(ctx, path)
			if err != nil {
				return err
			}
			archives[i] = archive
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return archives, nil
}
