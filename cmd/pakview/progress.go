package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/flaneur2020/pakview/pakview/cache"
	"github.com/flaneur2020/pakview/pakview/lister"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

const spinnerInterval = 100 * time.Millisecond

// progressEnabled reports whether progress output should be drawn on stderr.
func progressEnabled() bool {
	if noProgress || quiet {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// spinnerLister shows a spinner on stderr while the wrapped lister runs.
type spinnerLister struct {
	next lister.Lister
}

func (s *spinnerLister) List(ctx context.Context, archivePath string) ([]byte, error) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Listing "+filepath.Base(archivePath)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	out, err := s.next.List(ctx, archivePath)
	close(done)
	_ = bar.Finish()
	return out, err
}

// newHashProgress returns a callback drawing a byte progress bar on w while
// an archive is fingerprinted. The bar is created once the size is known and
// ignores updates after it finished.
func newHashProgress(w io.Writer) cache.ProgressCallback {
	var (
		bar      *progressbar.ProgressBar
		finished bool
	)
	return func(current, total int64) {
		if finished {
			return
		}
		if bar == nil {
			if total <= 0 {
				return
			}
			bar = progressbar.NewOptions64(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription("Hashing"),
				progressbar.OptionShowBytes(true),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set64(current)
		if current >= total {
			_ = bar.Finish()
			finished = true
		}
	}
}
