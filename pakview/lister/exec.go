package lister

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	pakerrors "github.com/flaneur2020/pakview/pakview/errors"
	"github.com/flaneur2020/pakview/pakview/logger"
)

// killGrace bounds how long we wait for the tool's output pipes to close
// after the process was killed.
const killGrace = 2 * time.Second

// ExecLister runs "<Binary> -list <archive> [Args...]" and returns whatever
// the tool wrote to stdout. A non-zero exit status is not an error: UnrealPak
// reports warnings through it while still printing a usable listing.
type ExecLister struct {
	Binary string
	Args   []string
}

// NewExecLister creates an ExecLister for binary with extra trailing args.
func NewExecLister(binary string, args ...string) *ExecLister {
	return &ExecLister{
		Binary: binary,
		Args:   args,
	}
}

func (l *ExecLister) List(ctx context.Context, archivePath string) ([]byte, error) {
	args := append([]string{"-list", archivePath}, l.Args...)
	cmd := exec.CommandContext(ctx, l.Binary, args...)
	cmd.WaitDelay = killGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Info("Running %s %s", l.Binary, strings.Join(args, " "))
	start := time.Now()
	err := cmd.Run()

	if ctxErr := ctx.Err(); ctxErr != nil {
		if !errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, ctxErr
		}
		return nil, pakerrors.ErrListTimeout.
			WithDetail("binary", l.Binary).
			WithDetail("archive", archivePath).
			WithCause(ctxErr)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, pakerrors.ErrListFailed.
				WithDetail("binary", l.Binary).
				WithDetail("archive", archivePath).
				WithCause(err)
		}
		logger.Debug("%s exited with status %d", l.Binary, exitErr.ExitCode())
	}

	if stderr.Len() > 0 {
		logger.Debug("%s stderr: %s", l.Binary, strings.TrimSpace(stderr.String()))
	}
	logger.Debug("%s produced %d bytes in %s", l.Binary, stdout.Len(), time.Since(start).Round(time.Millisecond))

	return stdout.Bytes(), nil
}
