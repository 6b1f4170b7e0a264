package errors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestPakError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *PakError
		want string
	}{
		{
			name: "sentinel",
			err:  ErrDirectoryNotFound,
			want: "[DIRECTORY_NOT_FOUND] directory not found",
		},
		{
			name: "timeout with deadline cause",
			err:  ErrListTimeout.WithDetail("archive", "Game.pak").WithCause(errors.New("context deadline exceeded")),
			want: "[LIST_TIMEOUT] listing tool timed out: context deadline exceeded",
		},
		{
			name: "tool that cannot start",
			err:  ErrListFailed.WithCause(errors.New(`exec: "UnrealPak": executable file not found in $PATH`)),
			want: `[LIST_FAILED] failed to run listing tool: exec: "UnrealPak": executable file not found in $PATH`,
		},
		{
			name: "unsupported archive lists its details",
			err:  ErrUnsupportedArchive.WithDetail("path", "Game.zip"),
			want: "[UNSUPPORTED_ARCHIVE] unsupported archive (details: map[path:Game.zip])",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPakError_WithCause(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrListFailed.WithCause(cause)

	if err.Cause != cause {
		t.Errorf("WithCause() cause = %v, want %v", err.Cause, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("WithCause() should allow errors.Is to work")
	}
}

func TestPakError_WithDetail(t *testing.T) {
	err := ErrArchiveNotFound.WithDetail("path", "Game.pak")

	if err.Details["path"] != "Game.pak" {
		t.Errorf("WithDetail() path = %v, want Game.pak", err.Details["path"])
	}
	if len(ErrArchiveNotFound.Details) != 0 {
		t.Error("WithDetail() must not mutate the sentinel")
	}
}

func TestPakError_WithMessage(t *testing.T) {
	err := ErrUnsupportedArchive.WithMessage("custom message")

	if err.Message != "custom message" {
		t.Errorf("WithMessage() message = %q, want 'custom message'", err.Message)
	}
}

func TestPakError_IsByCode(t *testing.T) {
	err := ErrListTimeout.WithDetail("archive", "Game.pak").WithCause(errors.New("deadline"))
	wrapped := fmt.Errorf("load: %w", err)

	if !errors.Is(wrapped, ErrListTimeout) {
		t.Error("errors.Is should match derived errors by code")
	}
	if errors.Is(wrapped, ErrListFailed) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestIsPakError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "PakError",
			err:  ErrArchiveNotFound,
			want: true,
		},
		{
			name: "not found with stat cause",
			err:  ErrArchiveNotFound.WithCause(os.ErrNotExist),
			want: true,
		},
		{
			name: "wrapped by the loader",
			err:  fmt.Errorf("load Game.pak: %w", ErrListTimeout),
			want: true,
		},
		{
			name: "plain cancellation",
			err:  context.Canceled,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPakError(tt.err); got != tt.want {
				t.Errorf("IsPakError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "PakError",
			err:  ErrDirectoryNotFound,
			want: "DIRECTORY_NOT_FOUND",
		},
		{
			name: "PakError with modifications",
			err:  ErrListFailed.WithDetail("binary", "UnrealPak"),
			want: "LIST_FAILED",
		},
		{
			name: "cache failure behind a wrap",
			err:  fmt.Errorf("list: %w", ErrCache.WithDetail("archive", "Game.pak")),
			want: "CACHE_FAILED",
		},
		{
			name: "plain error",
			err:  errors.New("exit status 3"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.want {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}
