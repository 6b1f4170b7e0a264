// Package lister runs the external pak listing tool and returns its raw
// output.
package lister

import (
	"context"
	"os"
)

// DefaultBinary is the listing tool used when no override is configured.
const DefaultBinary = "UnrealPak"

// Lister produces the textual listing of an archive.
type Lister interface {
	List(ctx context.Context, archivePath string) ([]byte, error)
}

// ResolveBinary returns the listing tool to run: the explicit override if
// set, then $UNREALPAK, then $unrealPak, then DefaultBinary.
func ResolveBinary(override string) string {
	if override != "" {
		return override
	}
	for _, key := range []string{"UNREALPAK", "unrealPak"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return DefaultBinary
}
