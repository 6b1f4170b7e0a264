package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashProgressIgnoresUpdatesAfterFinish(t *testing.T) {
	var buf bytes.Buffer
	progress := newHashProgress(&buf)

	progress(0, 0)
	assert.Zero(t, buf.Len(), "no bar is drawn before the size is known")

	progress(0, 10)
	progress(10, 10)
	finished := buf.Len()
	assert.NotZero(t, finished)

	// a trailing update at the same offset must not redraw the finished bar
	progress(10, 10)
	assert.Equal(t, finished, buf.Len())
}
