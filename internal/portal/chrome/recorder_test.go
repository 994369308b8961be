package chrome

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFrames struct {
	mu    sync.Mutex
	frame []byte
	err   error
	calls int
}

func (s *stubFrames) Screenshot(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.frame, nil
}

func (s *stubFrames) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestTraceName(t *testing.T) {
	ts := time.Date(2024, 3, 19, 7, 0, 2, 0, time.UTC)
	assert.Equal(t, "20240319_070002_req42.mjpeg", TraceName(42, ts))
}

func TestRecorderAppendsSampledFrames(t *testing.T) {
	dir := t.TempDir()
	src := &stubFrames{frame: []byte("FRAME")}

	r, err := StartRecorder(src, dir, "trace.mjpeg", 10*time.Millisecond)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return src.callCount() >= 3 },
		2*time.Second, 5*time.Millisecond)
	r.Stop(time.Second)

	b, err := os.ReadFile(filepath.Join(dir, "trace.mjpeg"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, bytes.Count(b, []byte("FRAME")), 3)
}

func TestRecorderSwallowsCaptureErrors(t *testing.T) {
	dir := t.TempDir()
	src := &stubFrames{err: errors.New("browser gone")}

	r, err := StartRecorder(src, dir, "trace.mjpeg", 5*time.Millisecond)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return src.callCount() >= 2 },
		2*time.Second, 5*time.Millisecond)
	r.CaptureNow()
	r.Stop(time.Second)

	b, err := os.ReadFile(filepath.Join(dir, "trace.mjpeg"))
	require.NoError(t, err)
	assert.Empty(t, b, "failed captures write nothing")
}

func TestCaptureNowIgnoresSamplingInterval(t *testing.T) {
	dir := t.TempDir()
	src := &stubFrames{frame: []byte("F")}

	r, err := StartRecorder(src, dir, "trace.mjpeg", time.Hour)
	require.NoError(t, err)
	r.CaptureNow()
	r.CaptureNow()
	r.Stop(time.Second)

	b, err := os.ReadFile(filepath.Join(dir, "trace.mjpeg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("FF"), b)
}

func TestRecorderCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "traces")
	src := &stubFrames{frame: []byte("F")}

	r, err := StartRecorder(src, dir, "trace.mjpeg", time.Hour)
	require.NoError(t, err)
	r.Stop(time.Second)

	_, err = os.Stat(filepath.Join(dir, "trace.mjpeg"))
	assert.NoError(t, err)
}
