package chrome

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// FrameSource yields one JPEG frame of the current page state.
type FrameSource interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Recorder captures a visual trace of one session: JPEG frames sampled
// at a fixed interval and appended to a single MJPEG file. The trace is
// an audit aid only; frame capture failures are logged and swallowed.
type Recorder struct {
	source   FrameSource
	file     *os.File
	interval time.Duration

	stop chan struct{}
	done chan struct{}
}

// TraceName builds the artifact filename for a request.
func TraceName(requestID int64, now time.Time) string {
	return fmt.Sprintf("%s_req%d.mjpeg", now.Format("20060102_150405"), requestID)
}

// StartRecorder attaches to a frame source and begins sampling. The
// directory is created if missing.
func StartRecorder(src FrameSource, dir, name string, interval time.Duration) (*Recorder, error) {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}

	r := &Recorder{
		source:   src,
		file:     f,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go r.loop()
	return r, nil
}

func (r *Recorder) loop() {
	defer close(r.done)
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-t.C:
			r.capture()
		}
	}
}

func (r *Recorder) capture() {
	frame, err := r.source.Screenshot(context.Background())
	if err != nil {
		logrus.WithError(err).Debug("recorder: frame capture failed")
		return
	}
	if _, err := r.file.Write(frame); err != nil {
		logrus.WithError(err).Debug("recorder: frame write failed")
	}
}

// CaptureNow grabs one frame immediately, regardless of the sampling
// tick. Used for the final failure snapshot before teardown.
func (r *Recorder) CaptureNow() {
	r.capture()
}

// Stop ends sampling and finalizes the trace file. Best effort: if the
// sampling goroutine is stuck mid-capture past the grace period, the
// file is finalized without the last frame.
func (r *Recorder) Stop(grace time.Duration) {
	close(r.stop)
	select {
	case <-r.done:
	case <-time.After(grace):
		logrus.Warn("recorder: stop grace period elapsed, finalizing trace")
	}
	if err := r.file.Close(); err != nil {
		logrus.WithError(err).Debug("recorder: close trace failed")
	}
}
