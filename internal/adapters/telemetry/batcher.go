// Package telemetry adapts OpenTelemetry spans to the renderer: every task
// runs inside a span, its output is streamed to the renderer and span
// start/end events become the renderer's task lines.
package telemetry

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultSizeLimit is the buffered output size that triggers a flush.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the longest output stays buffered.
	DefaultTimeLimit = 50 * time.Millisecond
)

// ErrBufferClosed is returned when writing to a closed LogBuffer.
var ErrBufferClosed = errors.New("log buffer is closed")

// LogBuffer collects task output and hands it to onFlush in chunks, either
// when sizeLimit bytes are pending or timeLimit after the first pending write.
// It is safe for concurrent use.
type LogBuffer struct {
	sizeLimit int
	timeLimit time.Duration
	onFlush   func([]byte)

	mu     sync.Mutex
	buffer bytes.Buffer
	timer  *time.Timer
	closed bool
}

// NewLogBuffer returns a LogBuffer. Non-positive limits select the defaults.
// Call Close to flush what is left.
func NewLogBuffer(sizeLimit int, timeLimit time.Duration, onFlush func([]byte)) *LogBuffer {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	return &LogBuffer{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
	}
}

// Write buffers p.
func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrBufferClosed
	}

	n, _ := b.buffer.Write(p)
	if b.buffer.Len() >= b.sizeLimit {
		b.flushLocked()
		return n, nil
	}
	if b.timer == nil {
		b.timer = time.AfterFunc(b.timeLimit, b.Flush)
	}
	return n, nil
}

// Flush hands any buffered output to the callback.
func (b *LogBuffer) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
}

// Close flushes and rejects further writes.
func (b *LogBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.flushLocked()
	return nil
}

// flushLocked must be called with mu held. The callback runs under the lock
// so chunks are delivered in write order.
func (b *LogBuffer) flushLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if b.buffer.Len() == 0 {
		return
	}

	data := bytes.Clone(b.buffer.Bytes())
	b.buffer.Reset()

	if b.onFlush != nil {
		b.onFlush(data)
	}
}
