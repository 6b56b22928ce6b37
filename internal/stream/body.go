// Package stream implements the bounded byte adapters the wire layer
// hands across the channel boundary: a readable delivery body and a
// publish-serializing sink, grounded on vcabbage-amqp/link.go's
// Receiver.Receive buffering loop but generalized from a single
// read-to-completion call to an incrementally filled io.Reader.
package stream

import (
	"io"
	"sync"
)

// BoundedBody is one delivery's body, filled incrementally by the
// content-assembly transformer as body frames arrive and drained by the
// application via Read. highWaterMark bounds how many unread bytes may
// accumulate before Write blocks — the transformer calling Write runs on
// the connection's single mux goroutine, so a saturated body is a
// sanctioned suspension point, not a bug: the whole connection pauses
// until the application reads enough to unblock it.
type BoundedBody struct {
	mu            sync.Mutex
	cond          *sync.Cond
	buf           []byte
	closed        bool
	highWaterMark int
}

// NewBoundedBody returns an empty body bounded at highWaterMark bytes.
func NewBoundedBody(highWaterMark int) *BoundedBody {
	if highWaterMark <= 0 {
		highWaterMark = 4096
	}
	b := &BoundedBody{highWaterMark: highWaterMark}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Write appends chunk, blocking while the buffer is already at the high
// water mark.
func (b *BoundedBody) Write(chunk []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.buf) >= b.highWaterMark && !b.closed {
		b.cond.Wait()
	}
	b.buf = append(b.buf, chunk...)
	b.cond.Broadcast()
}

// Close marks the body complete; further Reads drain the remaining bytes
// and then return io.EOF.
func (b *BoundedBody) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cond.Broadcast()
}

// Read implements io.Reader, blocking until data is available or the
// body has been closed with nothing left to drain.
func (b *BoundedBody) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.buf) == 0 && !b.closed {
		b.cond.Wait()
	}
	if len(b.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(p, b.buf)
	b.buf = b.buf[n:]
	b.cond.Broadcast()
	return n, nil
}
