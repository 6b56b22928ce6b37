package stream

import "sync"

// PublishSink serializes a channel's outgoing publishes the way a
// high_water_mark=1 writable stream would: Submit blocks a second caller
// until the first's publish/header/body* sequence and its confirm wait
// have both completed, so confirms can never be mismatched to the wrong
// publish.
type PublishSink struct {
	mu sync.Mutex
}

// Submit runs fn with exclusive access to the sink.
func (s *PublishSink) Submit(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
