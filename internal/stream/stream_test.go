package stream

import (
	"io"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
)

func TestBoundedBodyReadWrite(t *testing.T) {
	b := NewBoundedBody(16)
	b.Write([]byte("hello "))
	b.Write([]byte("world"))
	b.Close()

	got, err := io.ReadAll(b)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("body = %q, want %q", got, "hello world")
	}

	if _, err := b.Read(make([]byte, 1)); err != io.EOF {
		t.Fatalf("Read after drain = %v, want io.EOF", err)
	}
}

func TestBoundedBodyBlocksAtHighWaterMark(t *testing.T) {
	defer leaktest.Check(t)()

	b := NewBoundedBody(4)
	done := make(chan struct{})
	go func() {
		b.Write([]byte("1234")) // fills to the high water mark
		b.Write([]byte("5678")) // must block until a Read drains some
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("second Write returned before the buffer was drained")
	default:
	}

	buf := make([]byte, 4)
	if _, err := b.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second Write did not unblock after a Read")
	}
	b.Close()
}

func TestBoundedBodyCloseUnblocksWrite(t *testing.T) {
	defer leaktest.Check(t)()

	b := NewBoundedBody(1)
	b.Write([]byte("x"))

	blocked := make(chan struct{})
	go func() {
		b.Write([]byte("y")) // blocks at the high water mark until Close
		close(blocked)
	}()

	time.Sleep(20 * time.Millisecond)
	b.Close()

	select {
	case <-blocked:
	case <-time.After(time.Second):
		t.Fatal("Write did not unblock after Close")
	}
}

func TestPublishSinkSerializesCallers(t *testing.T) {
	var sink PublishSink

	entered := make(chan struct{})
	release := make(chan struct{})
	go sink.Submit(func() error {
		close(entered)
		<-release
		return nil
	})
	<-entered

	secondDone := make(chan struct{})
	go func() {
		sink.Submit(func() error { return nil })
		close(secondDone)
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-secondDone:
		t.Fatal("second Submit ran while the first was still inside fn")
	default:
	}

	close(release)
	select {
	case <-secondDone:
	case <-time.After(time.Second):
		t.Fatal("second Submit never ran after the first released the sink")
	}
}

func TestPublishSinkPropagatesError(t *testing.T) {
	var sink PublishSink
	want := io.ErrClosedPipe
	if err := sink.Submit(func() error { return want }); err != want {
		t.Fatalf("Submit error = %v, want %v", err, want)
	}
}
