package wire

import (
	"net"
	"testing"
	"time"

	"github.com/flowmq/amqp091/internal/frame"
	"github.com/flowmq/amqp091/internal/proto"
	"github.com/fortytw2/leaktest"
)

// serverWriteMethod hand-builds a server-to-client method frame. proto's
// Encode panics for methods this client only ever decodes (connection.start,
// connection.tune, connection.open_ok), so the fake broker side of these
// tests writes the wire bytes directly instead of going through proto.Encode.
func serverWriteMethod(t *testing.T, nc net.Conn, classID, methodID uint16, body func(w *frame.Writer) error) {
	t.Helper()
	w := frame.NewWriter()
	if err := w.MethodStart(classID, methodID); err != nil {
		t.Fatalf("MethodStart: %v", err)
	}
	if err := body(w); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	if err := frame.WriteFrame(nc, frame.Frame{Kind: frame.KindMethod, Channel: 0, Payload: w.Bytes()}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
}

func readProtocolHeader(t *testing.T, nc net.Conn) {
	t.Helper()
	buf := make([]byte, 8)
	if _, err := readFull(nc, buf); err != nil {
		t.Fatalf("reading protocol header: %v", err)
	}
}

func readFull(nc net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := nc.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func readClientMethod(t *testing.T, nc net.Conn) (classID, methodID uint16, m proto.Method) {
	t.Helper()
	buf := make([]byte, 65536)
	n, err := nc.Read(buf)
	if err != nil {
		t.Fatalf("reading client frame: %v", err)
	}
	fr, consumed, err := frame.ReadFrame(buf[:n])
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if consumed != n {
		t.Fatalf("consumed %d of %d bytes, expected exactly one frame per read in this fixture", consumed, n)
	}
	classID, methodID, m, err = proto.Decode(fr.Payload)
	if err != nil {
		t.Fatalf("proto.Decode: %v", err)
	}
	return classID, methodID, m
}

// runHandshake drives the broker side of a full connection.start through
// connection.open-ok exchange, offering PLAIN and AMQPLAIN, and returns once
// open-ok has been written.
func runHandshake(t *testing.T, nc net.Conn, tuneChannelMax uint16, tuneFrameMax uint32, tuneHeartbeat uint16) {
	t.Helper()
	readProtocolHeader(t, nc)

	serverWriteMethod(t, nc, proto.ClassConnection, proto.ConnectionStartID, func(w *frame.Writer) error {
		if err := w.WriteOctet(0); err != nil {
			return err
		}
		if err := w.WriteOctet(9); err != nil {
			return err
		}
		if err := w.WriteTable(frame.Table{}, "connection.start.server_properties"); err != nil {
			return err
		}
		if err := w.WriteLongstr("PLAIN AMQPLAIN"); err != nil {
			return err
		}
		return w.WriteLongstr("en_US")
	})

	classID, methodID, m := readClientMethod(t, nc)
	if classID != proto.ClassConnection || methodID != proto.ConnectionStartOkID {
		t.Fatalf("expected connection.start-ok, got class %d method %d", classID, methodID)
	}
	startOk := m.(*proto.ConnectionStartOk)
	if startOk.Mechanism != "AMQPLAIN" {
		t.Fatalf("mechanism = %q, want AMQPLAIN", startOk.Mechanism)
	}

	serverWriteMethod(t, nc, proto.ClassConnection, proto.ConnectionTuneID, func(w *frame.Writer) error {
		if err := w.WriteShort(tuneChannelMax); err != nil {
			return err
		}
		if err := w.WriteLong(tuneFrameMax); err != nil {
			return err
		}
		return w.WriteShort(tuneHeartbeat)
	})

	classID, methodID, _ = readClientMethod(t, nc)
	if classID != proto.ClassConnection || methodID != proto.ConnectionTuneOkID {
		t.Fatalf("expected connection.tune-ok, got class %d method %d", classID, methodID)
	}

	classID, methodID, _ = readClientMethod(t, nc)
	if classID != proto.ClassConnection || methodID != proto.ConnectionOpenID {
		t.Fatalf("expected connection.open, got class %d method %d", classID, methodID)
	}

	serverWriteMethod(t, nc, proto.ClassConnection, proto.ConnectionOpenOkID, func(w *frame.Writer) error {
		return w.WriteShortstr("", "connection.open_ok.reserved_1")
	})
}

func TestConnectionHandshakeNegotiatesTuneValues(t *testing.T) {
	checkLeaks := leaktest.Check(t)

	client, server := net.Pipe()
	defer server.Close()

	cfg := DefaultConfig()
	cfg.ConnectionTimeout = 0

	result := make(chan *Connection, 1)
	errCh := make(chan error, 1)
	go func() {
		conn, err := New(client, cfg)
		if err != nil {
			errCh <- err
			return
		}
		result <- conn
	}()

	runHandshake(t, server, 16, 8192, 0)

	select {
	case err := <-errCh:
		t.Fatalf("New: %v", err)
	case conn := <-result:
		if conn.ChannelMax() != 16 {
			t.Fatalf("ChannelMax = %d, want 16", conn.ChannelMax())
		}
		if conn.FrameMax() != 8192 {
			t.Fatalf("FrameMax = %d, want 8192", conn.FrameMax())
		}

		closeAcked := make(chan struct{})
		go func() {
			defer close(closeAcked)
			readClientMethod(t, server)
			serverWriteMethod(t, server, proto.ClassConnection, proto.ConnectionCloseOkID, func(w *frame.Writer) error { return nil })
		}()
		if err := conn.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		<-closeAcked
	case <-time.After(2 * time.Second):
		t.Fatal("handshake did not complete")
	}

	checkLeaks()
}

func TestConnectionHandshakeRejectsUnexpectedFrame(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	cfg := DefaultConfig()
	cfg.ConnectionTimeout = 0

	errCh := make(chan error, 1)
	go func() {
		_, err := New(client, cfg)
		errCh <- err
	}()

	readProtocolHeader(t, server)
	// Send channel.open-ok instead of connection.start.
	serverWriteMethod(t, server, proto.ClassChannel, proto.ChannelOpenOkID, func(w *frame.Writer) error {
		return w.WriteLongstr("")
	})

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected an error for an out-of-sequence handshake frame")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("New did not return after the bad frame")
	}
}

func TestNegotiateTreatsZeroAsNoPreference(t *testing.T) {
	cases := []struct {
		name   string
		client uint32
		server uint32
		want   uint32
	}{
		{"client unlimited takes server value", 0, 2048, 2048},
		{"server unlimited takes client value", 4096, 0, 4096},
		{"both unlimited stays unlimited", 0, 0, 0},
		{"client caps below server", 1024, 4096, 1024},
		{"server caps below client", 4096, 1024, 1024},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := negotiate(c.client, c.server); got != c.want {
				t.Fatalf("negotiate(%d, %d) = %d, want %d", c.client, c.server, got, c.want)
			}
		})
	}
}

func TestHeartbeatMarginClampedToRange(t *testing.T) {
	if got := heartbeatMargin(1 * time.Second); got != 50*time.Millisecond {
		t.Fatalf("margin for 1s heartbeat = %v, want the 50ms floor", got)
	}
	if got := heartbeatMargin(500 * time.Second); got != 1*time.Second {
		t.Fatalf("margin for 500s heartbeat = %v, want the 1s ceiling", got)
	}
	if got := heartbeatMargin(100 * time.Second); got != 1*time.Second {
		t.Fatalf("margin for 100s heartbeat = %v, want 1s", got)
	}
}
