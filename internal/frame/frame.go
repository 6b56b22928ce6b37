// Package frame implements the AMQP 0-9-1 frame envelope and the typed
// field grammar (tables, arrays, decimals, short/long strings) that method,
// header and body frames are built from.
//
// It is grounded on the reader/writer split vcabbage-amqp/decode.go and
// encode.go use for AMQP 1.0, adapted to the flatter 0-9-1 envelope: a
// fixed 7 octet header, a payload, and a single 0xCE trailer instead of an
// extended-header data offset.
package frame

import (
	"encoding/binary"
	"io"
)

// Kind identifies the four frame types carried over a connection.
type Kind uint8

const (
	KindMethod    Kind = 1
	KindHeader    Kind = 2
	KindBody      Kind = 3
	KindHeartbeat Kind = 8
)

func (k Kind) String() string {
	switch k {
	case KindMethod:
		return "method"
	case KindHeader:
		return "header"
	case KindBody:
		return "body"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

const (
	// MinSize is the smallest frame_max a peer may negotiate.
	MinSize = 4096
	// End is the single trailing octet every frame must carry.
	End = 0xCE
	// envelopeSize is the 7 octets preceding payload (kind + channel + size).
	envelopeSize = 7
)

// Frame is a decoded {kind, channel, payload} triple.
type Frame struct {
	Kind    Kind
	Channel uint16
	Payload []byte
}

// ReadFrame reads one complete frame from buf starting at offset 0.
//
// It returns the frame, the number of bytes consumed, and an error. If buf
// does not yet contain a complete frame, consumed is 0 and err is nil; the
// caller should buffer more bytes and retry.
func ReadFrame(buf []byte) (fr Frame, consumed int, err error) {
	if len(buf) < envelopeSize+1 {
		return Frame{}, 0, nil
	}

	kind := Kind(buf[0])
	channel := binary.BigEndian.Uint16(buf[1:3])
	size := binary.BigEndian.Uint32(buf[3:7])

	total := envelopeSize + int(size) + 1
	if len(buf) < total {
		return Frame{}, 0, nil
	}

	if buf[total-1] != End {
		return Frame{}, 0, wrapf(errFrameEndByte, "frame.end")
	}

	var payload []byte
	if size > 0 {
		payload = make([]byte, size)
		copy(payload, buf[envelopeSize:envelopeSize+int(size)])
	}

	return Frame{Kind: kind, Channel: channel, Payload: payload}, total, nil
}

// WriteFrame appends the wire encoding of fr to w in a single Write call.
func WriteFrame(w io.Writer, fr Frame) error {
	buf := make([]byte, envelopeSize+len(fr.Payload)+1)
	buf[0] = byte(fr.Kind)
	binary.BigEndian.PutUint16(buf[1:3], fr.Channel)
	binary.BigEndian.PutUint32(buf[3:7], uint32(len(fr.Payload)))
	copy(buf[envelopeSize:], fr.Payload)
	buf[len(buf)-1] = End

	_, err := w.Write(buf)
	return wrapfEnc(err, "frame")
}

// Heartbeat is the canonical, zero-payload heartbeat frame on channel 0.
var Heartbeat = Frame{Kind: KindHeartbeat, Channel: 0, Payload: nil}
