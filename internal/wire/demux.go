package wire

import (
	"github.com/flowmq/amqp091/internal/frame"
)

// demuxer turns a byte stream into a sequence of frame.Frame values,
// carrying over whatever bytes did not yet complete a frame between
// calls. Grounded on vcabbage-amqp/conn.go's startMux inline buffering
// loop, pulled out into its own type since the 0-9-1 envelope's "peek,
// then decide whether enough is buffered" shape is exactly the same
// operation regardless of which state the connection is in.
type demuxer struct {
	carry []byte
	first bool
}

func newDemuxer() *demuxer {
	return &demuxer{first: true}
}

// feed appends chunk to the carry-over buffer and extracts every
// complete frame now available. protoMismatch is non-nil only on the very
// first chunk, and only if that chunk is exactly the 8 octet protocol
// version reply the spec calls out as a special case.
func (d *demuxer) feed(chunk []byte) (frames []frame.Frame, protoMismatch []byte, err error) {
	if d.first {
		d.first = false
		if len(chunk) == 8 && chunk[0] == 'A' && chunk[1] == 'M' && chunk[2] == 'Q' && chunk[3] == 'P' {
			return nil, chunk, nil
		}
	}

	d.carry = append(d.carry, chunk...)

	for {
		fr, consumed, ferr := frame.ReadFrame(d.carry)
		if ferr != nil {
			return frames, nil, ferr
		}
		if consumed == 0 {
			return frames, nil, nil
		}

		frames = append(frames, fr)
		d.carry = d.carry[consumed:]
	}
}
