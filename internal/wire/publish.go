package wire

import (
	"io"

	"github.com/flowmq/amqp091/internal/frame"
	"github.com/flowmq/amqp091/internal/proto"
	"github.com/flowmq/amqp091/internal/stream"
)

// PublishMessage is one message handed to PublishChannel.Publish.
type PublishMessage struct {
	Exchange   string
	RoutingKey string
	Properties frame.Properties

	// Body is read to completion and chunked into frame_max-sized body
	// frames. A nil Body publishes an empty body. BodySize must equal
	// the number of bytes Body will yield.
	Body     io.Reader
	BodySize uint64
}

// PublishResult is delivered for every Publish call: either Ack is
// non-nil (the broker confirmed the message) or Return is non-nil (a
// mandatory publish found no queue to route to).
type PublishResult struct {
	Ack    *proto.BasicAckArgs
	Return *proto.BasicReturnArgs
	Err    *Error
}

// PublishChannel wraps a Channel in confirm-select mode. Grounded on
// vcabbage-amqp/link.go's Sender-side flow, generalized from AMQP 1.0's
// credit-based transfer to 0-9-1's simpler
// publish/header/body* + ack-or-return confirm cycle.
type PublishChannel struct {
	ch        *Channel
	confirmed bool

	// sink enforces the spec's high_water_mark=1 publish sink (§4.8): a
	// second caller's publish/header/body* sequence and confirm wait must
	// not start until the first's has fully completed, so a confirm can
	// never be matched to the wrong in-flight publish.
	sink stream.PublishSink
}

// NewPublishChannel opens a fresh channel and switches it into
// publisher-confirms mode.
func NewPublishChannel(conn *Connection) (*PublishChannel, *Error) {
	ch, err := conn.OpenChannel()
	if err != nil {
		return nil, err
	}

	p := &PublishChannel{ch: ch}
	ch.content = p
	// A basic.ack that arrives after the matching waiter already resolved
	// via a basic.return for an earlier publish is a known straggler, not
	// a protocol violation — absorb it instead of escalating a fatal
	// "handler not found" error.
	ch.handlers[proto.MethodID(proto.ClassBasic, proto.BasicAck)] = p.absorbStragglerAck

	_, callErr := ch.callAPI(
		[]uint32{proto.MethodID(proto.ClassConfirm, proto.ConfirmSelectOkID)},
		func() error {
			return conn.writeMethod(ch.id, proto.ClassConfirm, proto.ConfirmSelect, &proto.ConfirmSelectArgs{NoWait: false})
		},
	)
	if callErr != nil {
		return nil, callErr
	}
	p.confirmed = true
	return p, nil
}

func (p *PublishChannel) absorbStragglerAck(args proto.Method) error {
	return nil
}

// handleHeader and handleBody implement contentHandler. The content that
// follows a basic.return is discarded; only the return's arguments are
// reported in PublishResult.
func (p *PublishChannel) handleHeader(props frame.Properties, bodySize uint64) {}

func (p *PublishChannel) handleBody(chunk []byte) {}

// Publish sends one message and blocks for its ack or return. Concurrent
// callers are serialized by p.sink: a publish's body frames and its
// confirm wait both complete before the next caller's publish/header/body*
// sequence starts writing, so confirms are never attributed to the wrong
// in-flight message.
func (p *PublishChannel) Publish(msg PublishMessage) PublishResult {
	var result PublishResult
	p.sink.Submit(func() error {
		result = p.publishOne(msg)
		return nil
	})
	return result
}

func (p *PublishChannel) publishOne(msg PublishMessage) PublishResult {
	if msg.Exchange != "" {
		if err := frame.AssertName(msg.Exchange, "basic.publish.exchange"); err != nil {
			return PublishResult{Err: localProtocolError(err)}
		}
	}
	ackID := proto.MethodID(proto.ClassBasic, proto.BasicAck)
	returnID := proto.MethodID(proto.ClassBasic, proto.BasicReturn)

	result, callErr := p.ch.callAPI([]uint32{ackID, returnID}, func() error {
		if err := p.ch.conn.writeMethod(p.ch.id, proto.ClassBasic, proto.BasicPublish, &proto.BasicPublishArgs{
			Exchange:   msg.Exchange,
			RoutingKey: msg.RoutingKey,
			Mandatory:  true,
			Immediate:  false,
		}); err != nil {
			return err
		}
		if err := p.ch.writeHeader(proto.ClassBasic, msg.BodySize, msg.Properties); err != nil {
			return err
		}
		return p.streamBody(msg.Body, msg.BodySize)
	})

	if callErr != nil {
		return PublishResult{Err: callErr}
	}

	switch args := result.(type) {
	case *proto.BasicAckArgs:
		return PublishResult{Ack: args}
	case *proto.BasicReturnArgs:
		return PublishResult{Return: args}
	default:
		return PublishResult{}
	}
}

// streamBody chunks Body into frame_max-sized body frames. An absent
// Body publishes zero body frames.
func (p *PublishChannel) streamBody(body io.Reader, bodySize uint64) error {
	if body == nil || bodySize == 0 {
		return nil
	}

	chunkSize := int(p.ch.conn.FrameMax())
	if chunkSize <= 0 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if werr := p.ch.writeBody(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Close closes the underlying channel.
func (p *PublishChannel) Close() *Error {
	return p.ch.Close(nil)
}
