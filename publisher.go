package amqp091

import (
	"bytes"
	"io"
	"time"

	"github.com/flowmq/amqp091/internal/frame"
	"github.com/flowmq/amqp091/internal/wire"
)

// Properties is basic-properties, the optional metadata carried by a
// message's header frame.
type Properties struct {
	ContentType     string
	ContentEncoding string
	Headers         Table
	DeliveryMode    uint8
	Priority        uint8
	CorrelationID   string
	ReplyTo         string
	Expiration      string
	MessageID       string
	Timestamp       time.Time
	Type            string
	UserID          string
	AppID           string
}

// toFrame infers presence from Go zero values rather than carrying an
// explicit presence bitmap, trading the "priority 0 is a valid present
// value" edge case for a simpler public struct; callers who need to
// send an explicit zero Priority or DeliveryMode should set it to a
// deliberately non-zero sentinel upstream of this package.
func (p *Properties) toFrame() frame.Properties {
	var fp frame.Properties
	if p == nil {
		return fp
	}
	if p.ContentType != "" {
		fp.SetContentType(p.ContentType)
	}
	if p.ContentEncoding != "" {
		fp.SetContentEncoding(p.ContentEncoding)
	}
	if p.Headers != nil {
		fp.SetHeaders(frame.Table(p.Headers))
	}
	if p.DeliveryMode != 0 {
		fp.SetDeliveryMode(p.DeliveryMode)
	}
	if p.Priority != 0 {
		fp.SetPriority(p.Priority)
	}
	if p.CorrelationID != "" {
		fp.SetCorrelationID(p.CorrelationID)
	}
	if p.ReplyTo != "" {
		fp.SetReplyTo(p.ReplyTo)
	}
	if p.Expiration != "" {
		fp.SetExpiration(p.Expiration)
	}
	if p.MessageID != "" {
		fp.SetMessageID(p.MessageID)
	}
	if !p.Timestamp.IsZero() {
		fp.SetTimestamp(p.Timestamp)
	}
	if p.Type != "" {
		fp.SetType(p.Type)
	}
	if p.UserID != "" {
		fp.SetUserID(p.UserID)
	}
	if p.AppID != "" {
		fp.SetAppID(p.AppID)
	}
	return fp
}

func propertiesFromFrame(fp frame.Properties) Properties {
	return Properties{
		ContentType:     fp.ContentType,
		ContentEncoding: fp.ContentEncoding,
		Headers:         Table(fp.Headers),
		DeliveryMode:    fp.DeliveryMode,
		Priority:        fp.Priority,
		CorrelationID:   fp.CorrelationID,
		ReplyTo:         fp.ReplyTo,
		Expiration:      fp.Expiration,
		MessageID:       fp.MessageID,
		Timestamp:       fp.Timestamp,
		Type:            fp.Type,
		UserID:          fp.UserID,
		AppID:           fp.AppID,
	}
}

// PublishMessage is one message handed to Publisher.Publish.
type PublishMessage struct {
	Exchange   string
	RoutingKey string
	Properties Properties
	Body       []byte
}

// PublishResult reports the outcome of one Publish call.
type PublishResult struct {
	Acked       bool
	Returned    bool
	ReturnCode  uint16
	ReturnText  string
	Err         error
}

// Publisher pushes messages with publisher confirms enabled. Grounded on
// the spec's publish channel, which owns its own dedicated channel
// rather than sharing one with declare/bind calls.
type Publisher struct {
	pc *wire.PublishChannel
}

// NewPublisher opens a dedicated channel and switches it into
// publisher-confirms mode.
func (c *Client) NewPublisher() (*Publisher, error) {
	pc, err := wire.NewPublishChannel(c.conn)
	if err != nil {
		return nil, err
	}
	return &Publisher{pc: pc}, nil
}

// Publish sends one message and blocks for its ack or return.
func (p *Publisher) Publish(msg PublishMessage) PublishResult {
	var body io.Reader
	if len(msg.Body) > 0 {
		body = bytes.NewReader(msg.Body)
	}

	result := p.pc.Publish(wire.PublishMessage{
		Exchange:   msg.Exchange,
		RoutingKey: msg.RoutingKey,
		Properties: msg.Properties.toFrame(),
		Body:       body,
		BodySize:   uint64(len(msg.Body)),
	})

	if result.Err != nil {
		return PublishResult{Err: result.Err}
	}
	if result.Return != nil {
		return PublishResult{
			Returned:   true,
			ReturnCode: result.Return.ReplyCode,
			ReturnText: result.Return.ReplyText,
		}
	}
	return PublishResult{Acked: true}
}

// Close closes the publisher's channel.
func (p *Publisher) Close() error {
	if err := p.pc.Close(); err != nil {
		return err
	}
	return nil
}
