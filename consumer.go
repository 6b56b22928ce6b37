package amqp091

import (
	"io"

	"github.com/flowmq/amqp091/internal/wire"
)

// ConsumeOptions configures Client.NewConsumer.
type ConsumeOptions struct {
	Queue              string
	ConsumerTag        string
	NoLocal            bool
	NoAck              bool
	Exclusive          bool
	PrefetchCount      uint16
	Priority           *int8
	CancelOnHAFailover bool
	StreamOffset       interface{}
	Arguments          Table
}

// Delivery is one message received by a Consumer. Body is nil when the
// message carried an empty body; otherwise it is a streaming io.Reader
// bounded at the connection's negotiated frame_max.
type Delivery struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
	Properties  Properties
	Body        io.Reader

	delivery *wire.Delivery
}

// Ack acknowledges the delivery. Idempotent.
func (d *Delivery) Ack() error {
	if err := d.delivery.Ack(); err != nil {
		return err
	}
	return nil
}

// Nack negatively acknowledges the delivery. Idempotent.
func (d *Delivery) Nack(requeue bool) error {
	if err := d.delivery.Nack(requeue); err != nil {
		return err
	}
	return nil
}

// Consumer drives one basic.consume subscription.
type Consumer struct {
	cc *wire.ConsumeChannel
	ch chan *Delivery
}

// NewConsumer opens a dedicated channel and starts a subscription.
func (c *Client) NewConsumer(opts ConsumeOptions) (*Consumer, error) {
	cc, err := wire.NewConsumeChannel(c.conn, wire.ConsumeOptions{
		Queue:              opts.Queue,
		ConsumerTag:        opts.ConsumerTag,
		NoLocal:            opts.NoLocal,
		NoAck:              opts.NoAck,
		Exclusive:          opts.Exclusive,
		PrefetchCount:      opts.PrefetchCount,
		Priority:           opts.Priority,
		CancelOnHAFailover: opts.CancelOnHAFailover,
		StreamOffset:       opts.StreamOffset,
		Arguments:          toTable(opts.Arguments),
	})
	if err != nil {
		return nil, err
	}

	consumer := &Consumer{cc: cc, ch: make(chan *Delivery)}
	go consumer.relay()
	return consumer, nil
}

func (c *Consumer) relay() {
	defer close(c.ch)
	for wd := range c.cc.Deliveries() {
		var body io.Reader
		if wd.Body != nil {
			body = wd.Body
		}
		c.ch <- &Delivery{
			ConsumerTag: wd.ConsumerTag,
			DeliveryTag: wd.DeliveryTag,
			Redelivered: wd.Redelivered,
			Exchange:    wd.Exchange,
			RoutingKey:  wd.RoutingKey,
			Properties:  propertiesFromFrame(wd.Properties),
			Body:        body,
			delivery:    wd,
		}
	}
}

// Deliveries returns the channel deliveries are emitted on. It is
// closed when the subscription ends (Unsubscribe, or a broker-initiated
// cancel).
func (c *Consumer) Deliveries() <-chan *Delivery { return c.ch }

// ConsumerTag returns the broker-assigned or echoed consumer tag.
func (c *Consumer) ConsumerTag() string { return c.cc.ConsumerTag() }

// OnCancel registers a callback invoked if the broker cancels this
// consumer.
func (c *Consumer) OnCancel(fn func(error)) {
	c.cc.OnCancel(func(err *wire.Error) { fn(err) })
}

// Unsubscribe cancels the consumer and closes its channel.
func (c *Consumer) Unsubscribe() error {
	if err := c.cc.Unsubscribe(); err != nil {
		return err
	}
	return nil
}
