package proto

import "github.com/flowmq/amqp091/internal/frame"

// BasicQosArgs sets the channel's prefetch policy.
type BasicQosArgs struct {
	PrefetchSize  uint32
	PrefetchCount uint16
	Global        bool
}

func (m *BasicQosArgs) Encode(w *frame.Writer) error {
	if err := w.WriteLong(m.PrefetchSize); err != nil {
		return err
	}
	if err := w.WriteShort(m.PrefetchCount); err != nil {
		return err
	}
	return w.WriteOctet(packBits(m.Global))
}
func (m *BasicQosArgs) Decode(r *frame.Reader) error { panic("basic.qos is client-to-server only") }

// BasicQosOk has no fields.
type BasicQosOk struct{}

func (m *BasicQosOk) Decode(r *frame.Reader) error { return nil }
func (m *BasicQosOk) Encode(w *frame.Writer) error { return nil }

// BasicConsumeArgs starts a consumer.
type BasicConsumeArgs struct {
	Queue       string
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	NoWait      bool
	Arguments   frame.Table
}

func (m *BasicConsumeArgs) Encode(w *frame.Writer) error {
	if err := w.WriteShort(0); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.Queue, "basic.consume.queue"); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.ConsumerTag, "basic.consume.consumer_tag"); err != nil {
		return err
	}
	if err := w.WriteOctet(packBits(m.NoLocal, m.NoAck, m.Exclusive, m.NoWait)); err != nil {
		return err
	}
	return w.WriteTable(m.Arguments, "basic.consume.arguments")
}
func (m *BasicConsumeArgs) Decode(r *frame.Reader) error { panic("basic.consume is client-to-server only") }

// BasicConsumeOk reports the broker-assigned (or echoed) consumer tag.
type BasicConsumeOk struct {
	ConsumerTag string
}

func (m *BasicConsumeOk) Decode(r *frame.Reader) (err error) {
	m.ConsumerTag, err = r.ReadShortstr("basic.consume_ok.consumer_tag")
	return err
}
func (m *BasicConsumeOk) Encode(w *frame.Writer) error { panic("basic.consume_ok is server-to-client only") }

// BasicCancelArgs cancels a consumer.
type BasicCancelArgs struct {
	ConsumerTag string
	NoWait      bool
}

func (m *BasicCancelArgs) Encode(w *frame.Writer) error {
	if err := w.WriteShortstr(m.ConsumerTag, "basic.cancel.consumer_tag"); err != nil {
		return err
	}
	return w.WriteOctet(packBits(m.NoWait))
}
func (m *BasicCancelArgs) Decode(r *frame.Reader) (err error) {
	if m.ConsumerTag, err = r.ReadShortstr("basic.cancel.consumer_tag"); err != nil {
		return err
	}
	var bits uint8
	bits, err = r.ReadOctet("basic.cancel.bits")
	m.NoWait = unpackBit(bits, 0)
	return err
}

// BasicCancelOk carries the cancelled consumer tag.
type BasicCancelOk struct {
	ConsumerTag string
}

func (m *BasicCancelOk) Decode(r *frame.Reader) (err error) {
	m.ConsumerTag, err = r.ReadShortstr("basic.cancel_ok.consumer_tag")
	return err
}
func (m *BasicCancelOk) Encode(w *frame.Writer) error {
	return w.WriteShortstr(m.ConsumerTag, "basic.cancel_ok.consumer_tag")
}

// BasicPublishArgs starts a content sequence.
type BasicPublishArgs struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool
}

func (m *BasicPublishArgs) Encode(w *frame.Writer) error {
	if err := w.WriteShort(0); err != nil {
		return err
	}
	if m.Exchange != "" {
		if err := frame.AssertName(m.Exchange, "basic.publish.exchange"); err != nil {
			return err
		}
	}
	if err := w.WriteShortstr(m.Exchange, "basic.publish.exchange"); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.RoutingKey, "basic.publish.routing_key"); err != nil {
		return err
	}
	return w.WriteOctet(packBits(m.Mandatory, m.Immediate))
}
func (m *BasicPublishArgs) Decode(r *frame.Reader) error { panic("basic.publish is client-to-server only") }

// BasicReturnArgs is sent back for a mandatory publish that found no queue.
type BasicReturnArgs struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
}

func (m *BasicReturnArgs) Decode(r *frame.Reader) (err error) {
	if m.ReplyCode, err = r.ReadShort("basic.return.reply_code"); err != nil {
		return err
	}
	if m.ReplyText, err = r.ReadShortstr("basic.return.reply_text"); err != nil {
		return err
	}
	if m.Exchange, err = r.ReadShortstr("basic.return.exchange"); err != nil {
		return err
	}
	m.RoutingKey, err = r.ReadShortstr("basic.return.routing_key")
	return err
}
func (m *BasicReturnArgs) Encode(w *frame.Writer) error { panic("basic.return is server-to-client only") }

// BasicDeliverArgs starts a delivered content sequence.
type BasicDeliverArgs struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
}

func (m *BasicDeliverArgs) Decode(r *frame.Reader) (err error) {
	if m.ConsumerTag, err = r.ReadShortstr("basic.deliver.consumer_tag"); err != nil {
		return err
	}
	if m.DeliveryTag, err = r.ReadLongLong("basic.deliver.delivery_tag"); err != nil {
		return err
	}
	if m.Redelivered, err = r.ReadBool("basic.deliver.redelivered"); err != nil {
		return err
	}
	if m.Exchange, err = r.ReadShortstr("basic.deliver.exchange"); err != nil {
		return err
	}
	m.RoutingKey, err = r.ReadShortstr("basic.deliver.routing_key")
	return err
}
func (m *BasicDeliverArgs) Encode(w *frame.Writer) error { panic("basic.deliver is server-to-client only") }

// BasicAckArgs acknowledges one or more deliveries/confirms.
type BasicAckArgs struct {
	DeliveryTag uint64
	Multiple    bool
}

func (m *BasicAckArgs) Encode(w *frame.Writer) error {
	if err := w.WriteLongLong(m.DeliveryTag); err != nil {
		return err
	}
	return w.WriteOctet(packBits(m.Multiple))
}
func (m *BasicAckArgs) Decode(r *frame.Reader) (err error) {
	if m.DeliveryTag, err = r.ReadLongLong("basic.ack.delivery_tag"); err != nil {
		return err
	}
	bits, err := r.ReadOctet("basic.ack.bits")
	m.Multiple = unpackBit(bits, 0)
	return err
}

// BasicRejectArgs rejects a single delivery.
type BasicRejectArgs struct {
	DeliveryTag uint64
	Requeue     bool
}

func (m *BasicRejectArgs) Encode(w *frame.Writer) error {
	if err := w.WriteLongLong(m.DeliveryTag); err != nil {
		return err
	}
	return w.WriteOctet(packBits(m.Requeue))
}
func (m *BasicRejectArgs) Decode(r *frame.Reader) error { panic("basic.reject is client-to-server only") }

// BasicNackArgs is RabbitMQ's extension negative-ack, covering multiple
// deliveries and an explicit requeue bit.
type BasicNackArgs struct {
	DeliveryTag uint64
	Multiple    bool
	Requeue     bool
}

func (m *BasicNackArgs) Encode(w *frame.Writer) error {
	if err := w.WriteLongLong(m.DeliveryTag); err != nil {
		return err
	}
	return w.WriteOctet(packBits(m.Multiple, m.Requeue))
}
func (m *BasicNackArgs) Decode(r *frame.Reader) (err error) {
	if m.DeliveryTag, err = r.ReadLongLong("basic.nack.delivery_tag"); err != nil {
		return err
	}
	bits, err := r.ReadOctet("basic.nack.bits")
	m.Multiple = unpackBit(bits, 0)
	m.Requeue = unpackBit(bits, 1)
	return err
}
