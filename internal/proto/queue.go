package proto

import "github.com/flowmq/amqp091/internal/frame"

// QueueDeclareArgs declares a queue.
type QueueDeclareArgs struct {
	Queue      string
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	NoWait     bool
	Arguments  frame.Table
}

func (m *QueueDeclareArgs) Encode(w *frame.Writer) error {
	if err := w.WriteShort(0); err != nil {
		return err
	}
	if m.Queue != "" {
		if err := frame.AssertName(m.Queue, "queue.declare.queue"); err != nil {
			return err
		}
	}
	if err := w.WriteShortstr(m.Queue, "queue.declare.queue"); err != nil {
		return err
	}
	if err := w.WriteOctet(packBits(m.Passive, m.Durable, m.Exclusive, m.AutoDelete, m.NoWait)); err != nil {
		return err
	}
	return w.WriteTable(m.Arguments, "queue.declare.arguments")
}

func (m *QueueDeclareArgs) Decode(r *frame.Reader) error { panic("queue.declare is client-to-server only") }

// QueueDeclareOk reports the queue's name and current occupancy.
type QueueDeclareOk struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

func (m *QueueDeclareOk) Decode(r *frame.Reader) (err error) {
	if m.Queue, err = r.ReadShortstr("queue.declare_ok.queue"); err != nil {
		return err
	}
	if m.MessageCount, err = r.ReadLong("queue.declare_ok.message_count"); err != nil {
		return err
	}
	m.ConsumerCount, err = r.ReadLong("queue.declare_ok.consumer_count")
	return err
}
func (m *QueueDeclareOk) Encode(w *frame.Writer) error { panic("queue.declare_ok is server-to-client only") }

// QueueBindArgs binds a queue to an exchange.
type QueueBindArgs struct {
	Queue      string
	Exchange   string
	RoutingKey string
	NoWait     bool
	Arguments  frame.Table
}

func (m *QueueBindArgs) Encode(w *frame.Writer) error {
	if err := w.WriteShort(0); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.Queue, "queue.bind.queue"); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.Exchange, "queue.bind.exchange"); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.RoutingKey, "queue.bind.routing_key"); err != nil {
		return err
	}
	if err := w.WriteOctet(packBits(m.NoWait)); err != nil {
		return err
	}
	return w.WriteTable(m.Arguments, "queue.bind.arguments")
}
func (m *QueueBindArgs) Decode(r *frame.Reader) (err error) {
	if err = r.Skip(2, "queue.bind.reserved_1"); err != nil {
		return err
	}
	if m.Queue, err = r.ReadShortstr("queue.bind.queue"); err != nil {
		return err
	}
	if m.Exchange, err = r.ReadShortstr("queue.bind.exchange"); err != nil {
		return err
	}
	if m.RoutingKey, err = r.ReadShortstr("queue.bind.routing_key"); err != nil {
		return err
	}
	bits, err := r.ReadOctet("queue.bind.bits")
	if err != nil {
		return err
	}
	m.NoWait = unpackBit(bits, 0)
	m.Arguments, err = r.ReadTable("queue.bind.arguments")
	return err
}

// QueueBindOk has no fields.
type QueueBindOk struct{}

func (m *QueueBindOk) Decode(r *frame.Reader) error { return nil }
func (m *QueueBindOk) Encode(w *frame.Writer) error { return nil }

// QueueUnbindArgs unbinds a queue from an exchange.
type QueueUnbindArgs struct {
	Queue      string
	Exchange   string
	RoutingKey string
	Arguments  frame.Table
}

func (m *QueueUnbindArgs) Encode(w *frame.Writer) error {
	if err := w.WriteShort(0); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.Queue, "queue.unbind.queue"); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.Exchange, "queue.unbind.exchange"); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.RoutingKey, "queue.unbind.routing_key"); err != nil {
		return err
	}
	return w.WriteTable(m.Arguments, "queue.unbind.arguments")
}
func (m *QueueUnbindArgs) Decode(r *frame.Reader) error { panic("queue.unbind is client-to-server only") }

// QueueUnbindOk has no fields.
type QueueUnbindOk struct{}

func (m *QueueUnbindOk) Decode(r *frame.Reader) error { return nil }
func (m *QueueUnbindOk) Encode(w *frame.Writer) error { return nil }

// QueuePurgeArgs purges a queue.
type QueuePurgeArgs struct {
	Queue  string
	NoWait bool
}

func (m *QueuePurgeArgs) Encode(w *frame.Writer) error {
	if err := w.WriteShort(0); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.Queue, "queue.purge.queue"); err != nil {
		return err
	}
	return w.WriteOctet(packBits(m.NoWait))
}
func (m *QueuePurgeArgs) Decode(r *frame.Reader) error { panic("queue.purge is client-to-server only") }

// QueuePurgeOk reports how many messages were purged.
type QueuePurgeOk struct {
	MessageCount uint32
}

func (m *QueuePurgeOk) Decode(r *frame.Reader) (err error) {
	m.MessageCount, err = r.ReadLong("queue.purge_ok.message_count")
	return err
}
func (m *QueuePurgeOk) Encode(w *frame.Writer) error { panic("queue.purge_ok is server-to-client only") }

// QueueDeleteArgs deletes a queue.
type QueueDeleteArgs struct {
	Queue    string
	IfUnused bool
	IfEmpty  bool
	NoWait   bool
}

func (m *QueueDeleteArgs) Encode(w *frame.Writer) error {
	if err := w.WriteShort(0); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.Queue, "queue.delete.queue"); err != nil {
		return err
	}
	return w.WriteOctet(packBits(m.IfUnused, m.IfEmpty, m.NoWait))
}
func (m *QueueDeleteArgs) Decode(r *frame.Reader) error { panic("queue.delete is client-to-server only") }

// QueueDeleteOk reports how many messages were discarded with the queue.
type QueueDeleteOk struct {
	MessageCount uint32
}

func (m *QueueDeleteOk) Decode(r *frame.Reader) (err error) {
	m.MessageCount, err = r.ReadLong("queue.delete_ok.message_count")
	return err
}
func (m *QueueDeleteOk) Encode(w *frame.Writer) error { panic("queue.delete_ok is server-to-client only") }
