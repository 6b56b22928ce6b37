package proto

import "github.com/flowmq/amqp091/internal/frame"

// ExchangeDeclareArgs declares an exchange. The bit-packed fields
// (Passive, Durable, AutoDelete, Internal, NoWait) are packed into a
// single octet bitmap in declaration order, per the protocol tables'
// bit-run rule.
type ExchangeDeclareArgs struct {
	Exchange   string
	Type       string
	Passive    bool
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Arguments  frame.Table
}

func (m *ExchangeDeclareArgs) Encode(w *frame.Writer) error {
	if err := w.WriteShort(0); err != nil { // reserved-1 ticket
		return err
	}
	if err := frame.AssertName(m.Exchange, "exchange.declare.exchange"); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.Exchange, "exchange.declare.exchange"); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.Type, "exchange.declare.type"); err != nil {
		return err
	}
	bits := packBits(m.Passive, m.Durable, m.AutoDelete, m.Internal, m.NoWait)
	if err := w.WriteOctet(bits); err != nil {
		return err
	}
	return w.WriteTable(m.Arguments, "exchange.declare.arguments")
}

func (m *ExchangeDeclareArgs) Decode(r *frame.Reader) (err error) {
	if err = r.Skip(2, "exchange.declare.reserved_1"); err != nil {
		return err
	}
	if m.Exchange, err = r.ReadShortstr("exchange.declare.exchange"); err != nil {
		return err
	}
	if m.Type, err = r.ReadShortstr("exchange.declare.type"); err != nil {
		return err
	}
	bits, err := r.ReadOctet("exchange.declare.bits")
	if err != nil {
		return err
	}
	m.Passive, m.Durable, m.AutoDelete = unpackBit(bits, 0), unpackBit(bits, 1), unpackBit(bits, 2)
	m.Internal, m.NoWait = unpackBit(bits, 3), unpackBit(bits, 4)
	m.Arguments, err = r.ReadTable("exchange.declare.arguments")
	return err
}

// ExchangeDeclareOk has no fields.
type ExchangeDeclareOk struct{}

func (m *ExchangeDeclareOk) Decode(r *frame.Reader) error { return nil }
func (m *ExchangeDeclareOk) Encode(w *frame.Writer) error { return nil }

// ExchangeDeleteArgs deletes an exchange.
type ExchangeDeleteArgs struct {
	Exchange string
	IfUnused bool
	NoWait   bool
}

func (m *ExchangeDeleteArgs) Encode(w *frame.Writer) error {
	if err := w.WriteShort(0); err != nil {
		return err
	}
	if err := frame.AssertName(m.Exchange, "exchange.delete.exchange"); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.Exchange, "exchange.delete.exchange"); err != nil {
		return err
	}
	return w.WriteOctet(packBits(m.IfUnused, m.NoWait))
}

func (m *ExchangeDeleteArgs) Decode(r *frame.Reader) error {
	panic("exchange.delete is client-to-server only")
}

// ExchangeDeleteOk has no fields.
type ExchangeDeleteOk struct{}

func (m *ExchangeDeleteOk) Decode(r *frame.Reader) error { return nil }
func (m *ExchangeDeleteOk) Encode(w *frame.Writer) error { return nil }

// ExchangeBindArgs binds one exchange to another.
type ExchangeBindArgs struct {
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   frame.Table
}

func (m *ExchangeBindArgs) Encode(w *frame.Writer) error {
	if err := w.WriteShort(0); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.Destination, "exchange.bind.destination"); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.Source, "exchange.bind.source"); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.RoutingKey, "exchange.bind.routing_key"); err != nil {
		return err
	}
	if err := w.WriteOctet(packBits(m.NoWait)); err != nil {
		return err
	}
	return w.WriteTable(m.Arguments, "exchange.bind.arguments")
}

func (m *ExchangeBindArgs) Decode(r *frame.Reader) error { panic("exchange.bind is client-to-server only") }

// ExchangeBindOk has no fields.
type ExchangeBindOk struct{}

func (m *ExchangeBindOk) Decode(r *frame.Reader) error { return nil }
func (m *ExchangeBindOk) Encode(w *frame.Writer) error { return nil }

// ExchangeUnbindArgs unbinds one exchange from another.
type ExchangeUnbindArgs struct {
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   frame.Table
}

func (m *ExchangeUnbindArgs) Encode(w *frame.Writer) error {
	if err := w.WriteShort(0); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.Destination, "exchange.unbind.destination"); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.Source, "exchange.unbind.source"); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.RoutingKey, "exchange.unbind.routing_key"); err != nil {
		return err
	}
	if err := w.WriteOctet(packBits(m.NoWait)); err != nil {
		return err
	}
	return w.WriteTable(m.Arguments, "exchange.unbind.arguments")
}

func (m *ExchangeUnbindArgs) Decode(r *frame.Reader) error {
	panic("exchange.unbind is client-to-server only")
}

// ExchangeUnbindOk has no fields.
type ExchangeUnbindOk struct{}

func (m *ExchangeUnbindOk) Decode(r *frame.Reader) error { return nil }
func (m *ExchangeUnbindOk) Encode(w *frame.Writer) error { return nil }

// packBits packs up to 8 booleans into a single octet, LSB = first
// declared bit, per the protocol tables' bit-run rule.
func packBits(bits ...bool) uint8 {
	var b uint8
	for i, bit := range bits {
		if bit {
			b |= 1 << uint(i)
		}
	}
	return b
}

func unpackBit(b uint8, i int) bool {
	return b&(1<<uint(i)) != 0
}
