package proto

import "github.com/flowmq/amqp091/internal/frame"

// ConfirmSelectArgs switches a channel into publisher-confirms mode.
type ConfirmSelectArgs struct {
	NoWait bool
}

func (m *ConfirmSelectArgs) Encode(w *frame.Writer) error {
	return w.WriteOctet(packBits(m.NoWait))
}
func (m *ConfirmSelectArgs) Decode(r *frame.Reader) error {
	bits, err := r.ReadOctet("confirm.select.bits")
	m.NoWait = unpackBit(bits, 0)
	return err
}

// ConfirmSelectOk has no fields.
type ConfirmSelectOk struct{}

func (m *ConfirmSelectOk) Decode(r *frame.Reader) error { return nil }
func (m *ConfirmSelectOk) Encode(w *frame.Writer) error { return nil }
