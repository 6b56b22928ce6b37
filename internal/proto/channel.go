package proto

import "github.com/flowmq/amqp091/internal/frame"

// ChannelOpen has one reserved field.
type ChannelOpen struct{}

func (m *ChannelOpen) Encode(w *frame.Writer) error {
	return w.WriteShortstr("", "channel.open.reserved_1")
}
func (m *ChannelOpen) Decode(r *frame.Reader) error { panic("channel.open is client-to-server only") }

// ChannelOpenOk carries a deprecated channel-id field, ignored.
type ChannelOpenOk struct{}

func (m *ChannelOpenOk) Decode(r *frame.Reader) error {
	_, err := r.ReadLongstr("channel.open_ok.reserved_1")
	return err
}
func (m *ChannelOpenOk) Encode(w *frame.Writer) error { panic("channel.open_ok is server-to-client only") }

// ChannelFlow toggles the channel's consumer/publish flow.
type ChannelFlow struct {
	Active bool
}

func (m *ChannelFlow) Decode(r *frame.Reader) (err error) {
	m.Active, err = r.ReadBool("channel.flow.active")
	return err
}
func (m *ChannelFlow) Encode(w *frame.Writer) error { return w.WriteBool(m.Active) }

// ChannelFlowOk echoes the active bit back.
type ChannelFlowOk struct {
	Active bool
}

func (m *ChannelFlowOk) Encode(w *frame.Writer) error { return w.WriteBool(m.Active) }
func (m *ChannelFlowOk) Decode(r *frame.Reader) (err error) {
	m.Active, err = r.ReadBool("channel.flow_ok.active")
	return err
}

// ChannelClose carries the reply code/text, mirroring connection.close.
type ChannelClose struct {
	ReplyCode uint16
	ReplyText string
	ClassID   uint16
	MethodID  uint16
}

func (m *ChannelClose) Decode(r *frame.Reader) (err error) {
	if m.ReplyCode, err = r.ReadShort("channel.close.reply_code"); err != nil {
		return err
	}
	if m.ReplyText, err = r.ReadShortstr("channel.close.reply_text"); err != nil {
		return err
	}
	if m.ClassID, err = r.ReadShort("channel.close.class_id"); err != nil {
		return err
	}
	m.MethodID, err = r.ReadShort("channel.close.method_id")
	return err
}

func (m *ChannelClose) Encode(w *frame.Writer) error {
	if err := w.WriteShort(m.ReplyCode); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.ReplyText, "channel.close.reply_text"); err != nil {
		return err
	}
	if err := w.WriteShort(m.ClassID); err != nil {
		return err
	}
	return w.WriteShort(m.MethodID)
}

// ChannelCloseOk has no fields.
type ChannelCloseOk struct{}

func (m *ChannelCloseOk) Decode(r *frame.Reader) error { return nil }
func (m *ChannelCloseOk) Encode(w *frame.Writer) error { return nil }
