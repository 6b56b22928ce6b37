package proto

import "github.com/flowmq/amqp091/internal/frame"

// ConnectionStart is sent by the server immediately after the protocol
// header exchange.
type ConnectionStart struct {
	VersionMajor     uint8
	VersionMinor     uint8
	ServerProperties frame.Table
	Mechanisms       string
	Locales          string
}

func (m *ConnectionStart) Decode(r *frame.Reader) (err error) {
	if m.VersionMajor, err = r.ReadOctet("connection.start.version_major"); err != nil {
		return err
	}
	if m.VersionMinor, err = r.ReadOctet("connection.start.version_minor"); err != nil {
		return err
	}
	if m.ServerProperties, err = r.ReadTable("connection.start.server_properties"); err != nil {
		return err
	}
	if m.Mechanisms, err = r.ReadLongstr("connection.start.mechanisms"); err != nil {
		return err
	}
	m.Locales, err = r.ReadLongstr("connection.start.locales")
	return err
}

func (m *ConnectionStart) Encode(w *frame.Writer) error {
	panic("connection.start is server-to-client only")
}

// ConnectionStartOk is the client's mechanism/response/locale reply.
type ConnectionStartOk struct {
	ClientProperties frame.Table
	Mechanism        string
	Response         []byte
	Locale           string
}

func (m *ConnectionStartOk) Encode(w *frame.Writer) error {
	if err := w.WriteTable(m.ClientProperties, "connection.start_ok.client_properties"); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.Mechanism, "connection.start_ok.mechanism"); err != nil {
		return err
	}
	if err := w.WriteLongstr(string(m.Response)); err != nil {
		return err
	}
	return w.WriteShortstr(m.Locale, "connection.start_ok.locale")
}

func (m *ConnectionStartOk) Decode(r *frame.Reader) (err error) {
	if m.ClientProperties, err = r.ReadTable("connection.start_ok.client_properties"); err != nil {
		return err
	}
	if m.Mechanism, err = r.ReadShortstr("connection.start_ok.mechanism"); err != nil {
		return err
	}
	response, err := r.ReadLongstr("connection.start_ok.response")
	if err != nil {
		return err
	}
	m.Response = []byte(response)
	m.Locale, err = r.ReadShortstr("connection.start_ok.locale")
	return err
}

// ConnectionTune carries the server's proposed channel_max/frame_max/heartbeat.
type ConnectionTune struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (m *ConnectionTune) Decode(r *frame.Reader) (err error) {
	if m.ChannelMax, err = r.ReadShort("connection.tune.channel_max"); err != nil {
		return err
	}
	if m.FrameMax, err = r.ReadLong("connection.tune.frame_max"); err != nil {
		return err
	}
	m.Heartbeat, err = r.ReadShort("connection.tune.heartbeat")
	return err
}

func (m *ConnectionTune) Encode(w *frame.Writer) error { panic("connection.tune is server-to-client only") }

// ConnectionTuneOk echoes the negotiated values back to the server.
type ConnectionTuneOk struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (m *ConnectionTuneOk) Encode(w *frame.Writer) error {
	if err := w.WriteShort(m.ChannelMax); err != nil {
		return err
	}
	if err := w.WriteLong(m.FrameMax); err != nil {
		return err
	}
	return w.WriteShort(m.Heartbeat)
}

func (m *ConnectionTuneOk) Decode(r *frame.Reader) (err error) {
	if m.ChannelMax, err = r.ReadShort("connection.tune_ok.channel_max"); err != nil {
		return err
	}
	if m.FrameMax, err = r.ReadLong("connection.tune_ok.frame_max"); err != nil {
		return err
	}
	m.Heartbeat, err = r.ReadShort("connection.tune_ok.heartbeat")
	return err
}

// ConnectionOpen requests a vhost.
type ConnectionOpen struct {
	VirtualHost string
	Reserved1   string
	Reserved2   bool
}

func (m *ConnectionOpen) Encode(w *frame.Writer) error {
	if err := w.WriteShortstr(m.VirtualHost, "connection.open.virtual_host"); err != nil {
		return err
	}
	if err := w.WriteShortstr("", "connection.open.reserved_1"); err != nil {
		return err
	}
	return w.WriteBool(false)
}

func (m *ConnectionOpen) Decode(r *frame.Reader) (err error) {
	if m.VirtualHost, err = r.ReadShortstr("connection.open.virtual_host"); err != nil {
		return err
	}
	if m.Reserved1, err = r.ReadShortstr("connection.open.reserved_1"); err != nil {
		return err
	}
	m.Reserved2, err = r.ReadBool("connection.open.reserved_2")
	return err
}

// ConnectionOpenOk has one reserved field on the wire; nothing to surface.
type ConnectionOpenOk struct{}

func (m *ConnectionOpenOk) Decode(r *frame.Reader) error {
	_, err := r.ReadShortstr("connection.open_ok.reserved_1")
	return err
}

func (m *ConnectionOpenOk) Encode(w *frame.Writer) error { panic("connection.open_ok is server-to-client only") }

// ConnectionClose carries the reply code/text that triggered the close,
// plus the method that caused it (0,0 if none).
type ConnectionClose struct {
	ReplyCode uint16
	ReplyText string
	ClassID   uint16
	MethodID  uint16
}

func (m *ConnectionClose) Decode(r *frame.Reader) (err error) {
	if m.ReplyCode, err = r.ReadShort("connection.close.reply_code"); err != nil {
		return err
	}
	if m.ReplyText, err = r.ReadShortstr("connection.close.reply_text"); err != nil {
		return err
	}
	if m.ClassID, err = r.ReadShort("connection.close.class_id"); err != nil {
		return err
	}
	m.MethodID, err = r.ReadShort("connection.close.method_id")
	return err
}

func (m *ConnectionClose) Encode(w *frame.Writer) error {
	if err := w.WriteShort(m.ReplyCode); err != nil {
		return err
	}
	if err := w.WriteShortstr(m.ReplyText, "connection.close.reply_text"); err != nil {
		return err
	}
	if err := w.WriteShort(m.ClassID); err != nil {
		return err
	}
	return w.WriteShort(m.MethodID)
}

// ConnectionCloseOk has no fields.
type ConnectionCloseOk struct{}

func (m *ConnectionCloseOk) Decode(r *frame.Reader) error { return nil }
func (m *ConnectionCloseOk) Encode(w *frame.Writer) error { return nil }

// ConnectionBlocked carries the broker's reason for flow-blocking the connection.
type ConnectionBlocked struct {
	Reason string
}

func (m *ConnectionBlocked) Decode(r *frame.Reader) (err error) {
	m.Reason, err = r.ReadShortstr("connection.blocked.reason")
	return err
}
func (m *ConnectionBlocked) Encode(w *frame.Writer) error { panic("connection.blocked is server-to-client only") }

// ConnectionUnblocked has no fields.
type ConnectionUnblocked struct{}

func (m *ConnectionUnblocked) Decode(r *frame.Reader) error { return nil }
func (m *ConnectionUnblocked) Encode(w *frame.Writer) error { panic("connection.unblocked is server-to-client only") }

// ConnectionUpdateSecret is not implemented by this client; it is decoded
// only so the connection can reject it cleanly with not_implemented.
type ConnectionUpdateSecret struct {
	NewSecret []byte
	Reason    string
}

func (m *ConnectionUpdateSecret) Decode(r *frame.Reader) (err error) {
	s, err := r.ReadLongstr("connection.update_secret.new_secret")
	if err != nil {
		return err
	}
	m.NewSecret = []byte(s)
	m.Reason, err = r.ReadShortstr("connection.update_secret.reason")
	return err
}
func (m *ConnectionUpdateSecret) Encode(w *frame.Writer) error {
	panic("connection.update_secret is client-to-server only")
}
