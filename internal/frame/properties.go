package frame

import "time"

// Properties is basic-properties: the 14 optional fields carried by a
// header frame, each gated by one bit of a 16-bit MSB-first presence flag
// (bit 1<<(15-i) for the i-th field in declaration order). ClusterID is
// decoded when its bit is set but is never encoded, so only the first 13
// fields have a Set* helper and a presence slot.
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
	ClusterID       string

	// present tracks which fields were actually set on decode, so a
	// round trip reproduces the same flag word rather than inferring
	// presence from Go zero values (a priority of 0 is a valid, present
	// value, not an absence).
	present [13]bool
}

const (
	flagContentType = 1 << 15
	flagContentEnc  = 1 << 14
	flagHeaders     = 1 << 13
	flagDeliveryMode = 1 << 12
	flagPriority    = 1 << 11
	flagCorrelation = 1 << 10
	flagReplyTo     = 1 << 9
	flagExpiration  = 1 << 8
	flagMessageID   = 1 << 7
	flagTimestamp   = 1 << 6
	flagType        = 1 << 5
	flagUserID      = 1 << 4
	flagAppID       = 1 << 3
	flagClusterID   = 1 << 2
)

// SetContentType and the other Set* helpers mark a field present for the
// next WriteProperties call, since a Go zero value is ambiguous with
// "absent" for numeric fields like Priority.
func (p *Properties) SetContentType(v string) { p.ContentType = v; p.present[0] = true }
func (p *Properties) SetContentEncoding(v string) { p.ContentEncoding = v; p.present[1] = true }
func (p *Properties) SetHeaders(v Table) { p.Headers = v; p.present[2] = true }
func (p *Properties) SetDeliveryMode(v uint8) { p.DeliveryMode = v; p.present[3] = true }
func (p *Properties) SetPriority(v uint8) { p.Priority = v; p.present[4] = true }
func (p *Properties) SetCorrelationID(v string) { p.CorrelationID = v; p.present[5] = true }
func (p *Properties) SetReplyTo(v string) { p.ReplyTo = v; p.present[6] = true }
func (p *Properties) SetExpiration(v string) { p.Expiration = v; p.present[7] = true }
func (p *Properties) SetMessageID(v string) { p.MessageID = v; p.present[8] = true }
func (p *Properties) SetTimestamp(v time.Time) { p.Timestamp = v; p.present[9] = true }
func (p *Properties) SetType(v string) { p.Type = v; p.present[10] = true }
func (p *Properties) SetUserID(v string) { p.UserID = v; p.present[11] = true }
func (p *Properties) SetAppID(v string) { p.AppID = v; p.present[12] = true }

// ReadProperties decodes the 2 octet flag word and the present fields.
func ReadProperties(r *Reader) (Properties, error) {
	var p Properties

	flags, err := r.ReadShort("properties.flags")
	if err != nil {
		return p, err
	}

	if flags&flagContentType != 0 {
		if p.ContentType, err = r.ReadShortstr("properties.content_type"); err != nil {
			return p, err
		}
		p.present[0] = true
	}
	if flags&flagContentEnc != 0 {
		if p.ContentEncoding, err = r.ReadShortstr("properties.content_encoding"); err != nil {
			return p, err
		}
		p.present[1] = true
	}
	if flags&flagHeaders != 0 {
		if p.Headers, err = r.ReadTable("properties.headers"); err != nil {
			return p, err
		}
		p.present[2] = true
	}
	if flags&flagDeliveryMode != 0 {
		if p.DeliveryMode, err = r.ReadOctet("properties.delivery_mode"); err != nil {
			return p, err
		}
		p.present[3] = true
	}
	if flags&flagPriority != 0 {
		if p.Priority, err = r.ReadOctet("properties.priority"); err != nil {
			return p, err
		}
		p.present[4] = true
	}
	if flags&flagCorrelation != 0 {
		if p.CorrelationID, err = r.ReadShortstr("properties.correlation_id"); err != nil {
			return p, err
		}
		p.present[5] = true
	}
	if flags&flagReplyTo != 0 {
		if p.ReplyTo, err = r.ReadShortstr("properties.reply_to"); err != nil {
			return p, err
		}
		p.present[6] = true
	}
	if flags&flagExpiration != 0 {
		if p.Expiration, err = r.ReadShortstr("properties.expiration"); err != nil {
			return p, err
		}
		p.present[7] = true
	}
	if flags&flagMessageID != 0 {
		if p.MessageID, err = r.ReadShortstr("properties.message_id"); err != nil {
			return p, err
		}
		p.present[8] = true
	}
	if flags&flagTimestamp != 0 {
		if p.Timestamp, err = r.ReadTimestamp("properties.timestamp"); err != nil {
			return p, err
		}
		p.present[9] = true
	}
	if flags&flagType != 0 {
		if p.Type, err = r.ReadShortstr("properties.type"); err != nil {
			return p, err
		}
		p.present[10] = true
	}
	if flags&flagUserID != 0 {
		if p.UserID, err = r.ReadShortstr("properties.user_id"); err != nil {
			return p, err
		}
		p.present[11] = true
	}
	if flags&flagAppID != 0 {
		if p.AppID, err = r.ReadShortstr("properties.app_id"); err != nil {
			return p, err
		}
		p.present[12] = true
	}
	if flags&flagClusterID != 0 {
		if p.ClusterID, err = r.ReadShortstr("properties.cluster_id"); err != nil {
			return p, err
		}
	}

	return p, nil
}

// WriteProperties emits the flag word followed by every field marked
// present via the Set* helpers (ClusterID is deprecated by RabbitMQ and
// always omitted, matching the broker's own behavior).
func WriteProperties(w *Writer, p Properties) error {
	var flags uint16
	if p.present[0] {
		flags |= flagContentType
	}
	if p.present[1] {
		flags |= flagContentEnc
	}
	if p.present[2] {
		flags |= flagHeaders
	}
	if p.present[3] {
		flags |= flagDeliveryMode
	}
	if p.present[4] {
		flags |= flagPriority
	}
	if p.present[5] {
		flags |= flagCorrelation
	}
	if p.present[6] {
		flags |= flagReplyTo
	}
	if p.present[7] {
		flags |= flagExpiration
	}
	if p.present[8] {
		flags |= flagMessageID
	}
	if p.present[9] {
		flags |= flagTimestamp
	}
	if p.present[10] {
		flags |= flagType
	}
	if p.present[11] {
		flags |= flagUserID
	}
	if p.present[12] {
		flags |= flagAppID
	}

	if err := w.WriteShort(flags); err != nil {
		return err
	}

	if p.present[0] {
		if err := w.WriteShortstr(p.ContentType, "properties.content_type"); err != nil {
			return err
		}
	}
	if p.present[1] {
		if err := w.WriteShortstr(p.ContentEncoding, "properties.content_encoding"); err != nil {
			return err
		}
	}
	if p.present[2] {
		if err := w.WriteTable(p.Headers, "properties.headers"); err != nil {
			return err
		}
	}
	if p.present[3] {
		if err := w.WriteOctet(p.DeliveryMode); err != nil {
			return err
		}
	}
	if p.present[4] {
		if p.Priority > 9 {
			return wrapfEnc(errPriorityRange, "properties.priority")
		}
		if err := w.WriteOctet(p.Priority); err != nil {
			return err
		}
	}
	if p.present[5] {
		if err := w.WriteShortstr(p.CorrelationID, "properties.correlation_id"); err != nil {
			return err
		}
	}
	if p.present[6] {
		if err := w.WriteShortstr(p.ReplyTo, "properties.reply_to"); err != nil {
			return err
		}
	}
	if p.present[7] {
		if err := w.WriteShortstr(p.Expiration, "properties.expiration"); err != nil {
			return err
		}
	}
	if p.present[8] {
		if err := w.WriteShortstr(p.MessageID, "properties.message_id"); err != nil {
			return err
		}
	}
	if p.present[9] {
		if err := w.WriteTimestamp(p.Timestamp); err != nil {
			return err
		}
	}
	if p.present[10] {
		if err := w.WriteShortstr(p.Type, "properties.type"); err != nil {
			return err
		}
	}
	if p.present[11] {
		if err := w.WriteShortstr(p.UserID, "properties.user_id"); err != nil {
			return err
		}
	}
	if p.present[12] {
		if err := w.WriteShortstr(p.AppID, "properties.app_id"); err != nil {
			return err
		}
	}

	return nil
}
