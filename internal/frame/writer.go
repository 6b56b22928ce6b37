package frame

import (
	"bytes"
	"encoding/binary"
	"time"
	"unicode/utf8"
)

// Writer accumulates a method or header frame's payload. It grows a
// bytes.Buffer on demand, mirroring vcabbage-amqp/encode.go's bufPool-backed
// marshal targets, but exposes typed Write* methods instead of a reflective
// marshal(interface{}) switch since 0-9-1 methods are flat argument lists
// rather than composite types.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) WriteOctet(v uint8) error {
	return w.buf.WriteByte(v)
}

// WriteTag writes a raw field-table type tag octet (e.g. 'S' for
// long-string), used by callers that build typed values outside of
// WriteTable — AMQPLAIN's response payload being the one example, since
// it reuses the field-table value grammar without the table's length
// prefix or entry count.
func (w *Writer) WriteTag(tag byte) error {
	return w.buf.WriteByte(tag)
}

func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.buf.WriteByte(1)
	}
	return w.buf.WriteByte(0)
}

func (w *Writer) WriteShort(v uint16) error {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	_, err := w.buf.Write(tmp[:])
	return err
}

func (w *Writer) WriteLong(v uint32) error {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	_, err := w.buf.Write(tmp[:])
	return err
}

func (w *Writer) WriteLongLong(v uint64) error {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	_, err := w.buf.Write(tmp[:])
	return err
}

// WriteShortstr writes a u8-length-prefixed string; path is used only for
// the too-long error message.
func (w *Writer) WriteShortstr(s string, path string) error {
	if len(s) > 255 {
		return wrapfEnc(errStringTooLong, path)
	}
	if err := w.buf.WriteByte(byte(len(s))); err != nil {
		return err
	}
	_, err := w.buf.WriteString(s)
	return err
}

func (w *Writer) WriteLongstr(s string) error {
	if err := w.WriteLong(uint32(len(s))); err != nil {
		return err
	}
	_, err := w.buf.WriteString(s)
	return err
}

func (w *Writer) WriteBinary(b []byte) error {
	if err := w.WriteLong(uint32(len(b))); err != nil {
		return err
	}
	_, err := w.buf.Write(b)
	return err
}

func (w *Writer) WriteTimestamp(t time.Time) error {
	return w.WriteLongLong(uint64(t.Unix()))
}

// WriteDecimal writes the scale octet and the unsigned value as given.
func (w *Writer) WriteDecimal(d Decimal) error {
	if err := w.WriteOctet(d.Scale); err != nil {
		return err
	}
	return w.WriteLong(d.Value)
}

// WriteTable writes a field table, back-patching the 4 octet length prefix
// once all entries have been written, matching the spec's "length prefix is
// patched after writing all entries" rule.
func (w *Writer) WriteTable(t Table, path string) error {
	lenPos := w.buf.Len()
	if err := w.WriteLong(0); err != nil {
		return err
	}

	bodyStart := w.buf.Len()
	for key, val := range t {
		if !tableKeyPattern.MatchString(key) {
			return wrapfEnc(errTableKey, path+"."+key)
		}
		if err := w.WriteShortstr(key, path+"."+key); err != nil {
			return err
		}
		if err := w.writeTableValue(val, path+"."+key); err != nil {
			return err
		}
	}
	bodyLen := w.buf.Len() - bodyStart

	raw := w.buf.Bytes()
	binary.BigEndian.PutUint32(raw[lenPos:lenPos+4], uint32(bodyLen))
	return nil
}

func (w *Writer) writeTableValue(v interface{}, path string) error {
	switch val := v.(type) {
	case bool:
		if err := w.buf.WriteByte('t'); err != nil {
			return err
		}
		return w.WriteBool(val)
	case int8:
		if err := w.buf.WriteByte('b'); err != nil {
			return err
		}
		return w.WriteOctet(uint8(val))
	case uint8:
		if err := w.buf.WriteByte('B'); err != nil {
			return err
		}
		return w.WriteOctet(val)
	case int16:
		if err := w.buf.WriteByte('s'); err != nil {
			return err
		}
		return w.WriteShort(uint16(val))
	case uint16:
		if err := w.buf.WriteByte('u'); err != nil {
			return err
		}
		return w.WriteShort(val)
	case int32:
		if err := w.buf.WriteByte('I'); err != nil {
			return err
		}
		return w.WriteLong(uint32(val))
	case uint32:
		if err := w.buf.WriteByte('i'); err != nil {
			return err
		}
		return w.WriteLong(val)
	case int64:
		if err := w.buf.WriteByte('L'); err != nil {
			return err
		}
		return w.WriteLongLong(uint64(val))
	case uint64:
		if err := w.buf.WriteByte('l'); err != nil {
			return err
		}
		return w.WriteLongLong(val)
	case float32:
		if err := w.buf.WriteByte('f'); err != nil {
			return err
		}
		return w.WriteLong(float32bits(val))
	case float64:
		if err := w.buf.WriteByte('d'); err != nil {
			return err
		}
		return w.WriteLongLong(float64bits(val))
	case Decimal:
		if err := w.buf.WriteByte('D'); err != nil {
			return err
		}
		return w.WriteDecimal(val)
	case string:
		if err := w.buf.WriteByte('S'); err != nil {
			return err
		}
		return w.WriteLongstr(val)
	case time.Time:
		if err := w.buf.WriteByte('T'); err != nil {
			return err
		}
		return w.WriteTimestamp(val)
	case nil:
		return w.buf.WriteByte('V')
	case []byte:
		if err := w.buf.WriteByte('x'); err != nil {
			return err
		}
		return w.WriteBinary(val)
	case Table:
		if err := w.buf.WriteByte('F'); err != nil {
			return err
		}
		return w.WriteTable(val, path)
	case []interface{}:
		if err := w.buf.WriteByte('A'); err != nil {
			return err
		}
		return w.writeArray(val, path)
	default:
		return wrapfEnc(errorfUnsupported(v), path)
	}
}

func (w *Writer) writeArray(items []interface{}, path string) error {
	lenPos := w.buf.Len()
	if err := w.WriteLong(0); err != nil {
		return err
	}
	bodyStart := w.buf.Len()
	for _, item := range items {
		if err := w.writeTableValue(item, path); err != nil {
			return err
		}
	}
	bodyLen := w.buf.Len() - bodyStart
	raw := w.buf.Bytes()
	binary.BigEndian.PutUint32(raw[lenPos:lenPos+4], uint32(bodyLen))
	return nil
}

// MethodStart writes the frame header plus the 4 octet method id, leaving
// the cursor at the first argument.
func (w *Writer) MethodStart(classID, methodID uint16) error {
	if err := w.WriteShort(classID); err != nil {
		return err
	}
	return w.WriteShort(methodID)
}

// HeaderStart writes {class_id, weight(0), body_size}, leaving the cursor
// at the property flags.
func (w *Writer) HeaderStart(classID uint16, bodySize uint64) error {
	if err := w.WriteShort(classID); err != nil {
		return err
	}
	if err := w.WriteShort(0); err != nil {
		return err
	}
	return w.WriteLongLong(bodySize)
}

func validUTF8(s string) bool {
	return utf8.ValidString(s)
}
