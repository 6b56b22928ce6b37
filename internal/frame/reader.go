package frame

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"
)

// Reader is a cursor over a method or header frame's payload. Every read
// carries a path string that is folded into the wrapped error on failure,
// mirroring how vcabbage-amqp/decode.go's unmarshalComposite annotates
// field-index failures, but keyed by name rather than index since 0-9-1
// methods are flat, named argument lists.
type Reader struct {
	buf *bytes.Reader
}

// NewReader wraps payload for sequential typed reads.
func NewReader(payload []byte) *Reader {
	return &Reader{buf: bytes.NewReader(payload)}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return r.buf.Len()
}

func (r *Reader) ReadOctet(path string) (uint8, error) {
	b, err := r.buf.ReadByte()
	if err != nil {
		return 0, wrapf(err, path)
	}
	return b, nil
}

func (r *Reader) ReadShort(path string) (uint16, error) {
	var v uint16
	if err := binary.Read(r.buf, binary.BigEndian, &v); err != nil {
		return 0, wrapf(err, path)
	}
	return v, nil
}

func (r *Reader) ReadLong(path string) (uint32, error) {
	var v uint32
	if err := binary.Read(r.buf, binary.BigEndian, &v); err != nil {
		return 0, wrapf(err, path)
	}
	return v, nil
}

func (r *Reader) ReadLongLong(path string) (uint64, error) {
	var v uint64
	if err := binary.Read(r.buf, binary.BigEndian, &v); err != nil {
		return 0, wrapf(err, path)
	}
	return v, nil
}

func (r *Reader) ReadBool(path string) (bool, error) {
	b, err := r.ReadOctet(path)
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadShortstr reads a u8-length-prefixed UTF-8 string.
func (r *Reader) ReadShortstr(path string) (string, error) {
	n, err := r.buf.ReadByte()
	if err != nil {
		return "", wrapf(err, path)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.buf, buf); err != nil {
		return "", wrapf(err, path)
	}
	return string(buf), nil
}

// ReadLongstr reads a u32-length-prefixed byte string.
func (r *Reader) ReadLongstr(path string) (string, error) {
	var n uint32
	if err := binary.Read(r.buf, binary.BigEndian, &n); err != nil {
		return "", wrapf(err, path)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.buf, buf); err != nil {
		return "", wrapf(err, path)
	}
	return string(buf), nil
}

// ReadBinary reads a u32-length-prefixed opaque byte slice.
func (r *Reader) ReadBinary(path string) ([]byte, error) {
	var n uint32
	if err := binary.Read(r.buf, binary.BigEndian, &n); err != nil {
		return nil, wrapf(err, path)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.buf, buf); err != nil {
		return nil, wrapf(err, path)
	}
	return buf, nil
}

// ReadTimestamp reads a u64 seconds-since-epoch value.
func (r *Reader) ReadTimestamp(path string) (time.Time, error) {
	secs, err := r.ReadLongLong(path)
	if err != nil {
		return time.Time{}, err
	}
	if secs > 8_640_000_000_000 {
		return time.Time{}, wrapf(errTimestampRange, path)
	}
	return time.Unix(int64(secs), 0).UTC(), nil
}

// ReadDecimal reads {u8 scale, u32 unscaled} and returns it unscaled.
func (r *Reader) ReadDecimal(path string) (Decimal, error) {
	scale, err := r.ReadOctet(path + ".scale")
	if err != nil {
		return Decimal{}, err
	}
	value, err := r.ReadLong(path + ".value")
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{Scale: scale, Value: value}, nil
}

// Skip discards n octets, used for reserved/deprecated fields.
func (r *Reader) Skip(n int, path string) error {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.buf, buf); err != nil {
		return wrapf(err, path)
	}
	return nil
}

// ReadTable decodes a field table: 4 octet length | entries.
func (r *Reader) ReadTable(path string) (Table, error) {
	length, err := r.ReadLong(path)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return Table{}, nil
	}

	start := r.buf.Size() - int64(r.buf.Len())
	end := start + int64(length)

	t := Table{}
	for {
		pos := r.buf.Size() - int64(r.buf.Len())
		if pos == end {
			break
		}
		if pos > end {
			return nil, wrapf(errTableRemainder, path)
		}

		key, err := r.ReadShortstr(path + ".key")
		if err != nil {
			return nil, err
		}
		if !tableKeyPattern.MatchString(key) {
			return nil, wrapf(errTableKey, path+"."+key)
		}

		val, err := r.readTableValue(path + "." + key)
		if err != nil {
			return nil, err
		}
		t[key] = val
	}

	return t, nil
}

func (r *Reader) readTableValue(path string) (interface{}, error) {
	code, err := r.buf.ReadByte()
	if err != nil {
		return nil, wrapf(err, path)
	}

	switch code {
	case 't':
		return r.ReadBool(path)
	case 'b':
		v, err := r.ReadOctet(path)
		return int8(v), err
	case 'B':
		return r.ReadOctet(path)
	case 's':
		v, err := r.ReadShort(path)
		return int16(v), err
	case 'u':
		return r.ReadShort(path)
	case 'I':
		v, err := r.ReadLong(path)
		return int32(v), err
	case 'i':
		return r.ReadLong(path)
	case 'L', 'l':
		v, err := r.ReadLongLong(path)
		return int64(v), err
	case 'f':
		v, err := r.ReadLong(path)
		if err != nil {
			return nil, err
		}
		return math32Frombits(v), nil
	case 'd':
		v, err := r.ReadLongLong(path)
		if err != nil {
			return nil, err
		}
		return math64Frombits(v), nil
	case 'D':
		return r.ReadDecimal(path)
	case 'S':
		return r.ReadLongstr(path)
	case 'T':
		return r.ReadTimestamp(path)
	case 'V':
		return nil, nil
	case 'x':
		return r.ReadBinary(path)
	case 'F':
		return r.ReadTable(path)
	case 'A':
		return r.readArray(path)
	default:
		return nil, wrapf(errorfTag(code), path)
	}
}

func (r *Reader) readArray(path string) ([]interface{}, error) {
	length, err := r.ReadLong(path)
	if err != nil {
		return nil, err
	}
	start := r.buf.Size() - int64(r.buf.Len())
	end := start + int64(length)

	var items []interface{}
	for {
		pos := r.buf.Size() - int64(r.buf.Len())
		if pos == end {
			break
		}
		if pos > end {
			return nil, wrapf(errTableRemainder, path)
		}
		v, err := r.readTableValue(path)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}
