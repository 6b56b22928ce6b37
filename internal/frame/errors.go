package frame

import "github.com/pkg/errors"

var (
	errFrameTooShort  = errors.New("frame shorter than the 8 octet envelope")
	errFrameEndByte   = errors.New("frame missing trailing 0xCE")
	errTableKey       = errors.New("field table key does not match the allowed charset")
	errTableRemainder = errors.New("field table length did not account for all entries")
	errNegativeDecimal = errors.New("decimal values must not be negative")
	errStringTooLong  = errors.New("shortstr longer than 255 bytes")
	errNameTooLong    = errors.New("name longer than 127 characters")
	errNameCharset    = errors.New("name contains a character outside [a-zA-Z0-9-_.:]")
	errTimestampRange = errors.New("timestamp exceeds the supported range")
	errPriorityRange  = errors.New("priority must be in 0..=9")
)

func wrapf(err error, path string) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "decoding %s", path)
}

func wrapfEnc(err error, path string) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "encoding %s", path)
}
