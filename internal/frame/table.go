package frame

import (
	"math"
	"regexp"

	"github.com/pkg/errors"
)

// Table is a field table: a self-describing string-keyed map whose values
// are restricted to the typed-value set a shortstr/bool/numeric/timestamp/
// decimal/longstr/binary/table/array grammar supports.
type Table map[string]interface{}

// Decimal is a scaled integer: value * 10^-scale. The wire form never
// carries a sign bit and Value is unsigned, so a negative decimal cannot be
// represented.
type Decimal struct {
	Scale uint8
	Value uint32
}

// tableKeyPattern matches valid field-table and argument-table keys.
var tableKeyPattern = regexp.MustCompile(`^[A-Za-z$#][A-Za-z0-9$#_.]{0,127}$`)

// nameCharsetPattern matches valid exchange/queue/consumer-tag names.
var nameCharsetPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_.:]*$`)

func math32Frombits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

func math64Frombits(bits uint64) float64 {
	return math.Float64frombits(bits)
}

func errorfTag(tag byte) error {
	return errors.Errorf("field table: unrecognized type tag %q", tag)
}

func errorfUnsupported(v interface{}) error {
	return errors.Errorf("field table: unsupported value type %T", v)
}

func float32bits(f float32) uint32 {
	return math.Float32bits(f)
}

func float64bits(f float64) uint64 {
	return math.Float64bits(f)
}
