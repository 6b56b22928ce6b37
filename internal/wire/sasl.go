package wire

import (
	"strings"

	"github.com/flowmq/amqp091/internal/frame"
	"github.com/pkg/errors"
)

// saslResponse builds the mechanism-specific response payload for
// start-ok, grounded on vcabbage-amqp/sasl.go's saslHandlerPlain.init,
// generalized from a single hard-coded mechanism to the two the spec
// requires.
func saslResponse(mechanism, username, password string) ([]byte, error) {
	switch mechanism {
	case "PLAIN":
		return []byte("\x00" + username + "\x00" + password), nil
	case "AMQPLAIN":
		w := frame.NewWriter()
		if err := writeAMQPlainField(w, "LOGIN", username); err != nil {
			return nil, err
		}
		if err := writeAMQPlainField(w, "PASSWORD", password); err != nil {
			return nil, err
		}
		return w.Bytes(), nil
	default:
		return nil, errors.Errorf("unsupported SASL mechanism %q", mechanism)
	}
}

// writeAMQPlainField writes one field-table entry (shortstr key, typed
// long-string value) without the 4-octet table-length prefix the spec
// calls out AMQPLAIN as omitting.
func writeAMQPlainField(w *frame.Writer, key, value string) error {
	if err := w.WriteShortstr(key, "sasl.amqplain."+key); err != nil {
		return err
	}
	if err := w.WriteTag('S'); err != nil {
		return err
	}
	return w.WriteLongstr(value)
}

// selectMechanism returns the first of preference that also appears in
// the broker's space-separated advertised list, or an error if none
// overlap.
func selectMechanism(preference []string, advertised string) (string, error) {
	available := make(map[string]bool)
	for _, m := range strings.Fields(advertised) {
		available[m] = true
	}
	for _, want := range preference {
		if available[want] {
			return want, nil
		}
	}
	return "", hardError("not_allowed", "no supported SASL mechanism in common with server")
}
