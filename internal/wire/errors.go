package wire

import (
	"fmt"

	"github.com/flowmq/amqp091/internal/proto"
	"github.com/pkg/errors"
)

// Error is the user-visible failure shape the spec requires: callbacks and
// stream "error" events all carry one of these, mirroring the fields a
// broker-sent connection.close/channel.close carries.
type Error struct {
	MethodName string
	MethodID   uint32
	ReplyCode  uint16
	ReplyText  string
	Data       interface{}
}

func (e *Error) Error() string {
	if e.MethodName != "" {
		return fmt.Sprintf("%s: %d %s", e.MethodName, e.ReplyCode, e.ReplyText)
	}
	return fmt.Sprintf("%d %s", e.ReplyCode, e.ReplyText)
}

// IsHard reports whether this error's reply code is connection-scoped.
func (e *Error) IsHard() bool { return proto.IsHard(e.ReplyCode) }

// IsSoft reports whether this error's reply code is channel-scoped.
func (e *Error) IsSoft() bool { return proto.IsSoft(e.ReplyCode) }

// hardError builds a client-originated hard (connection-level) error from
// a named reason, the way the source's HardError(reason) does.
func hardError(reason, text string) *Error {
	return &Error{ReplyCode: proto.CodeForReason(reason), ReplyText: text}
}

// softError builds a client-originated soft (channel-level) error.
func softError(reason, text string) *Error {
	return &Error{ReplyCode: proto.CodeForReason(reason), ReplyText: text}
}

// closeOKError is sent when a peer closes gracefully with no error; the
// spec calls this out explicitly: "closing with null error sends
// {code:200, text:\"bye\"}".
func closeOKError() *Error {
	return &Error{ReplyCode: proto.ReplySuccess, ReplyText: "bye"}
}

// wrapTransport escalates a socket read/write failure to a hard error with
// internal_error, per the error-kind table.
func wrapTransport(err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		ReplyCode: proto.CodeForReason("internal_error"),
		ReplyText: errors.Wrap(err, "transport").Error(),
	}
}

// localProtocolError is raised synchronously at the call site for invalid
// arguments, assertion failures, or priority/regex violations.
func localProtocolError(err error) *Error {
	return &Error{ReplyText: err.Error()}
}
