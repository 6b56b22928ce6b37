package wire

import (
	"fmt"

	"github.com/flowmq/amqp091/internal/frame"
	"github.com/flowmq/amqp091/internal/proto"
)

// handlerFunc processes an unsolicited incoming method — one with no
// waiter registered on its id — the way a broker-initiated basic.deliver
// or basic.cancel is handled on a consume channel.
type handlerFunc func(args proto.Method) error

// callResult is what a callAPI caller blocks on.
type callResult struct {
	method proto.Method
	err    *Error
}

// waiter is one outstanding callAPI registration. It may be registered
// under more than one method id at once (a publish waits on either
// basic.ack or basic.return), so resolving it must deregister every id it
// was filed under.
type waiter struct {
	id       UniqueID
	ids      []uint32
	result   chan callResult
	resolved bool
}

// Channel is the state shared by every channel kind (publish, consume,
// or a bare control channel used only for declare/bind/purge/delete
// calls). It is only ever mutated from the owning Connection's mux
// goroutine, which is what gives call_api/handle_method the ordering
// guarantees the spec calls out — every exported method here hands its
// work to the connection as an action and blocks on the result, so two
// calls against the same channel never interleave their state changes.
type Channel struct {
	id   uint16
	conn *Connection

	closed    bool
	destroyed bool
	err       *Error

	waiters  map[uint32][]*waiter
	handlers map[uint32]handlerFunc

	// content receives header/body frames; nil on a channel used only
	// for declare/bind/purge/delete calls, set by publish and consume
	// channels to feed their own assembly state.
	content contentHandler
}

// contentHandler lets publish and consume channels plug their own
// header/body handling into the shared dispatch path.
type contentHandler interface {
	handleHeader(props frame.Properties, bodySize uint64)
	handleBody(chunk []byte)
}

// dispatchFrame is called from the connection's mux goroutine for every
// frame addressed to this channel.
func (ch *Channel) dispatchFrame(fr frame.Frame) {
	switch fr.Kind {
	case frame.KindMethod:
		classID, methodID, m, err := proto.Decode(fr.Payload)
		if err != nil {
			ch.conn.fatal(hardError("frame_error", err.Error()))
			return
		}
		ch.handleMethod(classID, methodID, m)

	case frame.KindHeader:
		if ch.content == nil {
			ch.conn.fatal(hardError("unexpected_frame", fmt.Sprintf("header frame on channel %d with no content sequence", ch.id)))
			return
		}
		r := frame.NewReader(fr.Payload)
		if _, err := r.ReadShort("header.class_id"); err != nil {
			ch.conn.fatal(hardError("frame_error", err.Error()))
			return
		}
		if _, err := r.ReadShort("header.weight"); err != nil {
			ch.conn.fatal(hardError("frame_error", err.Error()))
			return
		}
		bodySize, err := r.ReadLongLong("header.body_size")
		if err != nil {
			ch.conn.fatal(hardError("frame_error", err.Error()))
			return
		}
		props, err := frame.ReadProperties(r)
		if err != nil {
			ch.conn.fatal(hardError("frame_error", err.Error()))
			return
		}
		ch.content.handleHeader(props, bodySize)

	case frame.KindBody:
		if ch.content == nil {
			ch.conn.fatal(hardError("unexpected_frame", fmt.Sprintf("body frame on channel %d with no content sequence", ch.id)))
			return
		}
		ch.content.handleBody(fr.Payload)
	}
}

func newChannel(id uint16, conn *Connection) *Channel {
	ch := &Channel{
		id:       id,
		conn:     conn,
		waiters:  make(map[uint32][]*waiter),
		handlers: make(map[uint32]handlerFunc),
	}
	ch.handlers[proto.MethodID(proto.ClassChannel, proto.ChannelFlowID)] = ch.handleFlow
	ch.handlers[proto.MethodID(proto.ClassChannel, proto.ChannelCloseID)] = ch.handleClose
	return ch
}

func (ch *Channel) handleFlow(args proto.Method) error {
	flow := args.(*proto.ChannelFlow)
	return ch.sendNoReply(proto.ClassChannel, proto.ChannelFlowOkID, &proto.ChannelFlowOk{Active: flow.Active})
}

func (ch *Channel) handleClose(args proto.Method) error {
	closeArgs := args.(*proto.ChannelClose)
	if err := ch.sendNoReply(proto.ClassChannel, proto.ChannelCloseOkID, &proto.ChannelCloseOk{}); err != nil {
		return err
	}
	ch.destroyLocked(&Error{
		MethodName: "channel.close",
		MethodID:   proto.MethodID(proto.ClassChannel, proto.ChannelCloseID),
		ReplyCode:  closeArgs.ReplyCode,
		ReplyText:  closeArgs.ReplyText,
	})
	return nil
}

// sendNoReply writes a method with no waiter registration, used for
// replies the protocol never acknowledges (flow-ok, close-ok).
func (ch *Channel) sendNoReply(classID, methodID uint16, m proto.Method) error {
	return ch.conn.writeMethod(ch.id, classID, methodID, m)
}

// callAPI mirrors the spec's call_api: register a waiter under every id
// in expected (if any), then invoke send on the connection's mux
// goroutine so registration strictly precedes any reply that could
// resolve it. The caller blocks until the waiter resolves or send itself
// fails.
func (ch *Channel) callAPI(expected []uint32, send func() error) (proto.Method, *Error) {
	result := make(chan callResult, 1)
	ch.conn.dispatch(func() {
		if ch.destroyed {
			result <- callResult{err: ch.err}
			return
		}
		if len(expected) == 0 {
			if err := send(); err != nil {
				result <- callResult{err: wrapTransport(err)}
				return
			}
			result <- callResult{}
			return
		}

		w := &waiter{id: ch.conn.idGen.next(), ids: expected, result: result}
		for _, id := range expected {
			ch.waiters[id] = append(ch.waiters[id], w)
		}
		if err := send(); err != nil {
			ch.resolveWaiter(w, nil, wrapTransport(err))
		}
	})
	r := <-result
	return r.method, r.err
}

// ID returns the channel's wire id.
func (ch *Channel) ID() uint16 { return ch.id }

// InvokeExpectReply sends one method and waits for the single reply
// method id a declare/bind/purge/delete call expects — the common shape
// every control-plane operation above this package uses.
func (ch *Channel) InvokeExpectReply(classID, methodID uint16, args proto.Method, replyClassID, replyMethodID uint16) (proto.Method, *Error) {
	return ch.callAPI([]uint32{proto.MethodID(replyClassID, replyMethodID)}, func() error {
		return ch.conn.writeMethod(ch.id, classID, methodID, args)
	})
}

// handleMethod is called from the mux goroutine for every method frame
// addressed to this channel.
func (ch *Channel) handleMethod(classID, methodID uint16, args proto.Method) {
	id := proto.MethodID(classID, methodID)

	if ws := ch.waiters[id]; len(ws) > 0 {
		ch.resolveWaiter(oldestWaiter(ws), args, nil)
		return
	}

	if h, ok := ch.handlers[id]; ok {
		if err := h(args); err != nil {
			ch.conn.fatal(hardError("internal_error", err.Error()))
		}
		return
	}

	ch.conn.fatal(hardError("not_implemented", fmt.Sprintf("handler for %s not found on channel %d", proto.Name(id), ch.id)))
}

func oldestWaiter(ws []*waiter) *waiter {
	oldest := ws[0]
	for _, w := range ws[1:] {
		if w.id.Less(oldest.id) {
			oldest = w
		}
	}
	return oldest
}

func (ch *Channel) resolveWaiter(w *waiter, args proto.Method, err *Error) {
	if w.resolved {
		return
	}
	w.resolved = true
	for _, id := range w.ids {
		ws := ch.waiters[id]
		for i, x := range ws {
			if x == w {
				ch.waiters[id] = append(ws[:i], ws[i+1:]...)
				break
			}
		}
	}
	w.result <- callResult{method: args, err: err}
}

// raiseSoft sends channel.close for a locally detected protocol
// violation scoped to this channel and destroys it, without tearing down
// the rest of the connection. Must run on the mux goroutine.
func (ch *Channel) raiseSoft(err *Error) {
	if ch.destroyed || ch.closed {
		return
	}
	ch.closed = true
	_ = ch.conn.writeMethod(ch.id, proto.ClassChannel, proto.ChannelCloseID, &proto.ChannelClose{
		ReplyCode: err.ReplyCode,
		ReplyText: err.ReplyText,
	})
	ch.destroyLocked(err)
}

// destroyLocked rejects every outstanding waiter with err and marks the
// channel unusable. Must run on the mux goroutine.
func (ch *Channel) destroyLocked(err *Error) {
	if ch.destroyed {
		return
	}
	ch.destroyed = true
	ch.err = err

	seen := make(map[*waiter]bool)
	for id, ws := range ch.waiters {
		for _, w := range ws {
			if !seen[w] {
				seen[w] = true
				w.resolved = true
				w.result <- callResult{err: err}
			}
		}
		delete(ch.waiters, id)
	}

	ch.conn.forgetChannel(ch.id)
}

// Close gracefully closes the channel, or is a no-op if it is already
// closed or destroyed.
func (ch *Channel) Close(reason *Error) *Error {
	closed := true
	ch.conn.dispatch(func() { closed = ch.closed || ch.destroyed })
	if closed {
		return nil
	}

	closeMsg := reason
	if closeMsg == nil {
		closeMsg = closeOKError()
	}

	_, callErr := ch.callAPI(
		[]uint32{proto.MethodID(proto.ClassChannel, proto.ChannelCloseOkID)},
		func() error {
			ch.closed = true
			return ch.conn.writeMethod(ch.id, proto.ClassChannel, proto.ChannelCloseID, &proto.ChannelClose{
				ReplyCode: closeMsg.ReplyCode,
				ReplyText: closeMsg.ReplyText,
			})
		},
	)

	ch.conn.dispatch(func() { ch.destroyLocked(closeMsg) })
	return callErr
}

func (ch *Channel) writeHeader(classID uint16, bodySize uint64, props frame.Properties) error {
	w := frame.NewWriter()
	if err := w.HeaderStart(classID, bodySize); err != nil {
		return err
	}
	if err := frame.WriteProperties(w, props); err != nil {
		return err
	}
	return ch.conn.writeFrame(frame.Frame{Kind: frame.KindHeader, Channel: ch.id, Payload: w.Bytes()})
}

func (ch *Channel) writeBody(chunk []byte) error {
	return ch.conn.writeFrame(frame.Frame{Kind: frame.KindBody, Channel: ch.id, Payload: chunk})
}
