package wire

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flowmq/amqp091/internal/frame"
	"github.com/flowmq/amqp091/internal/proto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// protocolHeader is the client's opening 8 octets: "AMQP" 0 major minor
// revision. Only 0-9-1 is offered.
var protocolHeader = []byte{'A', 'M', 'Q', 'P', 0, 0, 9, 1}

type connState uint8

const (
	stateInit connState = iota
	stateAwaitStart
	stateAwaitSecureOrTune
	stateAwaitOpenOK
	stateOpen
	stateClosing
	stateClosed
)

// stateFunc is the handshake chain, grounded on vcabbage-amqp/conn.go's
// Conn.negotiateProto chain: each step stores any failure on c.err and
// returns the next step, or nil to stop.
type stateFunc func() stateFunc

// Connection is the client side of one AMQP 0-9-1 socket. Everything that
// reads or writes connection- or channel-level state happens on the mux
// goroutine started by open(); every other goroutine talks to it by
// sending a closure on actions and, where it needs an answer, blocking on
// a result channel the closure itself closes over. This is the same
// "single serializer, concurrency only at defined await points" model the
// design calls out, expressed with goroutines and channels instead of a
// cooperative scheduler.
type Connection struct {
	net net.Conn
	cfg Config
	log zerolog.Logger

	state connState
	err   *Error

	channelMax uint16
	frameMax   uint32
	heartbeat  time.Duration

	channels map[uint16]*Channel
	blocked  bool

	idGen *idGenerator
	demux *demuxer

	actions  chan func()
	rxFrame  chan frame.Frame
	readErr  chan error
	lastRecv atomic.Int64 // UnixNano, written by connReader, read by the heartbeat checker
	done     chan struct{}

	// pending holds handshake frames decoded ahead of where the caller
	// asked for them; only touched before the mux goroutine starts.
	pending []frame.Frame

	// writeMu serializes actual socket writes so that acks/nacks sent
	// directly by a delivery's own goroutine can never interleave their
	// bytes with a frame the mux goroutine is writing concurrently.
	writeMu sync.Mutex
}

// Dial opens a TCP connection to addr and runs the handshake.
func Dial(network, addr string, cfg Config) (*Connection, error) {
	nc, err := net.DialTimeout(network, addr, cfg.ConnectionTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "dial")
	}
	c, err := New(nc, cfg)
	if err != nil {
		nc.Close()
		return nil, err
	}
	return c, nil
}

// New runs the handshake over an already-open net.Conn.
func New(nc net.Conn, cfg Config) (*Connection, error) {
	c := &Connection{
		net:      nc,
		cfg:      cfg,
		log:      newLogger("connection"),
		channels: make(map[uint16]*Channel),
		idGen:    newIDGenerator(),
		demux:    newDemuxer(),
		actions:  make(chan func()),
		rxFrame:  make(chan frame.Frame),
		readErr:  make(chan error, 1),
		done:     make(chan struct{}),
	}
	c.lastRecv.Store(time.Now().UnixNano())

	deadline := time.Now().Add(cfg.ConnectionTimeout)
	if cfg.ConnectionTimeout > 0 {
		nc.SetDeadline(deadline)
	}

	for state := c.sendProtocolHeader; state != nil; {
		state = state()
	}

	if cfg.ConnectionTimeout > 0 {
		nc.SetDeadline(time.Time{})
	}

	if c.err != nil {
		return nil, c.err
	}

	go c.connReader()
	go c.mux()
	if c.heartbeat > 0 {
		go c.heartbeatSendLoop()
		go c.heartbeatCheckLoop()
	}

	return c, nil
}

func (c *Connection) fail(err *Error) stateFunc {
	c.err = err
	return nil
}

func (c *Connection) sendProtocolHeader() stateFunc {
	if _, err := c.net.Write(protocolHeader); err != nil {
		return c.fail(wrapTransport(err))
	}
	c.state = stateAwaitStart
	return c.awaitStart
}

// readHandshakeFrame blocks for exactly one frame during the handshake,
// before the mux goroutine exists to dispatch rxFrame for us.
func (c *Connection) readHandshakeFrame() (frame.Frame, []byte, error) {
	buf := make([]byte, 4096)
	for {
		n, err := c.net.Read(buf)
		if n > 0 {
			c.lastRecv.Store(time.Now().UnixNano())
			frames, mismatch, ferr := c.demux.feed(buf[:n])
			if ferr != nil {
				return frame.Frame{}, nil, ferr
			}
			if mismatch != nil {
				return frame.Frame{}, mismatch, nil
			}
			if len(frames) > 0 {
				// A handshake step expects exactly one frame per call,
				// but feed returns every complete frame in the chunk and
				// keeps back only an incomplete tail, so stash any
				// surplus on a tiny pending queue.
				c.pending = append(c.pending, frames[1:]...)
				return frames[0], nil, nil
			}
		}
		if err != nil {
			return frame.Frame{}, nil, err
		}
	}
}

func (c *Connection) nextHandshakeFrame() (frame.Frame, []byte, error) {
	if len(c.pending) > 0 {
		fr := c.pending[0]
		c.pending = c.pending[1:]
		return fr, nil, nil
	}
	return c.readHandshakeFrame()
}

func (c *Connection) awaitStart() stateFunc {
	fr, mismatch, err := c.nextHandshakeFrame()
	if mismatch != nil {
		return c.fail(hardError("not_implemented", fmt.Sprintf("server offered protocol version %v", mismatch)))
	}
	if err != nil {
		return c.fail(wrapTransport(err))
	}

	classID, methodID, m, err := proto.Decode(fr.Payload)
	if err != nil {
		return c.fail(hardError("frame_error", err.Error()))
	}
	start, ok := m.(*proto.ConnectionStart)
	if !ok {
		return c.fail(hardError("unexpected_frame", fmt.Sprintf("expected connection.start, got %s", proto.Name(proto.MethodID(classID, methodID)))))
	}

	mechanism, err := selectMechanism(c.cfg.AuthMechanisms, start.Mechanisms)
	if err != nil {
		return c.fail(err.(*Error))
	}
	response, err := saslResponse(mechanism, c.cfg.Username, c.cfg.Password)
	if err != nil {
		return c.fail(localProtocolError(err))
	}

	startOk := &proto.ConnectionStartOk{
		ClientProperties: frame.Table{
			"product":  "amqp091",
			"platform": "go",
		},
		Mechanism: mechanism,
		Response:  response,
		Locale:    c.cfg.Locale,
	}
	if err := c.writeHandshakeMethod(proto.ClassConnection, proto.ConnectionStartOkID, startOk); err != nil {
		return c.fail(wrapTransport(err))
	}

	c.state = stateAwaitSecureOrTune
	return c.awaitSecureOrTune
}

func (c *Connection) awaitSecureOrTune() stateFunc {
	fr, mismatch, err := c.nextHandshakeFrame()
	if mismatch != nil {
		return c.fail(hardError("not_implemented", "unexpected protocol header reply during handshake"))
	}
	if err != nil {
		return c.fail(wrapTransport(err))
	}

	classID, methodID, m, err := proto.Decode(fr.Payload)
	if err != nil {
		return c.fail(hardError("frame_error", err.Error()))
	}

	switch args := m.(type) {
	case *proto.ConnectionTune:
		return c.handleTune(args)
	default:
		return c.fail(hardError("not_implemented", fmt.Sprintf("connection.secure is not supported (got %s)", proto.Name(proto.MethodID(classID, methodID)))))
	}
}

// negotiate applies negotiated_x = min(client_x, server_x) when the
// client's value is non-zero, else the server's value — with 0 read as
// "no preference" on either side rather than literal zero, matching how
// channel_max/frame_max/heartbeat are actually defined across the
// protocol (0 means unlimited).
func negotiate(clientVal, serverVal uint32) uint32 {
	if clientVal == 0 {
		return serverVal
	}
	if serverVal == 0 || serverVal > clientVal {
		return clientVal
	}
	return serverVal
}

func (c *Connection) handleTune(tune *proto.ConnectionTune) stateFunc {
	c.channelMax = uint16(negotiate(uint32(c.cfg.ChannelMax), uint32(tune.ChannelMax)))
	c.frameMax = negotiate(c.cfg.FrameMax, tune.FrameMax)
	c.heartbeat = c.cfg.Heartbeat

	tuneOk := &proto.ConnectionTuneOk{
		ChannelMax: c.channelMax,
		FrameMax:   c.frameMax,
		Heartbeat:  uint16(c.heartbeat / time.Second),
	}
	if err := c.writeHandshakeMethod(proto.ClassConnection, proto.ConnectionTuneOkID, tuneOk); err != nil {
		return c.fail(wrapTransport(err))
	}

	open := &proto.ConnectionOpen{VirtualHost: c.cfg.VirtualHost}
	if err := c.writeHandshakeMethod(proto.ClassConnection, proto.ConnectionOpenID, open); err != nil {
		return c.fail(wrapTransport(err))
	}

	c.state = stateAwaitOpenOK
	return c.awaitOpenOK
}

func (c *Connection) awaitOpenOK() stateFunc {
	fr, mismatch, err := c.nextHandshakeFrame()
	if mismatch != nil {
		return c.fail(hardError("not_implemented", "unexpected protocol header reply during handshake"))
	}
	if err != nil {
		return c.fail(wrapTransport(err))
	}

	classID, methodID, m, err := proto.Decode(fr.Payload)
	if err != nil {
		return c.fail(hardError("frame_error", err.Error()))
	}
	if _, ok := m.(*proto.ConnectionOpenOk); !ok {
		return c.fail(hardError("unexpected_frame", fmt.Sprintf("expected connection.open-ok, got %s", proto.Name(proto.MethodID(classID, methodID)))))
	}

	c.state = stateOpen
	return nil
}

func (c *Connection) writeHandshakeMethod(classID, methodID uint16, m proto.Method) error {
	w, err := proto.Encode(classID, methodID, m)
	if err != nil {
		return err
	}
	return frame.WriteFrame(c.net, frame.Frame{Kind: frame.KindMethod, Channel: 0, Payload: w.Bytes()})
}

// mux is the sole goroutine that mutates Connection and Channel state
// after the handshake completes.
func (c *Connection) mux() {
	defer close(c.done)
	for {
		select {
		case fr := <-c.rxFrame:
			c.dispatchFrame(fr)
			if c.state == stateClosed {
				return
			}
		case err := <-c.readErr:
			c.forceClose(wrapTransport(err))
			return
		case action := <-c.actions:
			action()
			if c.state == stateClosed {
				return
			}
		}
	}
}

// dispatch runs fn on the mux goroutine and waits for it to complete.
func (c *Connection) dispatch(fn func()) {
	done := make(chan struct{})
	select {
	case c.actions <- func() { fn(); close(done) }:
		<-done
	case <-c.done:
	}
}

func (c *Connection) dispatchFrame(fr frame.Frame) {
	c.lastRecv.Store(time.Now().UnixNano())

	if fr.Kind == frame.KindHeartbeat {
		return
	}

	if fr.Channel == 0 {
		c.handleConnectionFrame(fr)
		return
	}

	ch, ok := c.channels[fr.Channel]
	if !ok {
		c.forceClose(hardError("channel_error", fmt.Sprintf("frame for unknown channel %d", fr.Channel)))
		return
	}
	ch.dispatchFrame(fr)
}

func (c *Connection) handleConnectionFrame(fr frame.Frame) {
	if fr.Kind != frame.KindMethod {
		c.forceClose(hardError("unexpected_frame", "non-method frame on channel 0"))
		return
	}

	classID, methodID, m, err := proto.Decode(fr.Payload)
	if err != nil {
		c.forceClose(hardError("frame_error", err.Error()))
		return
	}

	switch args := m.(type) {
	case *proto.ConnectionBlocked:
		c.blocked = true
	case *proto.ConnectionUnblocked:
		c.blocked = false
	case *proto.ConnectionUpdateSecret:
		c.forceClose(hardError("not_implemented", "connection.update_secret is not supported"))
	case *proto.ConnectionClose:
		c.writeConnMethod(proto.ClassConnection, proto.ConnectionCloseOkID, &proto.ConnectionCloseOk{})
		c.forceClose(&Error{
			MethodName: "connection.close",
			MethodID:   proto.MethodID(proto.ClassConnection, proto.ConnectionCloseID),
			ReplyCode:  args.ReplyCode,
			ReplyText:  args.ReplyText,
		})
	default:
		c.forceClose(hardError("command_invalid", fmt.Sprintf("unexpected method %s on channel 0", proto.Name(proto.MethodID(classID, methodID)))))
	}
}

func (c *Connection) writeConnMethod(classID, methodID uint16, m proto.Method) {
	if err := c.writeMethod(0, classID, methodID, m); err != nil {
		c.log.Warn().Err(err).Msg("failed writing connection-level reply")
	}
}

// fatal escalates an error encountered while processing a frame to a
// full connection teardown; called from channel code running on the mux
// goroutine.
func (c *Connection) fatal(err *Error) {
	c.forceClose(err)
}

// forceClose cancels the heartbeat timers, propagates destroy to every
// channel, rejects any pending waiters, and tears down the socket.
func (c *Connection) forceClose(err *Error) {
	if c.state == stateClosed {
		return
	}
	c.err = err
	c.state = stateClosed

	for id, ch := range c.channels {
		ch.destroyLocked(err)
		delete(c.channels, id)
	}

	c.net.Close()
}

func (c *Connection) forgetChannel(id uint16) {
	delete(c.channels, id)
}

// writeFrame writes fr directly to the socket. A call's method/header/body
// frames are written from a dispatch closure on the mux goroutine, while
// heartbeats and delivery acks/nacks are written from other goroutines;
// writeMu keeps each frame's bytes whole on the socket.
func (c *Connection) writeFrame(fr frame.Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return frame.WriteFrame(c.net, fr)
}

func (c *Connection) writeMethod(channelID, classID, methodID uint16, m proto.Method) error {
	w, err := proto.Encode(classID, methodID, m)
	if err != nil {
		return err
	}
	return c.writeFrame(frame.Frame{Kind: frame.KindMethod, Channel: channelID, Payload: w.Bytes()})
}

// OpenChannel allocates the lowest unused channel id in 1..=channelMax
// and completes the channel.open handshake.
func (c *Connection) OpenChannel() (*Channel, *Error) {
	var ch *Channel
	var openErr *Error

	c.dispatch(func() {
		if c.state != stateOpen || c.blocked {
			openErr = hardError("channel_error", "connection inactive")
			return
		}
		id, ok := c.allocateChannelID()
		if !ok {
			openErr = hardError("channel_error", "channel max limit exceeded")
			return
		}
		ch = newChannel(id, c)
		c.channels[id] = ch
	})
	if openErr != nil {
		return nil, openErr
	}

	_, callErr := ch.callAPI(
		[]uint32{proto.MethodID(proto.ClassChannel, proto.ChannelOpenOkID)},
		func() error {
			return c.writeMethod(ch.id, proto.ClassChannel, proto.ChannelOpenID, &proto.ChannelOpen{})
		},
	)
	if callErr != nil {
		c.dispatch(func() { c.forgetChannel(ch.id) })
		return nil, callErr
	}
	return ch, nil
}

func (c *Connection) allocateChannelID() (uint16, bool) {
	if uint16(len(c.channels)) >= c.channelMax && c.channelMax != 0 {
		return 0, false
	}
	for id := uint16(1); id <= c.channelMax || c.channelMax == 0; id++ {
		if _, used := c.channels[id]; !used {
			return id, true
		}
		if id == 0xFFFF {
			break
		}
	}
	return 0, false
}

// Close gracefully shuts down the connection.
func (c *Connection) Close() error {
	closeMsg := closeOKError()
	result := make(chan error, 1)

	c.dispatch(func() {
		if c.state == stateClosed {
			result <- nil
			return
		}
		c.state = stateClosing
		err := c.writeMethod(0, proto.ClassConnection, proto.ConnectionCloseID, &proto.ConnectionClose{
			ReplyCode: closeMsg.ReplyCode,
			ReplyText: closeMsg.ReplyText,
		})
		result <- err
	})

	select {
	case err := <-result:
		if err != nil {
			return err
		}
	case <-c.done:
		return nil
	}

	<-c.done
	return nil
}

// FrameMax returns the negotiated maximum frame payload size.
func (c *Connection) FrameMax() uint32 { return c.frameMax }

// ChannelMax returns the negotiated maximum channel id.
func (c *Connection) ChannelMax() uint16 { return c.channelMax }

// Err returns the error that tore the connection down, if any.
func (c *Connection) Err() *Error { return c.err }

// Done is closed once the mux goroutine has exited.
func (c *Connection) Done() <-chan struct{} { return c.done }

func (c *Connection) connReader() {
	buf := make([]byte, 65536)
	for {
		n, err := c.net.Read(buf)
		if n > 0 {
			c.lastRecv.Store(time.Now().UnixNano())
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			frames, mismatch, ferr := c.demux.feed(chunk)
			if mismatch != nil {
				ferr = hardError("not_implemented", fmt.Sprintf("unexpected protocol reply %v", mismatch))
			}
			if ferr != nil {
				select {
				case c.readErr <- ferr:
				case <-c.done:
				}
				return
			}
			for _, fr := range frames {
				select {
				case c.rxFrame <- fr:
				case <-c.done:
					return
				}
			}
		}
		if err != nil {
			select {
			case c.readErr <- err:
			case <-c.done:
			}
			return
		}
	}
}

func heartbeatMargin(heartbeat time.Duration) time.Duration {
	margin := heartbeat / 100
	if margin < 50*time.Millisecond {
		margin = 50 * time.Millisecond
	}
	if margin > 1*time.Second {
		margin = 1 * time.Second
	}
	return margin
}

func (c *Connection) heartbeatSendLoop() {
	margin := heartbeatMargin(c.heartbeat)
	delay := c.heartbeat - margin

	for {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-c.done:
			timer.Stop()
			return
		}

		start := time.Now()
		err := c.writeFrame(frame.Heartbeat)
		elapsed := time.Since(start)

		if err != nil {
			return
		}

		delay = c.heartbeat - margin - elapsed
		if delay < 0 {
			delay = 0
		}
	}
}

func (c *Connection) heartbeatCheckLoop() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	margin := heartbeatMargin(c.heartbeat)
	limit := c.heartbeat + margin

	for {
		select {
		case <-ticker.C:
			last := time.Unix(0, c.lastRecv.Load())
			if time.Since(last) > limit {
				c.dispatch(func() {
					c.forceClose(hardError("connection_forced", "Heartbeat timeout expired"))
				})
				return
			}
		case <-c.done:
			return
		}
	}
}
