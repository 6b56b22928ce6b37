package amqp091

import (
	"time"

	"github.com/flowmq/amqp091/internal/wire"
)

// Option configures a Dial/New call, grounded on vcabbage-amqp/conn.go's
// Opt func(*Conn) error pattern.
type Option func(*wire.Config) error

// WithVirtualHost overrides the default "/" vhost.
func WithVirtualHost(vhost string) Option {
	return func(c *wire.Config) error { c.VirtualHost = vhost; return nil }
}

// WithCredentials overrides the default guest/guest login.
func WithCredentials(username, password string) Option {
	return func(c *wire.Config) error {
		c.Username = username
		c.Password = password
		return nil
	}
}

// WithAuthMechanisms overrides the client's SASL mechanism preference
// order. Only "PLAIN" and "AMQPLAIN" are implemented.
func WithAuthMechanisms(mechanisms ...string) Option {
	return func(c *wire.Config) error { c.AuthMechanisms = mechanisms; return nil }
}

// WithChannelMax caps the number of channels this connection will open.
// Zero means no client-side preference.
func WithChannelMax(n uint16) Option {
	return func(c *wire.Config) error { c.ChannelMax = n; return nil }
}

// WithFrameMax sets the client's frame_max proposal for tuning. The
// negotiated value caps the size of outgoing body chunks; the size of
// incoming frames is not checked against it. Zero means no client-side
// preference.
func WithFrameMax(n uint32) Option {
	return func(c *wire.Config) error { c.FrameMax = n; return nil }
}

// WithHeartbeat sets the heartbeat interval. Zero disables heartbeats:
// no heartbeat frames are sent and no timeout is checked.
func WithHeartbeat(d time.Duration) Option {
	return func(c *wire.Config) error { c.Heartbeat = d; return nil }
}

// WithLocale overrides the default "en_US" locale.
func WithLocale(locale string) Option {
	return func(c *wire.Config) error { c.Locale = locale; return nil }
}

// WithConnectionTimeout bounds how long Dial/New will wait for the
// handshake to complete.
func WithConnectionTimeout(d time.Duration) Option {
	return func(c *wire.Config) error { c.ConnectionTimeout = d; return nil }
}
