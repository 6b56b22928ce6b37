package wire

import "time"

// Config holds the external-interface configuration table from spec §6.
// It is a plain struct rather than a parsed file format — functional
// options at the amqp091 façade populate it, grounded on
// vcabbage-amqp/conn.go's Opt func(*Conn) error pattern.
type Config struct {
	VirtualHost       string
	Username          string
	Password          string
	AuthMechanisms    []string
	ChannelMax        uint16
	FrameMax          uint32
	Heartbeat         time.Duration
	Locale            string
	ConnectionTimeout time.Duration
}

// DefaultConfig matches the configuration table's documented defaults.
func DefaultConfig() Config {
	return Config{
		VirtualHost:       "/",
		Username:          "guest",
		Password:          "guest",
		AuthMechanisms:    []string{"AMQPLAIN", "PLAIN"},
		ChannelMax:        0,
		FrameMax:          0,
		Heartbeat:         0,
		Locale:            "en_US",
		ConnectionTimeout: 60 * time.Second,
	}
}
