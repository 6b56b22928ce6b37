package amqp091

import "github.com/flowmq/amqp091/internal/wire"

// Error is the failure shape every broker-sent connection.close or
// channel.close, and every locally detected protocol violation, surfaces
// as.
type Error = wire.Error

// Table is a field table value, re-exported at the package boundary so
// callers building basic-properties Headers or declare arguments don't
// need to reach into an internal package.
type Table = map[string]interface{}
