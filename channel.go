package amqp091

import (
	"github.com/flowmq/amqp091/internal/frame"
	"github.com/flowmq/amqp091/internal/proto"
	"github.com/flowmq/amqp091/internal/wire"
)

// Channel is a bare control-plane channel: declare, bind, purge, and
// delete calls. Publish and Consume open their own dedicated channels
// (see Client.NewPublisher and Client.NewConsumer) since those carry
// their own content-sequence state machines.
type Channel struct {
	conn *wire.Connection
	ch   *wire.Channel
}

// Close closes the channel.
func (c *Channel) Close() error {
	if err := c.ch.Close(nil); err != nil {
		return err
	}
	return nil
}

func toTable(t Table) frame.Table {
	if t == nil {
		return frame.Table{}
	}
	return frame.Table(t)
}

// ExchangeDeclare declares an exchange.
func (c *Channel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args Table) error {
	_, err := c.ch.InvokeExpectReply(
		proto.ClassExchange, proto.ExchangeDeclare,
		&proto.ExchangeDeclareArgs{
			Exchange:   name,
			Type:       kind,
			Durable:    durable,
			AutoDelete: autoDelete,
			Internal:   internal,
			NoWait:     noWait,
			Arguments:  toTable(args),
		},
		proto.ClassExchange, proto.ExchangeDeclareOkID,
	)
	return err
}

// ExchangeDelete deletes an exchange.
func (c *Channel) ExchangeDelete(name string, ifUnused, noWait bool) error {
	_, err := c.ch.InvokeExpectReply(
		proto.ClassExchange, proto.ExchangeDelete,
		&proto.ExchangeDeleteArgs{Exchange: name, IfUnused: ifUnused, NoWait: noWait},
		proto.ClassExchange, proto.ExchangeDeleteOkID,
	)
	return err
}

// ExchangeBind binds one exchange to another.
func (c *Channel) ExchangeBind(destination, source, routingKey string, noWait bool, args Table) error {
	_, err := c.ch.InvokeExpectReply(
		proto.ClassExchange, proto.ExchangeBind,
		&proto.ExchangeBindArgs{Destination: destination, Source: source, RoutingKey: routingKey, NoWait: noWait, Arguments: toTable(args)},
		proto.ClassExchange, proto.ExchangeBindOkID,
	)
	return err
}

// ExchangeUnbind unbinds one exchange from another.
func (c *Channel) ExchangeUnbind(destination, source, routingKey string, noWait bool, args Table) error {
	_, err := c.ch.InvokeExpectReply(
		proto.ClassExchange, proto.ExchangeUnbind,
		&proto.ExchangeUnbindArgs{Destination: destination, Source: source, RoutingKey: routingKey, NoWait: noWait, Arguments: toTable(args)},
		proto.ClassExchange, proto.ExchangeUnbindOkID,
	)
	return err
}

// QueueDeclareResult reports the broker's view of a declared queue.
type QueueDeclareResult struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

// QueueDeclare declares a queue. An empty name requests a broker-generated
// one, returned in the result.
func (c *Channel) QueueDeclare(name string, durable, exclusive, autoDelete, noWait bool, args Table) (QueueDeclareResult, error) {
	reply, err := c.ch.InvokeExpectReply(
		proto.ClassQueue, proto.QueueDeclare,
		&proto.QueueDeclareArgs{Queue: name, Durable: durable, Exclusive: exclusive, AutoDelete: autoDelete, NoWait: noWait, Arguments: toTable(args)},
		proto.ClassQueue, proto.QueueDeclareOkID,
	)
	if err != nil {
		return QueueDeclareResult{}, err
	}
	ok := reply.(*proto.QueueDeclareOk)
	return QueueDeclareResult{Queue: ok.Queue, MessageCount: ok.MessageCount, ConsumerCount: ok.ConsumerCount}, nil
}

// QueueBind binds a queue to an exchange.
func (c *Channel) QueueBind(queue, exchange, routingKey string, noWait bool, args Table) error {
	_, err := c.ch.InvokeExpectReply(
		proto.ClassQueue, proto.QueueBind,
		&proto.QueueBindArgs{Queue: queue, Exchange: exchange, RoutingKey: routingKey, NoWait: noWait, Arguments: toTable(args)},
		proto.ClassQueue, proto.QueueBindOkID,
	)
	return err
}

// QueueUnbind unbinds a queue from an exchange.
func (c *Channel) QueueUnbind(queue, exchange, routingKey string, args Table) error {
	_, err := c.ch.InvokeExpectReply(
		proto.ClassQueue, proto.QueueUnbind,
		&proto.QueueUnbindArgs{Queue: queue, Exchange: exchange, RoutingKey: routingKey, Arguments: toTable(args)},
		proto.ClassQueue, proto.QueueUnbindOkID,
	)
	return err
}

// QueuePurge discards all ready messages in queue and returns the count.
func (c *Channel) QueuePurge(queue string, noWait bool) (uint32, error) {
	reply, err := c.ch.InvokeExpectReply(
		proto.ClassQueue, proto.QueuePurge,
		&proto.QueuePurgeArgs{Queue: queue, NoWait: noWait},
		proto.ClassQueue, proto.QueuePurgeOkID,
	)
	if err != nil {
		return 0, err
	}
	return reply.(*proto.QueuePurgeOk).MessageCount, nil
}

// QueueDelete deletes a queue and returns the number of messages it held.
func (c *Channel) QueueDelete(queue string, ifUnused, ifEmpty, noWait bool) (uint32, error) {
	reply, err := c.ch.InvokeExpectReply(
		proto.ClassQueue, proto.QueueDelete,
		&proto.QueueDeleteArgs{Queue: queue, IfUnused: ifUnused, IfEmpty: ifEmpty, NoWait: noWait},
		proto.ClassQueue, proto.QueueDeleteOkID,
	)
	if err != nil {
		return 0, err
	}
	return reply.(*proto.QueueDeleteOk).MessageCount, nil
}
