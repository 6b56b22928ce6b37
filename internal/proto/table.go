package proto

import (
	"github.com/flowmq/amqp091/internal/frame"
	"github.com/pkg/errors"
)

// Method is implemented by every class/method argument struct. Only the
// direction actually used by a client needs a working Encode or Decode;
// where a struct implements just that one, the other panics rather than
// silently producing garbage, the same way
// vcabbage-amqp's composite types simply never defined an unmarshal for
// send-only composites like sasl-init.
type Method interface {
	Encode(w *frame.Writer) error
	Decode(r *frame.Reader) error
}

// entry is one row of the method table: a constructor and a canonical
// name, the two things the spec says the generated tables provide.
type entry struct {
	name string
	new  func() Method
}

var methods = map[uint32]entry{
	MethodID(ClassConnection, ConnectionStartID):        {"connection.start", func() Method { return &ConnectionStart{} }},
	MethodID(ClassConnection, ConnectionStartOkID):      {"connection.start-ok", func() Method { return &ConnectionStartOk{} }},
	MethodID(ClassConnection, ConnectionTuneID):         {"connection.tune", func() Method { return &ConnectionTune{} }},
	MethodID(ClassConnection, ConnectionTuneOkID):       {"connection.tune-ok", func() Method { return &ConnectionTuneOk{} }},
	MethodID(ClassConnection, ConnectionOpenID):         {"connection.open", func() Method { return &ConnectionOpen{} }},
	MethodID(ClassConnection, ConnectionOpenOkID):       {"connection.open-ok", func() Method { return &ConnectionOpenOk{} }},
	MethodID(ClassConnection, ConnectionCloseID):        {"connection.close", func() Method { return &ConnectionClose{} }},
	MethodID(ClassConnection, ConnectionCloseOkID):      {"connection.close-ok", func() Method { return &ConnectionCloseOk{} }},
	MethodID(ClassConnection, ConnectionBlockedID):      {"connection.blocked", func() Method { return &ConnectionBlocked{} }},
	MethodID(ClassConnection, ConnectionUnblockedID):    {"connection.unblocked", func() Method { return &ConnectionUnblocked{} }},
	MethodID(ClassConnection, ConnectionUpdateSecretID): {"connection.update-secret", func() Method { return &ConnectionUpdateSecret{} }},

	MethodID(ClassChannel, ChannelOpenID):    {"channel.open", func() Method { return &ChannelOpen{} }},
	MethodID(ClassChannel, ChannelOpenOkID):  {"channel.open-ok", func() Method { return &ChannelOpenOk{} }},
	MethodID(ClassChannel, ChannelFlowID):    {"channel.flow", func() Method { return &ChannelFlow{} }},
	MethodID(ClassChannel, ChannelFlowOkID):  {"channel.flow-ok", func() Method { return &ChannelFlowOk{} }},
	MethodID(ClassChannel, ChannelCloseID):   {"channel.close", func() Method { return &ChannelClose{} }},
	MethodID(ClassChannel, ChannelCloseOkID): {"channel.close-ok", func() Method { return &ChannelCloseOk{} }},

	MethodID(ClassExchange, ExchangeDeclare):     {"exchange.declare", func() Method { return &ExchangeDeclareArgs{} }},
	MethodID(ClassExchange, ExchangeDeclareOkID): {"exchange.declare-ok", func() Method { return &ExchangeDeclareOk{} }},
	MethodID(ClassExchange, ExchangeDelete):      {"exchange.delete", func() Method { return &ExchangeDeleteArgs{} }},
	MethodID(ClassExchange, ExchangeDeleteOkID):  {"exchange.delete-ok", func() Method { return &ExchangeDeleteOk{} }},
	MethodID(ClassExchange, ExchangeBind):        {"exchange.bind", func() Method { return &ExchangeBindArgs{} }},
	MethodID(ClassExchange, ExchangeBindOkID):    {"exchange.bind-ok", func() Method { return &ExchangeBindOk{} }},
	MethodID(ClassExchange, ExchangeUnbind):      {"exchange.unbind", func() Method { return &ExchangeUnbindArgs{} }},
	MethodID(ClassExchange, ExchangeUnbindOkID):  {"exchange.unbind-ok", func() Method { return &ExchangeUnbindOk{} }},

	MethodID(ClassQueue, QueueDeclare):     {"queue.declare", func() Method { return &QueueDeclareArgs{} }},
	MethodID(ClassQueue, QueueDeclareOkID): {"queue.declare-ok", func() Method { return &QueueDeclareOk{} }},
	MethodID(ClassQueue, QueueBind):        {"queue.bind", func() Method { return &QueueBindArgs{} }},
	MethodID(ClassQueue, QueueBindOkID):    {"queue.bind-ok", func() Method { return &QueueBindOk{} }},
	MethodID(ClassQueue, QueueUnbind):      {"queue.unbind", func() Method { return &QueueUnbindArgs{} }},
	MethodID(ClassQueue, QueueUnbindOkID):  {"queue.unbind-ok", func() Method { return &QueueUnbindOk{} }},
	MethodID(ClassQueue, QueuePurge):       {"queue.purge", func() Method { return &QueuePurgeArgs{} }},
	MethodID(ClassQueue, QueuePurgeOkID):   {"queue.purge-ok", func() Method { return &QueuePurgeOk{} }},
	MethodID(ClassQueue, QueueDelete):      {"queue.delete", func() Method { return &QueueDeleteArgs{} }},
	MethodID(ClassQueue, QueueDeleteOkID):  {"queue.delete-ok", func() Method { return &QueueDeleteOk{} }},

	MethodID(ClassBasic, BasicQos):         {"basic.qos", func() Method { return &BasicQosArgs{} }},
	MethodID(ClassBasic, BasicQosOkID):     {"basic.qos-ok", func() Method { return &BasicQosOk{} }},
	MethodID(ClassBasic, BasicConsume):     {"basic.consume", func() Method { return &BasicConsumeArgs{} }},
	MethodID(ClassBasic, BasicConsumeOkID): {"basic.consume-ok", func() Method { return &BasicConsumeOk{} }},
	MethodID(ClassBasic, BasicCancel):      {"basic.cancel", func() Method { return &BasicCancelArgs{} }},
	MethodID(ClassBasic, BasicCancelOkID):  {"basic.cancel-ok", func() Method { return &BasicCancelOk{} }},
	MethodID(ClassBasic, BasicPublish):     {"basic.publish", func() Method { return &BasicPublishArgs{} }},
	MethodID(ClassBasic, BasicReturn):      {"basic.return", func() Method { return &BasicReturnArgs{} }},
	MethodID(ClassBasic, BasicDeliver):     {"basic.deliver", func() Method { return &BasicDeliverArgs{} }},
	MethodID(ClassBasic, BasicAck):         {"basic.ack", func() Method { return &BasicAckArgs{} }},
	MethodID(ClassBasic, BasicReject):      {"basic.reject", func() Method { return &BasicRejectArgs{} }},
	MethodID(ClassBasic, BasicNack):        {"basic.nack", func() Method { return &BasicNackArgs{} }},

	MethodID(ClassConfirm, ConfirmSelect):     {"confirm.select", func() Method { return &ConfirmSelectArgs{} }},
	MethodID(ClassConfirm, ConfirmSelectOkID): {"confirm.select-ok", func() Method { return &ConfirmSelectOk{} }},

	MethodID(ClassTx, TxSelect):       {"tx.select", func() Method { return &TxSelectArgs{} }},
	MethodID(ClassTx, TxSelectOkID):   {"tx.select-ok", func() Method { return &TxSelectOk{} }},
	MethodID(ClassTx, TxCommit):       {"tx.commit", func() Method { return &TxCommitArgs{} }},
	MethodID(ClassTx, TxCommitOkID):   {"tx.commit-ok", func() Method { return &TxCommitOk{} }},
	MethodID(ClassTx, TxRollback):     {"tx.rollback", func() Method { return &TxRollbackArgs{} }},
	MethodID(ClassTx, TxRollbackOkID): {"tx.rollback-ok", func() Method { return &TxRollbackOk{} }},
}

// New allocates a zero-valued Method for id, or an error if id has no
// decoder — the spec requires the connection be destroyed with
// frame_error in that case.
func New(id uint32) (Method, string, error) {
	e, ok := methods[id]
	if !ok {
		return nil, "", errors.Errorf("no decoder registered for method id %#x", id)
	}
	return e.new(), e.name, nil
}

// Name returns the canonical dotted name for id, or "" if unknown.
func Name(id uint32) string {
	return methods[id].name
}

// Encode writes classID/methodID followed by m's argument encoding.
func Encode(classID, methodID uint16, m Method) (*frame.Writer, error) {
	w := frame.NewWriter()
	if err := w.MethodStart(classID, methodID); err != nil {
		return nil, err
	}
	if err := m.Encode(w); err != nil {
		return nil, err
	}
	return w, nil
}

// Decode reads the method id and decodes the matching argument struct.
func Decode(payload []byte) (classID, methodID uint16, m Method, err error) {
	r := frame.NewReader(payload)
	if classID, err = r.ReadShort("method.class_id"); err != nil {
		return 0, 0, nil, err
	}
	if methodID, err = r.ReadShort("method.method_id"); err != nil {
		return 0, 0, nil, err
	}

	m, _, err = New(MethodID(classID, methodID))
	if err != nil {
		return classID, methodID, nil, err
	}
	err = m.Decode(r)
	return classID, methodID, m, err
}
