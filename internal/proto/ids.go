// Package proto holds the AMQP 0-9-1 protocol tables: the method id <->
// decoder/encoder/name map and the class ids the wire core exercises.
//
// In a from-scratch client these tables are normally generated from the
// protocol XML at build time (the spec explicitly calls this out as a
// build-time artifact out of scope for the runtime core). This package is
// the hand-written stand-in for that generator's output, shaped the same
// way vcabbage-amqp/types.go's amqpType/typeCode constant block and
// decode.go's parseFrameBody switch are: one flat id space and one big
// dispatch table, just re-keyed to 0-9-1 class/method ids instead of
// AMQP 1.0 descriptors.
package proto

// Class indexes actually exercised by the wire core.
const (
	ClassConnection uint16 = 10
	ClassChannel    uint16 = 20
	ClassExchange   uint16 = 40
	ClassQueue      uint16 = 50
	ClassBasic      uint16 = 60
	ClassConfirm    uint16 = 85
	ClassTx         uint16 = 90
)

// Method ids, grouped by class.
const (
	ConnectionStartID          uint16 = 10
	ConnectionStartOkID        uint16 = 11
	ConnectionSecure           uint16 = 20
	ConnectionSecureOk         uint16 = 21
	ConnectionTuneID           uint16 = 30
	ConnectionTuneOkID         uint16 = 31
	ConnectionOpenID           uint16 = 40
	ConnectionOpenOkID         uint16 = 41
	ConnectionCloseID          uint16 = 50
	ConnectionCloseOkID        uint16 = 51
	ConnectionBlockedID        uint16 = 60
	ConnectionUnblockedID      uint16 = 61
	ConnectionUpdateSecretID   uint16 = 70
	ConnectionUpdateSecretOk   uint16 = 71

	ChannelOpenID    uint16 = 10
	ChannelOpenOkID  uint16 = 11
	ChannelFlowID    uint16 = 20
	ChannelFlowOkID  uint16 = 21
	ChannelCloseID   uint16 = 40
	ChannelCloseOkID uint16 = 41

	ExchangeDeclare     uint16 = 10
	ExchangeDeclareOkID uint16 = 11
	ExchangeDelete      uint16 = 20
	ExchangeDeleteOkID  uint16 = 21
	ExchangeBind        uint16 = 30
	ExchangeBindOkID    uint16 = 31
	ExchangeUnbind      uint16 = 40
	ExchangeUnbindOkID  uint16 = 51

	QueueDeclare     uint16 = 10
	QueueDeclareOkID uint16 = 11
	QueueBind        uint16 = 20
	QueueBindOkID    uint16 = 21
	QueuePurge       uint16 = 30
	QueuePurgeOkID   uint16 = 31
	QueueDelete      uint16 = 40
	QueueDeleteOkID  uint16 = 41
	QueueUnbind      uint16 = 50
	QueueUnbindOkID  uint16 = 51

	BasicQos          uint16 = 10
	BasicQosOkID      uint16 = 11
	BasicConsume      uint16 = 20
	BasicConsumeOkID  uint16 = 21
	BasicCancel       uint16 = 30
	BasicCancelOkID   uint16 = 31
	BasicPublish      uint16 = 40
	BasicReturn       uint16 = 50
	BasicDeliver      uint16 = 60
	BasicAck          uint16 = 80
	BasicReject       uint16 = 90
	BasicRecoverAsync uint16 = 100
	BasicRecover      uint16 = 110
	BasicRecoverOk    uint16 = 111
	BasicNack         uint16 = 120

	ConfirmSelect     uint16 = 10
	ConfirmSelectOkID uint16 = 11

	TxSelect       uint16 = 10
	TxSelectOkID   uint16 = 11
	TxCommit       uint16 = 20
	TxCommitOkID   uint16 = 21
	TxRollback     uint16 = 30
	TxRollbackOkID uint16 = 31
)

// MethodID packs a class/method pair the way the spec's method_id field
// does: (class_index << 16) | method_index.
func MethodID(classID, methodID uint16) uint32 {
	return uint32(classID)<<16 | uint32(methodID)
}
