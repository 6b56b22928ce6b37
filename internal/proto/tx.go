package proto

import "github.com/flowmq/amqp091/internal/frame"

// Tx method arguments are encoded/decoded by the table but never issued by
// this client — transactional mode is an explicit non-goal. Kept so the
// method table is complete and a caller reaching for it gets a real codec
// instead of a dispatch failure.

type TxSelectArgs struct{}

func (m *TxSelectArgs) Encode(w *frame.Writer) error { return nil }
func (m *TxSelectArgs) Decode(r *frame.Reader) error { return nil }

type TxSelectOk struct{}

func (m *TxSelectOk) Encode(w *frame.Writer) error { return nil }
func (m *TxSelectOk) Decode(r *frame.Reader) error { return nil }

type TxCommitArgs struct{}

func (m *TxCommitArgs) Encode(w *frame.Writer) error { return nil }
func (m *TxCommitArgs) Decode(r *frame.Reader) error { return nil }

type TxCommitOk struct{}

func (m *TxCommitOk) Encode(w *frame.Writer) error { return nil }
func (m *TxCommitOk) Decode(r *frame.Reader) error { return nil }

type TxRollbackArgs struct{}

func (m *TxRollbackArgs) Encode(w *frame.Writer) error { return nil }
func (m *TxRollbackArgs) Decode(r *frame.Reader) error { return nil }

type TxRollbackOk struct{}

func (m *TxRollbackOk) Encode(w *frame.Writer) error { return nil }
func (m *TxRollbackOk) Decode(r *frame.Reader) error { return nil }
