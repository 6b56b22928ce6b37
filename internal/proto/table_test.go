package proto

import (
	"testing"

	"github.com/flowmq/amqp091/internal/frame"
	"github.com/google/go-cmp/cmp"
)

func TestMethodRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		classID  uint16
		methodID uint16
		method   Method
	}{
		{"exchange.declare", ClassExchange, ExchangeDeclare, &ExchangeDeclareArgs{
			Exchange: "x", Type: "direct", Durable: true, Arguments: frame.Table{},
		}},
		{"queue.bind", ClassQueue, QueueBind, &QueueBindArgs{
			Queue: "q", Exchange: "x", RoutingKey: "rk", Arguments: frame.Table{},
		}},
		{"basic.ack", ClassBasic, BasicAck, &BasicAckArgs{DeliveryTag: 42, Multiple: true}},
		{"basic.nack", ClassBasic, BasicNack, &BasicNackArgs{DeliveryTag: 7, Requeue: true}},
		{"confirm.select", ClassConfirm, ConfirmSelect, &ConfirmSelectArgs{NoWait: false}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, err := Encode(tc.classID, tc.methodID, tc.method)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}

			gotClass, gotMethod, decoded, err := Decode(w.Bytes())
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if gotClass != tc.classID || gotMethod != tc.methodID {
				t.Fatalf("got class/method %d/%d, want %d/%d", gotClass, gotMethod, tc.classID, tc.methodID)
			}
			if diff := cmp.Diff(tc.method, decoded); diff != "" {
				t.Fatalf("round trip mismatch:\n%s", diff)
			}
		})
	}
}

func TestUnknownMethodID(t *testing.T) {
	if _, _, err := New(MethodID(99, 99)); err == nil {
		t.Fatal("expected an error for an unregistered method id")
	}
}

func TestReplyCodeClassification(t *testing.T) {
	if !IsSoft(ReplyNotFound) {
		t.Error("404 should be a soft (channel-level) code")
	}
	if !IsHard(ReplyConnectionForced) {
		t.Error("320 should be a hard (connection-level) code")
	}
	if IsSoft(ReplyConnectionForced) {
		t.Error("320 should not be classified as soft")
	}
}
