package frame

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []Frame{
		{Kind: KindMethod, Channel: 0, Payload: []byte{0, 10, 0, 10}},
		{Kind: KindHeartbeat, Channel: 0, Payload: nil},
		{Kind: KindBody, Channel: 3, Payload: bytes.Repeat([]byte("x"), 5000)},
	}

	for _, fr := range tests {
		var buf bytes.Buffer
		if err := WriteFrame(&buf, fr); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}

		if got, want := buf.Len(), 7+len(fr.Payload)+1; got != want {
			t.Fatalf("frame length = %d, want %d", got, want)
		}
		if buf.Bytes()[buf.Len()-1] != End {
			t.Fatalf("frame did not end with 0xCE")
		}

		got, consumed, err := ReadFrame(buf.Bytes())
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if consumed != buf.Len() {
			t.Fatalf("consumed = %d, want %d", consumed, buf.Len())
		}
		if diff := cmp.Diff(fr, got); diff != "" {
			t.Fatalf("round trip mismatch:\n%s", diff)
		}
	}
}

func TestReadFrameIncomplete(t *testing.T) {
	fr := Frame{Kind: KindMethod, Channel: 1, Payload: []byte{1, 2, 3, 4}}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, fr); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	partial := buf.Bytes()[:buf.Len()-2]
	_, consumed, err := ReadFrame(partial)
	if err != nil {
		t.Fatalf("ReadFrame on partial buffer returned error: %v", err)
	}
	if consumed != 0 {
		t.Fatalf("consumed = %d on incomplete frame, want 0", consumed)
	}
}

func TestReadFrameBadEnd(t *testing.T) {
	fr := Frame{Kind: KindMethod, Channel: 1, Payload: []byte{1, 2, 3, 4}}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, fr); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	corrupt := buf.Bytes()
	corrupt[len(corrupt)-1] = 0x00

	_, _, err := ReadFrame(corrupt)
	if err == nil {
		t.Fatal("expected an error for a corrupt frame end")
	}
}

func TestTableRoundTrip(t *testing.T) {
	table := Table{
		"x-priority": int32(5),
		"str":        "hello",
		"flag":       true,
		"nested": Table{
			"inner": int64(42),
		},
		"list": []interface{}{int32(1), "two"},
	}

	w := NewWriter()
	if err := w.WriteTable(table, "table"); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	r := NewReader(w.Bytes())
	got, err := r.ReadTable("table")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}

	if diff := cmp.Diff(table, got); diff != "" {
		t.Fatalf("table round trip mismatch:\n%s", diff)
	}
}

func TestTableRejectsBadKey(t *testing.T) {
	w := NewWriter()
	err := w.WriteTable(Table{"1bad": "x"}, "table")
	if err == nil {
		t.Fatal("expected an error for a key starting with a digit")
	}
}

func TestPropertiesRoundTrip(t *testing.T) {
	var p Properties
	p.SetContentType("text/plain")
	p.SetDeliveryMode(2)
	p.SetPriority(7)
	p.SetTimestamp(time.Unix(1000, 0).UTC())
	p.SetAppID("TEST")

	w := NewWriter()
	if err := WriteProperties(w, p); err != nil {
		t.Fatalf("WriteProperties: %v", err)
	}

	r := NewReader(w.Bytes())
	got, err := ReadProperties(r)
	if err != nil {
		t.Fatalf("ReadProperties: %v", err)
	}

	if diff := cmp.Diff(p, got, cmp.AllowUnexported(Properties{})); diff != "" {
		t.Fatalf("properties round trip mismatch:\n%s", diff)
	}
}

func TestPropertiesRejectsBadPriority(t *testing.T) {
	var p Properties
	p.SetPriority(10)

	err := WriteProperties(NewWriter(), p)
	if err == nil {
		t.Fatal("expected an error for priority > 9")
	}
}
