package transport

import (
	"testing"

	"github.com/ejosue98/openmv-rpc-go/driver/stub"
)

func TestHardwareUARTRoundTrip(t *testing.T) {
	a, b := stub.Pipe()
	tx := NewHardwareUART(a)
	rx := NewHardwareUART(b)

	if !tx.PutBytes([]byte("ping"), 200) {
		t.Fatal("PutBytes failed")
	}
	got := make([]byte, 4)
	if !rx.GetBytes(got, 200) {
		t.Fatal("GetBytes failed")
	}
	if string(got) != "ping" {
		t.Errorf("got %q, want %q", got, "ping")
	}
}

func TestHardwareUARTGetBytesTimesOutWithoutEnoughData(t *testing.T) {
	a, b := stub.Pipe()
	tx := NewHardwareUART(a)
	rx := NewHardwareUART(b)

	tx.PutBytes([]byte("ab"), 200)
	got := make([]byte, 4)
	if rx.GetBytes(got, 30) {
		t.Error("GetBytes should fail to fill a 4-byte buffer from only 2 bytes sent")
	}
}

func TestSoftwareUARTRoundTrip(t *testing.T) {
	a, b := stub.BitPipe()
	tx := NewSoftwareUART(a, a)
	rx := NewSoftwareUART(b, b)

	if !tx.PutBytes([]byte{1, 2, 3}, 200) {
		t.Fatal("PutBytes failed")
	}
	got := make([]byte, 3)
	if !rx.GetBytes(got, 200) {
		t.Fatal("GetBytes failed")
	}
	if string(got) != "\x01\x02\x03" {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}

func TestSoftwareUARTGetBytesFailsWithoutAnyData(t *testing.T) {
	_, b := stub.BitPipe()
	rx := NewSoftwareUART(b, b)

	got := make([]byte, 3)
	if rx.GetBytes(got, 20) {
		t.Error("GetBytes should fail when no bytes ever arrive")
	}
}

func TestSoftwareUARTByteDeadlineCapsFasterThanOverallBudget(t *testing.T) {
	a, b := stub.BitPipe()
	rx := NewSoftwareUART(b, b)

	a.WriteByte(0x01) // one byte arrives, then nothing more ever does

	got := make([]byte, 3)
	ok := rx.GetBytes(got, 10_000) // a generous overall budget
	if ok {
		t.Error("GetBytes should still fail: the second byte never arrives within its own 2ms window")
	}
}
