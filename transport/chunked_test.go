package transport

import (
	"testing"

	"github.com/ejosue98/openmv-rpc-go/driver/stub"
)

func TestI2CChunksLargePayloadInto32ByteTransfers(t *testing.T) {
	a, b := stub.FramePipe()

	writer := NewI2C(I2CBus{
		Up: func() {}, Down: func() {},
		Read: a.I2CRead, Write: a.I2CWrite,
	}, 0x42, nil)
	reader := NewI2C(I2CBus{
		Up: func() {}, Down: func() {},
		Read: b.I2CRead, Write: b.I2CWrite,
	}, 0x42, nil)

	payload := make([]byte, 70)
	for i := range payload {
		payload[i] = byte(i)
	}
	if !writer.PutBytes(payload, 500) {
		t.Fatal("PutBytes failed")
	}

	got := make([]byte, 70)
	if !reader.GetBytes(got, 500) {
		t.Fatal("GetBytes failed")
	}
	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("byte %d mismatch: got %#x, want %#x", i, got[i], payload[i])
		}
	}
}

func isUniform(buf []byte) bool {
	for _, v := range buf {
		if v != buf[0] {
			return false
		}
	}
	return true
}

func TestI2CPutBytesNeverAppliesUniformHeuristic(t *testing.T) {
	var writes [][]byte
	writer := NewI2C(I2CBus{
		Up: func() {}, Down: func() {},
		Write: func(addr byte, data []byte) bool {
			cp := make([]byte, len(data))
			copy(cp, data)
			writes = append(writes, cp)
			return true
		},
	}, 0x10, isUniform)

	uniformPayload := []byte{7, 7, 7, 7}
	if !writer.PutBytes(uniformPayload, 200) {
		t.Fatal("PutBytes of a uniform payload should not be rejected: the heuristic only applies to reads")
	}
	if len(writes) != 1 {
		t.Fatalf("expected exactly one write, got %d", len(writes))
	}
}

func TestI2CGetBytesRetriesThroughUniformSilenceStalls(t *testing.T) {
	real := []byte{1, 2, 3, 4}
	calls := 0
	reader := NewI2C(I2CBus{
		Up: func() {}, Down: func() {},
		Read: func(addr byte, buf []byte) bool {
			calls++
			if calls <= 2 {
				for i := range buf {
					buf[i] = 0xFF // clock-hold/silence idiom: slave has nothing yet
				}
				return true
			}
			copy(buf, real)
			return true
		},
	}, 0x10, isUniform)

	got := make([]byte, 4)
	if !reader.GetBytes(got, 500) {
		t.Fatal("GetBytes should keep retrying past uniform silence until real data arrives")
	}
	if string(got) != string(real) {
		t.Errorf("got %v, want %v", got, real)
	}
	if calls != 3 {
		t.Errorf("expected the heuristic to consume exactly 2 silent polls before the real one, got %d calls", calls)
	}
}

func TestSPITransferRoundTrip(t *testing.T) {
	var lastTx []byte
	bus := SPIBus{Transfer: func(tx, rx []byte) bool {
		lastTx = append([]byte(nil), tx...)
		if rx != nil {
			copy(rx, []byte{0xAA, 0xBB, 0xCC, 0xDD}[:len(rx)])
		}
		return true
	}}
	spi := NewSPI(bus, nil)

	if !spi.PutBytes([]byte{1, 2, 3}, 200) {
		t.Fatal("PutBytes failed")
	}
	if string(lastTx) != "\x01\x02\x03" {
		t.Errorf("lastTx = %v, want [1 2 3]", lastTx)
	}

	got := make([]byte, 4)
	if !spi.GetBytes(got, 200) {
		t.Fatal("GetBytes failed")
	}
	want := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestCANChunksInto8ByteFrames(t *testing.T) {
	a, b := stub.FramePipe()

	writer := NewCAN(CANBus{Send: a.CANSend, Recv: a.CANRecv}, 0x123)
	reader := NewCAN(CANBus{Send: b.CANSend, Recv: b.CANRecv}, 0x123)

	payload := make([]byte, 20)
	for i := range payload {
		payload[i] = byte(100 + i)
	}
	if !writer.PutBytes(payload, 500) {
		t.Fatal("PutBytes failed")
	}

	got := make([]byte, 20)
	if !reader.GetBytes(got, 500) {
		t.Fatal("GetBytes failed")
	}
	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("byte %d mismatch: got %d, want %d", i, got[i], payload[i])
		}
	}
}
