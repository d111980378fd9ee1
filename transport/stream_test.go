package transport

import (
	"testing"

	"github.com/ejosue98/openmv-rpc-go/driver/stub"
	"github.com/ejosue98/openmv-rpc-go/protocol"
)

func TestStreamOpenClampsQueueDepthToWriterMax(t *testing.T) {
	a, b := stub.Pipe()
	reader := NewStreamReader(NewHardwareUART(a), 255)
	writer := NewStreamWriter(NewHardwareUART(b), 4)

	done := make(chan uint32, 1)
	go func() {
		depth, ok := writer.AwaitOpen(500)
		if !ok {
			done <- 0
			return
		}
		done <- depth
	}()

	if !reader.Open(500) {
		t.Fatal("reader.Open failed")
	}

	got := <-done
	if got != 4 {
		t.Errorf("writer should clamp queue depth to its own max: got %d, want 4", got)
	}
}

func TestStreamChunkMagicMismatchTerminates(t *testing.T) {
	a, b := stub.Pipe()
	writer := NewHardwareUART(a)
	reader := NewStreamReader(NewHardwareUART(b), 1)

	chunkLen := 4
	buf := make([]byte, chunkLen+protocol.PacketOverhead)
	protocol.EncodePacket(buf, protocol.StreamReaderOpenMagic, []byte{1, 2, 3, 4})
	if !writer.PutBytes(buf, 200) {
		t.Fatal("PutBytes failed")
	}

	rxBuf := make([]byte, chunkLen+protocol.PacketOverhead)
	_, _, ok := reader.ReadChunk(rxBuf, 200)
	if ok {
		t.Error("ReadChunk should reject a chunk carrying the wrong magic")
	}
}

func TestStreamChunkBitFlipTerminates(t *testing.T) {
	a, b := stub.Pipe()
	writer := NewHardwareUART(a)
	reader := NewStreamReader(NewHardwareUART(b), 1)

	payload := []byte{9, 9, 9, 9}
	buf := make([]byte, len(payload)+protocol.PacketOverhead)
	protocol.EncodePacket(buf, protocol.StreamDataMagic, payload)
	buf[2] ^= 0x01 // flip a payload bit without touching the CRC trailer

	if !writer.PutBytes(buf, 200) {
		t.Fatal("PutBytes failed")
	}

	rxBuf := make([]byte, len(payload)+protocol.PacketOverhead)
	_, _, ok := reader.ReadChunk(rxBuf, 200)
	if ok {
		t.Error("ReadChunk should reject a chunk whose CRC no longer matches")
	}
}

func TestStreamChunkRoundTripAdvancesLFSR(t *testing.T) {
	a, b := stub.Pipe()
	writerTransport := NewHardwareUART(a)
	reader := NewStreamReader(NewHardwareUART(b), 1)

	chunk := []byte{1, 2, 3}
	buf := make([]byte, len(chunk)+protocol.PacketOverhead)
	protocol.EncodePacket(buf, protocol.StreamDataMagic, chunk)
	if !writerTransport.PutBytes(buf, 200) {
		t.Fatal("PutBytes failed")
	}

	rxBuf := make([]byte, len(chunk)+protocol.PacketOverhead)
	payload, token, ok := reader.ReadChunk(rxBuf, 200)
	if !ok {
		t.Fatal("ReadChunk failed on a well-formed chunk")
	}
	if string(payload) != string(chunk) {
		t.Errorf("payload = %v, want %v", payload, chunk)
	}
	want := protocol.AdvanceLFSR(protocol.StreamLFSRSeed)
	if token != want {
		t.Errorf("token = %#x, want %#x", token, want)
	}
}

func TestWriterBlocksWithoutCredit(t *testing.T) {
	_, b := stub.Pipe()
	writer := NewStreamWriter(NewHardwareUART(b), 4)

	buf := make([]byte, 4+protocol.PacketOverhead)
	if writer.WriteChunk(buf, []byte{1, 2, 3, 4}, 100) {
		t.Error("WriteChunk should refuse to send without any credit")
	}
}

func TestAcceptCreditReplenishes(t *testing.T) {
	_, b := stub.Pipe()
	writer := NewStreamWriter(NewHardwareUART(b), 4)
	writer.credits = 0

	token := protocol.AdvanceLFSR(protocol.StreamLFSRSeed)
	if !writer.AcceptCredit(token) {
		t.Fatal("AcceptCredit rejected the correct next token")
	}
	if writer.credits != 1 {
		t.Errorf("credits = %d, want 1", writer.credits)
	}
}
