package protocol

import (
	"bytes"
	"testing"
)

func TestPacketRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		{},
		{0x01},
		{0x01, 0x02, 0x03},
		bytes.Repeat([]byte{0xAB}, 200),
	}

	for _, payload := range payloads {
		buf := make([]byte, len(payload)+PacketOverhead)
		n := EncodePacket(buf, CommandDataMagic, payload)
		if n != len(buf) {
			t.Fatalf("EncodePacket wrote %d bytes, want %d", n, len(buf))
		}
		if !DecodePacket(buf, CommandDataMagic) {
			t.Fatalf("DecodePacket rejected a packet it just encoded (payload len %d)", len(payload))
		}
		if got := PacketPayload(buf); !bytes.Equal(got, payload) {
			t.Errorf("PacketPayload = %v, want %v", got, payload)
		}
	}
}

func TestPacketWrongMagicRejected(t *testing.T) {
	buf := make([]byte, PacketOverhead+3)
	EncodePacket(buf, CommandHeaderMagic, []byte{1, 2, 3})
	if DecodePacket(buf, CommandDataMagic) {
		t.Error("DecodePacket accepted a packet with the wrong magic")
	}
}

func TestPacketSingleBitFlipRejected(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	buf := make([]byte, len(payload)+PacketOverhead)
	EncodePacket(buf, ResultDataMagic, payload)

	for i := range buf {
		for bit := 0; bit < 8; bit++ {
			corrupt := append([]byte(nil), buf...)
			corrupt[i] ^= 1 << bit
			if DecodePacket(corrupt, ResultDataMagic) {
				t.Errorf("DecodePacket accepted a frame with byte %d bit %d flipped", i, bit)
			}
		}
	}
}

func TestDecodePacketTooShort(t *testing.T) {
	if DecodePacket([]byte{0x01, 0x02, 0x03}, CommandHeaderMagic) {
		t.Error("DecodePacket accepted an undersized buffer")
	}
}

func TestAckPacketIsEmptyPayload(t *testing.T) {
	buf := make([]byte, PacketOverhead)
	EncodePacket(buf, CommandHeaderMagic, nil)
	if !DecodePacket(buf, CommandHeaderMagic) {
		t.Fatal("ack packet failed to decode")
	}
	if len(PacketPayload(buf)) != 0 {
		t.Error("ack packet should have an empty payload")
	}
}
