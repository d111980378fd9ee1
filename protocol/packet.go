package protocol

import "encoding/binary"

// EncodePacket writes a packet into dst: magic little-endian, the payload
// bytes, then a CRC-16 over the magic and payload. dst must have room for
// len(payload)+PacketOverhead bytes; EncodePacket never allocates.
// It returns the total number of bytes written.
func EncodePacket(dst []byte, magic uint16, payload []byte) int {
	total := len(payload) + PacketOverhead
	binary.LittleEndian.PutUint16(dst[0:2], magic)
	if len(payload) > 0 {
		copy(dst[2:2+len(payload)], payload)
	}
	crc := CRC16(dst[:total-CRCSize])
	binary.LittleEndian.PutUint16(dst[total-CRCSize:total], crc)
	return total
}

// DecodePacket verifies that src (exactly one packet, magic||payload||crc)
// carries expectedMagic and a matching CRC-16. It performs no reads beyond
// src and allocates nothing; the payload, if any, is src[2:len(src)-2].
func DecodePacket(src []byte, expectedMagic uint16) bool {
	if len(src) < PacketOverhead {
		return false
	}
	magic := binary.LittleEndian.Uint16(src[0:2])
	if magic != expectedMagic {
		return false
	}
	crc := binary.LittleEndian.Uint16(src[len(src)-CRCSize:])
	return crc == CRC16(src[:len(src)-CRCSize])
}

// PacketPayload returns the payload portion of a decoded packet. Callers
// must have already validated the packet with DecodePacket.
func PacketPayload(src []byte) []byte {
	if len(src) < PacketOverhead {
		return nil
	}
	return src[2 : len(src)-CRCSize]
}
