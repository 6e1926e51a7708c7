package decoder

import (
	"testing"

	"github.com/qrforge/qrcore/bitutil"
)

func encodeNumericBitStream(t *testing.T, version *Version, digits string) []byte {
	t.Helper()
	bits := bitutil.NewBitArray(0)
	bits.AppendBits(uint32(ModeNumeric.Bits()), 4)
	bits.AppendBits(uint32(len(digits)), ModeNumeric.CharacterCountBits(version))
	i := 0
	for i < len(digits) {
		switch {
		case i+3 <= len(digits):
			n := int(digits[i]-'0')*100 + int(digits[i+1]-'0')*10 + int(digits[i+2]-'0')
			bits.AppendBits(uint32(n), 10)
			i += 3
		case i+2 <= len(digits):
			n := int(digits[i]-'0')*10 + int(digits[i+1]-'0')
			bits.AppendBits(uint32(n), 7)
			i += 2
		default:
			bits.AppendBits(uint32(digits[i]-'0'), 4)
			i++
		}
	}
	for bits.Size()%8 != 0 {
		bits.AppendBit(false)
	}
	out := make([]byte, bits.SizeInBytes())
	bits.ToBytes(0, out, 0, len(out))
	return out
}

func TestDecodeBitStreamNumeric(t *testing.T) {
	version := v(1)
	data := encodeNumericBitStream(t, version, "12345")
	result, err := DecodeBitStream(data, version, ECLevelM)
	if err != nil {
		t.Fatalf("DecodeBitStream failed: %v", err)
	}
	if string(result.Payload) != "12345" {
		t.Fatalf("got %q, want %q", result.Payload, "12345")
	}
}

func TestDecodeBitStreamByteIsRawPassthrough(t *testing.T) {
	version := v(1)
	payload := []byte{0x00, 0x01, 0xFE, 0xFF, 'x'}
	bits := bitutil.NewBitArray(0)
	bits.AppendBits(uint32(ModeByte.Bits()), 4)
	bits.AppendBits(uint32(len(payload)), ModeByte.CharacterCountBits(version))
	for _, b := range payload {
		bits.AppendBits(uint32(b), 8)
	}
	for bits.Size()%8 != 0 {
		bits.AppendBit(false)
	}
	data := make([]byte, bits.SizeInBytes())
	bits.ToBytes(0, data, 0, len(data))

	result, err := DecodeBitStream(data, version, ECLevelM)
	if err != nil {
		t.Fatalf("DecodeBitStream failed: %v", err)
	}
	if len(result.ByteSegments) != 1 || string(result.ByteSegments[0]) != string(payload) {
		t.Fatalf("byte segment not passed through unchanged: got %v", result.ByteSegments)
	}
	if string(result.Payload) != string(payload) {
		t.Fatalf("payload not passed through unchanged: got %v, want %v", result.Payload, payload)
	}
}

func TestDecodeBitStreamMalformedSegment(t *testing.T) {
	version := v(1)
	bits := bitutil.NewBitArray(0)
	bits.AppendBits(uint32(ModeNumeric.Bits()), 4)
	bits.AppendBits(100, ModeNumeric.CharacterCountBits(version)) // claims 100 digits, no body follows
	data := make([]byte, bits.SizeInBytes()+1)
	bits.ToBytes(0, data, 0, bits.SizeInBytes())

	if _, err := DecodeBitStream(data, version, ECLevelM); err == nil {
		t.Fatal("expected an error for a truncated numeric segment")
	}
}
