package decoder

import (
	"github.com/qrforge/qrcore/bitutil"
	"github.com/qrforge/qrcore/internal"
)

// DecodeBitStream decodes data bytes into a DecoderResult. The payload is
// the raw concatenation of every segment's bytes; Byte segments pass their
// octets through unchanged, and Kanji segments contribute the Shift-JIS
// octets they re-encode to. No further charset transcoding is performed.
func DecodeBitStream(data []byte, version *Version, ecLevel ErrorCorrectionLevel) (*internal.DecoderResult, error) {
	bs := bitutil.NewBitSource(data)
	var payload []byte
	var byteSegments [][]byte

	for {
		var mode Mode
		if bs.Available() < 4 {
			mode = ModeTerminator
		} else {
			modeBits, err := bs.ReadBits(4)
			if err != nil {
				return nil, internal.ErrFormat
			}
			mode, err = ModeForBits(modeBits)
			if err != nil {
				return nil, internal.ErrSegmentMalformed
			}
		}

		if mode == ModeTerminator {
			break
		}

		countBits := mode.CharacterCountBits(version)
		count, err := bs.ReadBits(countBits)
		if err != nil {
			return nil, internal.ErrSegmentMalformed
		}

		switch mode {
		case ModeNumeric:
			seg, err := decodeNumericSegment(bs, count)
			if err != nil {
				return nil, err
			}
			payload = append(payload, seg...)
		case ModeAlphanumeric:
			seg, err := decodeAlphanumericSegment(bs, count)
			if err != nil {
				return nil, err
			}
			payload = append(payload, seg...)
		case ModeByte:
			seg, err := decodeByteSegment(bs, count)
			if err != nil {
				return nil, err
			}
			byteSegments = append(byteSegments, seg)
			payload = append(payload, seg...)
		case ModeKanji:
			seg, err := decodeKanjiSegment(bs, count)
			if err != nil {
				return nil, err
			}
			payload = append(payload, seg...)
		default:
			return nil, internal.ErrSegmentMalformed
		}
	}

	return internal.NewDecoderResult(data, payload, byteSegments, ecLevel.String()), nil
}

// decodeKanjiSegment reverses the encoder's Kanji packing: subtract the
// 13-bit value's quotient/remainder by 0xC0, then add back the Shift-JIS
// base (0x8140 below 0x1F00, else 0xC140), reproducing the original
// double-byte Shift-JIS octets.
func decodeKanjiSegment(bs *bitutil.BitSource, count int) ([]byte, error) {
	if count*13 > bs.Available() {
		return nil, internal.ErrSegmentMalformed
	}
	buf := make([]byte, 2*count)
	offset := 0
	for count > 0 {
		twoBytes, err := bs.ReadBits(13)
		if err != nil {
			return nil, internal.ErrSegmentMalformed
		}
		assembled := ((twoBytes / 0x0C0) << 8) | (twoBytes % 0x0C0)
		if assembled < 0x01F00 {
			assembled += 0x08140
		} else {
			assembled += 0x0C140
		}
		buf[offset] = byte(assembled >> 8)
		buf[offset+1] = byte(assembled)
		offset += 2
		count--
	}
	return buf[:offset], nil
}

func decodeByteSegment(bs *bitutil.BitSource, count int) ([]byte, error) {
	if 8*count > bs.Available() {
		return nil, internal.ErrSegmentMalformed
	}
	readBytes := make([]byte, count)
	for i := 0; i < count; i++ {
		val, err := bs.ReadBits(8)
		if err != nil {
			return nil, internal.ErrSegmentMalformed
		}
		readBytes[i] = byte(val)
	}
	return readBytes, nil
}

func decodeAlphanumericSegment(bs *bitutil.BitSource, count int) ([]byte, error) {
	var out []byte
	for count > 1 {
		if bs.Available() < 11 {
			return nil, internal.ErrSegmentMalformed
		}
		nextTwo, _ := bs.ReadBits(11)
		c1, err := toAlphaNumericChar(nextTwo / 45)
		if err != nil {
			return nil, err
		}
		c2, err := toAlphaNumericChar(nextTwo % 45)
		if err != nil {
			return nil, err
		}
		out = append(out, c1, c2)
		count -= 2
	}
	if count == 1 {
		if bs.Available() < 6 {
			return nil, internal.ErrSegmentMalformed
		}
		val, _ := bs.ReadBits(6)
		c, err := toAlphaNumericChar(val)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

const alphanumericChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

func toAlphaNumericChar(value int) (byte, error) {
	if value < 0 || value >= len(alphanumericChars) {
		return 0, internal.ErrSegmentMalformed
	}
	return alphanumericChars[value], nil
}

func decodeNumericSegment(bs *bitutil.BitSource, count int) ([]byte, error) {
	var out []byte
	for count >= 3 {
		if bs.Available() < 10 {
			return nil, internal.ErrSegmentMalformed
		}
		threeDigits, _ := bs.ReadBits(10)
		if threeDigits >= 1000 {
			return nil, internal.ErrSegmentMalformed
		}
		out = append(out, digits3(threeDigits)...)
		count -= 3
	}
	if count == 2 {
		if bs.Available() < 7 {
			return nil, internal.ErrSegmentMalformed
		}
		twoDigits, _ := bs.ReadBits(7)
		if twoDigits >= 100 {
			return nil, internal.ErrSegmentMalformed
		}
		out = append(out, digits2(twoDigits)...)
	} else if count == 1 {
		if bs.Available() < 4 {
			return nil, internal.ErrSegmentMalformed
		}
		digit, _ := bs.ReadBits(4)
		if digit >= 10 {
			return nil, internal.ErrSegmentMalformed
		}
		out = append(out, byte('0'+digit))
	}
	return out, nil
}

func digits3(v int) []byte {
	return []byte{byte('0' + v/100), byte('0' + (v/10)%10), byte('0' + v%10)}
}

func digits2(v int) []byte {
	return []byte{byte('0' + v/10), byte('0' + v%10)}
}
