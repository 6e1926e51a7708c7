package encoder

import (
	"errors"
	"testing"

	"github.com/qrforge/qrcore/bitutil"
	"github.com/qrforge/qrcore/internal"
	"github.com/qrforge/qrcore/qrcode/decoder"
)

func TestEncodeChoosesSmallestFittingVersion(t *testing.T) {
	code, err := Encode([]byte("1234567890"), decoder.ECLevelM, false, 0, -1)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if code.Version.Number != 1 {
		t.Fatalf("expected version 1 for 10 numeric digits, got %d", code.Version.Number)
	}
}

func TestEncodeForcedECLevelExceedsCapacity(t *testing.T) {
	data := make([]byte, 200)
	for i := range data {
		data[i] = 'A'
	}
	_, err := Encode(data, decoder.ECLevelH, true, 1, -1)
	if !errors.Is(err, internal.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestEncodeFixedVersionAutoECLevel(t *testing.T) {
	code, err := Encode([]byte("short"), decoder.ECLevelL, false, 3, -1)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if code.Version.Number != 3 {
		t.Fatalf("expected version 3, got %d", code.Version.Number)
	}
	if code.ECLevel.Ordinal() < decoder.ECLevelL.Ordinal() {
		t.Fatalf("expected an EC level at least as strong as L, got %v", code.ECLevel)
	}
}

func TestEncodeKanjiRoundTrip(t *testing.T) {
	data := []byte{0x93, 0x5F, 0x93, 0x60}
	code, err := Encode(data, decoder.ECLevelM, false, 0, -1)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	dec := decoder.NewDecoder()
	result, err := dec.Decode(code.ToBitMatrix())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if string(result.Payload) != string(data) {
		t.Fatalf("Kanji round-trip mismatch: got %x, want %x", result.Payload, data)
	}
}

func TestAppendKanjiBytesRejectsOutOfRangePair(t *testing.T) {
	bits := bitutil.NewBitArray(0)
	err := appendKanjiBytes([]byte{0x00, 0x01}, bits)
	if !errors.Is(err, internal.ErrKanjiOutOfRange) {
		t.Fatalf("expected ErrKanjiOutOfRange, got %v", err)
	}
}

func TestMaskSelectionMinimizesPenalty(t *testing.T) {
	code, err := Encode([]byte("MASK TEST PAYLOAD"), decoder.ECLevelM, false, 0, -1)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	chosenPenalty := calculateMaskPenalty(code.Matrix)

	version := code.Version
	ecLevel := code.ECLevel
	headerBits := bitutil.NewBitArray(0)
	for _, s := range code.Segments {
		headerBits.AppendBits(uint32(s.Mode.Bits()), 4)
		headerBits.AppendBits(uint32(len(segmentChars(s))), s.Mode.CharacterCountBits(version))
		if err := appendSegmentBody(s, headerBits); err != nil {
			t.Fatalf("appendSegmentBody failed: %v", err)
		}
	}
	ecBlocks := version.ECBlocksForLevel(ecLevel)
	numDataBytes := version.TotalCodewords - ecBlocks.TotalECCodewords()
	if err := terminateBits(numDataBytes, headerBits); err != nil {
		t.Fatalf("terminateBits failed: %v", err)
	}
	finalBits, err := interleaveWithECBytes(headerBits, version.TotalCodewords, numDataBytes, ecBlocks.NumBlocks())
	if err != nil {
		t.Fatalf("interleaveWithECBytes failed: %v", err)
	}

	dimension := version.DimensionForVersion()
	for pattern := 0; pattern < numMaskPatterns; pattern++ {
		if pattern == code.MaskPattern {
			continue
		}
		candidate := NewByteMatrix(dimension, dimension)
		buildMatrix(finalBits, ecLevel, version, pattern, candidate)
		if calculateMaskPenalty(candidate) < chosenPenalty {
			t.Fatalf("mask %d beats chosen mask %d on penalty", pattern, code.MaskPattern)
		}
	}
}
