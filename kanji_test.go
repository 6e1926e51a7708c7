package qrcore

import (
	"testing"

	"github.com/qrforge/qrcore/qrcode/decoder"
)

func TestWithKanjiTextRoundTrip(t *testing.T) {
	// U+65E5 U+672C ("Japan"): Shift-JIS 0x93 0xFA 0x96 0x7B.
	cfg, err := DefaultConfig(nil).WithECLevel(decoder.ECLevelM).WithKanjiText("日本")
	if err != nil {
		t.Fatalf("WithKanjiText failed: %v", err)
	}
	want := []byte{0x93, 0xFA, 0x96, 0x7B}
	if string(cfg.Data) != string(want) {
		t.Fatalf("got %x, want %x", cfg.Data, want)
	}

	code, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	dec := decoder.NewDecoder()
	result, err := dec.Decode(code.Bits())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if string(result.Payload) != string(want) {
		t.Fatalf("round-trip mismatch: got %x, want %x", result.Payload, want)
	}
}
