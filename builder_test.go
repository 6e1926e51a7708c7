package qrcore

import (
	"testing"

	"github.com/qrforge/qrcore/qrcode/decoder"
)

func TestBuildRoundTripNumeric(t *testing.T) {
	testBuildRoundTrip(t, []byte("1234567890"), decoder.ECLevelM)
}

func TestBuildRoundTripAlphanumeric(t *testing.T) {
	testBuildRoundTrip(t, []byte("HELLO WORLD"), decoder.ECLevelL)
}

func TestBuildRoundTripByte(t *testing.T) {
	testBuildRoundTrip(t, []byte("Hello, World! This is a test."), decoder.ECLevelQ)
}

func TestBuildRoundTripHighEC(t *testing.T) {
	testBuildRoundTrip(t, []byte("TEST123"), decoder.ECLevelH)
}

func TestBuildRoundTripAllECLevels(t *testing.T) {
	content := []byte("Testing all EC levels")
	levels := []decoder.ErrorCorrectionLevel{
		decoder.ECLevelL, decoder.ECLevelM, decoder.ECLevelQ, decoder.ECLevelH,
	}
	for _, ecLevel := range levels {
		t.Run(ecLevel.String(), func(t *testing.T) {
			testBuildRoundTrip(t, content, ecLevel)
		})
	}
}

// Scenario C from the boundary scenarios: 2,953 bytes of 0x41 at EC=L must
// land on V=40 Byte mode and decode back to the same bytes.
func TestBuildRoundTripMaxByteCapacity(t *testing.T) {
	content := make([]byte, 2953)
	for i := range content {
		content[i] = 0x41
	}
	code, err := DefaultConfig(content).WithECLevel(decoder.ECLevelL).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if code.Metadata().Version != 40 {
		t.Fatalf("expected version 40, got %d", code.Metadata().Version)
	}
	payload := decodeSymbol(t, code)
	if string(payload) != string(content) {
		t.Errorf("round-trip mismatch on max-capacity byte payload")
	}
}

func TestBuildCapacityExceeded(t *testing.T) {
	content := make([]byte, 4000)
	_, err := DefaultConfig(content).WithECLevel(decoder.ECLevelH).Build()
	if err == nil {
		t.Fatal("expected ErrCapacityExceeded for oversized data")
	}
}

func TestBuildEmptyData(t *testing.T) {
	code, err := DefaultConfig(nil).Build()
	if err != nil {
		t.Fatalf("Build failed on empty data: %v", err)
	}
	if code.Side() == 0 {
		t.Fatal("expected a non-empty symbol even for empty data")
	}
}

func TestBuildFixedVersionAndMask(t *testing.T) {
	cfg := DefaultConfig([]byte("fixed")).WithVersion(5).WithMask(3)
	code, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	meta := code.Metadata()
	if meta.Version != 5 {
		t.Fatalf("expected version 5, got %d", meta.Version)
	}
	if meta.Mask != 3 {
		t.Fatalf("expected mask 3, got %d", meta.Mask)
	}
}

func TestBuildRaster(t *testing.T) {
	code, err := DefaultConfig([]byte("Hello")).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	raster := code.Raster(100, 100, 4)
	if raster.Width() < 100 || raster.Height() < 100 {
		t.Fatalf("raster too small: %dx%d", raster.Width(), raster.Height())
	}
}

func testBuildRoundTrip(t *testing.T, content []byte, ecLevel decoder.ErrorCorrectionLevel) {
	t.Helper()

	code, err := DefaultConfig(content).WithECLevel(ecLevel).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if code.Side() == 0 {
		t.Fatal("built symbol has zero side length")
	}

	payload := decodeSymbol(t, code)
	if string(payload) != string(content) {
		t.Errorf("round-trip mismatch: got %q, want %q", payload, content)
	}
}

func decodeSymbol(t *testing.T, code *Symbol) []byte {
	t.Helper()
	dec := decoder.NewDecoder()
	result, err := dec.Decode(code.Bits())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return result.Payload
}
