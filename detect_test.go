package qrcore

import (
	"testing"

	"github.com/qrforge/qrcore/bitutil"
	"github.com/qrforge/qrcore/qrcode/decoder"
)

// matrixRaster exposes a bitutil.BitMatrix as a RasterImage for round-trip
// testing: dark modules render black, light modules render white.
type matrixRaster struct {
	m *bitutil.BitMatrix
}

func (r matrixRaster) Width() int  { return r.m.Width() }
func (r matrixRaster) Height() int { return r.m.Height() }
func (r matrixRaster) Pixel(x, y int) (byte, byte, byte) {
	if r.m.Get(x, y) {
		return 0, 0, 0
	}
	return 0xFF, 0xFF, 0xFF
}

func TestDetectAndDecodePureSymbol(t *testing.T) {
	code, err := DefaultConfig([]byte("HELLO WORLD")).WithECLevel(decoder.ECLevelM).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	raster := code.Raster(0, 0, 4)

	result, err := Detect(matrixRaster{m: raster})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.Symbols) == 0 {
		t.Fatal("expected at least one detected symbol")
	}

	_, payload, err := result.Symbols[0].Decode()
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if string(payload) != "HELLO WORLD" {
		t.Fatalf("got %q, want %q", payload, "HELLO WORLD")
	}
}

func TestDetectImageRoundTrip(t *testing.T) {
	code, err := DefaultConfig([]byte("STDLIB IMAGE")).WithECLevel(decoder.ECLevelM).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	img := BitMatrixToImage(code.Bits())

	result, err := DetectImage(img)
	if err != nil {
		t.Fatalf("DetectImage failed: %v", err)
	}
	if len(result.Symbols) == 0 {
		t.Fatal("expected at least one detected symbol")
	}

	_, payload, err := result.Symbols[0].Decode()
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if string(payload) != "STDLIB IMAGE" {
		t.Fatalf("got %q, want %q", payload, "STDLIB IMAGE")
	}
}
