package hc

import (
	"bytes"
	"testing"

	qrcore "github.com/qrforge/qrcore"
	"github.com/qrforge/qrcore/qrcode/decoder"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("HIGH CAPACITY PAYLOAD "), 5)
	result, err := DefaultConfig(payload).WithECLevel(decoder.ECLevelM).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i, plane := range result.Planes {
		if plane.Version.Number != result.Version {
			t.Fatalf("plane %d version %d does not match common version %d", i, plane.Version.Number, result.Version)
		}
	}

	got, err := Decode(result.AsRasterImage(4))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round-trip mismatch: got %q, want %q", got, payload)
	}
}

func TestEncodeForcesCommonVersionAcrossPlanes(t *testing.T) {
	// An uneven split (short input) should still force identical versions
	// and EC levels across all three planes.
	result, err := Encode([]byte("abcde"), decoder.ECLevelL, false, 0)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	v := result.Planes[0].Version.Number
	for i, plane := range result.Planes {
		if plane.Version.Number != v {
			t.Fatalf("plane %d version %d != plane 0 version %d", i, plane.Version.Number, v)
		}
		if plane.ECLevel != result.ECLevel {
			t.Fatalf("plane %d EC level %v != result EC level %v", i, plane.ECLevel, result.ECLevel)
		}
	}
}

func TestDecodeFailsWithoutSentinel(t *testing.T) {
	// Three ordinary mono symbols sharing a version/EC, composed directly
	// without going through Encode's sentinel prefix.
	planes, ecLevel, err := encodeAllAtVersion([3][]byte{
		[]byte("plain r"), []byte("plain g"), []byte("plain b"),
	}, decoder.ECLevelM, false, 3)
	if err != nil {
		t.Fatalf("encodeAllAtVersion failed: %v", err)
	}
	unmarked := &Result{Planes: planes, Version: 3, ECLevel: ecLevel}

	if _, err := Decode(unmarked.AsRasterImage(4)); err != qrcore.ErrHcPlaneMismatch {
		t.Fatalf("got %v, want ErrHcPlaneMismatch", err)
	}
}

func TestDecodeRecoversFromOneMissingPlane(t *testing.T) {
	payload := []byte("abcdefghijklmnop")
	result, err := DefaultConfig(payload).WithECLevel(decoder.ECLevelM).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	img := result.Raster(4)
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			c := img.RGBAAt(x, y)
			c.B = 0xFF // blank the blue plane to all-white, unreadable
			img.SetRGBA(x, y, c)
		}
	}

	got, err := Decode(rasterAdapter{img: img})
	if err != nil {
		t.Fatalf("Decode failed with one plane blanked: %v", err)
	}
	if len(got) == 0 || len(got) >= len(payload) {
		t.Fatalf("expected a partial payload shorter than the original %d bytes, got %d bytes", len(payload), len(got))
	}
}
