package encoder

import (
	"testing"

	"github.com/qrforge/qrcore/qrcode/decoder"
)

func v(number int) *decoder.Version {
	version, err := decoder.GetVersionForNumber(number)
	if err != nil {
		panic(err)
	}
	return version
}

func TestSegmentizeSingleMode(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		mode decoder.Mode
	}{
		{"numeric", []byte("0123456789"), decoder.ModeNumeric},
		{"alphanumeric", []byte("HELLO WORLD"), decoder.ModeAlphanumeric},
		{"byte", []byte("hello world!"), decoder.ModeByte},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			segs := Segmentize(c.data, v(1))
			if len(segs) != 1 {
				t.Fatalf("expected 1 segment, got %d", len(segs))
			}
			if segs[0].Mode != c.mode {
				t.Fatalf("expected mode %v, got %v", c.mode, segs[0].Mode)
			}
			if string(segs[0].Payload) != string(c.data) {
				t.Fatalf("payload mismatch: got %q, want %q", segs[0].Payload, c.data)
			}
		})
	}
}

func TestSegmentizeKanjiPair(t *testing.T) {
	data := []byte{0x93, 0x5F} // a Shift-JIS Kanji pair in the low range
	segs := Segmentize(data, v(1))
	if len(segs) != 1 || segs[0].Mode != decoder.ModeKanji {
		t.Fatalf("expected a single Kanji segment, got %+v", segs)
	}
}

func TestSegmentizeMixedContentProducesMultipleSegments(t *testing.T) {
	data := append(append([]byte{}, "0123456789012345678901234567890"...), []byte{0x93, 0x5F, 0x93, 0x5F, 0x93, 0x5F}...)
	segs := Segmentize(data, v(1))
	if len(segs) < 2 {
		t.Fatalf("expected at least 2 segments for mixed numeric/Kanji content, got %d", len(segs))
	}
	last := segs[len(segs)-1]
	if last.Mode != decoder.ModeKanji {
		t.Fatalf("expected trailing segment to stay Kanji, got %v", last.Mode)
	}
}

func TestSegmentizeShortRunsMergeAcrossModes(t *testing.T) {
	// A single digit next to alphanumeric text is cheaper to fold into the
	// alphanumeric segment than to pay for a second mode indicator and CCI.
	data := []byte("A1")
	segs := Segmentize(data, v(1))
	if len(segs) != 1 {
		t.Fatalf("expected the short numeric run to merge into alphanumeric, got %d segments: %+v", len(segs), segs)
	}
	if segs[0].Mode != decoder.ModeAlphanumeric {
		t.Fatalf("expected merged mode alphanumeric, got %v", segs[0].Mode)
	}
}

func TestSegmentizeEmpty(t *testing.T) {
	segs := Segmentize(nil, v(1))
	if len(segs) != 0 {
		t.Fatalf("expected no segments for empty input, got %d", len(segs))
	}
}

func TestMergedModeKanjiFallsBackToByte(t *testing.T) {
	if mergedMode(decoder.ModeKanji, decoder.ModeNumeric) != decoder.ModeByte {
		t.Fatal("Kanji merged with Numeric should fall back to Byte")
	}
	if mergedMode(decoder.ModeKanji, decoder.ModeAlphanumeric) != decoder.ModeByte {
		t.Fatal("Kanji merged with Alphanumeric should fall back to Byte")
	}
	if mergedMode(decoder.ModeNumeric, decoder.ModeAlphanumeric) != decoder.ModeAlphanumeric {
		t.Fatal("Numeric should fold into Alphanumeric")
	}
}
