package encoder

import "github.com/qrforge/qrcore/qrcode/decoder"

// Segment is a maximal run of input bytes committed to a single encoding
// mode, as classified and coalesced by Segmentize.
type Segment struct {
	Mode    decoder.Mode
	Payload []byte
}

// classify identifies the narrowest mode a single byte could participate
// in, ignoring Kanji (which requires looking at byte pairs and is handled
// separately in Segmentize).
func classify(c byte) decoder.Mode {
	if c >= '0' && c <= '9' {
		return decoder.ModeNumeric
	}
	if GetAlphanumericCode(int(c)) != -1 {
		return decoder.ModeAlphanumeric
	}
	return decoder.ModeByte
}

// isKanjiPair reports whether the big-endian 16-bit value b0<<8 | b1 falls
// in one of the two Shift-JIS double-byte ranges the QR standard reserves
// for Kanji mode.
func isKanjiPair(b0, b1 byte) bool {
	v := int(b0)<<8 | int(b1)
	return (v >= 0x8140 && v <= 0x9FFC) || (v >= 0xE040 && v <= 0xEBBF)
}

// Segmentize classifies, coalesces, and break-even-merges the input into an
// ordered list of segments. Classification scans for maximal aligned Kanji
// pairs first (since those bytes are otherwise indistinguishable from Byte
// mode), then coalesces runs of Numeric/Alphanumeric/Byte by class, then
// merges adjacent segments whenever the header bits saved by not
// re-emitting a mode indicator and CCI exceed the body bits lost by
// encoding the weaker segment's content in the stronger mode's rate.
func Segmentize(data []byte, version *decoder.Version) []Segment {
	raw := classifyRuns(data)
	merged := coalesce(raw)
	return smooth(merged, version)
}

// rawUnit is one input byte (or Kanji pair) tagged with its narrowest mode.
type rawUnit struct {
	mode  decoder.Mode
	bytes []byte
}

func classifyRuns(data []byte) []rawUnit {
	var units []rawUnit
	i := 0
	for i < len(data) {
		if i+1 < len(data) && isKanjiPair(data[i], data[i+1]) {
			units = append(units, rawUnit{mode: decoder.ModeKanji, bytes: data[i : i+2]})
			i += 2
			continue
		}
		units = append(units, rawUnit{mode: classify(data[i]), bytes: data[i : i+1]})
		i++
	}
	return units
}

func coalesce(units []rawUnit) []Segment {
	var segs []Segment
	for _, u := range units {
		if n := len(segs); n > 0 && segs[n-1].Mode == u.mode {
			segs[n-1].Payload = append(segs[n-1].Payload, u.bytes...)
			continue
		}
		segs = append(segs, Segment{Mode: u.mode, Payload: append([]byte{}, u.bytes...)})
	}
	return segs
}

// bitsPerChar gives each mode's asymptotic bits-per-character rate, used
// only to estimate break-even merge costs; actual emission always uses the
// exact group/pair/triple packing in appendSegmentBody.
func bitsPerChar(m decoder.Mode) float64 {
	switch m {
	case decoder.ModeNumeric:
		return 10.0 / 3.0
	case decoder.ModeAlphanumeric:
		return 11.0 / 2.0
	case decoder.ModeKanji:
		return 6.5 // 13 bits per 2-byte pair
	default:
		return 8.0
	}
}

func headerCost(m decoder.Mode, version *decoder.Version) int {
	return 4 + m.CharacterCountBits(version)
}

// smooth repeatedly merges the pair of adjacent segments with the greatest
// net bit savings, until no merge saves bits. A merge recasts both
// segments' content in the stronger (more general) of their two modes:
// Numeric < Alphanumeric < Byte by generality, matching the mode
// indicator ordinal order 0x1/0x2/0x4; a Kanji segment merged with a
// non-Kanji one becomes Byte (see mergedMode).
func smooth(segs []Segment, version *decoder.Version) []Segment {
	for {
		bestIdx := -1
		bestSavings := 0.0
		for i := 0; i+1 < len(segs); i++ {
			merged := mergedMode(segs[i].Mode, segs[i+1].Mode)
			n1, n2 := len(segs[i].Payload), len(segs[i+1].Payload)

			headerSaved := headerCost(segs[i].Mode, version) + headerCost(segs[i+1].Mode, version) - headerCost(merged, version)
			bodyBefore := float64(n1)*bitsPerChar(segs[i].Mode) + float64(n2)*bitsPerChar(segs[i+1].Mode)
			bodyAfter := float64(n1+n2) * bitsPerChar(merged)
			savings := float64(headerSaved) - (bodyAfter - bodyBefore)

			if savings > bestSavings {
				bestSavings = savings
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			return segs
		}
		merged := mergedMode(segs[bestIdx].Mode, segs[bestIdx+1].Mode)
		newPayload := append(append([]byte{}, segs[bestIdx].Payload...), segs[bestIdx+1].Payload...)
		segs = append(segs[:bestIdx], append([]Segment{{Mode: merged, Payload: newPayload}}, segs[bestIdx+2:]...)...)
	}
}

func modeOrdinal(m decoder.Mode) int {
	switch m {
	case decoder.ModeNumeric:
		return 0
	case decoder.ModeAlphanumeric:
		return 1
	case decoder.ModeByte:
		return 2
	case decoder.ModeKanji:
		return 3
	default:
		return 4
	}
}

// mergedMode picks the more general of two modes (Kanji content can't be
// folded into Numeric/Alphanumeric, but anything can be folded into Byte;
// Numeric folds into Alphanumeric, and either folds into Byte).
func mergedMode(a, b decoder.Mode) decoder.Mode {
	if a == b {
		return a
	}
	oa, ob := modeOrdinal(a), modeOrdinal(b)
	// Kanji cannot absorb Numeric/Alphanumeric content losslessly as those
	// digit/alphanumeric characters are not representable as Kanji pairs;
	// the merge falls back to Byte, the only mode both sides always fit.
	if (a == decoder.ModeKanji) != (b == decoder.ModeKanji) {
		return decoder.ModeByte
	}
	if oa > ob {
		return a
	}
	return b
}
