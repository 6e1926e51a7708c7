package decoder

import "testing"

func TestModeForBits(t *testing.T) {
	cases := map[int]Mode{
		0x0: ModeTerminator,
		0x1: ModeNumeric,
		0x2: ModeAlphanumeric,
		0x4: ModeByte,
		0x8: ModeKanji,
	}
	for bits, want := range cases {
		got, err := ModeForBits(bits)
		if err != nil {
			t.Fatalf("ModeForBits(%#x) returned error: %v", bits, err)
		}
		if got != want {
			t.Errorf("ModeForBits(%#x) = %v, want %v", bits, got, want)
		}
	}
}

func TestModeForBitsRejectsUnknown(t *testing.T) {
	if _, err := ModeForBits(0x3); err == nil {
		t.Fatal("expected an error for an unsupported mode indicator")
	}
}

func TestCharacterCountBits(t *testing.T) {
	v1 := v(1)
	v10 := v(10)
	v27 := v(27)

	if got := ModeNumeric.CharacterCountBits(v1); got != 10 {
		t.Errorf("Numeric CCI width at V1 = %d, want 10", got)
	}
	if got := ModeAlphanumeric.CharacterCountBits(v10); got != 11 {
		t.Errorf("Alphanumeric CCI width at V10 = %d, want 11", got)
	}
	if got := ModeByte.CharacterCountBits(v27); got != 16 {
		t.Errorf("Byte CCI width at V27 = %d, want 16", got)
	}
	if got := ModeKanji.CharacterCountBits(v27); got != 12 {
		t.Errorf("Kanji CCI width at V27 = %d, want 12", got)
	}
}

func v(number int) *Version {
	version, err := GetVersionForNumber(number)
	if err != nil {
		panic(err)
	}
	return version
}
