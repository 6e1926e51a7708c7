package qrcore

import (
	"fmt"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ShiftJISFromUTF8 converts UTF-8 text to its Shift-JIS byte encoding, for
// callers who have a Go string and want Kanji-mode-eligible input. Encode's
// segmenter (qrcode/encoder) still decides whether any given byte pair is
// actually double-byte-Shift-JIS-eligible; this only performs the charset
// conversion, not mode selection.
func ShiftJISFromUTF8(s string) ([]byte, error) {
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: Shift-JIS conversion failed: %v", ErrFormat, err)
	}
	return out, nil
}

// WithKanjiText sets Config.Data to the Shift-JIS encoding of s, for input
// that may contain Kanji characters the segmenter can place in Kanji mode.
func (c Config) WithKanjiText(s string) (Config, error) {
	data, err := ShiftJISFromUTF8(s)
	if err != nil {
		return c, err
	}
	c.Data = data
	return c, nil
}
