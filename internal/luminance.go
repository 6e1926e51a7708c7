package internal

import "github.com/qrforge/qrcore/bitutil"

// LuminanceSource provides access to greyscale luminance values for an
// image. Defined here (rather than in the root package) so the binarizer
// package can depend on it without the root package having to import
// binarizer back, which would be a cycle.
type LuminanceSource interface {
	Row(y int, row []byte) []byte
	Matrix() []byte
	Width() int
	Height() int
}

// Binarizer converts luminance data to 1-bit black/white data.
type Binarizer interface {
	BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error)
	BlackMatrix() (*bitutil.BitMatrix, error)
	LuminanceSource() LuminanceSource
	Width() int
	Height() int
}
