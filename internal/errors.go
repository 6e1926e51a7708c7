package internal

import "errors"

// Sentinel errors shared between the qrcode/encoder, qrcode/decoder,
// qrcode/detector, and binarizer packages and the root package, which
// re-exports each of these as a package-level var so callers only ever
// see qrcore.ErrX. Defined here rather than in the root package because
// the root package imports these leaf packages; defining the sentinels
// in the leaves' own dependency (this package) instead of the other way
// around avoids an import cycle.
var (
	ErrNotFound           = errors.New("qrcore: barcode not found")
	ErrFormat             = errors.New("qrcore: format error")
	ErrWriter             = errors.New("qrcore: writer error")
	ErrCapacityExceeded   = errors.New("qrcore: data exceeds capacity for any version/EC combination")
	ErrKanjiOutOfRange    = errors.New("qrcore: byte pair outside Shift-JIS double-byte range")
	ErrNoFinders          = errors.New("qrcore: fewer than three finder patterns located")
	ErrGeometryAmbiguous  = errors.New("qrcore: no finder triplet passed geometry verification")
	ErrFormatUnrecoverable = errors.New("qrcore: format information unrecoverable")
	ErrVersionUnrecoverable = errors.New("qrcore: version information unrecoverable")
	ErrEcUncorrectable    = errors.New("qrcore: error correction decode failed")
	ErrSegmentMalformed   = errors.New("qrcore: malformed segment in bit stream")
)
