package qrcore

import (
	"errors"

	"github.com/qrforge/qrcore/internal"
)

// Sentinel errors returned by the encoder, decoder, detector, and hc
// packages. Callers should use errors.Is against these; wrapped context is
// attached with fmt.Errorf("%w: ...", ErrX). Most are defined in package
// internal and aliased here: the encoder/decoder/detector/binarizer
// packages that return them are dependencies of this package, so the
// sentinels have to live somewhere this package depends on, not the other
// way around.
var (
	// ErrNotFound is returned when a binarizer cannot find enough contrast
	// to threshold an image at all.
	ErrNotFound = internal.ErrNotFound

	// ErrChecksum is returned when a barcode's checksum does not match.
	ErrChecksum = errors.New("qrcore: checksum error")

	// ErrFormat is returned when a barcode cannot be decoded due to format issues.
	ErrFormat = internal.ErrFormat

	// ErrWriter is returned when a barcode cannot be encoded.
	ErrWriter = internal.ErrWriter

	// ErrCapacityExceeded is returned when encode input does not fit any
	// (version, EC level) combination allowed by the configuration.
	ErrCapacityExceeded = internal.ErrCapacityExceeded

	// ErrInvalidConfig is returned when a fixed version, fixed EC level, and
	// the input data are mutually incompatible.
	ErrInvalidConfig = errors.New("qrcore: invalid builder configuration")

	// ErrKanjiOutOfRange is returned when Kanji mode is forced on a byte
	// pair outside the Shift-JIS double-byte ranges.
	ErrKanjiOutOfRange = internal.ErrKanjiOutOfRange

	// ErrNoFinders is returned when fewer than three finder triplets are
	// located in the image.
	ErrNoFinders = internal.ErrNoFinders

	// ErrGeometryAmbiguous is returned when no finder triplet passes the
	// isoceles-right-triangle verification.
	ErrGeometryAmbiguous = internal.ErrGeometryAmbiguous

	// ErrFormatUnrecoverable is returned when both format-info copies exceed
	// BCH distance 3 from every valid codeword.
	ErrFormatUnrecoverable = internal.ErrFormatUnrecoverable

	// ErrVersionUnrecoverable is returned when both version-info copies
	// exceed BCH distance 3 and the geometric version estimate disagrees.
	ErrVersionUnrecoverable = internal.ErrVersionUnrecoverable

	// ErrEcUncorrectable is returned when Reed-Solomon decoding fails for
	// at least one block.
	ErrEcUncorrectable = internal.ErrEcUncorrectable

	// ErrSegmentMalformed is returned when a mode indicator or character
	// count indicator yields an impossible segment length.
	ErrSegmentMalformed = internal.ErrSegmentMalformed

	// ErrHcPlaneMismatch is returned when fewer than two high-capacity
	// planes agree on version/EC, or fewer than two decode successfully.
	ErrHcPlaneMismatch = errors.New("qrcore: high-capacity planes disagree or fail to decode")
)
