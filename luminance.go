package qrcore

import "github.com/qrforge/qrcore/internal"

// LuminanceSource provides access to greyscale luminance values for an
// image. Aliased from package internal, which the binarizer package also
// depends on directly — see errors.go's doc comment for why the shared
// type lives there instead of here.
type LuminanceSource = internal.LuminanceSource

// Binarizer converts luminance data to 1-bit black/white data.
type Binarizer = internal.Binarizer
