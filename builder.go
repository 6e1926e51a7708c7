package qrcore

import (
	"github.com/qrforge/qrcore/bitutil"
	"github.com/qrforge/qrcore/qrcode/decoder"
	"github.com/qrforge/qrcore/qrcode/encoder"
)

const defaultQuietZone = 4

// Config is the encoder's configuration record. Version 0 lets the builder
// pick the smallest version that fits; a Mask outside 0..7 (DefaultConfig
// uses -1) lets it pick the lowest-penalty mask, while Mask 0..7 fixes it.
type Config struct {
	Data         []byte
	ECLevel      decoder.ErrorCorrectionLevel
	ForceECLevel bool
	Version      int
	Mask         int
	QuietZone    int
}

// DefaultConfig returns a Config with automatic version and mask selection.
// ECLevel is set to M but not forced, so Build uses the strongest level
// that still fits at the chosen version.
func DefaultConfig(data []byte) Config {
	return Config{
		Data:      data,
		ECLevel:   decoder.ECLevelM,
		Version:   0,
		Mask:      -1,
		QuietZone: defaultQuietZone,
	}
}

// WithECLevel pins the error correction level exactly; Build fails with
// ErrCapacityExceeded rather than silently weakening it if the data does
// not fit.
func (c Config) WithECLevel(ec decoder.ErrorCorrectionLevel) Config {
	c.ECLevel = ec
	c.ForceECLevel = true
	return c
}

// WithVersion pins the symbol version exactly.
func (c Config) WithVersion(version int) Config {
	c.Version = version
	return c
}

// WithMask pins the data mask pattern exactly (0..7).
func (c Config) WithMask(mask int) Config {
	c.Mask = mask
	return c
}

// Metadata summarizes a built or decoded symbol.
type Metadata struct {
	Version     int
	ECLevel     decoder.ErrorCorrectionLevel
	Mask        int
	ModeSummary decoder.Mode
}

// Symbol is a finalized QR symbol: a square module matrix plus the
// metadata needed to interpret it.
type Symbol struct {
	code *encoder.QRCode
}

// Build assembles a Symbol from the configuration. If Version is 0 the
// builder chooses the smallest version whose segmented capacity fits the
// data, at ECLevel if ForceECLevel is true and at any level otherwise; if
// ForceECLevel is false it then uses the strongest level that still fits
// at the chosen version. Build returns ErrCapacityExceeded if no
// (version, EC) combination admits the data, or ErrInvalidConfig if a
// fixed Version and fixed ECLevel are jointly infeasible.
func (c Config) Build() (*Symbol, error) {
	code, err := encoder.Encode(c.Data, c.ECLevel, c.ForceECLevel, c.Version, c.Mask)
	if err != nil {
		if c.Version > 0 && c.ForceECLevel {
			return nil, ErrInvalidConfig
		}
		return nil, err
	}
	return &Symbol{code: code}, nil
}

// Side returns the symbol's side length in modules.
func (s *Symbol) Side() int {
	return s.code.Matrix.Width
}

// Module reports whether module (i, j) is dark. i is the column, j is
// the row, matching the builder operations' module(i, j) convention.
func (s *Symbol) Module(i, j int) bool {
	return s.code.Matrix.Get(i, j) == 1
}

// Metadata reports the version, error correction level, chosen mask, and
// the mode of the symbol's first segment.
func (s *Symbol) Metadata() Metadata {
	return Metadata{
		Version:     s.code.Version.Number,
		ECLevel:     s.code.ECLevel,
		Mask:        s.code.MaskPattern,
		ModeSummary: s.code.Mode,
	}
}

// Bits returns the symbol as a BitMatrix, without quiet zone padding.
func (s *Symbol) Bits() *bitutil.BitMatrix {
	return s.code.ToBitMatrix()
}

// Raster renders the symbol with a quiet zone of the given size, scaled to
// fit within width x height (the output is never smaller than the
// minimum size needed to show every module at scale 1), as a
// monochrome BitMatrix where set bits are dark. Use BitMatrixToImage to
// obtain an actual image.Image.
func (s *Symbol) Raster(width, height, quietZone int) *bitutil.BitMatrix {
	if quietZone < 0 {
		quietZone = defaultQuietZone
	}
	return encoder.RenderResult(s.code, width, height, quietZone)
}
