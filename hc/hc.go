// Package hc implements the experimental high-capacity (HC) polychromatic
// mode: three independent QR symbols, one per RGB channel, multiplexed into
// a single raster for roughly three times the payload of a mono symbol.
package hc

import (
	"image"
	"image/color"

	qrcore "github.com/qrforge/qrcore"
	"github.com/qrforge/qrcore/binarizer"
	"github.com/qrforge/qrcore/qrcode/decoder"
	"github.com/qrforge/qrcore/qrcode/detector"
	"github.com/qrforge/qrcore/qrcode/encoder"
)

// sentinel is the reserved Byte-mode value that opens the R-channel
// plane's first segment, marking the raster as HC-encoded.
const sentinel = 0xFE

// Config is the HC builder's configuration record, mirroring qrcore.Config's
// chained-setter style. It is a separate type rather than a field on
// qrcore.Config because hc depends on qrcore (for RasterImage and the
// shared sentinel errors); qrcore embedding hc back would be an import
// cycle, so the two builders live side by side instead.
type Config struct {
	Data         []byte
	ECLevel      decoder.ErrorCorrectionLevel
	ForceECLevel bool
	Version      int
}

// DefaultConfig returns a Config with automatic version selection and
// error correction level M.
func DefaultConfig(data []byte) Config {
	return Config{Data: data, ECLevel: decoder.ECLevelM, Version: 0}
}

// WithECLevel pins the error correction level exactly across all three
// planes; Build fails with ErrCapacityExceeded rather than weakening it.
func (c Config) WithECLevel(ec decoder.ErrorCorrectionLevel) Config {
	c.ECLevel = ec
	c.ForceECLevel = true
	return c
}

// WithVersion pins the version exactly across all three planes.
func (c Config) WithVersion(version int) Config {
	c.Version = version
	return c
}

// Build encodes Config.Data as a three-plane HC Result.
func (c Config) Build() (*Result, error) {
	return Encode(c.Data, c.ECLevel, c.ForceECLevel, c.Version)
}

// Result holds the three independently-encoded channel planes that make up
// one HC symbol, all sharing the same version and EC level by construction.
type Result struct {
	Planes  [3]*encoder.QRCode // R, G, B
	Version int
	ECLevel decoder.ErrorCorrectionLevel
}

// Side returns the module width shared by all three planes.
func (r *Result) Side() int {
	return r.Planes[0].Matrix.Width
}

// Raster composes the three planes into one RGB image: a plane's dark
// module sets that channel's pixel to 0, a light module leaves it at 255,
// so a composed pixel can take any of eight colors.
func (r *Result) Raster(quietZone int) *image.RGBA {
	dim := r.Side()
	size := dim + quietZone*2
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
		}
	}
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			px := img.RGBAAt(x+quietZone, y+quietZone)
			if r.Planes[0].Matrix.Get(x, y) == 1 {
				px.R = 0
			}
			if r.Planes[1].Matrix.Get(x, y) == 1 {
				px.G = 0
			}
			if r.Planes[2].Matrix.Get(x, y) == 1 {
				px.B = 0
			}
			img.SetRGBA(x+quietZone, y+quietZone, px)
		}
	}
	return img
}

// rasterAdapter exposes an *image.RGBA as a qrcore.RasterImage, reading its
// 8-bit channels directly instead of through NewImageRaster's generic
// image.Image.At path.
type rasterAdapter struct{ img *image.RGBA }

func (a rasterAdapter) Width() int  { return a.img.Bounds().Dx() }
func (a rasterAdapter) Height() int { return a.img.Bounds().Dy() }
func (a rasterAdapter) Pixel(x, y int) (r, g, b byte) {
	b4 := a.img.Bounds()
	c := a.img.RGBAAt(b4.Min.X+x, b4.Min.Y+y)
	return c.R, c.G, c.B
}

// AsRasterImage adapts r's rendered raster to qrcore.RasterImage.
func (r *Result) AsRasterImage(quietZone int) qrcore.RasterImage {
	return rasterAdapter{img: r.Raster(quietZone)}
}

// splitThree divides data into three roughly-equal shares by byte count:
// the first two chunks get ⌈n/3⌉ bytes each, the third takes the remainder.
func splitThree(data []byte) [3][]byte {
	n := len(data)
	chunk := (n + 2) / 3
	var shares [3][]byte
	for i := 0; i < 3; i++ {
		start := i * chunk
		if start > n {
			start = n
		}
		end := start + chunk
		if end > n {
			end = n
		}
		shares[i] = data[start:end]
	}
	return shares
}

// Encode splits data into three shares and encodes each as an independent
// QR symbol at a common version and EC level, marking the R-channel plane
// with the HC sentinel. ecLevel is used only when forceEC is true; if
// forceEC is false, Encode tries H, Q, M, L in turn at each version and
// keeps the strongest level at which all three shares fit. qrVersion fixes the version for all three planes, or 0 to choose
// the smallest version that fits all three.
func Encode(data []byte, ecLevel decoder.ErrorCorrectionLevel, forceEC bool, qrVersion int) (*Result, error) {
	shares := splitThree(data)
	marked := shares[0]
	shares[0] = make([]byte, 0, len(marked)+1)
	shares[0] = append(shares[0], sentinel)
	shares[0] = append(shares[0], marked...)

	if qrVersion > 0 {
		planes, chosenEC, err := encodeAllAtVersion(shares, ecLevel, forceEC, qrVersion)
		if err != nil {
			return nil, err
		}
		return &Result{Planes: planes, Version: qrVersion, ECLevel: chosenEC}, nil
	}

	for v := 1; v <= 40; v++ {
		planes, chosenEC, err := encodeAllAtVersion(shares, ecLevel, forceEC, v)
		if err != nil {
			continue
		}
		return &Result{Planes: planes, Version: v, ECLevel: chosenEC}, nil
	}
	return nil, qrcore.ErrCapacityExceeded
}

// encodeAllAtVersion encodes all three shares at a fixed version, forcing a
// single EC level across all of them. If forceEC is false it searches from
// H down to L for the strongest level all three shares fit at that version.
func encodeAllAtVersion(shares [3][]byte, ecLevel decoder.ErrorCorrectionLevel, forceEC bool, version int) ([3]*encoder.QRCode, decoder.ErrorCorrectionLevel, error) {
	var codes [3]*encoder.QRCode

	if forceEC {
		for i, share := range shares {
			code, err := encoder.Encode(share, ecLevel, true, version, -1)
			if err != nil {
				return codes, 0, err
			}
			codes[i] = code
		}
		return codes, ecLevel, nil
	}

	for _, tryEC := range []decoder.ErrorCorrectionLevel{decoder.ECLevelH, decoder.ECLevelQ, decoder.ECLevelM, decoder.ECLevelL} {
		ok := true
		var tmp [3]*encoder.QRCode
		for i, share := range shares {
			code, err := encoder.Encode(share, tryEC, true, version, -1)
			if err != nil {
				ok = false
				break
			}
			tmp[i] = code
		}
		if ok {
			return tmp, tryEC, nil
		}
	}
	return codes, 0, qrcore.ErrCapacityExceeded
}

// planeDecode is one channel's independent decode attempt.
type planeDecode struct {
	version int
	ecLevel decoder.ErrorCorrectionLevel
	payload []byte
	ok      bool
}

// decodePlane isolates channel (0=R, 1=G, 2=B) of raster as its own
// grayscale plane and runs it through the standard detector/decoder
// pipeline, independent of the other two channels.
func decodePlane(raster qrcore.RasterImage, channel int) planeDecode {
	source := qrcore.NewChannelLuminanceSource(raster, channel)
	bitmap := qrcore.NewBinaryBitmap(binarizer.NewHybrid(source))
	matrix, err := bitmap.BlackMatrix()
	if err != nil {
		return planeDecode{}
	}

	bits, err := qrcore.ExtractPureBits(matrix)
	if err != nil {
		results, derr := detector.DetectMulti(matrix, false)
		if derr != nil || len(results) == 0 {
			return planeDecode{}
		}
		bits = results[0].Bits
	}

	result, err := decoder.NewDecoder().Decode(bits)
	if err != nil {
		return planeDecode{}
	}
	ec, err := qrcore.ECLevelForString(result.ECLevel)
	if err != nil {
		return planeDecode{}
	}
	return planeDecode{version: result.Version, ecLevel: ec, payload: result.Payload, ok: true}
}

// Decode splits raster into its three RGB planes, decodes each
// independently, and reconciles them per the HC marker convention: an
// R-channel plane that decodes must carry the leading sentinel byte, and at
// least two of the three planes must decode successfully and agree on
// (version, EC). The recovered payload is the concatenation, in R, G, B
// order, of the planes in the largest group that agrees on (version, EC),
// with the sentinel stripped from the R-channel share; a plane that decoded
// but is outside that group is left out.
func Decode(raster qrcore.RasterImage) ([]byte, error) {
	var planes [3]planeDecode
	for ch := 0; ch < 3; ch++ {
		planes[ch] = decodePlane(raster, ch)
	}

	if planes[0].ok {
		if len(planes[0].payload) == 0 || planes[0].payload[0] != sentinel {
			// The R-channel plane decoded but isn't HC-tagged: this isn't
			// an HC raster at all, not a corrupted one, so there is
			// nothing to recover regardless of how G and B fare.
			return nil, qrcore.ErrHcPlaneMismatch
		}
		planes[0].payload = planes[0].payload[1:]
	}

	type key struct {
		version int
		ecLevel decoder.ErrorCorrectionLevel
	}
	groups := map[key][]int{}
	for ch, p := range planes {
		if !p.ok {
			continue
		}
		k := key{p.version, p.ecLevel}
		groups[k] = append(groups[k], ch)
	}

	var agreeing []int
	for _, chans := range groups {
		if len(chans) > len(agreeing) {
			agreeing = chans
		}
	}
	if len(agreeing) < 2 {
		return nil, qrcore.ErrHcPlaneMismatch
	}

	agree := map[int]bool{}
	for _, ch := range agreeing {
		agree[ch] = true
	}

	var out []byte
	for ch := 0; ch < 3; ch++ {
		if agree[ch] {
			out = append(out, planes[ch].payload...)
		}
	}
	return out, nil
}
