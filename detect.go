package qrcore

import (
	"image"
	"math"

	"github.com/qrforge/qrcore/binarizer"
	"github.com/qrforge/qrcore/bitutil"
	"github.com/qrforge/qrcore/qrcode/decoder"
	"github.com/qrforge/qrcore/qrcode/detector"
)

// DetectionResult holds every QR symbol localized in one image.
type DetectionResult struct {
	Symbols []*PartialSymbol
}

// PartialSymbol is a localized but not-yet-decoded symbol: its sampled bit
// matrix and corner points are known, but error correction and segment
// parsing have not run.
type PartialSymbol struct {
	bits   *bitutil.BitMatrix
	points []ResultPoint
	dec    *decoder.Decoder
}

// Points returns the symbol's corner points in image coordinates: bottom-
// left, top-left, top-right, and (if found) the alignment pattern center.
func (p *PartialSymbol) Points() []ResultPoint {
	return p.points
}

// Decode runs error correction and segment parsing on the localized
// symbol, returning its metadata and raw payload bytes.
func (p *PartialSymbol) Decode() (Metadata, []byte, error) {
	result, err := p.dec.Decode(p.bits)
	if err != nil {
		return Metadata{}, nil, err
	}
	meta := Metadata{Version: result.Version, Mask: result.DataMask}
	if ec, eerr := ecLevelForString(result.ECLevel); eerr == nil {
		meta.ECLevel = ec
	}
	if len(result.ByteSegments) > 0 {
		meta.ModeSummary = decoder.ModeByte
	}
	return meta, result.Payload, nil
}

// ECLevelForString maps a decoded format-information EC letter ("L", "M",
// "Q", "H") to its ErrorCorrectionLevel constant. Exported for the hc
// package, which needs it to compare per-plane EC levels for agreement.
func ECLevelForString(s string) (decoder.ErrorCorrectionLevel, error) {
	return ecLevelForString(s)
}

func ecLevelForString(s string) (decoder.ErrorCorrectionLevel, error) {
	switch s {
	case "L":
		return decoder.ECLevelL, nil
	case "M":
		return decoder.ECLevelM, nil
	case "Q":
		return decoder.ECLevelQ, nil
	case "H":
		return decoder.ECLevelH, nil
	}
	return 0, ErrFormat
}

// Detect locates every QR symbol in image and returns their sampled bit
// matrices without decoding them. Use DetectionResult.Symbols[i].Decode to
// run error correction and segment parsing on each.
func Detect(raster RasterImage) (*DetectionResult, error) {
	return detectFromLuminance(NewRasterLuminanceSource(raster))
}

func detectFromLuminance(source LuminanceSource) (*DetectionResult, error) {
	bitmap := NewBinaryBitmap(binarizer.NewHybrid(source))
	matrix, err := bitmap.BlackMatrix()
	if err != nil {
		return nil, err
	}

	results, err := detector.DetectMulti(matrix, false)
	if err != nil {
		if bits, perr := extractPureBits(matrix); perr == nil {
			return &DetectionResult{Symbols: []*PartialSymbol{
				{bits: bits, points: nil, dec: decoder.NewDecoder()},
			}}, nil
		}
		return nil, err
	}

	symbols := make([]*PartialSymbol, 0, len(results))
	for _, r := range results {
		points := make([]ResultPoint, len(r.Points))
		for i, p := range r.Points {
			points[i] = ResultPoint{X: p.X, Y: p.Y}
		}
		symbols = append(symbols, &PartialSymbol{bits: r.Bits, points: points, dec: decoder.NewDecoder()})
	}
	return &DetectionResult{Symbols: symbols}, nil
}

// DetectImage is Detect for callers who already have a decoded stdlib
// image.Image (e.g. from image.Decode on a PNG/JPEG file) rather than a
// RasterImage; no file format is specified here, decoding compressed
// image bytes is the caller's responsibility.
func DetectImage(img image.Image) (*DetectionResult, error) {
	return detectFromLuminance(NewImageLuminanceSource(img))
}

// ExtractPureBits extracts a QR code from a "pure" image — one that
// contains only the unrotated, unskewed barcode with some white border.
// It is exported for the hc package, which detects each of its three
// planes independently rather than through Detect's multi-symbol path.
func ExtractPureBits(image *bitutil.BitMatrix) (*bitutil.BitMatrix, error) {
	return extractPureBits(image)
}

func extractPureBits(image *bitutil.BitMatrix) (*bitutil.BitMatrix, error) {
	leftTopBlack := image.TopLeftOnBit()
	rightBottomBlack := image.BottomRightOnBit()
	if leftTopBlack == nil || rightBottomBlack == nil {
		return nil, ErrNoFinders
	}

	moduleSize, err := moduleSizePure(leftTopBlack, image)
	if err != nil {
		return nil, err
	}

	top := leftTopBlack[1]
	bottom := rightBottomBlack[1]
	left := leftTopBlack[0]
	right := rightBottomBlack[0]

	if left >= right || top >= bottom {
		return nil, ErrNoFinders
	}

	if bottom-top != right-left {
		right = left + (bottom - top)
		if right >= image.Width() {
			return nil, ErrGeometryAmbiguous
		}
	}

	matrixWidth := int(math.Round(float64(right-left+1) / moduleSize))
	matrixHeight := int(math.Round(float64(bottom-top+1) / moduleSize))
	if matrixWidth <= 0 || matrixHeight <= 0 {
		return nil, ErrGeometryAmbiguous
	}
	if matrixHeight != matrixWidth {
		return nil, ErrGeometryAmbiguous
	}

	nudge := int(moduleSize / 2.0)
	top += nudge
	left += nudge

	nudgedTooFarRight := left + int(float64(matrixWidth-1)*moduleSize) - right
	if nudgedTooFarRight > 0 {
		if nudgedTooFarRight > nudge {
			return nil, ErrGeometryAmbiguous
		}
		left -= nudgedTooFarRight
	}
	nudgedTooFarDown := top + int(float64(matrixHeight-1)*moduleSize) - bottom
	if nudgedTooFarDown > 0 {
		if nudgedTooFarDown > nudge {
			return nil, ErrGeometryAmbiguous
		}
		top -= nudgedTooFarDown
	}

	bits := bitutil.NewBitMatrix(matrixWidth)
	for y := 0; y < matrixHeight; y++ {
		iOffset := top + int(float64(y)*moduleSize)
		for x := 0; x < matrixWidth; x++ {
			if image.Get(left+int(float64(x)*moduleSize), iOffset) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

func moduleSizePure(leftTopBlack []int, image *bitutil.BitMatrix) (float64, error) {
	height := image.Height()
	width := image.Width()
	x := leftTopBlack[0]
	y := leftTopBlack[1]
	inBlack := true
	transitions := 0
	for x < width && y < height {
		if inBlack != image.Get(x, y) {
			transitions++
			if transitions == 5 {
				break
			}
			inBlack = !inBlack
		}
		x++
		y++
	}
	if x == width || y == height {
		return 0, ErrNoFinders
	}
	return float64(x-leftTopBlack[0]) / 7.0, nil
}
