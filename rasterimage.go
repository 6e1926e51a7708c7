package qrcore

import "image"

// RasterImage is the common raster abstraction used at both ends of the
// core: a 2-D array of RGB8 pixels with width, height, and per-pixel
// access. Detect accepts any RasterImage; ImageRaster adapts a standard
// image.Image so callers rarely need to implement it themselves.
type RasterImage interface {
	Width() int
	Height() int
	Pixel(x, y int) (r, g, b byte)
}

// ImageRaster adapts a Go image.Image to RasterImage.
type ImageRaster struct {
	img image.Image
}

// NewImageRaster wraps img as a RasterImage.
func NewImageRaster(img image.Image) ImageRaster {
	return ImageRaster{img: img}
}

// Width returns the image width in pixels.
func (r ImageRaster) Width() int {
	return r.img.Bounds().Dx()
}

// Height returns the image height in pixels.
func (r ImageRaster) Height() int {
	return r.img.Bounds().Dy()
}

// Pixel returns the 8-bit RGB components of pixel (x, y).
func (r ImageRaster) Pixel(x, y int) (r8, g8, b8 byte) {
	b := r.img.Bounds()
	cr, cg, cb, _ := r.img.At(b.Min.X+x, b.Min.Y+y).RGBA()
	return byte(cr >> 8), byte(cg >> 8), byte(cb >> 8)
}

// rasterLuminanceSource converts a RasterImage to greyscale luminance using
// the same weighting as ImageLuminanceSource, for the ordinary (non-HC)
// detection path.
type rasterLuminanceSource struct {
	raster RasterImage
}

// NewRasterLuminanceSource returns a LuminanceSource over raster's greyscale
// luminance, computed per pixel with the same weights as
// NewImageLuminanceSource.
func NewRasterLuminanceSource(raster RasterImage) LuminanceSource {
	return &rasterLuminanceSource{raster: raster}
}

func (s *rasterLuminanceSource) Row(y int, row []byte) []byte {
	w := s.raster.Width()
	if row == nil || len(row) < w {
		row = make([]byte, w)
	}
	for x := 0; x < w; x++ {
		row[x] = s.luminance(x, y)
	}
	return row
}

func (s *rasterLuminanceSource) Matrix() []byte {
	w, h := s.raster.Width(), s.raster.Height()
	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = s.luminance(x, y)
		}
	}
	return out
}

func (s *rasterLuminanceSource) luminance(x, y int) byte {
	r, g, b := s.raster.Pixel(x, y)
	return byte((306*int(r) + 601*int(g) + 117*int(b) + 0x200) >> 10)
}

func (s *rasterLuminanceSource) Width() int  { return s.raster.Width() }
func (s *rasterLuminanceSource) Height() int { return s.raster.Height() }

// channelLuminanceSource reads a single RGB channel of a RasterImage as a
// LuminanceSource, treating a high channel value (0xFF) as white and a low
// value (0x00) as black like ordinary greyscale luminance. Used to split an
// HC raster into its three independent planes.
type channelLuminanceSource struct {
	raster  RasterImage
	channel int // 0=R, 1=G, 2=B
}

// NewChannelLuminanceSource returns a LuminanceSource over a single RGB
// channel (0=R, 1=G, 2=B) of raster.
func NewChannelLuminanceSource(raster RasterImage, channel int) LuminanceSource {
	return &channelLuminanceSource{raster: raster, channel: channel}
}

func (c *channelLuminanceSource) Row(y int, row []byte) []byte {
	w := c.raster.Width()
	if row == nil || len(row) < w {
		row = make([]byte, w)
	}
	for x := 0; x < w; x++ {
		row[x] = c.pixelChannel(x, y)
	}
	return row
}

func (c *channelLuminanceSource) Matrix() []byte {
	w, h := c.raster.Width(), c.raster.Height()
	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = c.pixelChannel(x, y)
		}
	}
	return out
}

func (c *channelLuminanceSource) pixelChannel(x, y int) byte {
	r, g, b := c.raster.Pixel(x, y)
	switch c.channel {
	case 0:
		return r
	case 1:
		return g
	default:
		return b
	}
}

func (c *channelLuminanceSource) Width() int  { return c.raster.Width() }
func (c *channelLuminanceSource) Height() int { return c.raster.Height() }
