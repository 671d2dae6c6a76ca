// Package raster holds the RGB pixel buffer the perturbation stages operate on.
package raster

import (
	"image"
	"image/color"
)

// Channels is the number of colour channels per pixel.
const Channels = 3

// #region image

// Image is a Height×Width×3 array of 8-bit intensities stored row-major,
// channel-last. Values are always within [0,255] by construction.
type Image struct {
	Height int
	Width  int
	Pix    []uint8
}

// New returns a black image of the given size. Non-positive sizes yield an empty image.
func New(height, width int) *Image {
	if height < 0 {
		height = 0
	}
	if width < 0 {
		width = 0
	}
	return &Image{
		Height: height,
		Width:  width,
		Pix:    make([]uint8, height*width*Channels),
	}
}

// Fill returns an image of the given size with every pixel set to rgb.
func Fill(height, width int, rgb [3]uint8) *Image {
	img := New(height, width)
	for i := 0; i < len(img.Pix); i += Channels {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = rgb[0], rgb[1], rgb[2]
	}
	return img
}

// InBounds reports whether (x, y) addresses a pixel of img.
func (img *Image) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < img.Width && y < img.Height
}

// Offset returns the index of the first channel of (x, y) in Pix.
func (img *Image) Offset(x, y int) int {
	return (y*img.Width + x) * Channels
}

// At returns the channel values at (x, y). The caller must check bounds.
func (img *Image) At(x, y int) [3]uint8 {
	i := img.Offset(x, y)
	return [3]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2]}
}

// Set overwrites the channel values at (x, y). The caller must check bounds.
func (img *Image) Set(x, y int, rgb [3]uint8) {
	i := img.Offset(x, y)
	img.Pix[i], img.Pix[i+1], img.Pix[i+2] = rgb[0], rgb[1], rgb[2]
}

// Clone returns a deep copy backed by a fresh buffer.
func (img *Image) Clone() *Image {
	out := &Image{Height: img.Height, Width: img.Width, Pix: make([]uint8, len(img.Pix))}
	copy(out.Pix, img.Pix)
	return out
}

// Max returns the largest channel value in the image, or 0 for an empty image.
func (img *Image) Max() uint8 {
	var m uint8
	for _, v := range img.Pix {
		if v > m {
			m = v
		}
	}
	return m
}

// #endregion image

// #region conversion

// FromImage converts a decoded image to RGB. Alpha is dropped without
// premultiplication, matching an RGB conversion of the non-premultiplied colour.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	out := New(b.Dy(), b.Dx())
	if nrgba, ok := src.(*image.NRGBA); ok {
		for y := 0; y < out.Height; y++ {
			row := nrgba.Pix[(y)*nrgba.Stride:]
			for x := 0; x < out.Width; x++ {
				s := x * 4
				out.Set(x, y, [3]uint8{row[s], row[s+1], row[s+2]})
			}
		}
		return out
	}
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			out.Set(x, y, [3]uint8{c.R, c.G, c.B})
		}
	}
	return out
}

// NRGBA returns an opaque *image.NRGBA copy suitable for encoders.
func (img *Image) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			s := img.Offset(x, y)
			d := y*dst.Stride + x*4
			dst.Pix[d], dst.Pix[d+1], dst.Pix[d+2], dst.Pix[d+3] = img.Pix[s], img.Pix[s+1], img.Pix[s+2], 255
		}
	}
	return dst
}

// #endregion conversion
