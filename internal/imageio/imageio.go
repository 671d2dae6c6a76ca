// Package imageio decodes and encodes images at the edges of the pipeline.
//
// PNG, JPEG, GIF, TIFF and BMP are handled by imaging; WebP decoding is
// registered from golang.org/x/image.
package imageio

import (
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/danielpatrickdp/pixelthreat/internal/faults"
	"github.com/danielpatrickdp/pixelthreat/internal/raster"
)

// Load decodes the image at path, applying EXIF orientation. Any failure is
// reported as KindLoadFailure.
func Load(path string) (*raster.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &faults.Error{Op: "imageio.load", Kind: faults.KindLoadFailure, Path: path, Err: err}
	}
	out := raster.FromImage(img)
	if out.Height == 0 || out.Width == 0 {
		return nil, &faults.Error{Op: "imageio.load", Kind: faults.KindLoadFailure, Path: path,
			Err: fmt.Errorf("decoded image is empty")}
	}
	return out, nil
}

// Decode reads an image from r. Failures are reported as KindLoadFailure.
func Decode(r io.Reader) (*raster.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &faults.Error{Op: "imageio.decode", Kind: faults.KindLoadFailure, Err: err}
	}
	return raster.FromImage(img), nil
}

// Save encodes img to path; the format follows the file extension.
func Save(path string, img *raster.Image) error {
	if err := imaging.Save(img.NRGBA(), path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
