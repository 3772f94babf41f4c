package ioutils

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// FitJPEG re-encodes an image as JPEG, scaling it down to fit within
// maxSize×maxSize when it is larger. Aspect ratio is preserved; images
// already within bounds are only re-encoded.
//
// Used for drama cover images, which some CDNs serve at wasteful
// resolutions.
func FitJPEG(data []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width > maxSize || height > maxSize {
		ratio := float64(width) / float64(height)
		if ratio > 1 {
			width, height = maxSize, int(float64(maxSize)/ratio)
		} else {
			width, height = int(float64(maxSize)*ratio), maxSize
		}

		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
