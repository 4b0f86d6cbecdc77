package ai

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"kcald/internal/structures"
)

// ImageNormalizer downsamples an uploaded photo and re-encodes it as
// JPEG under a byte budget before it goes over the wire to the model.
type ImageNormalizer struct {
	maxDim   int
	maxBytes int
}

func NewImageNormalizer(conf *structures.Config) *ImageNormalizer {
	return &ImageNormalizer{
		maxDim:   conf.Ai.MaxImageDim,
		maxBytes: conf.Ai.MaxImageBytes,
	}
}

func (n *ImageNormalizer) Normalize(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to decode image: %w", err)
	}

	img := scaleDown(src, n.maxDim)

	// Step quality down first, then dimensions, until the budget fits.
	for {
		for q := 85; q >= 40; q -= 15 {
			var buf bytes.Buffer
			if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
				return nil, fmt.Errorf("unable to encode image: %w", err)
			}
			if buf.Len() <= n.maxBytes {
				return buf.Bytes(), nil
			}
		}
		bounds := img.Bounds()
		if bounds.Dx() <= 64 || bounds.Dy() <= 64 {
			return nil, fmt.Errorf("image does not fit %d bytes even at minimum size", n.maxBytes)
		}
		img = scaleDown(img, max(bounds.Dx(), bounds.Dy())/2)
	}
}

// scaleDown resizes so the longer side is at most maxDim, preserving
// aspect ratio. Images already within bounds pass through untouched.
func scaleDown(src image.Image, maxDim int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	if w >= h {
		h = h * maxDim / w
		w = maxDim
	} else {
		w = w * maxDim / h
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
