package dataset

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrImageSize is returned by FromImage for images that are not 28x28.
var ErrImageSize = errors.New("image must be 28x28")

// FromImage converts a 28x28 image into input features. Each pixel becomes
// its gray luminance scaled to [0, 1], so light strokes on a dark background
// match the MNIST convention.
func FromImage(img image.Image) ([]float64, error) {
	b := img.Bounds()
	if b.Dx() != ImageSize || b.Dy() != ImageSize {
		return nil, fmt.Errorf("%w: got %dx%d", ErrImageSize, b.Dx(), b.Dy())
	}

	features := make([]float64, 0, ImageSize*ImageSize)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			features = append(features, float64(g.Y)/0xffff)
		}
	}
	return features, nil
}
