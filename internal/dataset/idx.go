package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	imagesMagic = 2051
	labelsMagic = 2049
)

var (
	// ErrBadMagic is returned when an IDX header has an unexpected magic number.
	ErrBadMagic = errors.New("invalid IDX magic number")
	// ErrCountMismatch is returned when image and label files disagree on length.
	ErrCountMismatch = errors.New("image and label counts differ")
)

// LoadIDX reads an MNIST image file and its label file. Either file may be
// gzip compressed. Pixel bytes are scaled to [0, 1].
func LoadIDX(imagesPath, labelsPath string) (Dataset, error) {
	images, err := readIDXFile(imagesPath, ReadImages)
	if err != nil {
		return nil, err
	}
	labels, err := readIDXFile(labelsPath, ReadLabels)
	if err != nil {
		return nil, err
	}
	return Zip(images, labels)
}

// Zip pairs feature vectors with labels.
func Zip(images [][]float64, labels []int) (Dataset, error) {
	if len(images) != len(labels) {
		return nil, fmt.Errorf("%w: %d images, %d labels", ErrCountMismatch, len(images), len(labels))
	}
	data := make(Dataset, len(images))
	for i := range images {
		data[i] = Sample{Label: labels[i], Features: images[i]}
	}
	return data, nil
}

func readIDXFile[T any](filename string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	file, err := os.Open(filename)
	if err != nil {
		return zero, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	r, err := maybeGunzip(bufio.NewReader(file))
	if err != nil {
		return zero, fmt.Errorf("%s: %w", filename, err)
	}
	v, err := read(r)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", filename, err)
	}
	return v, nil
}

// maybeGunzip wraps r in a gzip reader when the stream starts with the gzip magic.
func maybeGunzip(r *bufio.Reader) (io.Reader, error) {
	head, err := r.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(head) == 2 && head[0] == 0x1f && head[1] == 0x8b {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return gz, nil
	}
	return r, nil
}

// ReadImages decodes an IDX3 image stream.
func ReadImages(r io.Reader) ([][]float64, error) {
	var header struct {
		Magic, Count, Rows, Cols int32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("read image header: %w", err)
	}
	if header.Magic != imagesMagic {
		return nil, fmt.Errorf("%w: %d", ErrBadMagic, header.Magic)
	}

	pixelCount := int(header.Rows * header.Cols)
	images := make([][]float64, header.Count)
	pixels := make([]byte, pixelCount)
	for i := range images {
		if _, err := io.ReadFull(r, pixels); err != nil {
			return nil, fmt.Errorf("read image %d: %w", i, err)
		}
		features := make([]float64, pixelCount)
		for j, p := range pixels {
			features[j] = float64(p) / 255
		}
		images[i] = features
	}
	return images, nil
}

// ReadLabels decodes an IDX1 label stream.
func ReadLabels(r io.Reader) ([]int, error) {
	var header struct {
		Magic, Count int32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("read label header: %w", err)
	}
	if header.Magic != labelsMagic {
		return nil, fmt.Errorf("%w: %d", ErrBadMagic, header.Magic)
	}

	raw := make([]byte, header.Count)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	labels := make([]int, len(raw))
	for i, b := range raw {
		labels[i] = int(b)
	}
	return labels, nil
}
