// Package dataset holds labelled digit samples and the loaders that produce them.
package dataset

import "math/rand/v2"

// ImageSize is the side length of an MNIST digit in pixels.
const ImageSize = 28

// NumClasses is the number of digit classes.
const NumClasses = 10

// Sample is one labelled example. Features are expected to already be
// normalized to [0, 1], one per input neuron.
type Sample struct {
	Label    int
	Features []float64
}

// Dataset is an ordered collection of samples.
type Dataset []Sample

// Shuffled returns a random permutation of d. d itself is not reordered.
func (d Dataset) Shuffled(r *rand.Rand) Dataset {
	out := make(Dataset, len(d))
	copy(out, d)
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Split splits the dataset at the given ratio (0.0 to 1.0) into two views.
func (d Dataset) Split(ratio float64) (Dataset, Dataset) {
	if ratio <= 0 {
		return Dataset{}, d
	}
	if ratio >= 1 {
		return d, Dataset{}
	}
	idx := int(float64(len(d)) * ratio)
	return d[:idx], d[idx:]
}

// Limit returns at most n samples from the front of d. n <= 0 returns d.
func (d Dataset) Limit(n int) Dataset {
	if n <= 0 || n >= len(d) {
		return d
	}
	return d[:n]
}
