// Package net provides the fully connected network: its parameter store,
// forward and backward passes, gradient accumulation and evaluation.
package net

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/digitnet/internal/activations"
	"github.com/FlavioCFOliveira/digitnet/internal/loss"
)

var (
	// ErrInvalidSizes is returned by New for fewer than two layers or a
	// non-positive layer size.
	ErrInvalidSizes = errors.New("invalid layer sizes")
	// ErrShapeMismatch is returned when loaded parameters do not match the
	// configured layer sizes.
	ErrShapeMismatch = errors.New("parameter shape mismatch")
)

// Network is a fully connected feedforward network.
//
// weights[i] holds the connections from layer i to layer i+1 with one row
// per destination neuron and one column per source neuron. biases[i] holds
// one entry per neuron of layer i+1.
type Network struct {
	sizes   []int
	weights []*mat.Dense
	biases  []*mat.VecDense
	act     activations.Activation
	cost    loss.Loss
}

// Option configures a Network.
type Option func(*options)

type options struct {
	act activations.Activation
	rng *rand.Rand
}

// WithActivation sets the activation used by every layer. Defaults to Sigmoid.
func WithActivation(act activations.Activation) Option {
	return func(o *options) { o.act = act }
}

// WithRand sets the random source used for parameter initialization.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// New creates a network with one layer per entry of sizes. The first entry is
// the input layer and the last the output layer.
func New(sizes []int, opts ...Option) (*Network, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 layers, got %d", ErrInvalidSizes, len(sizes))
	}
	for i, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("%w: layer %d has size %d", ErrInvalidSizes, i, s)
		}
	}

	o := options{act: activations.Sigmoid{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	n := &Network{
		sizes: append([]int(nil), sizes...),
		act:   o.act,
		cost:  loss.HalfSquaredError{},
	}
	for i := 0; i < len(sizes)-1; i++ {
		in, out := sizes[i], sizes[i+1]

		w := make([]float64, out*in)
		for k := range w {
			w[k] = gaussianRand(o.rng)
		}
		b := make([]float64, out)
		for k := range b {
			b[k] = gaussianRand(o.rng)
		}

		n.weights = append(n.weights, mat.NewDense(out, in, w))
		n.biases = append(n.biases, mat.NewVecDense(out, b))
	}
	return n, nil
}

// gaussianRand approximates a standard normal draw with the rescaled mean of
// six uniform draws. The result lies in [-2.5, 2.5].
func gaussianRand(r *rand.Rand) float64 {
	var sum float64
	for i := 0; i < 6; i++ {
		sum += r.Float64()
	}
	return ((sum / 6) * 5) - 2.5
}

// Sizes returns a copy of the layer sizes.
func (n *Network) Sizes() []int {
	return append([]int(nil), n.sizes...)
}

// Layers returns the number of layers, input and output included.
func (n *Network) Layers() int {
	return len(n.sizes)
}

// InSize returns the number of input neurons.
func (n *Network) InSize() int {
	return n.sizes[0]
}

// OutSize returns the number of output neurons.
func (n *Network) OutSize() int {
	return n.sizes[len(n.sizes)-1]
}

// Activation returns the activation function used by every layer.
func (n *Network) Activation() activations.Activation {
	return n.act
}

// Weights returns the weight matrix of connection layer i.
// The matrix is shared with the network; callers must not modify it.
func (n *Network) Weights(i int) mat.Matrix {
	return n.weights[i]
}

// Biases returns the bias vector of connection layer i.
// The vector is shared with the network; callers must not modify it.
func (n *Network) Biases(i int) mat.Vector {
	return n.biases[i]
}

// Gradients holds per-batch sums of weight and bias deltas. It has the same
// shape as the network it was created from.
type Gradients struct {
	Weights []*mat.Dense
	Biases  []*mat.VecDense
}

// ZeroedLike returns zero-filled gradient buffers shaped like the network.
func (n *Network) ZeroedLike() *Gradients {
	g := &Gradients{
		Weights: make([]*mat.Dense, len(n.weights)),
		Biases:  make([]*mat.VecDense, len(n.biases)),
	}
	for i, w := range n.weights {
		r, c := w.Dims()
		g.Weights[i] = mat.NewDense(r, c, nil)
		g.Biases[i] = mat.NewVecDense(r, nil)
	}
	return g
}

// ApplyUpdate adds delta*scale to every weight and bias.
func (n *Network) ApplyUpdate(g *Gradients, scale float64) {
	for i := range n.weights {
		floats.AddScaled(n.weights[i].RawMatrix().Data, scale, g.Weights[i].RawMatrix().Data)
		floats.AddScaled(n.biases[i].RawVector().Data, scale, g.Biases[i].RawVector().Data)
	}
}

// NumParams returns the total number of weights and biases.
func (n *Network) NumParams() int {
	total := 0
	for i := 0; i < len(n.sizes)-1; i++ {
		total += n.sizes[i]*n.sizes[i+1] + n.sizes[i+1]
	}
	return total
}

// Params returns all network parameters flattened (copy).
// Each connection layer contributes its weights row by row, then its biases.
func (n *Network) Params() []float64 {
	params := make([]float64, 0, n.NumParams())
	for i := range n.weights {
		params = append(params, n.weights[i].RawMatrix().Data...)
		params = append(params, n.biases[i].RawVector().Data...)
	}
	return params
}

// SetParams overwrites all parameters from a slice laid out like Params.
func (n *Network) SetParams(params []float64) error {
	if len(params) != n.NumParams() {
		return fmt.Errorf("%w: got %d params, want %d", ErrShapeMismatch, len(params), n.NumParams())
	}
	offset := 0
	for i := range n.weights {
		w := n.weights[i].RawMatrix().Data
		offset += copy(w, params[offset:offset+len(w)])
		b := n.biases[i].RawVector().Data
		offset += copy(b, params[offset:offset+len(b)])
	}
	return nil
}
