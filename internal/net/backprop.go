package net

import (
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
)

// Backprop computes the error signal of every neuron for one forward trace
// and target vector. The result is ordered like the trace.
//
// Errors point in the direction that reduces the cost, so they are added to
// the parameters (see ApplyUpdate).
func (n *Network) Backprop(trace Trace, expected []float64) [][]float64 {
	last := len(trace) - 1
	errs := make([][]float64, len(trace))

	output := trace[last]
	outErr := make([]float64, len(output))
	for j, y := range output {
		outErr[j] = (expected[j] - y) * n.act.Derivative(y)
	}
	errs[last] = outErr

	for i := last - 1; i >= 0; i-- {
		next := errs[i+1]
		// Column j of the next layer's weights connects neuron j to every
		// neuron it feeds, so the weighted error sum is Wᵀ·err.
		sum := mat.NewVecDense(len(trace[i]), nil)
		sum.MulVec(n.weights[i+1].T(), mat.NewVecDense(len(next), next))

		hidden := sum.RawVector().Data
		for j, y := range trace[i] {
			hidden[j] *= n.act.Derivative(y)
		}
		errs[i] = hidden
	}
	return errs
}

// Accumulate adds one example's weight and bias contributions to g.
// input is the raw feature vector that produced trace.
func (n *Network) Accumulate(input []float64, errs [][]float64, trace Trace, g *Gradients) {
	for i := range n.weights {
		src := input
		if i > 0 {
			src = trace[i-1]
		}
		e := mat.NewVecDense(len(errs[i]), errs[i])

		// dW[j][k] += err[j] * src[k]
		g.Weights[i].RankOne(g.Weights[i], 1, e, mat.NewVecDense(len(src), src))
		g.Biases[i].AddVec(g.Biases[i], e)
	}
}

// TrainOneInput backpropagates a single sample and accumulates its
// contribution into g. The network's parameters are not modified.
func (n *Network) TrainOneInput(s dataset.Sample, g *Gradients) {
	trace := n.FeedForwardTrace(s.Features)
	expected := n.ExpectedResult(s.Label)
	errs := n.Backprop(trace, expected)
	n.Accumulate(s.Features, errs, trace, g)
}

// ExpectedResult returns the ideal output for a class label: a one-hot vector
// with a 1 at index label. Labels outside the output range give all zeros.
func (n *Network) ExpectedResult(label int) []float64 {
	expected := make([]float64, n.OutSize())
	if label >= 0 && label < len(expected) {
		expected[label] = 1
	}
	return expected
}

// CalculateCost returns the half squared error between result and expected.
func (n *Network) CalculateCost(result, expected []float64) float64 {
	return n.cost.Forward(result, expected)
}
