package net

import "gonum.org/v1/gonum/mat"

// Trace holds the activation vector of every non-input layer from one
// forward pass, input-adjacent layer first.
type Trace [][]float64

// Output returns the final layer's activations.
func (t Trace) Output() []float64 {
	return t[len(t)-1]
}

// FeedForward runs input through the network and returns the output layer.
func (n *Network) FeedForward(input []float64) []float64 {
	trace := n.feedForward(input, false)
	return trace[0]
}

// FeedForwardTrace runs input through the network and keeps every layer's
// output for backpropagation.
func (n *Network) FeedForwardTrace(input []float64) Trace {
	return n.feedForward(input, true)
}

func (n *Network) feedForward(input []float64, keepAllLayers bool) Trace {
	var trace Trace
	if keepAllLayers {
		trace = make(Trace, 0, len(n.weights))
	}

	curr := mat.NewVecDense(len(input), input)
	for i, w := range n.weights {
		rows, _ := w.Dims()
		next := mat.NewVecDense(rows, nil)
		// z = W·a + b
		next.MulVec(w, curr)
		next.AddVec(next, n.biases[i])

		out := next.RawVector().Data
		for j, z := range out {
			out[j] = n.act.Activate(z)
		}
		if keepAllLayers {
			trace = append(trace, out)
		}
		curr = next
	}

	if !keepAllLayers {
		return Trace{curr.RawVector().Data}
	}
	return trace
}
