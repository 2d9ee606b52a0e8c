package net

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// State is a snapshot of a network's parameters. Weights are indexed
// [connection layer][destination neuron][source neuron] and biases
// [connection layer][destination neuron]. The JSON form matches the
// network.json files written by the browser version of this model.
type State struct {
	Weights [][][]float64 `json:"weights"`
	Biases  [][]float64   `json:"biases"`
}

// State returns a deep copy of the current parameters.
func (n *Network) State() State {
	s := State{
		Weights: make([][][]float64, len(n.weights)),
		Biases:  make([][]float64, len(n.biases)),
	}
	for i, w := range n.weights {
		rows, _ := w.Dims()
		s.Weights[i] = make([][]float64, rows)
		for j := 0; j < rows; j++ {
			s.Weights[i][j] = mat.Row(nil, j, w)
		}
		s.Biases[i] = append([]float64(nil), n.biases[i].RawVector().Data...)
	}
	return s
}

// LoadState replaces every parameter with the values in s. If s does not
// match the network's layer sizes an error wrapping ErrShapeMismatch is
// returned and the network is left unchanged.
func (n *Network) LoadState(s State) error {
	if err := n.checkShape(s); err != nil {
		return err
	}

	weights := make([]*mat.Dense, len(s.Weights))
	biases := make([]*mat.VecDense, len(s.Biases))
	for i := range s.Weights {
		in, out := n.sizes[i], n.sizes[i+1]
		data := make([]float64, 0, in*out)
		for _, row := range s.Weights[i] {
			data = append(data, row...)
		}
		weights[i] = mat.NewDense(out, in, data)
		biases[i] = mat.NewVecDense(out, append([]float64(nil), s.Biases[i]...))
	}
	n.weights = weights
	n.biases = biases
	return nil
}

func (n *Network) checkShape(s State) error {
	layers := len(n.sizes) - 1
	if len(s.Weights) != layers {
		return fmt.Errorf("%w: %d weight layers, want %d", ErrShapeMismatch, len(s.Weights), layers)
	}
	if len(s.Biases) != layers {
		return fmt.Errorf("%w: %d bias layers, want %d", ErrShapeMismatch, len(s.Biases), layers)
	}
	for i := 0; i < layers; i++ {
		in, out := n.sizes[i], n.sizes[i+1]
		if len(s.Weights[i]) != out {
			return fmt.Errorf("%w: weights[%d] has %d rows, want %d", ErrShapeMismatch, i, len(s.Weights[i]), out)
		}
		for j, row := range s.Weights[i] {
			if len(row) != in {
				return fmt.Errorf("%w: weights[%d][%d] has %d columns, want %d", ErrShapeMismatch, i, j, len(row), in)
			}
		}
		if len(s.Biases[i]) != out {
			return fmt.Errorf("%w: biases[%d] has %d entries, want %d", ErrShapeMismatch, i, len(s.Biases[i]), out)
		}
	}
	return nil
}
