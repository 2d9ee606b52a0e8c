// Package activations provides scalar activation functions for the network.
package activations

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownActivation is returned by ByName for unsupported names.
var ErrUnknownActivation = errors.New("unknown activation")

// Activation is an activation function paired with its derivative.
//
// Derivative is expressed in terms of the neuron's output y = Activate(x),
// not the pre-activation sum. The forward trace only keeps outputs, so an
// activation can only be used here if its derivative can be recovered from
// its output. Replacing one means replacing both methods together.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Derivative computes f'(x) given y = f(x)
	Derivative(y float64) float64
}

// Sigmoid activation function.
type Sigmoid struct{}

// Activate computes 1 / (1 + e^-x)
func (s Sigmoid) Activate(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Derivative computes y * (1 - y), where y is a sigmoid output.
func (s Sigmoid) Derivative(y float64) float64 {
	return y * (1 - y)
}

// ReLU activation function.
type ReLU struct{}

// Activate computes max(0, x)
func (r ReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// Derivative returns 1 if y > 0, else 0. relu(x) > 0 exactly when x > 0.
func (r ReLU) Derivative(y float64) float64 {
	if y > 0 {
		return 1
	}
	return 0
}

// Name returns the registry name of a.
func Name(a Activation) string {
	switch a.(type) {
	case Sigmoid, *Sigmoid:
		return "sigmoid"
	case ReLU, *ReLU:
		return "relu"
	default:
		return fmt.Sprintf("%T", a)
	}
}

// ByName looks up an activation by its registry name.
func ByName(name string) (Activation, error) {
	switch name {
	case "sigmoid", "Sigmoid", "":
		return Sigmoid{}, nil
	case "relu", "ReLU":
		return ReLU{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownActivation, name)
	}
}
