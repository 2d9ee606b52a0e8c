// Package digitnet is the public entry point to the digit classifier: a
// fully connected network trained with mini-batch gradient descent.
package digitnet

import (
	"math/rand/v2"

	"github.com/FlavioCFOliveira/digitnet/internal/activations"
	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
	"github.com/FlavioCFOliveira/digitnet/internal/net"
	"github.com/FlavioCFOliveira/digitnet/internal/trainer"
)

// Re-export common types and functions for easier access
type (
	Network    = net.Network
	State      = net.State
	Activation = activations.Activation
	Sample     = dataset.Sample
	Dataset    = dataset.Dataset
	Trainer    = trainer.Trainer
	Config     = trainer.Config
	Callback   = trainer.Callback
	Evaluation = trainer.Evaluation
)

// Errors
var (
	ErrInvalidSizes      = net.ErrInvalidSizes
	ErrShapeMismatch     = net.ErrShapeMismatch
	ErrInvalidConfig     = trainer.ErrInvalidConfig
	ErrUnknownActivation = activations.ErrUnknownActivation
)

// Activations
var (
	Sigmoid = activations.Sigmoid{}
	ReLU    = activations.ReLU{}
)

// Network creation
func NewNetwork(sizes []int, act Activation, seed uint64) (*Network, error) {
	return net.New(sizes, net.WithActivation(act), net.WithRand(rand.New(rand.NewPCG(seed, seed))))
}

// Training
func NewTrainer(n *Network, seed uint64, callbacks ...Callback) *Trainer {
	return trainer.New(n,
		trainer.WithRand(rand.New(rand.NewPCG(seed, seed))),
		trainer.WithCallbacks(callbacks...),
	)
}

func DefaultConfig() Config {
	return trainer.DefaultConfig()
}

// Callbacks
func Logger(progressEvery float64) Callback {
	return trainer.NewLogger(progressEvery)
}

func CSVLogger(filename string) Callback {
	return trainer.NewCSVLogger(filename, false)
}

func ModelCheckpoint(filename string) Callback {
	return trainer.NewModelCheckpoint(filename)
}

// Datasets
func LoadIDX(images, labels string) (Dataset, error) {
	return dataset.LoadIDX(images, labels)
}

func LoadCSV(filename string, hasHeader bool) (Dataset, error) {
	return dataset.LoadCSV(filename, hasHeader)
}

// Model Persistence
func Load(filename string) (*Network, error) {
	return net.Load(filename)
}

func LoadJSON(sizes []int, act Activation, filename string) (*Network, error) {
	n, err := NewNetwork(sizes, act, 0)
	if err != nil {
		return nil, err
	}
	if err := n.LoadJSON(filename); err != nil {
		return nil, err
	}
	return n, nil
}

// Evaluation
func FormatTestResult(prefix string, correct, total int) string {
	return net.FormatTestResult(prefix, correct, total)
}
