package net

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
)

// fixtureState is a hand-picked 4-3-2 network used as a regression fixture.
var fixtureState = State{
	Weights: [][][]float64{
		{
			{0.1, 0.2, 0.3, 0.4},
			{-0.5, 0.6, -0.7, 0.8},
			{0.9, -1.0, 0.2, -0.3},
		},
		{
			{0.5, -0.4, 0.3},
			{-0.2, 0.1, 0.6},
		},
	},
	Biases: [][]float64{
		{0.1, -0.2, 0.3},
		{0.05, -0.05},
	},
}

var fixtureInput = []float64{1, 0, 1, 0}

// Hand-computed activations for fixtureInput.
var (
	fixtureHidden = []float64{0.6224593312018546, 0.19781611144141825, 0.8021838885585818}
	fixtureOutput = []float64{0.6277925430411625, 0.5809318942325049}
)

// Hand-computed errors for target [1, 0].
var (
	fixtureOutputErr = []float64{0.08697336880461796, -0.1414278862051029}
	fixtureHiddenErr = []float64{0.016866747919286558, -0.0077647910079914565, -0.009325073741204195}
	fixtureCost      = 0.23801012837616556
)

func fixtureNetwork(t *testing.T) *Network {
	t.Helper()
	n, err := New([]int{4, 3, 2})
	require.NoError(t, err)
	require.NoError(t, n.LoadState(fixtureState))
	return n
}

func sampleFor(label int) dataset.Sample {
	return dataset.Sample{Label: label, Features: append([]float64(nil), fixtureInput...)}
}
