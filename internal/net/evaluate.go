package net

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
)

// TestImage returns the predicted class for one input: the index of the
// highest output activation, lowest index on ties.
func (n *Network) TestImage(input []float64) int {
	return floats.MaxIdx(n.FeedForward(input))
}

// Test returns how many samples in data are classified correctly.
func (n *Network) Test(data dataset.Dataset) int {
	correct := 0
	for _, s := range data {
		if n.TestImage(s.Features) == s.Label {
			correct++
		}
	}
	return correct
}

// FormatTestResult renders an accuracy line such as "Accuracy: 9512 / 10000 (95.12%)".
func FormatTestResult(prefix string, correct, total int) string {
	pct := 0.0
	if total > 0 {
		pct = float64(correct) / float64(total) * 100
	}
	return fmt.Sprintf("%s%d / %d (%.2f%%)", prefix, correct, total, pct)
}
