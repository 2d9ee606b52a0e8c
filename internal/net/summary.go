package net

import (
	"fmt"
	"io"

	"github.com/FlavioCFOliveira/digitnet/internal/activations"
)

// Summary prints a summary of the network architecture.
func (n *Network) Summary(w io.Writer) {
	fmt.Fprintln(w, "Model: Feedforward")
	fmt.Fprintln(w, "_________________________________________________________________")
	fmt.Fprintf(w, "%-25s %-20s %-10s\n", "Layer (type)", "Output Shape", "Param #")
	fmt.Fprintln(w, "=================================================================")

	fmt.Fprintf(w, "%-25s %-20s %-10d\n", "input_0", fmt.Sprintf("(%d)", n.sizes[0]), 0)
	act := activations.Name(n.act)
	for i := 1; i < len(n.sizes); i++ {
		params := n.sizes[i-1]*n.sizes[i] + n.sizes[i]
		name := fmt.Sprintf("dense_%s_%d", act, i)
		fmt.Fprintf(w, "%-25s %-20s %-10d\n", name, fmt.Sprintf("(%d)", n.sizes[i]), params)
	}
	fmt.Fprintln(w, "=================================================================")
	fmt.Fprintf(w, "Total params: %d\n", n.NumParams())
	fmt.Fprintln(w, "_________________________________________________________________")
}
