package net

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/FlavioCFOliveira/digitnet/internal/activations"
)

// Save saves the network to a file using gob encoding.
func (n *Network) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := n.Encode(file); err != nil {
		return err
	}
	return file.Close()
}

// Load loads a network saved with Save.
func Load(filename string) (*Network, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Decode(file)
}

// Encode writes the layer sizes, activation name and flattened parameters
// to w using gob encoding.
func (n *Network) Encode(w io.Writer) error {
	encoder := gob.NewEncoder(w)

	if err := encoder.Encode(n.sizes); err != nil {
		return fmt.Errorf("failed to encode sizes: %w", err)
	}
	if err := encoder.Encode(activations.Name(n.act)); err != nil {
		return fmt.Errorf("failed to encode activation: %w", err)
	}
	if err := encoder.Encode(n.Params()); err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}
	return nil
}

// Decode reads a network written by Encode.
func Decode(r io.Reader) (*Network, error) {
	decoder := gob.NewDecoder(r)

	var sizes []int
	if err := decoder.Decode(&sizes); err != nil {
		return nil, fmt.Errorf("failed to read sizes: %w", err)
	}

	var actName string
	if err := decoder.Decode(&actName); err != nil {
		return nil, fmt.Errorf("failed to read activation: %w", err)
	}
	act, err := activations.ByName(actName)
	if err != nil {
		return nil, err
	}

	var params []float64
	if err := decoder.Decode(&params); err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}

	n, err := New(sizes, WithActivation(act))
	if err != nil {
		return nil, err
	}
	if err := n.SetParams(params); err != nil {
		return nil, err
	}
	return n, nil
}

// WriteJSON writes s as {"weights": ..., "biases": ...}.
func WriteJSON(w io.Writer, s State) error {
	if err := json.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return nil
}

// ReadJSON reads a state written by WriteJSON.
func ReadJSON(r io.Reader) (State, error) {
	var s State
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return State{}, fmt.Errorf("failed to decode state: %w", err)
	}
	return s, nil
}

// SaveJSON writes the network's current state to filename as JSON.
func (n *Network) SaveJSON(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := WriteJSON(file, n.State()); err != nil {
		return err
	}
	return file.Close()
}

// LoadJSON replaces the network's parameters with a JSON state file.
func (n *Network) LoadJSON(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	s, err := ReadJSON(file)
	if err != nil {
		return err
	}
	return n.LoadState(s)
}

// SaveFile saves the network as a JSON state file when filename ends in
// ".json", otherwise with gob encoding.
func (n *Network) SaveFile(filename string) error {
	if isJSON(filename) {
		return n.SaveJSON(filename)
	}
	return n.Save(filename)
}

// LoadFile replaces the network's parameters from a file written by SaveFile.
// Both formats are shape-checked against the network's layer sizes.
func (n *Network) LoadFile(filename string) error {
	if isJSON(filename) {
		return n.LoadJSON(filename)
	}
	other, err := Load(filename)
	if err != nil {
		return err
	}
	return n.LoadState(other.State())
}

func isJSON(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".json")
}
