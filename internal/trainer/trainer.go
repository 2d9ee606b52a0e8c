// Package trainer runs mini-batch stochastic gradient descent over a network.
package trainer

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
	"github.com/FlavioCFOliveira/digitnet/internal/net"
)

// ErrInvalidConfig is returned by Train for unusable hyperparameters.
var ErrInvalidConfig = errors.New("invalid training config")

// Config holds the hyperparameters of one training run.
type Config struct {
	LearningRate float64
	Epochs       int
	BatchSize    int
	// TestData is evaluated after every epoch when non-nil.
	TestData dataset.Dataset
}

// DefaultConfig returns learning rate 3, 10 epochs and batches of 10.
func DefaultConfig() Config {
	return Config{LearningRate: 3, Epochs: 10, BatchSize: 10}
}

// Validate verifies the config is runnable.
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be > 0 (got %d)", ErrInvalidConfig, c.BatchSize)
	}
	if c.Epochs < 0 {
		return fmt.Errorf("%w: epochs must be >= 0 (got %d)", ErrInvalidConfig, c.Epochs)
	}
	return nil
}

// Trainer owns the training loop for one network.
//
// Only one Train call runs at a time. The training flag is the sole
// cancellation point: Stop clears it and the loop returns at its next
// per-example check. Parameters are not locked; inference run alongside
// Train may observe a half-applied batch update.
type Trainer struct {
	net       *net.Network
	rng       *rand.Rand
	callbacks []Callback
	training  atomic.Bool
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithRand sets the random source used to shuffle each epoch.
func WithRand(r *rand.Rand) Option {
	return func(t *Trainer) { t.rng = r }
}

// WithCallbacks registers callbacks that receive training events.
func WithCallbacks(cb ...Callback) Option {
	return func(t *Trainer) { t.callbacks = append(t.callbacks, cb...) }
}

// New creates a Trainer for n.
func New(n *net.Network, opts ...Option) *Trainer {
	t := &Trainer{net: n}
	for _, opt := range opts {
		opt(t)
	}
	if t.rng == nil {
		t.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return t
}

// Network returns the network being trained.
func (t *Trainer) Network() *net.Network {
	return t.net
}

// IsTraining reports whether a Train call is active.
func (t *Trainer) IsTraining() bool {
	return t.training.Load()
}

// Stop requests cancellation of the active Train call. The gradient
// accumulated for the current batch is discarded; batches already applied
// stay applied.
func (t *Trainer) Stop() {
	t.training.Store(false)
}

// Train runs cfg.Epochs epochs of mini-batch SGD over data.
//
// Each epoch shuffles a copy of data and splits it into len(data)/BatchSize
// batches; trailing samples that do not fill a batch are skipped for that
// epoch. After each batch the summed deltas are applied with scale
// LearningRate/BatchSize.
//
// Calling Train while another call is active does nothing and returns nil.
// A cancelled run returns nil without emitting the finished events.
func (t *Trainer) Train(data dataset.Dataset, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !t.training.CompareAndSwap(false, true) {
		return nil
	}
	defer func() {
		// leave the trainer reusable after a panic in the numeric code
		if r := recover(); r != nil {
			t.training.Store(false)
			panic(r)
		}
	}()

	t.log("Started Training")
	for _, cb := range t.callbacks {
		cb.OnTrainBegin(t.net)
	}

	numBatches := len(data) / cfg.BatchSize
	scale := cfg.LearningRate / float64(cfg.BatchSize)
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		shuffled := data.Shuffled(t.rng)

		for j := 0; j < numBatches; j++ {
			g := t.net.ZeroedLike()
			for k := 0; k < cfg.BatchSize; k++ {
				if !t.training.Load() {
					return nil
				}
				idx := j*cfg.BatchSize + k
				t.net.TrainOneInput(shuffled[idx], g)
				t.progress(Progress(idx, len(shuffled), epoch, cfg.Epochs))
			}
			t.net.ApplyUpdate(g, scale)
		}

		var ev Evaluation
		if cfg.TestData != nil {
			ev = Evaluation{Evaluated: true, Correct: t.net.Test(cfg.TestData), Total: len(cfg.TestData)}
			prefix := fmt.Sprintf("Completed Epoch %d, Accuracy: ", epoch+1)
			t.log(net.FormatTestResult(prefix, ev.Correct, ev.Total))
		}
		for _, cb := range t.callbacks {
			cb.OnEpochEnd(epoch+1, ev, t.net)
		}
	}

	t.training.Store(false)
	t.log("Training Completed")
	for _, cb := range t.callbacks {
		cb.OnTrainEnd(t.net)
	}
	return nil
}

// Progress returns the overall completion percentage after processing the
// sample at index of an epoch with total samples. Each epoch covers an equal
// 100/epochs share of the run.
func Progress(index, total, epoch, epochs int) float64 {
	return ((float64(index) / float64(total) * 100) / float64(epochs)) + float64(epoch)*(100/float64(epochs))
}

func (t *Trainer) log(msg string) {
	for _, cb := range t.callbacks {
		cb.OnLog(msg)
	}
}

func (t *Trainer) progress(percent float64) {
	for _, cb := range t.callbacks {
		cb.OnProgress(percent)
	}
}
