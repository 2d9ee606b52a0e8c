package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/png"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/FlavioCFOliveira/digitnet/internal/activations"
	"github.com/FlavioCFOliveira/digitnet/internal/config"
	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
	"github.com/FlavioCFOliveira/digitnet/internal/net"
	"github.com/FlavioCFOliveira/digitnet/internal/trainer"
)

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	out := fs.String("out", "", "Where to save the trained state (.json or gob)")
	lr := fs.Float64("learning-rate", 0, "Learning rate")
	epochs := fs.Int("epochs", 0, "Number of epochs")
	batchSize := fs.Int("batch-size", 0, "Mini-batch size")
	seed := fs.Uint64("seed", 0, "PRNG seed for initialization and shuffling")
	trainLimit := fs.Int("train-limit", 0, "Use at most N training samples")
	testLimit := fs.Int("test-limit", 0, "Use at most N test samples")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(common.config, config.Overrides{
		LearningRate: *lr,
		Epochs:       *epochs,
		BatchSize:    *batchSize,
		Seed:         *seed,
		StateIn:      common.state,
		StateOut:     *out,
		TrainLimit:   *trainLimit,
		TestLimit:    *testLimit,
	})
	if err != nil {
		return err
	}

	rng := newRand(cfg.Seed)
	n, err := buildNetwork(cfg, rng)
	if err != nil {
		return err
	}

	trainData, err := loadDataset(cfg.TrainImages, cfg.TrainLabels, cfg.TrainLimit)
	if err != nil {
		return fmt.Errorf("load training data: %w", err)
	}
	log.Printf("training samples=%d", len(trainData))

	var testData dataset.Dataset
	if cfg.TestImages != "" {
		testData, err = loadDataset(cfg.TestImages, cfg.TestLabels, cfg.TestLimit)
		if err != nil {
			return fmt.Errorf("load test data: %w", err)
		}
		log.Printf("test samples=%d", len(testData))
	}

	callbacks := []trainer.Callback{trainer.NewLogger(cfg.ProgressEvery)}
	if cfg.MetricsCSV != "" {
		metrics := trainer.NewCSVLogger(cfg.MetricsCSV, false)
		defer metrics.Close()
		callbacks = append(callbacks, metrics)
	}
	if cfg.Checkpoint != "" {
		callbacks = append(callbacks, trainer.NewModelCheckpoint(cfg.Checkpoint))
	}

	t := trainer.New(n, trainer.WithRand(rng), trainer.WithCallbacks(callbacks...))

	// SIGINT/SIGTERM ends training at the next example; the partial
	// result is still saved below.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			log.Printf("stop requested")
			t.Stop()
		case <-done:
		}
	}()

	err = t.Train(trainData, trainer.Config{
		LearningRate: cfg.LearningRate,
		Epochs:       cfg.Epochs,
		BatchSize:    cfg.BatchSize,
		TestData:     testData,
	})
	if err != nil {
		return err
	}

	if cfg.StateOut != "" {
		if err := n.SaveFile(cfg.StateOut); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
		log.Printf("saved state to %s", cfg.StateOut)
	}
	return nil
}

func runTest(args []string) error {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	testLimit := fs.Int("test-limit", 0, "Use at most N test samples")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(common.config, config.Overrides{StateIn: common.state, TestLimit: *testLimit})
	if err != nil {
		return err
	}
	if cfg.StateIn == "" {
		return errors.New("test needs a saved state (-state or state_in)")
	}

	n, err := buildNetwork(cfg, newRand(cfg.Seed))
	if err != nil {
		return err
	}
	data, err := loadDataset(cfg.TestImages, cfg.TestLabels, cfg.TestLimit)
	if err != nil {
		return fmt.Errorf("load test data: %w", err)
	}

	fmt.Println(net.FormatTestResult("Accuracy: ", n.Test(data), len(data)))
	return nil
}

func runPredict(args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	imagePath := fs.String("image", "", "28x28 PNG image to classify")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *imagePath == "" {
		return errors.New("predict needs -image")
	}

	cfg, err := loadConfig(common.config, config.Overrides{StateIn: common.state})
	if err != nil {
		return err
	}
	if cfg.StateIn == "" {
		return errors.New("predict needs a saved state (-state or state_in)")
	}

	n, err := buildNetwork(cfg, newRand(cfg.Seed))
	if err != nil {
		return err
	}

	input, err := readImage(*imagePath)
	if err != nil {
		return err
	}
	if len(input) != n.InSize() {
		return fmt.Errorf("image has %d pixels, network expects %d inputs", len(input), n.InSize())
	}

	fmt.Printf("Result: %d\n", n.TestImage(input))
	return nil
}

func runSummary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(common.config, config.Overrides{StateIn: common.state})
	if err != nil {
		return err
	}
	n, err := buildNetwork(cfg, newRand(cfg.Seed))
	if err != nil {
		return err
	}
	n.Summary(os.Stdout)
	return nil
}

func loadConfig(path string, o config.Overrides) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyOverrides(o)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newRand seeds from seed, or from the runtime source when seed is 0.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// buildNetwork creates the configured network and loads StateIn over it.
func buildNetwork(cfg *config.Config, rng *rand.Rand) (*net.Network, error) {
	act, err := activations.ByName(cfg.Activation)
	if err != nil {
		return nil, err
	}
	n, err := net.New(cfg.Sizes, net.WithActivation(act), net.WithRand(rng))
	if err != nil {
		return nil, err
	}
	if cfg.StateIn != "" {
		if err := n.LoadFile(cfg.StateIn); err != nil {
			return nil, fmt.Errorf("load state %s: %w", cfg.StateIn, err)
		}
		log.Printf("loaded state from %s", cfg.StateIn)
	}
	return n, nil
}

// loadDataset reads a CSV file when images ends in .csv (labels is then
// ignored), otherwise an IDX image/label pair.
func loadDataset(images, labels string, limit int) (dataset.Dataset, error) {
	var (
		data dataset.Dataset
		err  error
	)
	if strings.EqualFold(filepath.Ext(images), ".csv") {
		data, err = dataset.LoadCSV(images, true)
	} else {
		data, err = dataset.LoadIDX(images, labels)
	}
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		data = data.Limit(limit)
	}
	return data, nil
}

func readImage(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return dataset.FromImage(img)
}
