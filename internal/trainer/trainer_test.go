package trainer

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/digitnet/internal/dataset"
	"github.com/FlavioCFOliveira/digitnet/internal/net"
)

// recorder captures every event the trainer emits.
type recorder struct {
	BaseCallback
	began, ended int
	logs         []string
	progress     []float64
	epochs       []int
	evals        []Evaluation

	onBegin    func()
	onProgress func(i int, percent float64)
}

func (r *recorder) OnTrainBegin(n *net.Network) {
	r.began++
	if r.onBegin != nil {
		r.onBegin()
	}
}

func (r *recorder) OnTrainEnd(n *net.Network) { r.ended++ }

func (r *recorder) OnEpochEnd(epoch int, ev Evaluation, n *net.Network) {
	r.epochs = append(r.epochs, epoch)
	r.evals = append(r.evals, ev)
}

func (r *recorder) OnProgress(percent float64) {
	r.progress = append(r.progress, percent)
	if r.onProgress != nil {
		r.onProgress(len(r.progress)-1, percent)
	}
}

func (r *recorder) OnLog(msg string) { r.logs = append(r.logs, msg) }

func rng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func newNetwork(t *testing.T, sizes ...int) *net.Network {
	t.Helper()
	n, err := net.New(sizes, net.WithRand(rng(1)))
	require.NoError(t, err)
	return n
}

// toyData returns n samples of a two-class problem on 4 inputs: class 0
// lights the first half, class 1 the second.
func toyData(n int) dataset.Dataset {
	data := make(dataset.Dataset, n)
	for i := range data {
		if i%2 == 0 {
			data[i] = dataset.Sample{Label: 0, Features: []float64{1, 0.8, 0, 0.1}}
		} else {
			data[i] = dataset.Sample{Label: 1, Features: []float64{0.1, 0, 0.9, 1}}
		}
	}
	return data
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, Config{BatchSize: 1}.Validate())

	assert.ErrorIs(t, Config{BatchSize: 0, Epochs: 1}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{BatchSize: -3, Epochs: 1}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{BatchSize: 1, Epochs: -1}.Validate(), ErrInvalidConfig)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3.0, cfg.LearningRate)
	assert.Equal(t, 10, cfg.Epochs)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Nil(t, cfg.TestData)
}

func TestTrainInvalidConfig(t *testing.T) {
	n := newNetwork(t, 4, 3, 2)
	before := n.Params()
	rec := &recorder{}
	tr := New(n, WithCallbacks(rec))

	err := tr.Train(toyData(4), Config{LearningRate: 1, Epochs: 1, BatchSize: 0})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.False(t, tr.IsTraining())
	assert.Zero(t, rec.began)
	assert.Equal(t, before, n.Params())
}

// TestTrainSingleBatchOneUpdate trains one epoch with one batch covering the
// whole dataset and compares against a single hand-applied update.
func TestTrainSingleBatchOneUpdate(t *testing.T) {
	data := toyData(6)
	const lr = 0.8

	expected := newNetwork(t, 4, 3, 2)
	g := expected.ZeroedLike()
	for _, w := range g.Weights {
		assert.True(t, mat.Equal(w, mat.NewDense(w.RawMatrix().Rows, w.RawMatrix().Cols, nil)))
	}
	for _, s := range data {
		expected.TrainOneInput(s, g)
	}
	expected.ApplyUpdate(g, lr/float64(len(data)))

	n := newNetwork(t, 4, 3, 2)
	rec := &recorder{}
	tr := New(n, WithRand(rng(2)), WithCallbacks(rec))
	require.NoError(t, tr.Train(data, Config{LearningRate: lr, Epochs: 1, BatchSize: len(data)}))

	assert.InDeltaSlice(t, expected.Params(), n.Params(), 1e-12)
	assert.Len(t, rec.progress, len(data))
	assert.Equal(t, 1, rec.began)
	assert.Equal(t, 1, rec.ended)
	assert.Equal(t, []string{"Started Training", "Training Completed"}, rec.logs)
	assert.False(t, tr.IsTraining())
}

// TestStopBeforeFirstBatch cancels as soon as training starts. No batch is
// applied, so parameters must be bit-for-bit unchanged.
func TestStopBeforeFirstBatch(t *testing.T) {
	n := newNetwork(t, 4, 3, 2)
	before := n.Params()

	rec := &recorder{}
	tr := New(n, WithCallbacks(rec))
	rec.onBegin = tr.Stop

	require.NoError(t, tr.Train(toyData(20), Config{LearningRate: 3, Epochs: 5, BatchSize: 4}))

	assert.Equal(t, before, n.Params())
	assert.Empty(t, rec.progress)
	assert.Zero(t, rec.ended)
	assert.Empty(t, rec.epochs)
	assert.NotContains(t, rec.logs, "Training Completed")
	assert.False(t, tr.IsTraining())
}

// TestStopMidBatchDiscardsPartialGradient stops inside the second batch.
// The first batch stays applied; the second batch's partial sum is dropped.
func TestStopMidBatchDiscardsPartialGradient(t *testing.T) {
	n := newNetwork(t, 4, 3, 2)
	initial := n.Params()

	rec := &recorder{}
	tr := New(n, WithRand(rng(3)), WithCallbacks(rec))

	var afterFirstBatch []float64
	rec.onProgress = func(i int, _ float64) {
		switch i {
		case 4: // first example of batch two; batch one already applied
			afterFirstBatch = n.Params()
		case 5:
			tr.Stop()
		}
	}

	require.NoError(t, tr.Train(toyData(12), Config{LearningRate: 3, Epochs: 1, BatchSize: 4}))

	require.NotNil(t, afterFirstBatch)
	assert.NotEqual(t, initial, afterFirstBatch)
	assert.Equal(t, afterFirstBatch, n.Params())
	assert.Len(t, rec.progress, 6)
	assert.Zero(t, rec.ended)
}

// TestTrainReentrantIsNoop calls Train from inside a running Train.
func TestTrainReentrantIsNoop(t *testing.T) {
	n := newNetwork(t, 4, 3, 2)
	rec := &recorder{}
	tr := New(n, WithCallbacks(rec))

	nested := false
	rec.onProgress = func(i int, _ float64) {
		if i != 0 {
			return
		}
		before := n.Params()
		err := tr.Train(toyData(8), Config{LearningRate: 100, Epochs: 3, BatchSize: 1})
		assert.NoError(t, err)
		assert.Equal(t, before, n.Params())
		assert.True(t, tr.IsTraining())
		nested = true
	}

	require.NoError(t, tr.Train(toyData(8), Config{LearningRate: 1, Epochs: 1, BatchSize: 2}))

	assert.True(t, nested)
	assert.Equal(t, 1, rec.began)
	assert.Equal(t, 1, rec.ended)
	assert.Len(t, rec.progress, 8)
}

// TestProgressNonDecreasing checks progress never goes backwards and covers
// each epoch's share of the run.
func TestProgressNonDecreasing(t *testing.T) {
	n := newNetwork(t, 4, 3, 2)
	rec := &recorder{}
	tr := New(n, WithCallbacks(rec))

	const epochs = 3
	require.NoError(t, tr.Train(toyData(12), Config{LearningRate: 1, Epochs: epochs, BatchSize: 3}))

	require.Len(t, rec.progress, 12*epochs)
	assert.Equal(t, 0.0, rec.progress[0])
	for i := 1; i < len(rec.progress); i++ {
		assert.GreaterOrEqual(t, rec.progress[i], rec.progress[i-1], "progress[%d]", i)
	}
	assert.Less(t, rec.progress[len(rec.progress)-1], 100.0)
	assert.InDelta(t, 100.0/epochs, rec.progress[12], 1e-9)
}

// TestTrainDropsRemainder checks len(data) mod batchSize samples are skipped.
func TestTrainDropsRemainder(t *testing.T) {
	n := newNetwork(t, 4, 3, 2)
	rec := &recorder{}
	tr := New(n, WithCallbacks(rec))

	require.NoError(t, tr.Train(toyData(10), Config{LearningRate: 1, Epochs: 2, BatchSize: 4}))
	assert.Len(t, rec.progress, 16)
	assert.Equal(t, []int{1, 2}, rec.epochs)
}

// TestTrainUndersizedDataset runs with fewer samples than one batch: no
// updates happen but test results are still reported each epoch.
func TestTrainUndersizedDataset(t *testing.T) {
	for _, data := range []dataset.Dataset{nil, toyData(3)} {
		n := newNetwork(t, 4, 3, 2)
		before := n.Params()
		rec := &recorder{}
		tr := New(n, WithCallbacks(rec))

		test := toyData(4)
		require.NoError(t, tr.Train(data, Config{LearningRate: 3, Epochs: 2, BatchSize: 5, TestData: test}))

		assert.Equal(t, before, n.Params())
		assert.Empty(t, rec.progress)
		require.Len(t, rec.evals, 2)
		assert.True(t, rec.evals[0].Evaluated)
		assert.Equal(t, 4, rec.evals[0].Total)
		assert.Equal(t, net.FormatTestResult("Completed Epoch 1, Accuracy: ", n.Test(test), 4), rec.logs[1])
		assert.Equal(t, "Training Completed", rec.logs[len(rec.logs)-1])
		assert.Equal(t, 1, rec.ended)
	}
}

func TestTrainZeroEpochs(t *testing.T) {
	n := newNetwork(t, 4, 3, 2)
	before := n.Params()
	rec := &recorder{}
	tr := New(n, WithCallbacks(rec))

	require.NoError(t, tr.Train(toyData(4), Config{LearningRate: 3, Epochs: 0, BatchSize: 2}))
	assert.Equal(t, before, n.Params())
	assert.Equal(t, 1, rec.ended)
}

func TestTrainDoesNotReorderCallerData(t *testing.T) {
	data := make(dataset.Dataset, 10)
	for i := range data {
		data[i] = dataset.Sample{Label: i % 2, Features: []float64{float64(i), 0, 0, 0}}
	}

	tr := New(newNetwork(t, 4, 3, 2))
	require.NoError(t, tr.Train(data, Config{LearningRate: 0.1, Epochs: 2, BatchSize: 5}))

	for i := range data {
		assert.Equal(t, float64(i), data[i].Features[0])
	}
}

// TestTrainLearns checks the network separates a trivially separable set.
func TestTrainLearns(t *testing.T) {
	n := newNetwork(t, 4, 3, 2)
	data := toyData(20)
	rec := &recorder{}
	tr := New(n, WithRand(rng(4)), WithCallbacks(rec))

	cost := func() float64 {
		var total float64
		for _, s := range data {
			total += n.CalculateCost(n.FeedForward(s.Features), n.ExpectedResult(s.Label))
		}
		return total
	}
	before := cost()

	require.NoError(t, tr.Train(data, Config{LearningRate: 3, Epochs: 100, BatchSize: 2, TestData: data}))

	assert.Less(t, cost(), before)
	assert.Equal(t, len(data), n.Test(data))
	require.Len(t, rec.evals, 100)
	assert.Equal(t, 1.0, rec.evals[99].Accuracy())
}

// TestStopFromAnotherGoroutine cancels a long run the way a signal handler would.
func TestStopFromAnotherGoroutine(t *testing.T) {
	n := newNetwork(t, 4, 8, 2)
	tr := New(n)

	done := make(chan error, 1)
	go func() {
		done <- tr.Train(toyData(100), Config{LearningRate: 1, Epochs: 1_000_000, BatchSize: 10})
	}()

	require.Eventually(t, tr.IsTraining, 5*time.Second, time.Millisecond)
	tr.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("training did not stop")
	}
	assert.False(t, tr.IsTraining())
	assert.False(t, floats.HasNaN(n.Params()))
}

func TestTrainAfterStopCanRestart(t *testing.T) {
	n := newNetwork(t, 4, 3, 2)
	rec := &recorder{}
	tr := New(n, WithCallbacks(rec))
	rec.onBegin = tr.Stop

	require.NoError(t, tr.Train(toyData(8), Config{LearningRate: 1, Epochs: 1, BatchSize: 2}))
	rec.onBegin = nil

	require.NoError(t, tr.Train(toyData(8), Config{LearningRate: 1, Epochs: 1, BatchSize: 2}))
	assert.Equal(t, 2, rec.began)
	assert.Equal(t, 1, rec.ended)
}

func TestProgress(t *testing.T) {
	tests := []struct {
		index, total, epoch, epochs int
		want                        float64
	}{
		{0, 100, 0, 1, 0},
		{50, 100, 0, 1, 50},
		{50, 100, 0, 2, 25},
		{0, 100, 1, 2, 50},
		{99, 100, 1, 2, 99.5},
		{3, 12, 2, 3, 100.0/3/4 + 2*(100.0/3)},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Progress(tt.index, tt.total, tt.epoch, tt.epochs), 1e-9)
	}
}
