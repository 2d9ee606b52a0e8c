package trainer

import (
	"log"
	"math"
	"os"

	"github.com/FlavioCFOliveira/digitnet/internal/net"
)

// Evaluation is the test-set result of one epoch.
type Evaluation struct {
	// Evaluated is false when the run had no test data.
	Evaluated bool
	Correct   int
	Total     int
}

// Accuracy returns Correct/Total, or 0 for an empty evaluation.
func (e Evaluation) Accuracy() float64 {
	if e.Total == 0 {
		return 0
	}
	return float64(e.Correct) / float64(e.Total)
}

// Callback defines the interface for training callbacks.
type Callback interface {
	OnTrainBegin(n *net.Network)
	OnTrainEnd(n *net.Network)
	OnEpochEnd(epoch int, ev Evaluation, n *net.Network)
	OnProgress(percent float64)
	OnLog(msg string)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (c BaseCallback) OnTrainBegin(n *net.Network)                         {}
func (c BaseCallback) OnTrainEnd(n *net.Network)                           {}
func (c BaseCallback) OnEpochEnd(epoch int, ev Evaluation, n *net.Network) {}
func (c BaseCallback) OnProgress(percent float64)                          {}
func (c BaseCallback) OnLog(msg string)                                    {}

// Logger writes training messages to a standard logger.
type Logger struct {
	BaseCallback
	// Out defaults to log.Default().
	Out *log.Logger
	// ProgressEvery logs progress each time it advances this many percent.
	// Zero disables progress lines.
	ProgressEvery float64

	nextProgress float64
}

// NewLogger creates a Logger writing to stderr.
func NewLogger(progressEvery float64) *Logger {
	return &Logger{
		Out:           log.New(os.Stderr, "", log.LstdFlags),
		ProgressEvery: progressEvery,
	}
}

func (c *Logger) logger() *log.Logger {
	if c.Out == nil {
		return log.Default()
	}
	return c.Out
}

func (c *Logger) OnTrainBegin(n *net.Network) {
	c.nextProgress = c.ProgressEvery
}

func (c *Logger) OnLog(msg string) {
	c.logger().Print(msg)
}

func (c *Logger) OnProgress(percent float64) {
	if c.ProgressEvery <= 0 || percent < c.nextProgress {
		return
	}
	c.logger().Printf("Progress: %.2f%%", math.Round(percent*100)/100)
	for c.nextProgress <= percent {
		c.nextProgress += c.ProgressEvery
	}
}

// ModelCheckpoint saves the network after every epoch whose test accuracy
// is the best so far. Epochs without test data are ignored.
type ModelCheckpoint struct {
	BaseCallback
	Filename string

	best  float64
	saved bool
}

func NewModelCheckpoint(filename string) *ModelCheckpoint {
	return &ModelCheckpoint{Filename: filename}
}

func (c *ModelCheckpoint) OnEpochEnd(epoch int, ev Evaluation, n *net.Network) {
	if !ev.Evaluated {
		return
	}
	acc := ev.Accuracy()
	if c.saved && acc <= c.best {
		return
	}
	if err := n.SaveFile(c.Filename); err != nil {
		log.Printf("Error saving checkpoint: %v", err)
		return
	}
	c.best = acc
	c.saved = true
	log.Printf("Checkpoint saved: epoch %d accuracy %.4f is new best", epoch, acc)
}
