package trainer

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/FlavioCFOliveira/digitnet/internal/net"
)

// CSVLogger logs per-epoch test results to a CSV file.
type CSVLogger struct {
	BaseCallback
	Filename string
	Append   bool

	file   *os.File
	writer *csv.Writer
	start  time.Time
}

// NewCSVLogger creates a new CSVLogger.
func NewCSVLogger(filename string, append bool) *CSVLogger {
	return &CSVLogger{
		Filename: filename,
		Append:   append,
	}
}

func (c *CSVLogger) OnTrainBegin(n *net.Network) {
	mode := os.O_CREATE | os.O_WRONLY
	if c.Append {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}

	file, err := os.OpenFile(c.Filename, mode, 0644)
	if err != nil {
		log.Printf("CSVLogger: failed to open file %s: %v", c.Filename, err)
		return
	}
	c.file = file
	c.writer = csv.NewWriter(file)
	c.start = time.Now()

	// Write header if not appending or if file is empty
	info, err := file.Stat()
	if err == nil && (info.Size() == 0 || !c.Append) {
		c.writer.Write([]string{"epoch", "correct", "total", "accuracy", "time_seconds"})
		c.writer.Flush()
	}
}

func (c *CSVLogger) OnEpochEnd(epoch int, ev Evaluation, n *net.Network) {
	if c.writer == nil {
		return
	}

	elapsed := time.Since(c.start).Seconds()
	record := []string{
		strconv.Itoa(epoch),
		strconv.Itoa(ev.Correct),
		strconv.Itoa(ev.Total),
		fmt.Sprintf("%.6f", ev.Accuracy()),
		fmt.Sprintf("%.2f", elapsed),
	}

	if err := c.writer.Write(record); err != nil {
		log.Printf("CSVLogger: failed to write record: %v", err)
	}
	c.writer.Flush()
}

func (c *CSVLogger) OnTrainEnd(n *net.Network) {
	c.Close()
}

// Close flushes and closes the file. A cancelled run never reaches
// OnTrainEnd, so callers that stop training should Close explicitly.
func (c *CSVLogger) Close() error {
	if c.file == nil {
		return nil
	}
	c.writer.Flush()
	err := c.file.Close()
	c.file = nil
	c.writer = nil
	return err
}
