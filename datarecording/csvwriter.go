package datarecording

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tebeka/atexit"
)

// SampleCSVWriter writes the samples of a memory-size sweep as a two-column
// CSV table with a "pages" and a "writes" column.
type SampleCSVWriter struct {
	path   string
	file   io.WriteCloser
	writer *bufio.Writer
	closed bool
}

// NewSampleCSVWriter creates the CSV file, replacing any existing one, and
// writes the header. Missing parent directories are created.
func NewSampleCSVWriter(path string) (*SampleCSVWriter, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return nil, err
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w, err := NewSampleCSVWriterWithWriter(file)
	if err != nil {
		file.Close()
		return nil, err
	}

	w.path = path

	atexit.Register(func() {
		err := w.Close()
		if err != nil {
			panic(err)
		}
	})

	return w, nil
}

// NewSampleCSVWriterWithWriter writes the CSV table into wc.
func NewSampleCSVWriterWithWriter(wc io.WriteCloser) (*SampleCSVWriter, error) {
	w := &SampleCSVWriter{
		file:   wc,
		writer: bufio.NewWriter(wc),
	}

	_, err := fmt.Fprintf(w.writer, "\"pages\",\"writes\"\n")
	if err != nil {
		return nil, err
	}

	return w, nil
}

// Path returns the path of the file, if the writer writes into a file.
func (w *SampleCSVWriter) Path() string {
	return w.path
}

// Write adds one row.
func (w *SampleCSVWriter) Write(pages int, writes uint64) error {
	_, err := fmt.Fprintf(w.writer, "%d,%d\n", pages, writes)
	return err
}

// Flush writes the buffered rows.
func (w *SampleCSVWriter) Flush() error {
	return w.writer.Flush()
}

// Close flushes and closes the file. Closing twice has no effect.
func (w *SampleCSVWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.Flush()
	if err != nil {
		w.file.Close()
		return err
	}

	return w.file.Close()
}
