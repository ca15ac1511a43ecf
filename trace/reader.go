// Package trace reads memory-access traces line by line.
package trace

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarchlab/pagesim/vm"
)

// ErrTraceSourceUnavailable is returned when a trace cannot be opened or read.
var ErrTraceSourceUnavailable = errors.New("trace source unavailable")

// A LineReader yields the lines of a trace one at a time. ReadLine returns
// io.EOF after the last line.
type LineReader interface {
	ReadLine() (string, error)
}

// A Source can open a fresh LineReader for every run that replays it.
type Source interface {
	Name() string
	Open() (LineReader, error)
}

// ScannerReader reads lines lazily from an io.Reader.
type ScannerReader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	lineNum int
}

// NewScannerReader creates a ScannerReader over r. If r is also an io.Closer,
// Close closes it.
func NewScannerReader(r io.Reader) *ScannerReader {
	s := &ScannerReader{
		scanner: bufio.NewScanner(r),
	}

	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}

	return s
}

// ReadLine returns the next line without the line terminator.
func (r *ScannerReader) ReadLine() (string, error) {
	if !r.scanner.Scan() {
		err := r.scanner.Err()
		if errors.Is(err, bufio.ErrTooLong) {
			return "", fmt.Errorf("%w: line %d is longer than %d bytes",
				vm.ErrMalformedTraceLine, r.lineNum+1, bufio.MaxScanTokenSize)
		}

		if err != nil {
			return "", fmt.Errorf("%w: line %d: %w",
				ErrTraceSourceUnavailable, r.lineNum+1, err)
		}

		return "", io.EOF
	}

	r.lineNum++

	return strings.TrimSuffix(r.scanner.Text(), "\r"), nil
}

// LineNumber returns the 1-based number of the line returned last.
func (r *ScannerReader) LineNumber() int {
	return r.lineNum
}

// Close releases the underlying reader.
func (r *ScannerReader) Close() error {
	if r.closer == nil {
		return nil
	}

	return r.closer.Close()
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for i := len(m) - 1; i >= 0; i-- {
		errs = append(errs, m[i].Close())
	}

	return errors.Join(errs...)
}

type readCloser struct {
	io.Reader
	io.Closer
}

// FileSource is a trace stored in a file. Files ending with ".gz" are
// decompressed on the fly.
type FileSource struct {
	Path string
}

// NewFileSource creates a FileSource.
func NewFileSource(path string) FileSource {
	return FileSource{Path: path}
}

// Name returns the file name without directory and extensions, e.g. "gcc"
// for "traces/gcc.trace".
func (s FileSource) Name() string {
	base := filepath.Base(s.Path)
	base = strings.TrimSuffix(base, ".gz")

	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Open opens the file and returns a reader positioned at the first line.
func (s FileSource) Open() (LineReader, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTraceSourceUnavailable, err)
	}

	if !strings.HasSuffix(s.Path, ".gz") {
		return NewScannerReader(f), nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %w",
			ErrTraceSourceUnavailable, s.Path, err)
	}

	return NewScannerReader(readCloser{
		Reader: gz,
		Closer: multiCloser{f, gz},
	}), nil
}

// StringSource is a trace held in memory.
type StringSource struct {
	name string
	text string
}

// NewStringSource creates a trace from the given text.
func NewStringSource(name, text string) StringSource {
	return StringSource{name: name, text: text}
}

// NewLinesSource creates a trace from individual lines.
func NewLinesSource(name string, lines ...string) StringSource {
	return NewStringSource(name, strings.Join(lines, "\n"))
}

// Name returns the name given at creation.
func (s StringSource) Name() string {
	return s.name
}

// Open returns a reader at the first line of the text.
func (s StringSource) Open() (LineReader, error) {
	return NewScannerReader(strings.NewReader(s.text)), nil
}

// Close closes r if it holds any resource.
func Close(r LineReader) error {
	if c, ok := r.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
