// Package toga reads the tabular outputs of a TOGA run: orthology
// classification, orthology scores, loss summary, query gene overrides,
// isoform tables and the query annotation BED.
package toga

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// tsvReader reads tab-separated lines from a plain or gzipped source.
type tsvReader struct {
	name       string
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	done       bool
}

// openTSV opens path for reading, transparently decompressing gzip input.
func openTSV(path string) (*tsvReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	r := &tsvReader{name: path, file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek %s: %w", path, err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	} else {
		r.reader = bufio.NewReader(file)
	}
	return r, nil
}

// newTSVReader wraps an already open stream. name is used in error messages.
func newTSVReader(name string, rd io.Reader) *tsvReader {
	return &tsvReader{name: name, reader: bufio.NewReader(rd)}
}

// nextLine returns the next non-empty line without its line terminator.
// Returns "", io.EOF at end of input.
func (r *tsvReader) nextLine() (string, error) {
	for !r.done {
		line, err := r.reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return "", fmt.Errorf("read %s: %w", r.name, err)
			}
			r.done = true
		}
		if line == "" && r.done {
			break
		}
		r.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line, nil
	}
	return "", io.EOF
}

// next returns the fields of the next non-empty line.
func (r *tsvReader) next() ([]string, error) {
	line, err := r.nextLine()
	if err != nil {
		return nil, err
	}
	return strings.Split(line, "\t"), nil
}

// close releases the underlying file, if any.
func (r *tsvReader) close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

func (r *tsvReader) parseError(format string, args ...any) *ParseError {
	return &ParseError{File: r.name, Line: r.lineNumber, Message: fmt.Sprintf(format, args...)}
}

// nullValues are cell contents treated as "no value".
var nullValues = map[string]bool{
	"":     true,
	"None": true,
	"NA":   true,
	"nan":  true,
	"NaN":  true,
	"-":    true,
	".":    true,
}

// field returns the trimmed cell at idx, or "" when the column is absent,
// the row is short, or the cell holds a null marker.
func field(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	v := strings.TrimSpace(fields[idx])
	if nullValues[v] {
		return ""
	}
	return v
}
