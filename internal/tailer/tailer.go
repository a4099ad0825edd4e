// Package tailer reads the unconsumed suffix of the sensor's EVE log.
//
// The log is append-only but rotated by the sensor process outside our
// control: a file size smaller than the checkpoint offset means the file
// was replaced and reading restarts from the beginning of the new file.
package tailer

import (
	"fmt"
	"io"
	"os"
)

// Result is the outcome of a single-shot read.
type Result struct {
	// Data is the raw bytes read since the checkpoint offset.
	Data []byte
	// Offset is the source-log offset Data runs up to. It becomes the
	// new checkpoint only after the parsed records are durably stored.
	Offset int64
	// Rotated reports that the file shrank below the checkpoint and the
	// read restarted from offset zero. Data is not contiguous with
	// previously consumed content when set.
	Rotated bool
}

// Tailer performs single-shot reads of a source log. It does not hold
// the file open between calls and never writes to it.
type Tailer struct {
	path string
}

// New returns a Tailer for the log at path.
func New(path string) *Tailer {
	return &Tailer{path: path}
}

// Path returns the source log path.
func (t *Tailer) Path() string {
	return t.path
}

// ReadNew returns all bytes appended since offset. A missing source log
// is not an error: the sensor may not have started yet, so the result is
// empty and the offset unchanged.
func (t *Tailer) ReadNew(offset int64) (Result, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Offset: offset}, nil
		}
		return Result{Offset: offset}, fmt.Errorf("open source log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Result{Offset: offset}, fmt.Errorf("stat source log: %w", err)
	}

	effective := offset
	rotated := false
	if info.Size() < offset {
		// Rotation or truncation: treat as a new file.
		effective = 0
		rotated = true
	}

	if info.Size() == effective {
		return Result{Offset: effective, Rotated: rotated}, nil
	}

	if _, err := f.Seek(effective, io.SeekStart); err != nil {
		return Result{Offset: offset}, fmt.Errorf("seek source log: %w", err)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return Result{Offset: offset}, fmt.Errorf("read source log: %w", err)
	}

	// The file may have grown past the stat size mid-read; the offset
	// must match the bytes actually consumed.
	return Result{
		Data:    data,
		Offset:  effective + int64(len(data)),
		Rotated: rotated,
	}, nil
}
