package backup

import (
	"archive/zip"
	"bufio"
	"bytes"
	"errors"
	"io"
	"iter"

	"encoding/json/v2"
)

// ErrFileNotFound indicates a file was not found in the backup archive.
var ErrFileNotFound = errors.New("file not found in backup")

// openFile finds and opens a file from a zip archive.
func openFile(zr *zip.ReadCloser, path string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == path {
			return f.Open()
		}
	}
	return nil, ErrFileNotFound
}

// jsonlWriter streams entities as JSONL to a zip archive.
type jsonlWriter struct {
	w     io.Writer
	count int
}

// newJSONLWriter creates a JSONL writer for a path within the zip.
func newJSONLWriter(zw *zip.Writer, path string) (*jsonlWriter, error) {
	w, err := zw.Create(path)
	if err != nil {
		return nil, err
	}
	return &jsonlWriter{w: w}, nil
}

// write encodes a single entity as a JSON line.
func (w *jsonlWriter) write(entity any) error {
	if err := json.MarshalWrite(w.w, entity); err != nil {
		return err
	}
	if _, err := w.w.Write([]byte{'\n'}); err != nil {
		return err
	}
	w.count++
	return nil
}

// jsonlReader streams entities from a JSONL file in a zip archive.
type jsonlReader[T any] struct {
	rc      io.ReadCloser
	scanner *bufio.Scanner
}

func newJSONLReader[T any](rc io.ReadCloser) *jsonlReader[T] {
	return &jsonlReader[T]{
		rc:      rc,
		scanner: bufio.NewScanner(rc),
	}
}

// all returns an iterator over all entities in the file.
func (r *jsonlReader[T]) all() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer r.rc.Close()

		for r.scanner.Scan() {
			line := r.scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var entity T
			if err := json.UnmarshalRead(bytes.NewReader(line), &entity); err != nil {
				var zero T
				if !yield(zero, err) {
					return
				}
				continue // Try next line on parse error
			}
			if !yield(entity, nil) {
				return
			}
		}

		if err := r.scanner.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}
