// Package persistence writes pingslo reports and archival rows to disk.
package persistence

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DataFile is a file where we save results. Paths ending in ".gz" are
// gzip-compressed.
type DataFile struct {
	// Path is the path of the file.
	Path string
	// Size is the number of uncompressed bytes written so far.
	Size int

	writer io.WriteCloser
	fp     *os.File
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// New creates (or truncates) the file at path, creating parent directories
// as needed.
func New(path string) (*DataFile, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	fp, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	var writer io.WriteCloser = nopCloser{fp}
	if strings.HasSuffix(path, ".gz") {
		writer, err = gzip.NewWriterLevel(fp, gzip.BestSpeed)
		if err != nil {
			fp.Close()
			return nil, err
		}
	}
	return &DataFile{
		Path:   path,
		writer: writer,
		fp:     fp,
	}, nil
}

// Write writes an indented JSON representation of result to this file.
func (df *DataFile) Write(result interface{}) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return df.write(append(data, '\n'))
}

// WriteLine writes a compact JSON representation of result followed by a
// newline, producing newline-delimited JSON over multiple calls.
func (df *DataFile) WriteLine(result interface{}) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return df.write(append(data, '\n'))
}

func (df *DataFile) write(data []byte) error {
	n, err := df.writer.Write(data)
	df.Size += n
	return err
}

// Close closes the gzip writer (if any) and the file.
func (df *DataFile) Close() error {
	err := df.writer.Close()
	if err != nil {
		df.fp.Close()
		return err
	}
	return df.fp.Close()
}

// WriteDataFile writes result as indented JSON to path and closes the file.
func WriteDataFile(path string, result interface{}) (*DataFile, error) {
	df, err := New(path)
	if err != nil {
		return nil, err
	}
	if err := df.Write(result); err != nil {
		df.Close()
		return nil, err
	}
	return df, df.Close()
}
