package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// genWriter is the current generation's append target: a buffered writer
// over the underlying file, plus a running count of bytes written so Set
// and Remove can learn the offset a record was placed at without a seek.
type genWriter struct {
	file    *os.File
	buf     *bufio.Writer
	written int64
}

func newGenWriter(f *os.File) (*genWriter, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("engine: seek to end of new generation file: %w", err)
	}
	return &genWriter{file: f, buf: bufio.NewWriter(f), written: size}, nil
}

// append writes data to the buffered writer, returning the byte offset at
// which it was written (relative to the start of the generation file).
func (w *genWriter) append(data []byte) (int64, error) {
	offset := w.written
	n, err := w.buf.Write(data)
	w.written += int64(n)
	if err != nil {
		return offset, fmt.Errorf("engine: append to generation file: %w", err)
	}
	return offset, nil
}

func (w *genWriter) flush() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("engine: flush writer: %w", err)
	}
	return nil
}

func (w *genWriter) close() error {
	if err := w.flush(); err != nil {
		return err
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("engine: close generation file: %w", err)
	}
	return nil
}
