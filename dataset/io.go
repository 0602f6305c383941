package dataset

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Writer appends Pair records to a file in the fixed little-endian
// on-disk format: two uint64s, plaintext then ciphertext, no header or
// padding.
type Writer struct {
	f *os.File
	w *bufio.Writer
}

// CreateWriter truncates (or creates) path and returns a Writer over it.
func CreateWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open writer %q: %w", path, err)
	}
	return &Writer{f: f, w: bufio.NewWriterSize(f, BufferPairs*RecordSize)}, nil
}

// WriteBatch appends a batch of pairs in order.
func (w *Writer) WriteBatch(pairs []Pair) error {
	var buf [RecordSize]byte
	for _, p := range pairs {
		binary.LittleEndian.PutUint64(buf[0:8], p.Plaintext)
		binary.LittleEndian.PutUint64(buf[8:16], p.Ciphertext)
		if _, err := w.w.Write(buf[:]); err != nil {
			return fmt.Errorf("dataset: write pair: %w", err)
		}
	}
	return nil
}

// Close flushes buffered data and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		_ = w.f.Close()
		return fmt.Errorf("dataset: flush: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("dataset: close: %w", err)
	}
	return nil
}

// Reader streams Pair records sequentially from a dataset file and
// supports rewinding to the start, the access pattern the analyzer needs
// once per (round, stage).
type Reader struct {
	f *os.File
	r *bufio.Reader
}

// OpenReader opens path for sequential Pair reads.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open reader %q: %w", path, err)
	}
	return &Reader{f: f, r: bufio.NewReaderSize(f, BufferPairs*RecordSize)}, nil
}

// Rewind seeks back to the start of the file, as required at the
// beginning of every (round, stage) pass.
func (r *Reader) Rewind() error {
	if _, err := r.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("dataset: rewind: %w", err)
	}
	r.r.Reset(r.f)
	return nil
}

// ReadBatch reads up to len(out) pairs into out, returning the number
// read. A short read (n < len(out)) with a nil error means end-of-file
// was reached in the middle of filling out; callers should treat it the
// same as io.EOF on the next call would: there is no more data.
func (r *Reader) ReadBatch(out []Pair) (int, error) {
	var buf [RecordSize]byte
	for i := range out {
		if _, err := io.ReadFull(r.r, buf[:]); err != nil {
			if err == io.ErrUnexpectedEOF || err == io.EOF {
				return i, nil
			}
			return i, fmt.Errorf("dataset: read pair: %w", err)
		}
		out[i].Plaintext = binary.LittleEndian.Uint64(buf[0:8])
		out[i].Ciphertext = binary.LittleEndian.Uint64(buf[8:16])
	}
	return len(out), nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("dataset: close reader: %w", err)
	}
	return nil
}
