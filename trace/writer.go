package trace

import (
	"bufio"
	"io"
)

// WriterOption configures a Writer.
type WriterOption func(*writerOptions)

type writerOptions struct {
	compression Compression
	bufferSize  int
}

// WithCompression compresses the written stream.
func WithCompression(c Compression) WriterOption {
	return func(o *writerOptions) { o.compression = c }
}

// WithBufferSize sets the write buffer size.
func WithBufferSize(n int) WriterOption {
	return func(o *writerOptions) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// Writer encodes samples in the on-disk record format.
type Writer struct {
	zw      io.WriteCloser
	bw      *bufio.Writer
	scratch []byte
	n       int64
}

// NewWriter returns a Writer on w. Close must be called to flush.
func NewWriter(w io.Writer, optFns ...WriterOption) (*Writer, error) {
	opts := writerOptions{bufferSize: 64 * 1024}
	for _, fn := range optFns {
		fn(&opts)
	}

	zw, err := compressor(opts.compression, w)
	if err != nil {
		return nil, err
	}

	return &Writer{
		zw:      zw,
		bw:      bufio.NewWriterSize(zw, opts.bufferSize),
		scratch: make([]byte, 0, RecordSize),
	}, nil
}

// Write encodes one sample.
func (w *Writer) Write(s Sample) error {
	w.scratch = s.AppendTo(w.scratch[:0])
	if _, err := w.bw.Write(w.scratch); err != nil {
		return err
	}
	w.n++
	return nil
}

// WriteAll encodes every sample in order.
func (w *Writer) WriteAll(samples Samples) error {
	for _, s := range samples {
		if err := w.Write(s); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of samples written so far.
func (w *Writer) Count() int64 { return w.n }

// Close flushes buffered records and finishes the compressed stream.
// It does not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	return w.zw.Close()
}
