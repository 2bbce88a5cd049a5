package storage

import (
	"bytes"
	"io"
	"sync"
)

// Buffer is an in-memory staging area for metadata payloads whose byte
// length must be known before upload, such as manifests referenced with
// their size from a manifest list.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Size returns the number of bytes staged so far.
func (b *Buffer) Size() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(b.buf.Len())
}

func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// Reader returns a reader over a snapshot of the staged bytes.
func (b *Buffer) Reader() io.Reader {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.NewReader(b.buf.Bytes())
}
