package renderer

import (
	"bytes"
	"sync"
)

// bufferPool keeps a pool of bytes.Buffer to keep the common Render
// path allocation-light.
var bufferPool = &sync.Pool{
	New: func() any {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

// GetBuffer takes a reset, ready-to-use buffer from the shared pool.
// Exported so a BufferRenderer's caller (handler.Base) can borrow from
// the same pool a renderer's own Render method uses internally, rather
// than running a second, redundant pool alongside it.
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns buf to the pool.
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 { // don't keep very large buffers around
		return
	}
	bufferPool.Put(buf)
}
