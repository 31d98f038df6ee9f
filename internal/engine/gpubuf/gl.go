package gpubuf

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GLDevice stores the mirrored buffers in OpenGL buffer objects. All
// methods require a current GL context.
type GLDevice struct {
	ids [bufferCount]uint32
}

// NewGLDevice creates the buffer objects.
func NewGLDevice() *GLDevice {
	d := &GLDevice{}
	gl.GenBuffers(int32(bufferCount), &d.ids[0])
	return d
}

// ID returns the GL name of b, for binding by the renderer.
func (d *GLDevice) ID(b Buffer) uint32 {
	return d.ids[b]
}

// Allocate implements Device.
func (d *GLDevice) Allocate(b Buffer, size int) {
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, d.ids[b])
	gl.BufferData(gl.COPY_WRITE_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
}

// Write implements Device.
func (d *GLDevice) Write(b Buffer, offset, size int, data unsafe.Pointer) {
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, d.ids[b])
	gl.BufferSubData(gl.COPY_WRITE_BUFFER, offset, size, data)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
}

// Destroy releases the buffer objects.
func (d *GLDevice) Destroy() {
	gl.DeleteBuffers(int32(bufferCount), &d.ids[0])
	d.ids = [bufferCount]uint32{}
}
