package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/n3vedit/pkg/formats"
)

const vmeshVertexStride = int32(unsafe.Sizeof(formats.VMeshVertex{}))

// meshBuffers holds the GPU copy of one mesh version.
type meshBuffers struct {
	vao, vbo, ebo uint32
	version       uint64
	plan          DrawPlan
}

// upload rebuilds every buffer from m. Buffers are never patched in place.
func (b *meshBuffers) upload(m *formats.VMesh, version uint64) {
	b.release()
	b.version = version
	b.plan = PlanDraw(m)
	if b.plan.Kind == DrawNothing {
		return
	}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*int(vmeshVertexStride), unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	// Position (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, vmeshVertexStride, nil)
	gl.EnableVertexAttribArray(0)

	// Packed ARGB color (location = 1), BGRA byte order in memory
	gl.VertexAttribPointer(1, gl.BGRA, gl.UNSIGNED_BYTE, true, vmeshVertexStride, unsafe.Pointer(uintptr(12)))
	gl.EnableVertexAttribArray(1)

	if b.plan.Kind == DrawElements {
		gl.GenBuffers(1, &b.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*2, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (b *meshBuffers) draw() {
	switch b.plan.Kind {
	case DrawElements:
		gl.BindVertexArray(b.vao)
		gl.DrawElements(gl.TRIANGLES, b.plan.Count, gl.UNSIGNED_SHORT, nil)
	case DrawArrays:
		gl.BindVertexArray(b.vao)
		gl.DrawArrays(gl.TRIANGLES, 0, b.plan.Count)
	default:
		return
	}
	gl.BindVertexArray(0)
}

func (b *meshBuffers) release() {
	if b.ebo != 0 {
		gl.DeleteBuffers(1, &b.ebo)
		b.ebo = 0
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
		b.vbo = 0
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
	b.plan = DrawPlan{}
}
