// Package formats provides codecs for Knight Online N3 file formats.
// VMesh (.n3vmesh) is the rigid collision mesh attached to map objects.
package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/n3vedit/pkg/math"
)

// VMesh format errors.
var (
	ErrVMeshFormat        = errors.New("malformed VMesh")
	ErrTruncatedVMeshData = errors.New("truncated VMesh data")
	ErrVMeshEmpty         = errors.New("VMesh has no vertices")
	ErrVMeshCreate        = errors.New("cannot create VMesh file")
	ErrVMeshWrite         = errors.New("writing VMesh failed")
)

// Field limits enforced on load.
const (
	VMeshMaxNameLength = 256
	VMeshMaxVertices   = 2_000_000
	VMeshMaxIndices    = 3_000_000
)

// VMeshSavedName is the name written by every save, whatever the mesh was
// loaded as.
const VMeshSavedName = "collision"

// VMeshDefaultColor is the packed ARGB color given to every loaded vertex.
const VMeshDefaultColor uint32 = 0xFFFFFFFF

// VMeshVertex is a position with a packed ARGB color. Only the position is
// stored on disk.
type VMeshVertex struct {
	Position [3]float32
	Color    uint32
}

// VMesh is a decoded collision mesh.
type VMesh struct {
	// Name is the object name found in the file. It is informational only
	// and never written back.
	Name     string
	Vertices []VMeshVertex
	// Indices are triangle-list indices. They are not checked against the
	// vertex count.
	Indices []uint16
	// Bounds is recomputed from Vertices on every load.
	Bounds math.Bounds
}

// VMeshOptions tunes decoding.
type VMeshOptions struct {
	// AllowMissingIndices treats a file that ends cleanly right after the
	// vertex block as having zero indices. A partially present index count
	// is still fatal.
	AllowMissingIndices bool
}

// VertexCount returns the number of vertices.
func (m *VMesh) VertexCount() int { return len(m.Vertices) }

// IndexCount returns the number of indices.
func (m *VMesh) IndexCount() int { return len(m.Indices) }

// Center returns the bounding box center.
func (m *VMesh) Center() math.Vec3 { return m.Bounds.Center() }

// Radius returns the circumscribing radius (half the box diagonal).
func (m *VMesh) Radius() float32 { return m.Bounds.Radius() }

// Positions returns the vertex positions.
func (m *VMesh) Positions() []math.Vec3 {
	out := make([]math.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = math.V3(v.Position)
	}
	return out
}

// IndicesInRange reports whether every index addresses an existing vertex.
func (m *VMesh) IndicesInRange() bool {
	n := len(m.Vertices)
	for _, idx := range m.Indices {
		if int(idx) >= n {
			return false
		}
	}
	return true
}

// Release drops all geometry and resets the bounds.
func (m *VMesh) Release() {
	m.Name = ""
	m.Vertices = nil
	m.Indices = nil
	m.Bounds = math.EmptyBounds()
}

// Load replaces the mesh with the contents of r. The previous geometry is
// released first; on failure the mesh is left empty.
func (m *VMesh) Load(r io.Reader, opts VMeshOptions) error {
	m.Release()

	decoded, err := DecodeVMesh(r, opts)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

// Translated returns a copy of the mesh with every position moved by offset.
func (m *VMesh) Translated(offset math.Vec3) *VMesh {
	out := &VMesh{
		Name:     m.Name,
		Vertices: make([]VMeshVertex, len(m.Vertices)),
		Indices:  m.Indices,
		Bounds:   math.EmptyBounds(),
	}
	for i, v := range m.Vertices {
		p := math.V3(v.Position).Add(offset)
		out.Vertices[i] = VMeshVertex{Position: p.Array(), Color: v.Color}
		out.Bounds.Extend(p)
	}
	return out
}

// DecodeVMesh reads a VMesh from r.
//
// Fields are read strictly in order: name length, name, vertex count,
// positions, index count, indices. Nothing is read past the indices.
func DecodeVMesh(r io.Reader, opts VMeshOptions) (*VMesh, error) {
	mesh := &VMesh{Bounds: math.EmptyBounds()}

	var nameLen int32
	if err := readVMeshField(r, "name length", &nameLen); err != nil {
		return nil, err
	}
	if nameLen < 0 || nameLen > VMeshMaxNameLength {
		return nil, fmt.Errorf("%w: name length %d out of range [0, %d]", ErrVMeshFormat, nameLen, VMeshMaxNameLength)
	}
	if nameLen > 0 {
		name := make([]byte, nameLen)
		if err := readVMeshField(r, "name", name); err != nil {
			return nil, err
		}
		mesh.Name = string(name)
	}

	var vertexCount int32
	if err := readVMeshField(r, "vertex count", &vertexCount); err != nil {
		return nil, err
	}
	if vertexCount < 0 || vertexCount > VMeshMaxVertices {
		return nil, fmt.Errorf("%w: vertex count %d out of range [0, %d]", ErrVMeshFormat, vertexCount, VMeshMaxVertices)
	}
	if vertexCount > 0 {
		raw := make([]float32, 3*int(vertexCount))
		if err := readVMeshField(r, "vertices", raw); err != nil {
			return nil, err
		}

		mesh.Vertices = make([]VMeshVertex, vertexCount)
		for i := range mesh.Vertices {
			pos := [3]float32{raw[3*i], raw[3*i+1], raw[3*i+2]}
			mesh.Vertices[i] = VMeshVertex{Position: pos, Color: VMeshDefaultColor}
			mesh.Bounds.Extend(math.V3(pos))
		}
	}

	var indexCount int32
	if err := binary.Read(r, binary.LittleEndian, &indexCount); err != nil {
		// io.EOF means not a single byte of the index section exists.
		if opts.AllowMissingIndices && err == io.EOF {
			return mesh, nil
		}
		return nil, vmeshReadError("index count", err)
	}
	if indexCount < 0 || indexCount > VMeshMaxIndices {
		return nil, fmt.Errorf("%w: index count %d out of range [0, %d]", ErrVMeshFormat, indexCount, VMeshMaxIndices)
	}
	if indexCount > 0 {
		mesh.Indices = make([]uint16, indexCount)
		if err := readVMeshField(r, "indices", mesh.Indices); err != nil {
			return nil, err
		}
	}

	return mesh, nil
}

// ParseVMesh parses a VMesh from raw bytes with default options.
func ParseVMesh(data []byte) (*VMesh, error) {
	return DecodeVMesh(bytes.NewReader(data), VMeshOptions{})
}

// ParseVMeshFile parses a VMesh file from disk.
func ParseVMeshFile(path string, opts VMeshOptions) (*VMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening VMesh file: %w", err)
	}
	defer f.Close()

	return DecodeVMesh(bufio.NewReader(f), opts)
}

func readVMeshField(r io.Reader, field string, data any) error {
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return vmeshReadError(field, err)
	}
	return nil
}

func vmeshReadError(field string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s", ErrTruncatedVMeshData, field)
	}
	return fmt.Errorf("reading %s: %w", field, err)
}

// EncodeVMesh writes m to w. The name is always VMeshSavedName, colors are
// dropped and the index count is written even when zero.
func EncodeVMesh(w io.Writer, m *VMesh) error {
	if m == nil || len(m.Vertices) == 0 {
		return ErrVMeshEmpty
	}

	positions := make([]float32, 0, 3*len(m.Vertices))
	for _, v := range m.Vertices {
		positions = append(positions, v.Position[0], v.Position[1], v.Position[2])
	}

	fields := []struct {
		name string
		data any
	}{
		{"name length", int32(len(VMeshSavedName))},
		{"name", []byte(VMeshSavedName)},
		{"vertex count", int32(len(m.Vertices))},
		{"vertices", positions},
		{"index count", int32(len(m.Indices))},
	}
	if len(m.Indices) > 0 {
		fields = append(fields, struct {
			name string
			data any
		}{"indices", m.Indices})
	}

	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f.data); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrVMeshWrite, f.name, err)
		}
	}
	return nil
}

// SaveVMesh writes m to path. nameHint is accepted for callers that track a
// display name but is not stored; see VMeshSavedName.
func SaveVMesh(path string, m *VMesh, nameHint string) error {
	if m == nil || len(m.Vertices) == 0 {
		return ErrVMeshEmpty
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVMeshCreate, err)
	}

	bw := bufio.NewWriter(f)
	if err := EncodeVMesh(bw, m); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", ErrVMeshWrite, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrVMeshWrite, err)
	}
	return nil
}
