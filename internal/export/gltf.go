// Package export converts VMesh geometry to interchange formats.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/n3vedit/pkg/formats"
	"github.com/Faultbox/n3vedit/pkg/math"
)

// ErrIndicesOutOfRange is returned when an index addresses a missing vertex.
var ErrIndicesOutOfRange = errors.New("mesh index out of range")

// Options controls the exported scene.
type Options struct {
	// Name is used for the mesh and its node. Defaults to the VMesh name.
	Name string
	// Translation is stored on the node, not baked into positions.
	Translation math.Vec3
}

// Document builds a single-node glTF document for mesh.
func Document(mesh *formats.VMesh, opts Options) (*gltf.Document, error) {
	if mesh == nil || mesh.VertexCount() == 0 {
		return nil, formats.ErrVMeshEmpty
	}
	if !mesh.IndicesInRange() {
		return nil, fmt.Errorf("%w: %d vertices", ErrIndicesOutOfRange, mesh.VertexCount())
	}

	name := opts.Name
	if name == "" {
		name = mesh.Name
	}
	if name == "" {
		name = formats.VMeshSavedName
	}

	positions := make([][3]float32, mesh.VertexCount())
	for i, v := range mesh.Vertices {
		positions[i] = v.Position
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "n3vedit"

	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{gltf.POSITION: modeler.WritePosition(doc, positions)},
	}
	if mesh.IndexCount() > 0 {
		prim.Indices = gltf.Index(modeler.WriteIndices(doc, mesh.Indices))
	}

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
	t := opts.Translation
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name:        name,
		Mesh:        gltf.Index(len(doc.Meshes) - 1),
		Translation: [3]float64{float64(t.X), float64(t.Y), float64(t.Z)},
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)

	return doc, nil
}

// WriteFile exports mesh to path. A ".glb" extension selects the binary
// container; anything else writes JSON glTF with embedded buffers.
func WriteFile(path string, mesh *formats.VMesh, opts Options) error {
	doc, err := Document(mesh, opts)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(doc, path)
	} else {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
		err = gltf.Save(doc, path)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
