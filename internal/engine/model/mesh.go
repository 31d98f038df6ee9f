package model

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/nevk-scene/internal/engine/scene"
	"github.com/Faultbox/nevk-scene/internal/logger"
	"github.com/Faultbox/nevk-scene/pkg/packing"
)

// ErrEmptyModel is returned when a source has no triangles.
var ErrEmptyModel = errors.New("model has no triangles")

// ErrMaterialIDOverflow is returned when a material id does not fit the
// 16-bit per-vertex material field.
var ErrMaterialIDOverflow = errors.New("material id exceeds vertex field")

// Importer adds decoded models to a scene. Materials are deduplicated by
// name across all imports of the same Importer.
type Importer struct {
	scene     *scene.Scene
	materials map[string]scene.MaterialID
}

// NewImporter creates an importer for s.
func NewImporter(s *scene.Scene) *Importer {
	return &Importer{
		scene:     s,
		materials: make(map[string]scene.MaterialID),
	}
}

// MaterialID returns the scene id of a material created by this importer.
func (im *Importer) MaterialID(name string) (scene.MaterialID, bool) {
	id, ok := im.materials[name]
	return id, ok
}

// Import creates one mesh and one instance per material used by src.
// Groups appear in the order their material is first referenced.
//
// A failed import removes the instances, meshes and materials it created
// for earlier groups. Their vertices and indices stay in the scene's
// append-only buffers.
func (im *Importer) Import(src *Source, opts Options) (out *Imported, err error) {
	if len(src.Triangles) == 0 {
		return nil, fmt.Errorf("importing %q: %w", src.Name, ErrEmptyModel)
	}

	var order []string
	byMaterial := make(map[string][]Triangle)
	for _, tri := range src.Triangles {
		if _, seen := byMaterial[tri.Material]; !seen {
			order = append(order, tri.Material)
		}
		byMaterial[tri.Material] = append(byMaterial[tri.Material], tri)
	}

	var created undo
	defer func() {
		if err != nil {
			created.rollback(im)
		}
	}()

	out = &Imported{Name: src.Name, Bounds: emptyBounds()}
	for _, name := range order {
		_, known := im.materials[name]
		matID, err := im.resolveMaterial(src, name)
		if err != nil {
			return nil, fmt.Errorf("importing %q: %w", src.Name, err)
		}
		if !known {
			created.materials = append(created.materials, name)
		}

		tris := byMaterial[name]
		vertices, indices := BuildVertices(tris, uint16(matID))
		meshID, err := im.scene.CreateMesh(vertices, indices)
		if err != nil {
			return nil, fmt.Errorf("importing %q material %q: %w", src.Name, name, err)
		}
		created.meshes = append(created.meshes, meshID)

		center, bounds := massCenter(tris)
		instID, err := im.scene.CreateInstance(meshID, matID, opts.Transform, center)
		if err != nil {
			return nil, fmt.Errorf("importing %q material %q: %w", src.Name, name, err)
		}
		created.instances = append(created.instances, instID)

		out.Groups = append(out.Groups, Group{
			Material:   name,
			MaterialID: matID,
			Mesh:       meshID,
			Instance:   instID,
			Triangles:  len(tris),
			MassCenter: center,
			Bounds:     bounds,
		})
		out.Bounds.merge(bounds)
	}

	logger.Debug("model imported",
		zap.String("name", src.Name),
		zap.Int("triangles", len(src.Triangles)),
		zap.Int("groups", len(out.Groups)),
	)
	return out, nil
}

// undo records what one Import call added to the scene.
type undo struct {
	materials []string
	meshes    []scene.MeshID
	instances []scene.InstanceID
}

// rollback removes the recorded entities, instances first so meshes and
// materials are no longer in use.
func (u *undo) rollback(im *Importer) {
	for _, id := range u.instances {
		_ = im.scene.RemoveInstance(id)
	}
	for _, id := range u.meshes {
		_ = im.scene.RemoveMesh(id)
	}
	for _, name := range u.materials {
		_ = im.scene.RemoveMaterial(im.materials[name])
		delete(im.materials, name)
	}
	logger.Debug("import rolled back",
		zap.Int("instances", len(u.instances)),
		zap.Int("meshes", len(u.meshes)),
		zap.Int("materials", len(u.materials)),
	)
}

func (im *Importer) resolveMaterial(src *Source, name string) (scene.MaterialID, error) {
	if id, ok := im.materials[name]; ok {
		return id, nil
	}
	mat, ok := src.Materials[name]
	if !ok {
		if name != "" {
			logger.Warn("material not found, using default",
				zap.String("model", src.Name),
				zap.String("material", name),
			)
		}
		mat = DefaultMaterial()
	}
	id := im.scene.CreateMaterial(mat)
	if id > gomath.MaxUint16 {
		// Give the slot back; the id cannot be referenced by vertices.
		_ = im.scene.RemoveMaterial(id)
		return 0, fmt.Errorf("material %q got id %d: %w", name, id, ErrMaterialIDOverflow)
	}
	im.materials[name] = id
	return id, nil
}

// BuildVertices emits one vertex per triangle corner with sequential local
// indices. UVs are flipped vertically (v' = 1 - v) and faces lacking UVs
// or normals get zero values. All three corners share the face tangent.
func BuildVertices(tris []Triangle, materialID uint16) ([]scene.Vertex, []uint32) {
	vertices := make([]scene.Vertex, 0, len(tris)*3)
	indices := make([]uint32, 0, len(tris)*3)

	for _, tri := range tris {
		var uv [3]mgl32.Vec2
		if tri.HasUVs {
			for j := range uv {
				uv[j] = mgl32.Vec2{tri.UVs[j][0], 1 - tri.UVs[j][1]}
			}
		}
		tangent := packing.PackTangent(FaceTangent(tri.Positions, uv))

		for j := 0; j < 3; j++ {
			var normal mgl32.Vec3
			if tri.HasNormals {
				normal = tri.Normals[j]
			}
			indices = append(indices, uint32(len(vertices)))
			vertices = append(vertices, scene.Vertex{
				Position:   tri.Positions[j],
				Tangent:    tangent,
				Normal:     packing.PackNormal(normal),
				UV:         packing.PackUV(uv[j]),
				MaterialID: materialID,
			})
		}
	}
	return vertices, indices
}

// massCenter returns the mean corner position and the bounds of tris.
func massCenter(tris []Triangle) (mgl32.Vec3, Bounds) {
	b := emptyBounds()
	var sum mgl32.Vec3
	for _, tri := range tris {
		for _, p := range tri.Positions {
			sum = sum.Add(p)
			b.extend(p)
		}
	}
	return sum.Mul(1 / float32(len(tris)*3)), b
}
