package scenefile

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/nevk-scene/internal/engine/model"
	"github.com/Faultbox/nevk-scene/internal/engine/scene"
	"github.com/Faultbox/nevk-scene/internal/logger"
)

// Table maps description names to the ids created by Build.
type Table struct {
	Materials map[string]scene.MaterialID
	Meshes    map[string]scene.MeshID
	Instances map[string]scene.InstanceID
	// Order lists instance names in description order.
	Order []string
}

// Build creates every material, mesh and instance of d in s. Meshes are
// shared by all instances referencing them; the material is chosen per
// instance.
func Build(d *Description, s *scene.Scene) (*Table, error) {
	t := &Table{
		Materials: make(map[string]scene.MaterialID, len(d.Materials)),
		Meshes:    make(map[string]scene.MeshID, len(d.Meshes)),
		Instances: make(map[string]scene.InstanceID, len(d.Instances)),
	}

	for _, md := range d.Materials {
		if _, dup := t.Materials[md.Name]; dup {
			return nil, fmt.Errorf("material %q: %w", md.Name, ErrDuplicateName)
		}
		t.Materials[md.Name] = s.CreateMaterial(md.material())
	}

	for _, md := range d.Meshes {
		if _, dup := t.Meshes[md.Name]; dup {
			return nil, fmt.Errorf("mesh %q: %w", md.Name, ErrDuplicateName)
		}
		tris, err := model.Primitive(md.Primitive, md.Size, "")
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", md.Name, err)
		}
		vertices, indices := model.BuildVertices(tris, 0)
		id, err := s.CreateMesh(vertices, indices)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", md.Name, err)
		}
		t.Meshes[md.Name] = id
	}

	for _, in := range d.Instances {
		if _, dup := t.Instances[in.Name]; dup {
			return nil, fmt.Errorf("instance %q: %w", in.Name, ErrDuplicateName)
		}
		mesh, ok := t.Meshes[in.Mesh]
		if !ok {
			return nil, fmt.Errorf("instance %q mesh %q: %w", in.Name, in.Mesh, ErrUnknownName)
		}
		mat, ok := t.Materials[in.Material]
		if !ok {
			return nil, fmt.Errorf("instance %q material %q: %w", in.Name, in.Material, ErrUnknownName)
		}
		id, err := s.CreateInstance(mesh, mat, in.Transform(0), mgl32.Vec3{})
		if err != nil {
			return nil, fmt.Errorf("instance %q: %w", in.Name, err)
		}
		t.Instances[in.Name] = id
		t.Order = append(t.Order, in.Name)
	}

	if d.Camera != nil {
		cam := s.Camera()
		cam.Position = d.Camera.Position
		cam.Target = d.Camera.Target
	}
	if d.Light != nil {
		s.LightPosition = *d.Light
	}

	logger.Info("scene built",
		zap.String("name", d.Name),
		zap.Int("materials", len(t.Materials)),
		zap.Int("meshes", len(t.Meshes)),
		zap.Int("instances", len(t.Instances)),
	)
	return t, nil
}

// Animate writes the frame's transform of every spinning instance. It
// must be called between BeginFrame and EndFrame.
func Animate(d *Description, t *Table, s *scene.Scene, frame uint64) error {
	for _, in := range d.Instances {
		if in.Spin == 0 {
			continue
		}
		id, ok := t.Instances[in.Name]
		if !ok {
			return fmt.Errorf("instance %q: %w", in.Name, ErrUnknownName)
		}
		if err := s.UpdateInstanceTransform(id, in.Transform(frame)); err != nil {
			return err
		}
	}
	return nil
}

func (md MaterialDesc) material() scene.Material {
	return scene.Material{
		Ambient:        md.Ambient,
		Diffuse:        md.Diffuse,
		Specular:       md.Specular,
		Emissive:       md.Emissive,
		Transparency:   md.Transparency,
		OpticalDensity: md.OpticalDensity,
		Shininess:      md.Shininess,
		Illum:          scene.IllumModel(md.Illum),
		TexDiffuseID:   md.Textures.Diffuse,
		TexAmbientID:   md.Textures.Ambient,
		TexSpecularID:  md.Textures.Specular,
		TexNormalID:    md.Textures.Normal,
	}
}
