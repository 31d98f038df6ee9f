// Package scenefile reads YAML scene descriptions and builds them into a
// scene.Scene.
package scenefile

import (
	"errors"
	"fmt"
	"os"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/nevk-scene/internal/engine/scene"
)

var (
	// ErrUnknownName is returned when an instance references a mesh or
	// material that the description does not define.
	ErrUnknownName = errors.New("unknown name")
	// ErrDuplicateName is returned when two entries of a section share a name.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrInvalidIllum is returned for an illum value outside the MTL models 0-10.
	ErrInvalidIllum = errors.New("invalid illum model")
)

// Description is a parsed scene file.
type Description struct {
	Name      string         `yaml:"name"`
	Camera    *CameraDesc    `yaml:"camera,omitempty"`
	Light     *[4]float32    `yaml:"light,omitempty"`
	Materials []MaterialDesc `yaml:"materials"`
	Meshes    []MeshDesc     `yaml:"meshes"`
	Instances []InstanceDesc `yaml:"instances"`
}

// CameraDesc places the scene camera.
type CameraDesc struct {
	Position [3]float32 `yaml:"position"`
	Target   [3]float32 `yaml:"target"`
}

// MaterialDesc mirrors scene.Material with names instead of ids.
type MaterialDesc struct {
	Name           string      `yaml:"name"`
	Ambient        [4]float32  `yaml:"ambient"`
	Diffuse        [4]float32  `yaml:"diffuse"`
	Specular       [4]float32  `yaml:"specular"`
	Emissive       [4]float32  `yaml:"emissive"`
	Transparency   [4]float32  `yaml:"transparency"`
	OpticalDensity float32     `yaml:"optical_density"`
	Shininess      float32     `yaml:"shininess"`
	Illum          int         `yaml:"illum"`
	Textures       TextureDesc `yaml:"textures"`
}

// TextureDesc holds renderer-defined texture ids.
type TextureDesc struct {
	Diffuse  uint32 `yaml:"diffuse"`
	Ambient  uint32 `yaml:"ambient"`
	Specular uint32 `yaml:"specular"`
	Normal   uint32 `yaml:"normal"`
}

// MeshDesc names a generated primitive.
type MeshDesc struct {
	Name      string  `yaml:"name"`
	Primitive string  `yaml:"primitive"`
	Size      float32 `yaml:"size"`
}

// InstanceDesc places a mesh in the world. Unnamed instances are named
// after their mesh and position in the list.
type InstanceDesc struct {
	Name      string     `yaml:"name"`
	Mesh      string     `yaml:"mesh"`
	Material  string     `yaml:"material"`
	Position  [3]float32 `yaml:"position"`
	RotationY float32    `yaml:"rotation_y"` // degrees
	Scale     float32    `yaml:"scale"`
	Spin      float32    `yaml:"spin"` // degrees per frame about Y
}

// Transform returns the instance transform at the given frame.
func (in InstanceDesc) Transform(frame uint64) mgl32.Mat4 {
	angle := mgl32.DegToRad(in.RotationY + in.Spin*float32(frame))
	return mgl32.Translate3D(in.Position[0], in.Position[1], in.Position[2]).
		Mul4(mgl32.HomogRotate3DY(angle)).
		Mul4(mgl32.Scale3D(in.Scale, in.Scale, in.Scale))
}

// Load reads and parses a scene file.
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a scene description and fills in defaults.
func Parse(data []byte) (*Description, error) {
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	if err := d.normalize(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Description) normalize() error {
	for i := range d.Materials {
		m := &d.Materials[i]
		if m.Name == "" {
			return fmt.Errorf("material %d has no name", i)
		}
		if m.Illum < int(scene.IllumColor) || m.Illum > int(scene.IllumShadowMatte) {
			return fmt.Errorf("material %q illum %d: %w", m.Name, m.Illum, ErrInvalidIllum)
		}
		if m.OpticalDensity == 0 {
			m.OpticalDensity = 1
		}
	}
	for i := range d.Meshes {
		m := &d.Meshes[i]
		if m.Name == "" {
			return fmt.Errorf("mesh %d has no name", i)
		}
		if m.Size == 0 {
			m.Size = 1
		}
	}
	for i := range d.Instances {
		in := &d.Instances[i]
		if in.Name == "" {
			in.Name = fmt.Sprintf("%s#%d", in.Mesh, i)
		}
		if in.Scale == 0 {
			in.Scale = 1
		}
	}
	return nil
}

// Animated reports whether any instance spins.
func (d *Description) Animated() bool {
	for _, in := range d.Instances {
		if in.Spin != 0 {
			return true
		}
	}
	return false
}

// Bounds returns a box around all instances, treating each as a sphere of
// its mesh size times scale. ok is false when there are no instances.
func (d *Description) Bounds() (lo, hi mgl32.Vec3, ok bool) {
	sizes := make(map[string]float32, len(d.Meshes))
	for _, m := range d.Meshes {
		sizes[m.Name] = m.Size
	}
	for i, in := range d.Instances {
		r := sizes[in.Mesh] * in.Scale
		p := mgl32.Vec3(in.Position)
		a := p.Sub(mgl32.Vec3{r, r, r})
		b := p.Add(mgl32.Vec3{r, r, r})
		if i == 0 {
			lo, hi = a, b
			continue
		}
		for k := 0; k < 3; k++ {
			lo[k] = math32.Min(lo[k], a[k])
			hi[k] = math32.Max(hi[k], b[k])
		}
	}
	return lo, hi, len(d.Instances) > 0
}
