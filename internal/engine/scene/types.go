package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshID identifies a mesh in a Scene.
type MeshID uint32

// MaterialID identifies a material in a Scene.
type MaterialID uint32

// InstanceID identifies an instance in a Scene.
type InstanceID uint32

// Vertex is the GPU vertex layout. Tangent, Normal and UV hold values
// produced by package packing.
type Vertex struct {
	Position   mgl32.Vec3
	Tangent    uint32
	Normal     uint32
	UV         uint32
	MaterialID uint16
}

// Mesh is a range in the global index buffer.
type Mesh struct {
	FirstIndex uint32 // index of the first index in the index buffer
	IndexCount uint32
}

// IllumModel is the MTL illumination model.
type IllumModel uint32

// Illumination models as numbered by the MTL format.
const (
	IllumColor              IllumModel = 0
	IllumAmbient            IllumModel = 1
	IllumHighlight          IllumModel = 2
	IllumReflectionRayTrace IllumModel = 3
	IllumGlassRayTrace      IllumModel = 4
	IllumFresnelRayTrace    IllumModel = 5
	IllumRefraction         IllumModel = 6
	IllumRefractionFresnel  IllumModel = 7
	IllumReflection         IllumModel = 8
	IllumGlass              IllumModel = 9
	IllumShadowMatte        IllumModel = 10
)

// String returns a human-readable model name.
func (m IllumModel) String() string {
	switch m {
	case IllumColor:
		return "Color"
	case IllumAmbient:
		return "Ambient"
	case IllumHighlight:
		return "Highlight"
	case IllumReflectionRayTrace:
		return "ReflectionRayTrace"
	case IllumGlassRayTrace:
		return "GlassRayTrace"
	case IllumFresnelRayTrace:
		return "FresnelRayTrace"
	case IllumRefraction:
		return "Refraction"
	case IllumRefractionFresnel:
		return "RefractionFresnel"
	case IllumReflection:
		return "Reflection"
	case IllumGlass:
		return "Glass"
	case IllumShadowMatte:
		return "ShadowMatte"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(m))
	}
}

// Material mirrors the shader-side material record field for field.
type Material struct {
	Ambient        mgl32.Vec4 // Ka
	Diffuse        mgl32.Vec4 // Kd
	Specular       mgl32.Vec4 // Ks
	Emissive       mgl32.Vec4 // Ke
	Transparency   mgl32.Vec4 // Tf
	OpticalDensity float32    // Ni
	Shininess      float32    // Ns
	Illum          IllumModel
	TexDiffuseID   uint32
	TexAmbientID   uint32
	TexSpecularID  uint32
	TexNormalID    uint32
	Pad            uint32
}

// IsTransparent reports whether instances using m belong to the
// transparent pass. Everything except the plain highlight model is.
func (m Material) IsTransparent() bool {
	return m.Illum != IllumHighlight
}

// Instance places a mesh with a material in the world.
type Instance struct {
	Transform  mgl32.Mat4
	MeshID     MeshID
	MaterialID MaterialID
	MassCenter mgl32.Vec3 // object space
}

// WorldMassCenter returns the mass center transformed into world space.
func (in Instance) WorldMassCenter() mgl32.Vec3 {
	return mgl32.TransformCoordinate(in.MassCenter, in.Transform)
}

// DebugView selects a debug visualization for the renderer.
type DebugView int

const (
	DebugViewNone DebugView = iota
	DebugViewNormals
)

// Stats summarizes scene storage.
type Stats struct {
	Vertices  int
	Indices   int
	Meshes    int // live
	Materials int // live
	Instances int // live
	Dirty     int
}
