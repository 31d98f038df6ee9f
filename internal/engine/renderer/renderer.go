// Package renderer draws a scene from its GPU mirror: opaque instances
// first, then transparent instances back to front with blending.
package renderer

import (
	_ "embed"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/nevk-scene/internal/engine/gpubuf"
	"github.com/Faultbox/nevk-scene/internal/engine/scene"
	"github.com/Faultbox/nevk-scene/internal/engine/shader"
	"github.com/Faultbox/nevk-scene/internal/logger"
)

//go:embed shaders/scene.vert
var vertexShader string

//go:embed shaders/scene.frag
var fragmentShader string

var uniformNames = []string{
	"uViewProj", "uModel", "uNormalMatrix",
	"uAmbient", "uDiffuse", "uSpecular", "uEmissive", "uShininess", "uAlpha",
	"uLightPos", "uCameraPos", "uDebugNormals",
}

// FrameStats describes one Render call.
type FrameStats struct {
	Opaque      int
	Transparent int
	Triangles   int
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	program uint32
	vao     uint32
	loc     map[string]int32
	log     *zap.Logger
}

// New creates a renderer reading geometry from dev.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(dev *gpubuf.GLDevice) (*Renderer, error) {
	r := &Renderer{log: logger.Named("renderer")}

	var err error
	r.program, err = shader.CompileProgram(vertexShader, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	r.loc, err = shader.Uniforms(r.program, uniformNames...)
	if err != nil {
		gl.DeleteProgram(r.program)
		return nil, err
	}

	r.setupVertexArray(dev)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)

	r.log.Info("renderer ready",
		zap.String("gl_renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return r, nil
}

// setupVertexArray describes scene.Vertex to GL. The VAO refers to the
// buffer names, so it stays valid when the mirror reallocates storage.
func (r *Renderer) setupVertexArray(dev *gpubuf.GLDevice) {
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, dev.ID(gpubuf.VertexBuffer))
	stride := int32(unsafe.Sizeof(scene.Vertex{}))

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, unsafe.Offsetof(scene.Vertex{}.Position))
	gl.EnableVertexAttribArray(0)

	// Packed tangent, normal and uv (locations 1-3)
	gl.VertexAttribIPointerWithOffset(1, 1, gl.UNSIGNED_INT, stride, unsafe.Offsetof(scene.Vertex{}.Tangent))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribIPointerWithOffset(2, 1, gl.UNSIGNED_INT, stride, unsafe.Offsetof(scene.Vertex{}.Normal))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribIPointerWithOffset(3, 1, gl.UNSIGNED_INT, stride, unsafe.Offsetof(scene.Vertex{}.UV))
	gl.EnableVertexAttribArray(3)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, dev.ID(gpubuf.IndexBuffer))

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Render clears the framebuffer and draws both passes of s. The mirror
// must have been synced for the current frame.
func (r *Renderer) Render(s *scene.Scene) FrameStats {
	gl.ClearColor(0.1, 0.1, 0.12, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	cam := s.Camera()
	viewProj := cam.ViewProjection()
	debugNormals := int32(0)
	if s.DebugView == scene.DebugViewNormals {
		debugNormals = 1
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.loc["uViewProj"], 1, false, &viewProj[0])
	gl.Uniform4fv(r.loc["uLightPos"], 1, &s.LightPosition[0])
	gl.Uniform3fv(r.loc["uCameraPos"], 1, &cam.Position[0])
	gl.Uniform1i(r.loc["uDebugNormals"], debugNormals)
	gl.BindVertexArray(r.vao)

	var st FrameStats
	opaque := s.OpaqueInstancesToRender(cam.Position)
	for _, id := range opaque {
		st.Triangles += r.drawInstance(s, id, false)
	}
	st.Opaque = len(opaque)

	transparent := s.TransparentInstancesToRender(cam.Position)
	if len(transparent) > 0 {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
		gl.Disable(gl.CULL_FACE)
		for _, id := range transparent {
			st.Triangles += r.drawInstance(s, id, true)
		}
		gl.Enable(gl.CULL_FACE)
		gl.DepthMask(true)
		gl.Disable(gl.BLEND)
	}
	st.Transparent = len(transparent)

	gl.BindVertexArray(0)
	return st
}

func (r *Renderer) drawInstance(s *scene.Scene, id scene.InstanceID, blended bool) int {
	in, err := s.Instance(id)
	if err != nil {
		r.log.Warn("skipping instance", zap.Uint32("id", uint32(id)), zap.Error(err))
		return 0
	}
	mesh, err := s.Mesh(in.MeshID)
	if err != nil {
		r.log.Warn("skipping instance", zap.Uint32("id", uint32(id)), zap.Error(err))
		return 0
	}
	mat, err := s.Material(in.MaterialID)
	if err != nil {
		r.log.Warn("skipping instance", zap.Uint32("id", uint32(id)), zap.Error(err))
		return 0
	}

	normalMatrix := in.Transform.Inv().Transpose()
	alpha := float32(1)
	if blended {
		alpha = Alpha(mat)
	}

	gl.UniformMatrix4fv(r.loc["uModel"], 1, false, &in.Transform[0])
	gl.UniformMatrix4fv(r.loc["uNormalMatrix"], 1, false, &normalMatrix[0])
	gl.Uniform4fv(r.loc["uAmbient"], 1, &mat.Ambient[0])
	gl.Uniform4fv(r.loc["uDiffuse"], 1, &mat.Diffuse[0])
	gl.Uniform4fv(r.loc["uSpecular"], 1, &mat.Specular[0])
	gl.Uniform4fv(r.loc["uEmissive"], 1, &mat.Emissive[0])
	gl.Uniform1f(r.loc["uShininess"], mat.Shininess)
	gl.Uniform1f(r.loc["uAlpha"], alpha)

	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(mesh.IndexCount), gl.UNSIGNED_INT, uintptr(mesh.FirstIndex)*4)
	return int(mesh.IndexCount / 3)
}
