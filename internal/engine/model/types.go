// Package model turns decoded model geometry into scene meshes, materials
// and instances.
package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/nevk-scene/internal/engine/scene"
)

// Triangle is one decoded face as delivered by a model parser.
type Triangle struct {
	Positions [3]mgl32.Vec3
	Normals   [3]mgl32.Vec3
	UVs       [3]mgl32.Vec2 // OBJ convention, origin bottom-left
	// HasNormals and HasUVs are false when the source face carried no
	// such attribute (or only some corners did).
	HasNormals bool
	HasUVs     bool
	Material   string
}

// Source is a decoded model: triangles plus the material library they
// reference by name.
type Source struct {
	Name      string
	Triangles []Triangle
	Materials map[string]scene.Material
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Group is the part of an imported model that uses one material.
type Group struct {
	Material   string
	MaterialID scene.MaterialID
	Mesh       scene.MeshID
	Instance   scene.InstanceID
	Triangles  int
	MassCenter mgl32.Vec3 // object space
	Bounds     Bounds
}

// Imported describes what an import added to the scene.
type Imported struct {
	Name   string
	Groups []Group
	Bounds Bounds
}

// Instances returns the instance ids of all groups.
func (m *Imported) Instances() []scene.InstanceID {
	ids := make([]scene.InstanceID, len(m.Groups))
	for i, g := range m.Groups {
		ids[i] = g.Instance
	}
	return ids
}

// Options contains import options.
type Options struct {
	// Transform is the initial transform of every created instance.
	Transform mgl32.Mat4
}

// DefaultOptions returns options placing the model at the origin.
func DefaultOptions() Options {
	return Options{Transform: mgl32.Ident4()}
}

// DefaultMaterial is used for faces whose material is missing from the
// library. It is opaque.
func DefaultMaterial() scene.Material {
	return scene.Material{
		Ambient:        mgl32.Vec4{0.1, 0.1, 0.1, 1},
		Diffuse:        mgl32.Vec4{0.8, 0.8, 0.8, 1},
		Specular:       mgl32.Vec4{0, 0, 0, 1},
		Emissive:       mgl32.Vec4{0, 0, 0, 1},
		Transparency:   mgl32.Vec4{1, 1, 1, 1},
		OpticalDensity: 1,
		Shininess:      16,
		Illum:          scene.IllumHighlight,
	}
}
