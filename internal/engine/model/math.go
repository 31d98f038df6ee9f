package model

import (
	gomath "math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// degenerateUV is the smallest |det| of the UV delta matrix for which a
// tangent is derived from texture coordinates.
const degenerateUV = 1e-6

// FaceTangent derives the tangent of a triangle from its position and UV
// deltas. Triangles with degenerate UVs get +Z.
func FaceTangent(p [3]mgl32.Vec3, uv [3]mgl32.Vec2) mgl32.Vec3 {
	dPos1 := p[1].Sub(p[0])
	dPos2 := p[2].Sub(p[0])
	dUV1 := uv[1].Sub(uv[0])
	dUV2 := uv[2].Sub(uv[0])

	det := dUV1[0]*dUV2[1] - dUV1[1]*dUV2[0]
	if math32.Abs(det) <= degenerateUV {
		return mgl32.Vec3{0, 0, 1}
	}
	r := 1 / det
	return dPos1.Mul(dUV2[1]).Sub(dPos2.Mul(dUV1[1])).Mul(r)
}

// FaceNormal returns the unit normal of a counter-clockwise triangle, or
// the zero vector for degenerate triangles.
func FaceNormal(p [3]mgl32.Vec3) mgl32.Vec3 {
	n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))
	if n.Len() < 1e-8 {
		return mgl32.Vec3{}
	}
	return n.Normalize()
}

func emptyBounds() Bounds {
	return Bounds{
		Min: mgl32.Vec3{gomath.MaxFloat32, gomath.MaxFloat32, gomath.MaxFloat32},
		Max: mgl32.Vec3{-gomath.MaxFloat32, -gomath.MaxFloat32, -gomath.MaxFloat32},
	}
}

func (b *Bounds) extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
}

func (b *Bounds) merge(o Bounds) {
	b.extend(o.Min)
	b.extend(o.Max)
}

// Center returns the middle of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}
