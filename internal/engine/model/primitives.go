package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Primitive names accepted by Primitive.
const (
	PrimitiveCube     = "cube"
	PrimitiveQuad     = "quad"
	PrimitiveTriangle = "triangle"
)

// Primitive builds a named unit primitive scaled by size, centered on the
// origin, with every face using material.
func Primitive(kind string, size float32, material string) ([]Triangle, error) {
	if size <= 0 {
		return nil, fmt.Errorf("primitive %q: size must be positive, got %g", kind, size)
	}
	switch kind {
	case PrimitiveCube:
		return Cube(size, material), nil
	case PrimitiveQuad:
		return Quad(size, material), nil
	case PrimitiveTriangle:
		return []Triangle{Tri(size, material)}, nil
	default:
		return nil, fmt.Errorf("unknown primitive %q", kind)
	}
}

// cubeFaces lists the outward normal and the two in-plane axes (u, v) of
// each cube face. u x v equals the normal so corners wind counter-clockwise.
var cubeFaces = [6][3]mgl32.Vec3{
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
}

// Cube returns the 12 triangles of an axis-aligned cube with edge length size.
func Cube(size float32, material string) []Triangle {
	h := size / 2
	tris := make([]Triangle, 0, 12)
	for _, f := range cubeFaces {
		n, u, v := f[0], f[1], f[2]
		center := n.Mul(h)
		tris = append(tris, square(center, u.Mul(h), v.Mul(h), n, material)...)
	}
	return tris
}

// Quad returns a square of edge length size in the XY plane facing +Z.
func Quad(size float32, material string) []Triangle {
	h := size / 2
	return square(mgl32.Vec3{}, mgl32.Vec3{h, 0, 0}, mgl32.Vec3{0, h, 0}, mgl32.Vec3{0, 0, 1}, material)
}

// Tri returns a single triangle in the XY plane facing +Z.
func Tri(size float32, material string) Triangle {
	h := size / 2
	n := mgl32.Vec3{0, 0, 1}
	return Triangle{
		Positions:  [3]mgl32.Vec3{{-h, -h, 0}, {h, -h, 0}, {0, h, 0}},
		Normals:    [3]mgl32.Vec3{n, n, n},
		UVs:        [3]mgl32.Vec2{{0, 0}, {1, 0}, {0.5, 1}},
		HasNormals: true,
		HasUVs:     true,
		Material:   material,
	}
}

// square emits two triangles spanning center +/- u +/- v.
func square(center, u, v, n mgl32.Vec3, material string) []Triangle {
	p00 := center.Sub(u).Sub(v)
	p10 := center.Add(u).Sub(v)
	p11 := center.Add(u).Add(v)
	p01 := center.Sub(u).Add(v)
	normals := [3]mgl32.Vec3{n, n, n}
	return []Triangle{
		{
			Positions:  [3]mgl32.Vec3{p00, p10, p11},
			Normals:    normals,
			UVs:        [3]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}},
			HasNormals: true,
			HasUVs:     true,
			Material:   material,
		},
		{
			Positions:  [3]mgl32.Vec3{p00, p11, p01},
			Normals:    normals,
			UVs:        [3]mgl32.Vec2{{0, 0}, {1, 1}, {0, 1}},
			HasNormals: true,
			HasUVs:     true,
			Material:   material,
		},
	}
}
