// Package packing quantizes vertex attributes into 32-bit words.
//
// Layouts (bit 0 is the least significant):
//
//	UV      x: bits 0-13   y: bits 16-29            range [-10, 10]
//	Normal  x: bits 0-8    y: bits 10-18  z: 20-28  range [-1, 1]
//	Tangent x: bits 0-8    y: bits 10-18  z: 20-28  range [-10, 10]
//
// Shaders decode with the same constants, so they must not change.
package packing

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	uvRange      = 10.0
	uvScale      = 16383.99999
	uvMask       = 0xffff
	normalRange  = 1.0
	tangentRange = 10.0
	axisScale    = 511.99999
	axisMask     = 0x3ff
)

// UVStep is the largest per-axis error introduced by PackUV.
const UVStep = 2 * uvRange / 16383.0

// NormalStep is the largest per-axis error introduced by PackNormal.
const NormalStep = 2 * normalRange / 511.0

// TangentStep is the largest per-axis error introduced by PackTangent.
const TangentStep = 2 * tangentRange / 511.0

// quantize maps v from [-r, r] onto [0, scale).
func quantize(v, r, scale float32) uint32 {
	v = math32.Max(-r, math32.Min(r, v))
	return uint32(math32.Floor((v + r) / (2 * r) * scale))
}

func dequantize(q uint32, r, scale float32) float32 {
	return float32(q)/scale*(2*r) - r
}

// PackUV packs a texture coordinate.
func PackUV(uv mgl32.Vec2) uint32 {
	packed := quantize(uv[0], uvRange, uvScale)
	packed |= quantize(uv[1], uvRange, uvScale) << 16
	return packed
}

// UnpackUV reverses PackUV.
func UnpackUV(v uint32) mgl32.Vec2 {
	return mgl32.Vec2{
		dequantize(v&uvMask, uvRange, uvScale),
		dequantize(v>>16&uvMask, uvRange, uvScale),
	}
}

func packAxes(v mgl32.Vec3, r float32) uint32 {
	packed := quantize(v[0], r, axisScale)
	packed |= quantize(v[1], r, axisScale) << 10
	packed |= quantize(v[2], r, axisScale) << 20
	return packed
}

func unpackAxes(v uint32, r float32) mgl32.Vec3 {
	return mgl32.Vec3{
		dequantize(v&axisMask, r, axisScale),
		dequantize(v>>10&axisMask, r, axisScale),
		dequantize(v>>20&axisMask, r, axisScale),
	}
}

// PackNormal packs a unit-range direction.
func PackNormal(n mgl32.Vec3) uint32 {
	return packAxes(n, normalRange)
}

// UnpackNormal reverses PackNormal.
func UnpackNormal(v uint32) mgl32.Vec3 {
	return unpackAxes(v, normalRange)
}

// PackTangent packs a tangent. Tangents are not normalized by the importer,
// hence the wider range.
func PackTangent(t mgl32.Vec3) uint32 {
	return packAxes(t, tangentRange)
}

// UnpackTangent reverses PackTangent.
func UnpackTangent(v uint32) mgl32.Vec3 {
	return unpackAxes(v, tangentRange)
}
