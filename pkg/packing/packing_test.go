package packing

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// slack absorbs float32 rounding on top of the quantization step.
const slack = 1e-5

func TestUVRoundTrip(t *testing.T) {
	for x := float32(-10); x <= 10; x += 0.37 {
		for _, y := range []float32{-10, -3.3, 0, 0.5, 1, 9.99, 10} {
			in := mgl32.Vec2{x, y}
			out := UnpackUV(PackUV(in))
			for i := 0; i < 2; i++ {
				if d := math32.Abs(out[i] - in[i]); d > UVStep+slack {
					t.Fatalf("UV %v -> %v: axis %d error %g exceeds %g", in, out, i, d, UVStep)
				}
			}
		}
	}
}

func TestNormalRoundTrip(t *testing.T) {
	tests := []mgl32.Vec3{
		{0, 0, 0},
		{1, 0, 0},
		{0, -1, 0},
		{0, 0, 1},
		{0.577, 0.577, -0.577},
		{-1, -1, -1},
		{1, 1, 1},
	}
	for _, in := range tests {
		out := UnpackNormal(PackNormal(in))
		for i := 0; i < 3; i++ {
			if d := math32.Abs(out[i] - in[i]); d > NormalStep+slack {
				t.Errorf("normal %v -> %v: axis %d error %g exceeds %g", in, out, i, d, NormalStep)
			}
		}
	}
}

func TestTangentRoundTrip(t *testing.T) {
	for v := float32(-10); v <= 10; v += 0.71 {
		in := mgl32.Vec3{v, -v / 2, v / 3}
		out := UnpackTangent(PackTangent(in))
		for i := 0; i < 3; i++ {
			if d := math32.Abs(out[i] - in[i]); d > TangentStep+slack {
				t.Fatalf("tangent %v -> %v: axis %d error %g exceeds %g", in, out, i, d, TangentStep)
			}
		}
	}
}

func TestOutOfRangeIsClamped(t *testing.T) {
	// A y overflow must not leak into x (and vice versa).
	packed := PackUV(mgl32.Vec2{-50, 50})
	out := UnpackUV(packed)
	if out[0] != -10 {
		t.Errorf("x should clamp to -10, got %v", out[0])
	}
	if math32.Abs(out[1]-10) > UVStep {
		t.Errorf("y should clamp to 10, got %v", out[1])
	}

	n := UnpackNormal(PackNormal(mgl32.Vec3{5, -5, 0}))
	if math32.Abs(n[0]-1) > NormalStep || n[1] != -1 {
		t.Errorf("normal should clamp to (1,-1,_), got %v", n)
	}
	if math32.Abs(n[2]) > NormalStep {
		t.Errorf("z should be unaffected by neighbours, got %v", n[2])
	}
}

func TestFieldLayout(t *testing.T) {
	if got := PackUV(mgl32.Vec2{-10, -10}); got != 0 {
		t.Errorf("minimum UV should pack to 0, got %#x", got)
	}
	if got := PackNormal(mgl32.Vec3{-1, -1, -1}); got != 0 {
		t.Errorf("minimum normal should pack to 0, got %#x", got)
	}

	// Only the y field set.
	got := PackNormal(mgl32.Vec3{-1, 1, -1})
	if got&0x3ff != 0 || got>>20 != 0 || got>>10&0x3ff == 0 {
		t.Errorf("y should occupy bits 10-19 only, got %#x", got)
	}
}
