package math

import (
	"math"
	"testing"
)

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	// Addition
	result := v1.Add(v2)
	expected := NewVec3(5, 7, 9)
	if result != expected {
		t.Errorf("Add: expected %v, got %v", expected, result)
	}

	// Subtraction
	result = v2.Sub(v1)
	expected = NewVec3(3, 3, 3)
	if result != expected {
		t.Errorf("Sub: expected %v, got %v", expected, result)
	}

	// Scalar multiplication
	result = v1.Mul(2)
	expected = NewVec3(2, 4, 6)
	if result != expected {
		t.Errorf("Mul: expected %v, got %v", expected, result)
	}

	// Dot product
	dot := v1.Dot(v2)
	expectedDot := float32(32) // 1*4 + 2*5 + 3*6
	if dot != expectedDot {
		t.Errorf("Dot: expected %v, got %v", expectedDot, dot)
	}

	// Cross product (Right x Up = Front in right-handed system)
	cross := Vec3Right.Cross(Vec3Up)
	if cross != Vec3Front {
		t.Errorf("Cross: expected %v, got %v", Vec3Front, cross)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := NewVec3(3, 0, 0)
	normalized := v.Normalize()
	expected := NewVec3(1, 0, 0)

	if normalized != expected {
		t.Errorf("Normalize: expected %v, got %v", expected, normalized)
	}

	length := normalized.Length()
	if math.Abs(float64(length-1)) > 0.0001 {
		t.Errorf("Normalize: expected length 1, got %v", length)
	}
}

func TestVec3Reflect(t *testing.T) {
	// A ray going down reflects off an upward-facing surface going up.
	incident := NewVec3(1, -1, 0).Normalize()
	reflected := incident.Reflect(Vec3Up)
	expected := NewVec3(1, 1, 0).Normalize()

	if reflected.Distance(expected) > 0.0001 {
		t.Errorf("Reflect: expected %v, got %v", expected, reflected)
	}
}

func TestMat4Identity(t *testing.T) {
	m := Mat4Identity()

	for i := 0; i < 4; i++ {
		if m[i][i] != 1 {
			t.Errorf("Identity: expected diagonal to be 1, got %v", m[i][i])
		}
	}

	// Identity transform leaves points unchanged
	p := NewVec3(1, 2, 3)
	if m.MulVec3(p) != p {
		t.Errorf("Identity: expected %v unchanged, got %v", p, m.MulVec3(p))
	}
}

func TestMat4Translation(t *testing.T) {
	m := Mat4Translation(NewVec3(10, 20, 30))
	p := m.MulVec3(NewVec3(1, 1, 1))
	expected := NewVec3(11, 21, 31)

	if p != expected {
		t.Errorf("Translation: expected %v, got %v", expected, p)
	}
}

func TestMat4MulOrder(t *testing.T) {
	// a.Mul(b) applies a first: scale then translate.
	scale := Mat4Scale(NewVec3(2, 2, 2))
	translate := Mat4Translation(NewVec3(5, 0, 0))

	m := scale.Mul(translate)
	p := m.MulVec3(NewVec3(1, 0, 0))
	expected := NewVec3(7, 0, 0)

	if p.Distance(expected) > 0.0001 {
		t.Errorf("Mul order: expected %v, got %v", expected, p)
	}
}

func TestMat4LookAt(t *testing.T) {
	// Camera at origin looking down -Z maps a point in front to negative view-space Z.
	view := Mat4LookAt(Vec3Zero, Vec3Back, Vec3Up)
	p := view.MulVec3(NewVec3(0, 0, -5))

	if p.Z > -4.9 {
		t.Errorf("LookAt: expected point at z ~ -5 in view space, got %v", p)
	}
}

func TestMat4StripTranslation(t *testing.T) {
	m := Mat4Translation(NewVec3(3, 4, 5)).StripTranslation()
	if m != Mat4Identity() {
		t.Errorf("StripTranslation: expected identity, got %v", m)
	}
}
