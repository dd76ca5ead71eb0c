package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint([3]float32{1, 2, 3})

	expected := [3]float32{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestFromTRS(t *testing.T) {
	// 90 degrees about Y: (1,0,0) -> (0,0,-1), then scale 2, then translate.
	half := float32(math.Sqrt2 / 2)
	m := FromTRS(Vec3{1, 2, 3}, Quat{Y: half, W: half}, Vec3{2, 2, 2})
	got := m.TransformPoint([3]float32{1, 0, 0})

	want := [3]float32{1, 2, 1}
	for i := range want {
		if abs(got[i]-want[i]) > 1e-5 {
			t.Fatalf("FromTRS: got %v, want %v", got, want)
		}
	}
}

func TestQuatNormalizeZero(t *testing.T) {
	if q := (Quat{}).Normalize(); q != QuatIdentity() {
		t.Errorf("zero quaternion should normalize to identity, got %v", q)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1.0, 0.1, 100.0)

	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := Vec3{0, 1.2, 7}
	m := LookAt(eye, Vec3{0, 1.2, 0}, Vec3{0, 1, 0})

	got := m.TransformPoint(eye.Array())
	for i := range got {
		if abs(got[i]) > 1e-5 {
			t.Fatalf("eye should map to origin, got %v", got)
		}
	}
}

func TestVec3Cross(t *testing.T) {
	got := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	if got != (Vec3{0, 0, 1}) {
		t.Errorf("Vec3.Cross() = %v, want (0, 0, 1)", got)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
