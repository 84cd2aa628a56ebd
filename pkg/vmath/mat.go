package vmath

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// Identity returns the 4x4 identity matrix.
func Identity() mgl64.Mat4 {
	return mgl64.Ident4()
}

// MulPoint applies a homogeneous transform to a point, dividing through by
// the resulting w.
func MulPoint(m mgl64.Mat4, p v3.Vec) v3.Vec {
	r := m.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	f := 1 / r[3]
	return v3.Vec{X: r[0] * f, Y: r[1] * f, Z: r[2] * f}
}

// MulVec applies the rotation/scale part of m to a vector. The result is
// scaled by the inverse of the global scale element m[3][3].
func MulVec(m mgl64.Mat4, v v3.Vec) v3.Vec {
	f := 1 / m.At(3, 3)
	return v3.Vec{
		X: (m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z) * f,
		Y: (m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z) * f,
		Z: (m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z) * f,
	}
}

// Translate returns a matrix that moves points by t.
func Translate(t v3.Vec) mgl64.Mat4 {
	return mgl64.Translate3D(t.X, t.Y, t.Z)
}

// Rotate returns a rotation by Euler angles in degrees, applied X first,
// then Y, then Z.
func Rotate(deg v3.Vec) mgl64.Mat4 {
	x := deg.X * math.Pi / 180.0
	y := deg.Y * math.Pi / 180.0
	z := deg.Z * math.Pi / 180.0
	return mgl64.HomogRotate3DZ(z).Mul4(mgl64.HomogRotate3DY(y)).Mul4(mgl64.HomogRotate3DX(x))
}

// Scale returns a uniform scaling matrix.
func Scale(k float64) mgl64.Mat4 {
	return mgl64.Scale3D(k, k, k)
}
