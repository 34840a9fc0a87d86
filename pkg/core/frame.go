package core

import "math"

// Frame is an orthonormal basis stored as its three axes (the columns of a rotation matrix)
type Frame struct {
	X, Y, Z Vec3
}

// FrameZ builds an orthonormal frame whose Z axis is the unit vector zAxis.
// The X axis is taken orthogonal to zAxis in the XY plane when |y| > |x| and
// in the XZ plane otherwise, so the result is a fixed function of zAxis.
func FrameZ(zAxis Vec3) Frame {
	var xAxis Vec3
	if math.Abs(zAxis.Y) > math.Abs(zAxis.X) {
		rcpLength := 1.0 / math.Sqrt(zAxis.X*zAxis.X+zAxis.Y*zAxis.Y)
		xAxis = NewVec3(zAxis.Y, -zAxis.X, 0).Multiply(rcpLength)
	} else {
		rcpLength := 1.0 / math.Sqrt(zAxis.X*zAxis.X+zAxis.Z*zAxis.Z)
		xAxis = NewVec3(zAxis.Z, 0, -zAxis.X).Multiply(rcpLength)
	}
	return Frame{
		X: xAxis,
		Y: zAxis.Cross(xAxis),
		Z: zAxis,
	}
}

// ToWorld transforms a vector expressed in the frame to world space
func (f Frame) ToWorld(local Vec3) Vec3 {
	return f.X.Multiply(local.X).Add(f.Y.Multiply(local.Y)).Add(f.Z.Multiply(local.Z))
}

// ToLocal transforms a world space vector into the frame (inverse of ToWorld)
func (f Frame) ToLocal(world Vec3) Vec3 {
	return Vec3{
		X: f.X.Dot(world),
		Y: f.Y.Dot(world),
		Z: f.Z.Dot(world),
	}
}
