package core

import "math"

// SamplePointInUnitSphere maps three uniform numbers in [0, 1) to a point
// uniformly distributed inside the unit sphere. It uses the inverse CDF
// rather than rejection, so every sample costs the same.
func SamplePointInUnitSphere(sample Vec3) Vec3 {
	// r = ∛u₁ accounts for volume growing with r³
	r := math.Cbrt(sample.X)
	phi := 2 * math.Pi * sample.Y
	cosTheta := 2*sample.Z - 1
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))

	return NewVec3(
		r*sinTheta*math.Cos(phi),
		r*sinTheta*math.Sin(phi),
		r*cosTheta,
	)
}
