package world

import "math"

// PlanarDistance returns the 2D distance between two positions, ignoring
// elevation. Fuel and refuel checks only care about ground distance.
func PlanarDistance(a, b Vec3) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// ForwardPosition projects a point dist units in front of origin based on the
// yaw component of rot (rot.Z, radians).
func ForwardPosition(origin, rot Vec3, dist float64) Vec3 {
	return Vec3{
		X: origin.X - math.Sin(rot.Z)*dist,
		Y: origin.Y + math.Cos(rot.Z)*dist,
		Z: origin.Z,
	}
}

// NearestVehicle returns the vehicle closest to the point just in front of
// the given origin/rotation, limited to maxDistance. Returns false when no
// candidate is in range.
func NearestVehicle(origin, rot Vec3, candidates []Vehicle, maxDistance float64) (Vehicle, bool) {
	front := ForwardPosition(origin, rot, 1)

	best := Vehicle{}
	bestDist := maxDistance
	found := false

	for _, v := range candidates {
		d := PlanarDistance(front, v.Position)
		if d <= bestDist {
			best = v
			bestDist = d
			found = true
		}
	}

	return best, found
}
