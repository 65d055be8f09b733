package geometry

// Segment is an unordered pair of points, typically one cut edge
// produced by intersecting a triangle with a plane
type Segment struct {
	A, B Vector3
}

// Loop is an ordered point chain assembled from segments. Closed is
// true when the last point connects back to the first.
type Loop struct {
	Points []Vector3
	Closed bool
}

// OrderSegmentsIntoLoops chains unordered segments into loops by
// matching endpoints within the weld distance. Chains that meet
// themselves are marked closed; chains that run out of connecting
// segments stay open.
func OrderSegmentsIntoLoops(segments []Segment, weld float64) []Loop {
	if len(segments) == 0 {
		return nil
	}

	equal := func(a, b Vector3) bool {
		return a.Distance(b) <= weld
	}

	unused := make([]Segment, len(segments))
	copy(unused, segments)

	var loops []Loop
	for len(unused) > 0 {
		points := []Vector3{unused[0].A, unused[0].B}
		unused = unused[1:]

		closed := false
		// Grow from the tail first, then flip and grow the other way
		for dir := 0; dir < 2 && !closed; dir++ {
			for {
				tip := points[len(points)-1]
				found := false
				for j, seg := range unused {
					var next Vector3
					switch {
					case equal(seg.A, tip):
						next = seg.B
					case equal(seg.B, tip):
						next = seg.A
					default:
						continue
					}
					points = append(points, next)
					unused = append(unused[:j], unused[j+1:]...)
					found = true
					break
				}
				if len(points) >= 3 && equal(points[0], points[len(points)-1]) {
					points = points[:len(points)-1]
					closed = true
					break
				}
				if !found {
					break
				}
			}
			if dir == 0 && !closed {
				reverseInPlace(points)
			}
		}

		if len(points) >= 2 {
			loops = append(loops, Loop{Points: points, Closed: closed})
		}
	}
	return loops
}

func reverseInPlace(points []Vector3) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}
