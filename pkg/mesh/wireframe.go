package mesh

// edgeSet holds undirected edges as both directed pairs, so membership can be
// tested with a single lookup whichever way the edge is visited.
type edgeSet map[[2]uint16]struct{}

// add appends edge (a, b) unless it is already present in either direction.
func (s edgeSet) add(dst []uint16, a, b uint16) []uint16 {
	if _, ok := s[[2]uint16{a, b}]; ok {
		return dst
	}
	s[[2]uint16{a, b}] = struct{}{}
	s[[2]uint16{b, a}] = struct{}{}
	return append(dst, a, b)
}

// appendPolygon appends the new edges of a triangle or quad.
//
// QuadTessellate outlines a quad as triangles (0,1,2) and (0,2,3), so the
// diagonal is drawn once. QuadKeep draws only the quad's own four edges.
func (s edgeSet) appendPolygon(dst []uint16, c []uint16, quad QuadMode) ([]uint16, error) {
	if len(c) != 3 && len(c) != 4 {
		return dst, ErrPolygonShape
	}

	dst = s.add(dst, c[0], c[1])
	dst = s.add(dst, c[1], c[2])

	if quad == QuadTessellate {
		dst = s.add(dst, c[2], c[0])
		if len(c) == 4 {
			dst = s.add(dst, c[0], c[2])
			dst = s.add(dst, c[2], c[3])
			dst = s.add(dst, c[3], c[0])
		}
		return dst, nil
	}

	if len(c) == 3 {
		return s.add(dst, c[2], c[0]), nil
	}
	dst = s.add(dst, c[2], c[3])
	dst = s.add(dst, c[3], c[0])
	return dst, nil
}

// appendPolyline appends the new segments of an open polyline.
func (s edgeSet) appendPolyline(dst []uint16, c []uint16) ([]uint16, error) {
	if len(c) < 2 {
		return dst, ErrPolygonShape
	}
	for i := 1; i < len(c); i++ {
		dst = s.add(dst, c[i-1], c[i])
	}
	return dst, nil
}
