package mesh

// appendTriangles appends one triangle for 3 corners, or two triangles fanned
// from corner 0 for 4 corners. Winding order is preserved.
func appendTriangles(dst []uint16, c []uint16) ([]uint16, error) {
	switch len(c) {
	case 3:
		return append(dst, c[0], c[1], c[2]), nil
	case 4:
		return append(dst, c[0], c[1], c[2], c[0], c[2], c[3]), nil
	default:
		return dst, ErrPolygonShape
	}
}
