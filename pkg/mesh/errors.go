package mesh

import (
	"errors"
	"fmt"
)

// Mesh build errors.
var (
	ErrPolygonShape  = errors.New("polygon is not a triangle or quad")
	ErrIndexOverflow = errors.New("mesh exceeds 16-bit index range")
)

// PolygonShapeError reports a polygon (or polyline) with an unsupported
// corner count. It matches ErrPolygonShape with errors.Is.
type PolygonShapeError struct {
	Polygon int  // index in OBJ.Polygons, or OBJ.Lines when Line is set
	Line    bool // element is a polyline from an "l" statement
	Corners int
}

func (e *PolygonShapeError) Error() string {
	element := "polygon"
	if e.Line {
		element = "line"
	}
	return fmt.Sprintf("%s %d has %d corners: %v", element, e.Polygon, e.Corners, ErrPolygonShape)
}

// Unwrap returns ErrPolygonShape.
func (e *PolygonShapeError) Unwrap() error {
	return ErrPolygonShape
}
