package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/objmesh/pkg/formats"
)

// Lines converts the model's "l" elements into a line mesh. Each polyline
// contributes its consecutive segments; segments shared between polylines
// are emitted once. Polygons are ignored.
func Lines(obj *formats.OBJ, attr AttributeMode) (*Mesh, error) {
	ix := newIndexer(obj, attr)
	edges := make(edgeSet)
	var indices []uint16
	var buf []uint16

	for i, line := range obj.Lines {
		var err error
		buf, err = ix.corners(buf, line.Kind, line.Corners)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		indices, err = edges.appendPolyline(indices, buf)
		if errors.Is(err, ErrPolygonShape) {
			return nil, &PolygonShapeError{Polygon: i, Line: true, Corners: len(buf)}
		}
	}

	return ix.mesh(indices, DrawLines), nil
}
