package mesh

import (
	"errors"
	"strings"
	"testing"

	"github.com/Faultbox/objmesh/pkg/formats"
)

// assertUniqueEdges fails if any undirected edge appears twice.
func assertUniqueEdges(t *testing.T, m *Mesh) {
	t.Helper()
	if len(m.Indices)%2 != 0 {
		t.Fatalf("line mesh has odd index count %d", len(m.Indices))
	}
	seen := make(map[[2]uint16]bool)
	for i := 0; i < len(m.Indices); i += 2 {
		a, b := m.Indices[i], m.Indices[i+1]
		if seen[[2]uint16{a, b}] || seen[[2]uint16{b, a}] {
			t.Fatalf("edge (%d,%d) emitted twice", a, b)
		}
		seen[[2]uint16{a, b}] = true
	}
}

// twoQuads returns a 3x2 grid of positions split into two quads sharing
// the edge between positions 1 and 2.
func twoQuads() *formats.OBJ {
	return &formats.OBJ{
		Positions: [][4]float32{
			{0, 0, 0, 1}, {1, 0, 0, 1}, {1, 1, 0, 1}, {0, 1, 0, 1},
			{2, 0, 0, 1}, {2, 1, 0, 1},
		},
		Polygons: []formats.Polygon{
			positionPolygon(0, 1, 2, 3),
			positionPolygon(1, 4, 5, 2),
		},
	}
}

func TestWireframe_SingleQuad(t *testing.T) {
	obj := &formats.OBJ{
		Positions: unitSquare(),
		Polygons:  []formats.Polygon{positionPolygon(0, 1, 2, 3)},
	}

	tests := []struct {
		name string
		quad QuadMode
		want []uint16
	}{
		{"keep", QuadKeep, []uint16{0, 1, 1, 2, 2, 3, 3, 0}},
		{"tessellate", QuadTessellate, []uint16{0, 1, 1, 2, 2, 0, 2, 3, 3, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Wireframe(obj, tt.quad, AttrNone)
			if err != nil {
				t.Fatalf("Wireframe failed: %v", err)
			}
			if !equalIndices(m.Indices, tt.want) {
				t.Errorf("expected edges %v, got %v", tt.want, m.Indices)
			}
			if m.Mode != DrawLines {
				t.Errorf("expected Lines mode, got %s", m.Mode)
			}
			if len(m.Vertices) != 4 {
				t.Errorf("expected 4 vertices, got %d", len(m.Vertices))
			}
			assertUniqueEdges(t, m)
		})
	}
}

func TestWireframe_Triangle(t *testing.T) {
	obj := &formats.OBJ{
		Positions: unitSquare(),
		Polygons:  []formats.Polygon{positionPolygon(0, 1, 2)},
	}
	want := []uint16{0, 1, 1, 2, 2, 0}

	for _, quad := range []QuadMode{QuadKeep, QuadTessellate} {
		m, err := Wireframe(obj, quad, AttrNone)
		if err != nil {
			t.Fatalf("Wireframe failed: %v", err)
		}
		if !equalIndices(m.Indices, want) {
			t.Errorf("quad mode %d: expected %v, got %v", quad, want, m.Indices)
		}
	}
}

func TestWireframe_SharedEdges(t *testing.T) {
	tests := []struct {
		name  string
		quad  QuadMode
		edges int
	}{
		// 4 + 3 outline edges, the shared 1-2 edge drawn once
		{"keep", QuadKeep, 7},
		// plus one diagonal per quad
		{"tessellate", QuadTessellate, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Wireframe(twoQuads(), tt.quad, AttrNone)
			if err != nil {
				t.Fatalf("Wireframe failed: %v", err)
			}
			if m.PrimitiveCount() != tt.edges {
				t.Errorf("expected %d edges, got %d", tt.edges, m.PrimitiveCount())
			}
			assertIndicesInRange(t, m)
			assertUniqueEdges(t, m)
		})
	}
}

func TestWireframe_TrianglesSharingDiagonal(t *testing.T) {
	// Two triangles covering a quad revisit the diagonal in reverse.
	obj := &formats.OBJ{
		Positions: unitSquare(),
		Polygons: []formats.Polygon{
			positionPolygon(0, 1, 2),
			positionPolygon(2, 3, 0),
		},
	}

	m, err := Wireframe(obj, QuadKeep, AttrNone)
	if err != nil {
		t.Fatalf("Wireframe failed: %v", err)
	}
	if m.PrimitiveCount() != 5 {
		t.Errorf("expected 5 edges, got %d", m.PrimitiveCount())
	}
	assertUniqueEdges(t, m)
}

func TestWireframe_ConversionsAreIndependent(t *testing.T) {
	obj := twoQuads()
	first, err := Wireframe(obj, QuadKeep, AttrNone)
	if err != nil {
		t.Fatalf("Wireframe failed: %v", err)
	}
	second, err := Wireframe(obj, QuadKeep, AttrNone)
	if err != nil {
		t.Fatalf("Wireframe failed: %v", err)
	}
	if !equalIndices(first.Indices, second.Indices) {
		t.Errorf("repeated conversion differs: %v vs %v", first.Indices, second.Indices)
	}
}

func TestLines(t *testing.T) {
	obj := &formats.OBJ{
		Positions: unitSquare(),
		TexCoords: [][3]float32{{0.25, 0.5, 0}},
		Lines: []formats.Polyline{
			{Kind: formats.PolyP, Corners: []formats.Corner{{Position: 0}, {Position: 1}, {Position: 2}}},
			{Kind: formats.PolyP, Corners: []formats.Corner{{Position: 2}, {Position: 1}, {Position: 3}}},
			{Kind: formats.PolyPT, Corners: []formats.Corner{{Position: 3, TexCoord: 0}, {Position: 0, TexCoord: 0}}},
		},
	}

	m, err := Lines(obj, AttrTexCoord)
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	// 0-1, 1-2, (2-1 skipped), 1-3, then the textured 3'-0'
	if m.PrimitiveCount() != 4 {
		t.Errorf("expected 4 segments, got %d: %v", m.PrimitiveCount(), m.Indices)
	}
	if len(m.Vertices) != 6 {
		t.Errorf("expected 6 vertices, got %d", len(m.Vertices))
	}
	if m.Vertices[5].Color != [3]float32{0.25, 0.5, 0} {
		t.Errorf("expected texcoord color, got %v", m.Vertices[5].Color)
	}
	assertIndicesInRange(t, m)
	assertUniqueEdges(t, m)
}

func TestLines_RejectsSinglePoint(t *testing.T) {
	obj := &formats.OBJ{
		Positions: unitSquare(),
		Lines: []formats.Polyline{
			{Kind: formats.PolyP, Corners: []formats.Corner{{Position: 0}}},
		},
	}
	m, err := Lines(obj, AttrNone)
	if !errors.Is(err, ErrPolygonShape) {
		t.Fatalf("expected ErrPolygonShape, got %v", err)
	}
	if m != nil {
		t.Error("expected no mesh on failure")
	}

	var shapeErr *PolygonShapeError
	if !errors.As(err, &shapeErr) || !shapeErr.Line {
		t.Fatalf("expected a line PolygonShapeError, got %#v", err)
	}
	if want := "line 0 has 1 corners"; !strings.HasPrefix(err.Error(), want) {
		t.Errorf("expected message starting %q, got %q", want, err.Error())
	}
}
