package mesh

import (
	"errors"
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/pkg/formats"
)

// cornerKey identifies a distinct output vertex. attr is -1 when the corner
// carries no attribute under the active mode.
type cornerKey struct {
	pos  int
	attr int
}

// indexer deduplicates corners into a vertex list for one conversion.
//
// Preconditions: every corner index is in range for the table it references.
// The OBJ parser guarantees this; hand-built models must too.
type indexer struct {
	obj      *formats.OBJ
	attr     AttributeMode
	vertices []Vertex
	lookup   map[cornerKey]uint16
	bounds   Bounds
}

func newIndexer(obj *formats.OBJ, attr AttributeMode) *indexer {
	return &indexer{
		obj:    obj,
		attr:   attr,
		lookup: make(map[cornerKey]uint16, len(obj.Positions)),
	}
}

func (ix *indexer) key(kind formats.PolygonKind, c formats.Corner) cornerKey {
	switch {
	case ix.attr == AttrTexCoord && kind.HasTexCoord():
		return cornerKey{pos: c.Position, attr: c.TexCoord}
	case ix.attr == AttrNormal && kind.HasNormal():
		return cornerKey{pos: c.Position, attr: c.Normal}
	default:
		return cornerKey{pos: c.Position, attr: -1}
	}
}

// index returns the vertex index for a corner, appending a new vertex the
// first time its key is seen.
func (ix *indexer) index(kind formats.PolygonKind, c formats.Corner) (uint16, error) {
	k := ix.key(kind, c)
	if idx, ok := ix.lookup[k]; ok {
		return idx, nil
	}
	if len(ix.vertices) > gomath.MaxUint16 {
		return 0, ErrIndexOverflow
	}

	p := ix.obj.Positions[k.pos]
	v := Vertex{
		Position: [3]float32{p[0], p[1], p[2]},
		Color:    FallbackColor,
	}
	if k.attr >= 0 {
		if ix.attr == AttrTexCoord {
			v.Color = ix.obj.TexCoords[k.attr]
		} else {
			v.Color = ix.obj.Normals[k.attr]
		}
	}

	idx := uint16(len(ix.vertices))
	if idx == 0 {
		ix.bounds = Bounds{Min: v.Position, Max: v.Position}
	} else {
		updateBounds(&ix.bounds, v.Position)
	}
	ix.vertices = append(ix.vertices, v)
	ix.lookup[k] = idx
	return idx, nil
}

// corners resolves a polygon's corners into buf, reusing its storage.
func (ix *indexer) corners(buf []uint16, kind formats.PolygonKind, corners []formats.Corner) ([]uint16, error) {
	buf = buf[:0]
	for _, c := range corners {
		idx, err := ix.index(kind, c)
		if err != nil {
			return buf, err
		}
		buf = append(buf, idx)
	}
	return buf, nil
}

func (ix *indexer) mesh(indices []uint16, mode DrawMode) *Mesh {
	return &Mesh{
		Vertices: ix.vertices,
		Indices:  indices,
		Mode:     mode,
		Bounds:   ix.bounds,
	}
}

// Build converts every polygon of obj with the given emission rule.
// The first failing polygon aborts the conversion and no mesh is returned.
func Build(obj *formats.OBJ, opts BuildOptions) (*Mesh, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	m, err := build(obj, opts.Rule, opts.Attribute)
	if err != nil {
		log.Warn("mesh build failed",
			zap.Stringer("rule", opts.Rule),
			zap.Error(err))
		return nil, err
	}

	log.Debug("mesh built",
		zap.Stringer("rule", opts.Rule),
		zap.Stringer("attribute", opts.Attribute),
		zap.Int("polygons", len(obj.Polygons)),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("indices", len(m.Indices)))
	return m, nil
}

func build(obj *formats.OBJ, rule Rule, attr AttributeMode) (*Mesh, error) {
	if rule > RuleWireframeKeep {
		return nil, fmt.Errorf("unknown emission rule %d", rule)
	}

	ix := newIndexer(obj, attr)
	var indices []uint16
	var edges edgeSet
	if rule != RuleTriangles {
		edges = make(edgeSet)
	}

	// Enough space for one quad; larger polygons grow it and fail in the rule.
	var scratch [4]uint16
	for i, poly := range obj.Polygons {
		buf, err := ix.corners(scratch[:0], poly.Kind, poly.Corners)
		if err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}

		switch rule {
		case RuleTriangles:
			indices, err = appendTriangles(indices, buf)
		case RuleWireframeTessellate:
			indices, err = edges.appendPolygon(indices, buf, QuadTessellate)
		case RuleWireframeKeep:
			indices, err = edges.appendPolygon(indices, buf, QuadKeep)
		}
		if errors.Is(err, ErrPolygonShape) {
			return nil, &PolygonShapeError{Polygon: i, Corners: len(buf)}
		}
		if err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}
	}

	return ix.mesh(indices, rule.DrawMode()), nil
}

// Triangles converts obj into a triangle mesh.
func Triangles(obj *formats.OBJ, attr AttributeMode) (*Mesh, error) {
	return Build(obj, BuildOptions{Rule: RuleTriangles, Attribute: attr})
}

// Wireframe converts obj into a line mesh of unique polygon edges.
func Wireframe(obj *formats.OBJ, quad QuadMode, attr AttributeMode) (*Mesh, error) {
	rule := RuleWireframeTessellate
	if quad == QuadKeep {
		rule = RuleWireframeKeep
	}
	return Build(obj, BuildOptions{Rule: rule, Attribute: attr})
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
