// Package mesh converts OBJ polygon soups into indexed vertex/index buffers
// ready for GPU upload.
package mesh

import (
	"fmt"

	"go.uber.org/zap"
)

// FallbackColor is the vertex color for corners lacking the selected attribute.
var FallbackColor = [3]float32{1, 1, 1}

// Vertex is a GPU vertex. Color carries the selected attribute triple
// (texture coordinate or normal) or FallbackColor.
type Vertex struct {
	Position [3]float32
	Color    [3]float32
}

// DrawMode tells the renderer how to group the index buffer.
type DrawMode uint8

// Draw modes.
const (
	DrawTriangles DrawMode = iota // index triples
	DrawLines                     // index pairs
)

// String returns the draw mode name.
func (m DrawMode) String() string {
	switch m {
	case DrawTriangles:
		return "Triangles"
	case DrawLines:
		return "Lines"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// AttributeMode selects which per-corner attribute feeds the color channel.
type AttributeMode uint8

// Attribute modes.
const (
	AttrNone AttributeMode = iota
	AttrTexCoord
	AttrNormal
)

// String returns the attribute mode name.
func (a AttributeMode) String() string {
	switch a {
	case AttrNone:
		return "none"
	case AttrTexCoord:
		return "texcoord"
	case AttrNormal:
		return "normal"
	default:
		return fmt.Sprintf("unknown(%d)", a)
	}
}

// ParseAttributeMode parses "none", "texcoord" or "normal".
func ParseAttributeMode(s string) (AttributeMode, error) {
	switch s {
	case "", "none":
		return AttrNone, nil
	case "texcoord", "uv":
		return AttrTexCoord, nil
	case "normal":
		return AttrNormal, nil
	default:
		return 0, fmt.Errorf("unknown attribute mode %q", s)
	}
}

// QuadMode controls how wireframes outline quads.
type QuadMode uint8

// Quad modes.
const (
	QuadTessellate QuadMode = iota // two triangle outlines, diagonal included
	QuadKeep                       // original four edges only
)

// Rule is the per-polygon emission rule used by Build.
type Rule uint8

// Emission rules.
const (
	RuleTriangles Rule = iota
	RuleWireframeTessellate
	RuleWireframeKeep
)

// String returns the rule name as used in configuration.
func (r Rule) String() string {
	switch r {
	case RuleTriangles:
		return "triangles"
	case RuleWireframeTessellate:
		return "tessellate"
	case RuleWireframeKeep:
		return "keep"
	default:
		return fmt.Sprintf("unknown(%d)", r)
	}
}

// DrawMode returns the draw mode of meshes produced by the rule.
func (r Rule) DrawMode() DrawMode {
	if r == RuleTriangles {
		return DrawTriangles
	}
	return DrawLines
}

// ParseRule parses "triangles", "tessellate" or "keep".
func ParseRule(s string) (Rule, error) {
	switch s {
	case "", "triangles":
		return RuleTriangles, nil
	case "tessellate":
		return RuleWireframeTessellate, nil
	case "keep":
		return RuleWireframeKeep, nil
	default:
		return 0, fmt.Errorf("unknown emission rule %q", s)
	}
}

// LinesMode names the conversion of "l" elements. It is accepted wherever a
// rule name is, but is not a Rule: polylines go through Lines, not Build.
const LinesMode = "lines"

// CheckMode reports whether s names an emission rule or LinesMode.
func CheckMode(s string) error {
	if s == LinesMode {
		return nil
	}
	_, err := ParseRule(s)
	return err
}

// Mesh holds vertex and index buffers ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
	Mode     DrawMode
	Bounds   Bounds
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Center returns the midpoint of the box.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Size returns the box extent along each axis.
func (b Bounds) Size() [3]float32 {
	return [3]float32{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// PrimitiveCount returns the number of triangles or lines in the mesh.
func (m *Mesh) PrimitiveCount() int {
	if m.Mode == DrawTriangles {
		return len(m.Indices) / 3
	}
	return len(m.Indices) / 2
}

// BuildOptions contains options for mesh building.
type BuildOptions struct {
	// Rule selects triangles or one of the wireframe variants.
	Rule Rule
	// Attribute selects the attribute mapped into Vertex.Color.
	Attribute AttributeMode
	// Logger receives build summaries at debug level. Nil disables logging.
	Logger *zap.Logger
}
