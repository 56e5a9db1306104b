package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/objmesh/pkg/encoding"
)

// OBJ format errors.
var (
	ErrMalformedOBJ    = errors.New("malformed OBJ statement")
	ErrInvalidOBJIndex = errors.New("invalid OBJ index")
)

// PolygonKind tells which per-corner attributes a polygon carries.
type PolygonKind uint8

// Polygon kinds, one per face corner form.
const (
	PolyP   PolygonKind = iota // f 1 2 3
	PolyPN                     // f 1//1 2//2 3//3
	PolyPT                     // f 1/1 2/2 3/3
	PolyPTN                    // f 1/1/1 2/2/2 3/3/3
)

// String returns the corner form name.
func (k PolygonKind) String() string {
	switch k {
	case PolyP:
		return "P"
	case PolyPN:
		return "PN"
	case PolyPT:
		return "PT"
	case PolyPTN:
		return "PTN"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// HasTexCoord reports whether corners of this kind reference a texture coordinate.
func (k PolygonKind) HasTexCoord() bool {
	return k == PolyPT || k == PolyPTN
}

// HasNormal reports whether corners of this kind reference a normal.
func (k PolygonKind) HasNormal() bool {
	return k == PolyPN || k == PolyPTN
}

// Corner is one polygon vertex occurrence. Indices are zero-based; fields the
// owning polygon's kind does not carry are zero and must be ignored.
type Corner struct {
	Position int
	TexCoord int
	Normal   int
}

// Polygon is an ordered list of corners sharing one corner form.
type Polygon struct {
	Kind    PolygonKind
	Corners []Corner
}

// Polyline is an "l" element. Only PolyP and PolyPT kinds occur.
type Polyline struct {
	Kind    PolygonKind
	Corners []Corner
}

// OBJ is a parsed Wavefront OBJ polygon soup.
type OBJ struct {
	Positions [][4]float32
	TexCoords [][3]float32
	Normals   [][3]float32
	Polygons  []Polygon
	Lines     []Polyline

	// Names in file order, decoded to UTF-8.
	Objects   []string
	Groups    []string
	Materials []string
	MtlLibs   []string
}

// OBJStats summarizes an OBJ model.
type OBJStats struct {
	Positions int
	TexCoords int
	Normals   int
	Polygons  int
	Lines     int
	Triangles int
	Quads     int
	NGons     int // polygons with fewer than 3 or more than 4 corners
	ByKind    map[PolygonKind]int
}

// Stats returns element counts for the model.
func (o *OBJ) Stats() OBJStats {
	s := OBJStats{
		Positions: len(o.Positions),
		TexCoords: len(o.TexCoords),
		Normals:   len(o.Normals),
		Polygons:  len(o.Polygons),
		Lines:     len(o.Lines),
		ByKind:    make(map[PolygonKind]int),
	}
	for _, p := range o.Polygons {
		s.ByKind[p.Kind]++
		switch len(p.Corners) {
		case 3:
			s.Triangles++
		case 4:
			s.Quads++
		default:
			s.NGons++
		}
	}
	return s
}

// ParseOptions controls OBJ parsing.
type ParseOptions struct {
	// NameEncoding is the code page of o/g/usemtl/mtllib names ("" means UTF-8).
	NameEncoding string
}

// ParseOBJ parses an OBJ model from raw bytes.
func ParseOBJ(data []byte, opts ParseOptions) (*OBJ, error) {
	return ParseOBJReader(bytes.NewReader(data), opts)
}

// ParseOBJFile parses an OBJ model from disk.
func ParseOBJFile(path string, opts ParseOptions) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	defer f.Close()
	return ParseOBJReader(f, opts)
}

// ParseOBJReader parses an OBJ model from r.
func ParseOBJReader(r io.Reader, opts ParseOptions) (*OBJ, error) {
	if _, err := encoding.Lookup(opts.NameEncoding); err != nil {
		return nil, err
	}

	obj := &OBJ{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if err := obj.parseStatement(line, opts); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ data: %w", err)
	}
	return obj, nil
}

func (o *OBJ) parseStatement(line string, opts ParseOptions) error {
	fields := strings.Fields(line)
	args := fields[1:]

	switch fields[0] {
	case "v":
		if len(args) < 3 || len(args) > 4 {
			return fmt.Errorf("%w: v expects 3 or 4 values, got %d", ErrMalformedOBJ, len(args))
		}
		vals := [4]float32{0, 0, 0, 1}
		if err := parseFloats(args, vals[:]); err != nil {
			return err
		}
		o.Positions = append(o.Positions, vals)
	case "vt":
		if len(args) < 1 || len(args) > 3 {
			return fmt.Errorf("%w: vt expects 1 to 3 values, got %d", ErrMalformedOBJ, len(args))
		}
		var vals [3]float32
		if err := parseFloats(args, vals[:]); err != nil {
			return err
		}
		o.TexCoords = append(o.TexCoords, vals)
	case "vn":
		if len(args) != 3 {
			return fmt.Errorf("%w: vn expects 3 values, got %d", ErrMalformedOBJ, len(args))
		}
		var vals [3]float32
		if err := parseFloats(args, vals[:]); err != nil {
			return err
		}
		o.Normals = append(o.Normals, vals)
	case "f":
		kind, corners, err := o.parseCorners(args)
		if err != nil {
			return err
		}
		o.Polygons = append(o.Polygons, Polygon{Kind: kind, Corners: corners})
	case "l":
		kind, corners, err := o.parseCorners(args)
		if err != nil {
			return err
		}
		if kind.HasNormal() {
			return fmt.Errorf("%w: l elements cannot reference normals", ErrMalformedOBJ)
		}
		o.Lines = append(o.Lines, Polyline{Kind: kind, Corners: corners})
	case "o":
		o.Objects = append(o.Objects, decodeName(line, opts))
	case "g":
		o.Groups = append(o.Groups, decodeName(line, opts))
	case "usemtl":
		o.Materials = append(o.Materials, decodeName(line, opts))
	case "mtllib":
		o.MtlLibs = append(o.MtlLibs, decodeName(line, opts))
	}
	return nil
}

// decodeName returns everything after the statement keyword, decoded.
func decodeName(line string, opts ParseOptions) string {
	name := ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		name = strings.TrimSpace(line[i:])
	}
	return encoding.DecodeName([]byte(name), opts.NameEncoding)
}

func parseFloats(args []string, dst []float32) error {
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return fmt.Errorf("%w: bad number %q", ErrMalformedOBJ, a)
		}
		dst[i] = float32(v)
	}
	return nil
}

// parseCorners parses face or line corners. All corners must share one form.
func (o *OBJ) parseCorners(args []string) (PolygonKind, []Corner, error) {
	if len(args) == 0 {
		return 0, nil, fmt.Errorf("%w: element without corners", ErrMalformedOBJ)
	}

	corners := make([]Corner, len(args))
	var kind PolygonKind
	for i, a := range args {
		k, c, err := o.parseCorner(a)
		if err != nil {
			return 0, nil, err
		}
		if i == 0 {
			kind = k
		} else if k != kind {
			return 0, nil, fmt.Errorf("%w: corner %q is %s, element is %s", ErrMalformedOBJ, a, k, kind)
		}
		corners[i] = c
	}
	return kind, corners, nil
}

func (o *OBJ) parseCorner(s string) (PolygonKind, Corner, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 || parts[0] == "" {
		return 0, Corner{}, fmt.Errorf("%w: bad corner %q", ErrMalformedOBJ, s)
	}

	var c Corner
	var err error
	if c.Position, err = resolveIndex(parts[0], len(o.Positions)); err != nil {
		return 0, Corner{}, fmt.Errorf("position of %q: %w", s, err)
	}

	hasTex := len(parts) > 1 && parts[1] != ""
	hasNorm := len(parts) > 2 && parts[2] != ""
	if len(parts) == 3 && !hasNorm {
		return 0, Corner{}, fmt.Errorf("%w: empty normal in %q", ErrMalformedOBJ, s)
	}
	if len(parts) == 2 && !hasTex {
		return 0, Corner{}, fmt.Errorf("%w: empty texture coordinate in %q", ErrMalformedOBJ, s)
	}

	if hasTex {
		if c.TexCoord, err = resolveIndex(parts[1], len(o.TexCoords)); err != nil {
			return 0, Corner{}, fmt.Errorf("texture coordinate of %q: %w", s, err)
		}
	}
	if hasNorm {
		if c.Normal, err = resolveIndex(parts[2], len(o.Normals)); err != nil {
			return 0, Corner{}, fmt.Errorf("normal of %q: %w", s, err)
		}
	}

	switch {
	case hasTex && hasNorm:
		return PolyPTN, c, nil
	case hasTex:
		return PolyPT, c, nil
	case hasNorm:
		return PolyPN, c, nil
	default:
		return PolyP, c, nil
	}
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index into a
// zero-based index into a table of the given current length.
func resolveIndex(s string, length int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidOBJIndex, s)
	}
	var idx int
	switch {
	case n > 0:
		idx = n - 1
	case n < 0:
		idx = length + n
	default:
		return 0, fmt.Errorf("%w: index 0 is not allowed", ErrInvalidOBJIndex)
	}
	if idx < 0 || idx >= length {
		return 0, fmt.Errorf("%w: %d out of range (have %d)", ErrInvalidOBJIndex, n, length)
	}
	return idx, nil
}
