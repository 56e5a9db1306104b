package mesh

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// OMSH buffer file errors.
var (
	ErrInvalidMeshMagic       = errors.New("invalid mesh magic: expected 'OMSH'")
	ErrUnsupportedMeshVersion = errors.New("unsupported mesh version")
	ErrTruncatedMeshData      = errors.New("truncated mesh data")
	ErrInvalidMeshIndex       = errors.New("mesh index out of range")
)

const (
	meshMagic   = "OMSH"
	meshVersion = 1
)

// meshHeader is the fixed 16-byte file header.
type meshHeader struct {
	Magic       [4]byte
	Version     uint8
	Mode        uint8
	Reserved    uint16
	VertexCount uint32
	IndexCount  uint32
}

// WriteTo writes the mesh in little-endian OMSH layout: header, vertices as
// six float32 each (position then color), then uint16 indices.
func (m *Mesh) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	cw := &countingWriter{w: bw}

	hdr := meshHeader{
		Version:     meshVersion,
		Mode:        uint8(m.Mode),
		VertexCount: uint32(len(m.Vertices)),
		IndexCount:  uint32(len(m.Indices)),
	}
	copy(hdr.Magic[:], meshMagic)

	if err := binary.Write(cw, binary.LittleEndian, &hdr); err != nil {
		return cw.n, fmt.Errorf("writing header: %w", err)
	}
	if err := binary.Write(cw, binary.LittleEndian, m.Vertices); err != nil {
		return cw.n, fmt.Errorf("writing vertices: %w", err)
	}
	if err := binary.Write(cw, binary.LittleEndian, m.Indices); err != nil {
		return cw.n, fmt.Errorf("writing indices: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadMesh reads an OMSH buffer file. Bounds are recomputed from the vertices.
func ReadMesh(r io.Reader) (*Mesh, error) {
	var hdr meshHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedMeshData)
	}
	if string(hdr.Magic[:]) != meshMagic {
		return nil, ErrInvalidMeshMagic
	}
	if hdr.Version != meshVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMeshVersion, hdr.Version)
	}
	mode := DrawMode(hdr.Mode)
	if mode != DrawTriangles && mode != DrawLines {
		return nil, fmt.Errorf("unknown draw mode %d", hdr.Mode)
	}

	// Counts come from the file; read in chunks so a corrupt header cannot
	// force a huge allocation before data runs out.
	vertices, err := readChunked[Vertex](r, int(hdr.VertexCount))
	if err != nil {
		return nil, fmt.Errorf("%w: reading vertices", ErrTruncatedMeshData)
	}
	indices, err := readChunked[uint16](r, int(hdr.IndexCount))
	if err != nil {
		return nil, fmt.Errorf("%w: reading indices", ErrTruncatedMeshData)
	}

	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("%w: index %d is %d, have %d vertices", ErrInvalidMeshIndex, i, idx, len(vertices))
		}
	}

	m := &Mesh{Vertices: vertices, Indices: indices, Mode: mode}
	for i, v := range vertices {
		if i == 0 {
			m.Bounds = Bounds{Min: v.Position, Max: v.Position}
			continue
		}
		updateBounds(&m.Bounds, v.Position)
	}
	return m, nil
}

func readChunked[T any](r io.Reader, count int) ([]T, error) {
	const chunk = 4096
	out := make([]T, 0, min(count, chunk))
	for len(out) < count {
		n := min(count-len(out), chunk)
		part := make([]T, n)
		if err := binary.Read(r, binary.LittleEndian, part); err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
