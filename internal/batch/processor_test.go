package batch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/objmesh/pkg/formats"
	"github.com/Faultbox/objmesh/pkg/mesh"
)

const quadOBJ = `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3 4/4
l 1 3
`

const pentagonOBJ = `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 2 0
f 1 2 3 4 5
`

// writeInputs writes name -> content pairs into dir and returns their paths.
func writeInputs(t *testing.T, dir string, files map[string]string, order []string) []string {
	t.Helper()
	var paths []string
	for _, name := range order {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(files[name]), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestRun(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")

	order := []string{"a.obj", "bad.obj", "c.obj", "missing.obj"}
	inputs := writeInputs(t, inDir, map[string]string{
		"a.obj":   quadOBJ,
		"bad.obj": pentagonOBJ,
		"c.obj":   quadOBJ,
	}, order[:3])
	inputs = append(inputs, filepath.Join(inDir, "missing.obj"))

	results := Run(Config{
		OutputDir: outDir,
		Mode:      "triangles",
		Attribute: mesh.AttrTexCoord,
		Workers:   2,
	}, inputs)

	if len(results) != len(inputs) {
		t.Fatalf("expected %d results, got %d", len(inputs), len(results))
	}

	for i, r := range results {
		if r.Input != inputs[i] {
			t.Errorf("result %d: expected input %s, got %s", i, inputs[i], r.Input)
		}
	}

	for _, i := range []int{0, 2} {
		r := results[i]
		if r.Err != nil {
			t.Fatalf("%s: unexpected error %v", r.Input, r.Err)
		}
		if r.Vertices != 4 || r.Indices != 6 {
			t.Errorf("%s: expected 4 vertices and 6 indices, got %d and %d", r.Input, r.Vertices, r.Indices)
		}

		f, err := os.Open(r.Output)
		if err != nil {
			t.Fatalf("failed to open output: %v", err)
		}
		m, err := mesh.ReadMesh(f)
		f.Close()
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if m.Mode != mesh.DrawTriangles || len(m.Indices) != 6 {
			t.Errorf("unexpected output mesh: mode %s, %d indices", m.Mode, len(m.Indices))
		}
	}

	if !errors.Is(results[1].Err, mesh.ErrPolygonShape) {
		t.Errorf("expected ErrPolygonShape for bad.obj, got %v", results[1].Err)
	}
	if _, err := os.Stat(results[1].Output); !os.IsNotExist(err) {
		t.Error("failed conversion must not write output")
	}
	if results[3].Err == nil {
		t.Error("expected error for missing input")
	}
}

func TestRun_DefaultWorkers(t *testing.T) {
	inputs := writeInputs(t, t.TempDir(), map[string]string{"q.obj": quadOBJ}, []string{"q.obj"})
	results := Run(Config{OutputDir: t.TempDir(), Mode: "keep"}, inputs)
	if results[0].Err != nil {
		t.Fatalf("unexpected error: %v", results[0].Err)
	}
	if results[0].Indices != 8 {
		t.Errorf("expected 8 indices for a kept quad, got %d", results[0].Indices)
	}
}

func TestRun_DuplicateOutputs(t *testing.T) {
	inDir := t.TempDir()
	for _, sub := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(inDir, sub), 0755); err != nil {
			t.Fatalf("failed to create %s: %v", sub, err)
		}
	}
	inputs := writeInputs(t, inDir, map[string]string{
		filepath.Join("a", "m.obj"): quadOBJ,
		filepath.Join("b", "m.obj"): "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n",
	}, []string{filepath.Join("a", "m.obj"), filepath.Join("b", "m.obj")})

	outDir := t.TempDir()
	results := Run(Config{OutputDir: outDir, Mode: "triangles", Workers: 2}, inputs)

	if results[0].Err != nil {
		t.Fatalf("first input should convert: %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, ErrDuplicateOutput) {
		t.Fatalf("expected ErrDuplicateOutput for second input, got %v", results[1].Err)
	}
	if results[1].Output != results[0].Output {
		t.Errorf("expected shared output path, got %s and %s", results[0].Output, results[1].Output)
	}

	f, err := os.Open(results[0].Output)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()
	m, err := mesh.ReadMesh(f)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if len(m.Vertices) != 4 {
		t.Errorf("expected the first input's 4 vertices in the output, got %d", len(m.Vertices))
	}
}

func TestConvert(t *testing.T) {
	obj, err := formats.ParseOBJ([]byte(quadOBJ), formats.ParseOptions{})
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	tests := []struct {
		mode    string
		indices int
		draw    mesh.DrawMode
	}{
		{"triangles", 6, mesh.DrawTriangles},
		{"tessellate", 10, mesh.DrawLines},
		{"keep", 8, mesh.DrawLines},
		{mesh.LinesMode, 2, mesh.DrawLines},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			m, err := Convert(obj, tt.mode, mesh.AttrNone, nil)
			if err != nil {
				t.Fatalf("Convert failed: %v", err)
			}
			if len(m.Indices) != tt.indices {
				t.Errorf("expected %d indices, got %d", tt.indices, len(m.Indices))
			}
			if m.Mode != tt.draw {
				t.Errorf("expected %s, got %s", tt.draw, m.Mode)
			}
		})
	}

	if _, err := Convert(obj, "points", mesh.AttrNone, nil); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestOutputPath(t *testing.T) {
	got := OutputPath("out", filepath.Join("models", "monkey.obj"))
	want := filepath.Join("out", "monkey.omsh")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
