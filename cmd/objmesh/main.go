// objmesh converts Wavefront OBJ models into GPU-ready vertex/index buffers.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/internal/batch"
	"github.com/Faultbox/objmesh/internal/config"
	"github.com/Faultbox/objmesh/internal/logger"
	"github.com/Faultbox/objmesh/internal/preview"
	"github.com/Faultbox/objmesh/pkg/formats"
	"github.com/Faultbox/objmesh/pkg/mesh"
)

// errUsage marks errors caused by bad arguments; the usage text follows.
var errUsage = errors.New("usage")

func main() {
	flag.Usage = printUsage
	config.ParseFlags()
	os.Exit(run(config.Args()))
}

// run executes one command and returns the process exit code. Deferred
// cleanup runs before main exits.
func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := logger.InitFromConfig(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error: initializing logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if err := dispatch(cfg, args[0], args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func dispatch(cfg *config.Config, command string, args []string) error {
	switch command {
	case "info":
		return cmdInfo(cfg, args)
	case "convert", "c":
		return cmdConvert(cfg, args)
	case "batch":
		return cmdBatch(cfg, args)
	case "preview":
		return cmdPreview(cfg, args)
	case "config":
		return cmdConfig(cfg, args)
	case "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage() {
	fmt.Println(`objmesh - OBJ to GPU buffer converter

Usage:
  objmesh [flags] <command> [options]

Commands:
  info <file.obj|file.omsh>           Show model or buffer information
  convert [-mode m] [-attr a] <in.obj> [out.omsh]
                                      Convert one model
  batch [-workers N] <out_dir> <file.obj>...
                                      Convert models in parallel into out_dir
  preview [-size N] [-axis x|y|z] <in.obj> <out.webp|out.png>
                                      Render a wireframe thumbnail
  config [path|save]                  Print the effective config, write it
                                      to path, or save it to the user config dir

Flags:
  -config path        Config file (default ./objmesh.yaml or user config dir)
  -mode m             triangles, tessellate, keep or lines
  -attr a             none, texcoord or normal
  -name-encoding e    Code page of OBJ names (euc-kr, shift-jis, latin1)
  -out dir            Default output directory for convert
  -workers N          Batch worker count (0 = one per CPU)
  -debug              Enable debug logging
  -log-file path      Also log to a rotating file

Examples:
  objmesh info monkey.obj
  objmesh convert -mode keep -attr none monkey.obj monkey_wire.omsh
  objmesh batch -workers 4 build/meshes models/*.obj
  objmesh -mode tessellate preview -size 512 monkey.obj monkey.webp`)
}

func usagef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}

// newFlagSet returns a subcommand flag set that reports errors instead of
// exiting.
func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

// bindMeshFlags registers -mode and -attr on fs, defaulting to cfg.
func bindMeshFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.Mesh.Mode, "mode", cfg.Mesh.Mode, "Conversion: triangles, tessellate, keep or lines")
	fs.StringVar(&cfg.Mesh.Attribute, "attr", cfg.Mesh.Attribute, "Color attribute: none, texcoord or normal")
}

type convertArgs struct {
	input  string
	output string
}

// parseConvertArgs parses `convert [-mode m] [-attr a] <in.obj> [out.omsh]`,
// applying flag values to cfg.
func parseConvertArgs(cfg *config.Config, args []string) (convertArgs, error) {
	fs := newFlagSet("convert")
	bindMeshFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return convertArgs{}, err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return convertArgs{}, usagef("objmesh convert [-mode m] [-attr a] <in.obj> [out.omsh]")
	}
	if err := cfg.Validate(); err != nil {
		return convertArgs{}, err
	}

	a := convertArgs{input: fs.Arg(0), output: batch.OutputPath(cfg.Output.Dir, fs.Arg(0))}
	if fs.NArg() == 2 {
		a.output = fs.Arg(1)
	}
	return a, nil
}

// parseBatchArgs parses `batch [-workers N] <out_dir> <file.obj>...`,
// applying flag values and out_dir to cfg. It returns the inputs.
func parseBatchArgs(cfg *config.Config, args []string) ([]string, error) {
	fs := newFlagSet("batch")
	fs.IntVar(&cfg.Batch.Workers, "workers", cfg.Batch.Workers, "Worker count (0 = one per CPU)")
	bindMeshFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 2 {
		return nil, usagef("objmesh batch [-workers N] <out_dir> <file.obj>...")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Output.Dir = fs.Arg(0)
	return fs.Args()[1:], nil
}

func attribute(cfg *config.Config) mesh.AttributeMode {
	// Validated by config.Load and the argument parsers.
	attr, _ := mesh.ParseAttributeMode(cfg.Mesh.Attribute)
	return attr
}

func parseOptions(cfg *config.Config) formats.ParseOptions {
	return formats.ParseOptions{NameEncoding: cfg.Input.NameEncoding}
}

func convertFile(cfg *config.Config, path string) (*mesh.Mesh, error) {
	obj, err := formats.ParseOBJFile(path, parseOptions(cfg))
	if err != nil {
		return nil, err
	}
	return batch.Convert(obj, cfg.Mesh.Mode, attribute(cfg), logger.Named("mesh").With(zap.String("input", path)))
}

func cmdInfo(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return usagef("objmesh info <file.obj|file.omsh>")
	}
	path := args[0]

	if strings.EqualFold(filepath.Ext(path), ".omsh") {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		m, err := mesh.ReadMesh(f)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		printMesh(path, m)
		return nil
	}

	obj, err := formats.ParseOBJFile(path, parseOptions(cfg))
	if err != nil {
		return err
	}
	s := obj.Stats()

	fmt.Printf("Model:      %s\n", path)
	fmt.Printf("Positions:  %d\n", s.Positions)
	fmt.Printf("TexCoords:  %d\n", s.TexCoords)
	fmt.Printf("Normals:    %d\n", s.Normals)
	fmt.Printf("Polygons:   %d (%d triangles, %d quads, %d other)\n", s.Polygons, s.Triangles, s.Quads, s.NGons)
	fmt.Printf("Lines:      %d\n", s.Lines)

	kinds := make([]formats.PolygonKind, 0, len(s.ByKind))
	for k := range s.ByKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	fmt.Println()
	fmt.Println("Polygons by corner form:")
	for _, k := range kinds {
		fmt.Printf("  %-4s %d\n", k, s.ByKind[k])
	}

	if len(obj.Objects) > 0 {
		fmt.Printf("\nObjects:    %s\n", strings.Join(obj.Objects, ", "))
	}
	if len(obj.Groups) > 0 {
		fmt.Printf("Groups:     %s\n", strings.Join(obj.Groups, ", "))
	}
	if len(obj.Materials) > 0 {
		fmt.Printf("Materials:  %s\n", strings.Join(obj.Materials, ", "))
	}
	return nil
}

func printMesh(name string, m *mesh.Mesh) {
	fmt.Printf("Mesh:       %s\n", name)
	fmt.Printf("Draw mode:  %s\n", m.Mode)
	fmt.Printf("Vertices:   %d\n", len(m.Vertices))
	fmt.Printf("Indices:    %d (%d primitives)\n", len(m.Indices), m.PrimitiveCount())
	fmt.Printf("Bounds:     min %v max %v\n", m.Bounds.Min, m.Bounds.Max)
}

func cmdConvert(cfg *config.Config, args []string) error {
	a, err := parseConvertArgs(cfg, args)
	if err != nil {
		return err
	}

	m, err := convertFile(cfg, a.input)
	if err != nil {
		return err
	}
	if err := batch.WriteMesh(a.output, m); err != nil {
		return err
	}

	logger.Info("converted",
		zap.String("input", a.input),
		zap.String("output", a.output),
		zap.String("mode", cfg.Mesh.Mode),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("indices", len(m.Indices)))
	printMesh(a.output, m)
	return nil
}

func cmdBatch(cfg *config.Config, args []string) error {
	inputs, err := parseBatchArgs(cfg, args)
	if err != nil {
		return err
	}

	results := batch.Run(batch.Config{
		OutputDir:    cfg.Output.Dir,
		Mode:         cfg.Mesh.Mode,
		Attribute:    attribute(cfg),
		NameEncoding: cfg.Input.NameEncoding,
		Workers:      cfg.Batch.Workers,
		Logger:       logger.Named("batch"),
	}, inputs)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", r.Input, r.Err)
			continue
		}
		fmt.Printf("OK   %s -> %s (%d vertices, %d indices)\n", r.Input, r.Output, r.Vertices, r.Indices)
	}

	fmt.Fprintf(os.Stderr, "\nConverted %d of %d files\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func cmdPreview(cfg *config.Config, args []string) error {
	fs := newFlagSet("preview")
	size := fs.Int("size", cfg.Preview.Size, "Thumbnail size in pixels")
	axis := fs.String("axis", cfg.Preview.Axis, "View direction: x, y or z")
	supersample := fs.Int("supersample", cfg.Preview.Supersample, "Supersampling factor")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return usagef("objmesh preview [-size N] [-axis x|y|z] <in.obj> <out.webp|out.png>")
	}

	m, err := convertFile(cfg, fs.Arg(0))
	if err != nil {
		return err
	}
	img, err := preview.Render(m, preview.Options{Size: *size, Supersample: *supersample, Axis: *axis})
	if err != nil {
		return err
	}
	if err := preview.Save(fs.Arg(1), img); err != nil {
		return err
	}
	fmt.Printf("Preview: %s (%dx%d, %s)\n", fs.Arg(1), *size, *size, m.Mode)
	return nil
}

func cmdConfig(cfg *config.Config, args []string) error {
	if len(args) > 0 && args[0] == "save" {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return nil
	}
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", args[0])
		return nil
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
