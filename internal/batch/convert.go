package batch

import (
	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/pkg/formats"
	"github.com/Faultbox/objmesh/pkg/mesh"
)

// Convert runs the conversion named by mode: an emission rule name accepted
// by mesh.ParseRule, or mesh.LinesMode.
func Convert(obj *formats.OBJ, mode string, attr mesh.AttributeMode, log *zap.Logger) (*mesh.Mesh, error) {
	if mode == mesh.LinesMode {
		return mesh.Lines(obj, attr)
	}
	rule, err := mesh.ParseRule(mode)
	if err != nil {
		return nil, err
	}
	return mesh.Build(obj, mesh.BuildOptions{Rule: rule, Attribute: attr, Logger: log})
}
