// Package formats provides parsers for 3D model interchange formats.
package formats

// Note: Wavefront OBJ is implemented in obj.go
