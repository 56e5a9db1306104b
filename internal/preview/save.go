package preview

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// Encode writes img as "webp" or "png".
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "webp":
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("encoding WebP: %w", err)
		}
	case "png":
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encoding PNG: %w", err)
		}
	default:
		return fmt.Errorf("unsupported preview format %q", format)
	}
	return nil
}

// FormatFor returns the image format implied by a file extension.
func FormatFor(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// Save writes img to path, choosing the format from the extension.
func Save(path string, img image.Image) error {
	format := FormatFor(path)
	if format != "webp" && format != "png" {
		return fmt.Errorf("unsupported preview format %q", format)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := Encode(file, img, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
