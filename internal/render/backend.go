package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrFormat is returned for output extensions no backend can encode.
var ErrFormat = errors.New("unsupported output format")

// outputMode is applied to written maps; temp files start out 0600.
const outputMode os.FileMode = 0o644

// Backend draws a Scene in an image format.
type Backend interface {
	Draw(s *Scene, format string, w io.Writer) error
}

var formats = map[string]string{
	".png":  "png",
	".jpg":  "jpg",
	".jpeg": "jpg",
	".tif":  "tiff",
	".tiff": "tiff",
	".svg":  "svg",
	".pdf":  "pdf",
	".eps":  "eps",
}

// FormatFor picks the encoding from path's extension.
func FormatFor(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := formats[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w %q", ErrFormat, ext)
}

// OutputPath defaults an extensionless path to PNG.
func OutputPath(path string) string {
	if filepath.Ext(path) == "" {
		return path + ".png"
	}
	return path
}

// writeAtomic streams fn into a temporary file beside path and renames it
// into place. On error nothing is left at path.
func writeAtomic(path string, fn func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = fn(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(outputMode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
