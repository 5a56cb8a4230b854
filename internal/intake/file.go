package intake

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// File is a candidate upload.
type File struct {
	Name        string
	ContentType string // MIME type without parameters
	Size        int64  // bytes
	Path        string // local path, if the file came from disk
}

// FileFromPath describes a local file, sniffing its MIME type from content.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return File{}, fmt.Errorf("detecting type of %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return File{}, fmt.Errorf("resolving path: %w", err)
	}

	return File{
		Name:        filepath.Base(path),
		ContentType: baseType(mtype.String()),
		Size:        info.Size(),
		Path:        abs,
	}, nil
}

// baseType strips parameters such as "; charset=utf-8".
func baseType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	return mediaType
}
