package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// MiB is one mebibyte, the unit intake size limits are expressed in.
const MiB = 1024 * 1024

// Magic prefixes recognised by content sniffing.
var (
	pngMagic = []byte("\x89PNG\r\n\x1a\n")
	pdfMagic = []byte("%PDF-1.4\n")
	gifMagic = []byte("GIF89a")
)

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// WritePNG writes a file of exactly size bytes that sniffs as image/png.
func WritePNG(t *testing.T, dir, name string, size int) string {
	t.Helper()
	return WriteFile(t, dir, name, padded(pngMagic, size))
}

// WritePDF writes a file of exactly size bytes that sniffs as application/pdf.
func WritePDF(t *testing.T, dir, name string, size int) string {
	t.Helper()
	return WriteFile(t, dir, name, padded(pdfMagic, size))
}

// WriteGIF writes a file of exactly size bytes that sniffs as image/gif.
func WriteGIF(t *testing.T, dir, name string, size int) string {
	t.Helper()
	return WriteFile(t, dir, name, padded(gifMagic, size))
}

// WriteText writes a plain-text file.
func WriteText(t *testing.T, dir, name, text string) string {
	t.Helper()
	return WriteFile(t, dir, name, []byte(text))
}

func padded(magic []byte, size int) []byte {
	if size < len(magic) {
		size = len(magic)
	}
	buf := bytes.Repeat([]byte{0}, size)
	copy(buf, magic)
	return buf
}
