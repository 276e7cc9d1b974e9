// Package intake is the client side of the dropzone: it collects dropped or
// picked files, prepares thumbnails for the images among them and submits the
// selection to the relay as one multipart request.
package intake

import (
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

const defaultMimeType = "application/octet-stream"

// Source is an opaque reference to the bytes of a selected file.
type Source interface {
	Name() string
	MimeType() string
	Open() (io.ReadCloser, error)
}

// LocalFile is a Source backed by a path on disk.
type LocalFile struct {
	Path string
}

// NewLocalFile trims quotes and whitespace that terminals add around pasted paths.
func NewLocalFile(path string) LocalFile {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, `"'`)
	return LocalFile{Path: path}
}

// Name returns the base name of the file.
func (f LocalFile) Name() string {
	return filepath.Base(f.Path)
}

// MimeType guesses the type from the extension.
func (f LocalFile) MimeType() string {
	return mimeTypeOf(f.Path)
}

// Open opens the file for reading.
func (f LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// LocalFiles wraps every path in a LocalFile.
func LocalFiles(paths []string) []Source {
	out := make([]Source, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, NewLocalFile(p))
	}
	return out
}

func mimeTypeOf(name string) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if t == "" {
		return defaultMimeType
	}
	// "text/plain; charset=utf-8" -> "text/plain"
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

func isImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}
