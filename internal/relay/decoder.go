package relay

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
)

// Entry is one decoded file part spooled to a temporary file.
type Entry struct {
	Field            string
	OriginalFilename string
	// TempPath is the spooled copy. Empty means the decoder could not keep
	// the bytes; the relay skips such entries.
	TempPath    string
	Size        int64
	ContentType string
}

// Form is the decoded request: field name to one or more file entries.
type Form struct {
	Files map[string][]Entry
	order []string
}

// NewForm returns an empty Form.
func NewForm() *Form {
	return &Form{Files: make(map[string][]Entry)}
}

// Add appends e under its field, remembering first-seen field order.
func (f *Form) Add(e Entry) {
	if _, ok := f.Files[e.Field]; !ok {
		f.order = append(f.order, e.Field)
	}
	f.Files[e.Field] = append(f.Files[e.Field], e)
}

// Entries flattens the form in field arrival order.
func (f *Form) Entries() []Entry {
	var out []Entry
	for _, field := range f.order {
		out = append(out, f.Files[field]...)
	}
	return out
}

// Len returns the number of file entries.
func (f *Form) Len() int {
	n := 0
	for _, entries := range f.Files {
		n += len(entries)
	}
	return n
}

// RemoveAll deletes every spooled temp file.
func (f *Form) RemoveAll() error {
	var errs []error
	for _, entries := range f.Files {
		for _, e := range entries {
			if e.TempPath == "" {
				continue
			}
			if err := os.Remove(e.TempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Decoder turns a request body into a Form.
type Decoder interface {
	Decode(r *http.Request) (*Form, error)
}

// MultipartDecoder streams multipart/form-data parts into temp files.
// It enforces no size limit of its own.
type MultipartDecoder struct {
	// Dir is the temp directory; empty means os.TempDir.
	Dir string
}

// Decode implements Decoder. Parts without a filename are plain form values
// and are discarded.
func (d MultipartDecoder) Decode(r *http.Request) (*Form, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	form := NewForm()
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return form, nil
		}
		if err != nil {
			_ = form.RemoveAll()
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}

		filename := originalFilename(part.Header.Get("Content-Disposition"), part.FileName())
		if filename == "" {
			_, _ = io.Copy(io.Discard, part)
			_ = part.Close()
			continue
		}

		entry, err := d.spool(part, part.FormName(), filename, part.Header.Get("Content-Type"))
		_ = part.Close()
		if err != nil {
			_ = form.RemoveAll()
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		form.Add(entry)
	}
}

func (d MultipartDecoder) spool(src io.Reader, field, filename, contentType string) (Entry, error) {
	f, err := os.CreateTemp(d.Dir, "relay-*")
	if err != nil {
		return Entry{}, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(f, src)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return Entry{}, fmt.Errorf("spool %q: %w", filename, err)
	}

	return Entry{
		Field:            field,
		OriginalFilename: filename,
		TempPath:         f.Name(),
		Size:             n,
		ContentType:      contentType,
	}, nil
}

// originalFilename returns the filename exactly as the client sent it.
// mime/multipart's FileName strips directories; the object key keeps the raw name.
func originalFilename(disposition, fallback string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return fallback
	}
	if name := params["filename"]; name != "" {
		return name
	}
	return fallback
}
