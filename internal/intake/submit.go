package intake

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Submit posts the current selection as one multipart request. Entries are
// named image-1, image-2, ... in selection order. The selection is kept after
// a successful upload. An empty selection still sends a well-formed empty body.
func (c *Controller) Submit(ctx context.Context) error {
	files := c.Files()

	body, contentType, err := BuildBody(files)
	if err != nil {
		c.log.Error().Err(err).Int("files", len(files)).Msg("build upload body")
		return err
	}

	msg, err := c.uploader.Upload(ctx, body, contentType)
	if err != nil {
		c.log.Error().Err(err).Int("files", len(files)).Msg("upload failed")
		return err
	}

	c.log.Info().Str("message", msg).Int("files", len(files)).Msg("upload succeeded")
	return nil
}

// FieldName returns the multipart field for the i-th (zero-based) file.
func FieldName(i int) string {
	return fmt.Sprintf("image-%d", i+1)
}

// BuildBody encodes files as multipart/form-data and returns the body with
// its Content-Type.
func BuildBody(files []SelectedFile) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for i, f := range files {
		if err := writePart(w, FieldName(i), f); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writePart(w *multipart.Writer, field string, f SelectedFile) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", f.MimeType)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", field, err)
	}

	rc, err := f.Source.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("copy %s: %w", f.Name, err)
	}
	return nil
}
