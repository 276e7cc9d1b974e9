package intake

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnreadableImage is returned when an image file cannot be read or decoded.
var ErrUnreadableImage = errors.New("unreadable image")

const svgMimeType = "image/svg+xml"

// ThumbnailDecoder turns an image Source into a displayable thumbnail.
type ThumbnailDecoder interface {
	Thumbnail(src Source) (string, error)
}

// DataURIThumbnailer reads the whole file, checks that it decodes as an image
// and returns it as a data URI. Raster formats go through the registered
// image decoders (gif, jpeg, png, bmp, tiff, webp); SVG is vector, so only its
// root element is checked.
type DataURIThumbnailer struct{}

// Thumbnail implements ThumbnailDecoder.
func (DataURIThumbnailer) Thumbnail(src Source) (string, error) {
	rc, err := src.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrUnreadableImage, src.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrUnreadableImage, src.Name(), err)
	}

	if src.MimeType() == svgMimeType {
		err = checkSVG(data)
	} else {
		_, _, err = image.DecodeConfig(bytes.NewReader(data))
	}
	if err != nil {
		return "", fmt.Errorf("%w: decode %s: %v", ErrUnreadableImage, src.Name(), err)
	}

	return "data:" + src.MimeType() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// checkSVG requires the first element of the document to be <svg>.
func checkSVG(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("no svg root element: %w", err)
		}
		if el, ok := tok.(xml.StartElement); ok {
			if el.Name.Local != "svg" {
				return fmt.Errorf("root element is <%s>, not <svg>", el.Name.Local)
			}
			return nil
		}
	}
}
