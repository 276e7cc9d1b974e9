package relay

import (
	"errors"
	"net/http"
)

var (
	// ErrDecode means the multipart body could not be parsed.
	ErrDecode = errors.New("decode multipart body")
	// ErrNoFiles means the body parsed but carried no file parts.
	ErrNoFiles = errors.New("no files provided for upload")
	// ErrMissingTempPath means a decoded entry has no readable byte source.
	ErrMissingTempPath = errors.New("file path is undefined")
	// ErrWrite wraps a blob store failure for one entry.
	ErrWrite = errors.New("write to blob store")
)

// requestErrors maps the errors that end a request early to their status
// and public message. Per-file errors never reach this table.
var requestErrors = map[error]struct {
	status  int
	message string
}{
	ErrDecode:  {http.StatusInternalServerError, "Internal server error"},
	ErrNoFiles: {http.StatusBadRequest, "No files provided for upload"},
}

func statusFromError(err error) (int, string) {
	for target, resp := range requestErrors {
		if errors.Is(err, target) {
			return resp.status, resp.message
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}
