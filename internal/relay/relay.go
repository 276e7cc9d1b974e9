// Package relay receives multipart uploads and forwards every decoded file
// to the blob store under images/{originalFilename}.
//
// Per-file failures are absorbed: they are logged and kept in the Outcome,
// but never turn a decoded, non-empty request into an error response.
package relay

import (
	"context"
	"fmt"
	"os"

	"github.com/imagedrop/service/internal/logger"
	"github.com/imagedrop/service/internal/storage"
	"golang.org/x/sync/errgroup"
)

// KeyPrefix is prepended to every original filename to form the object key.
const KeyPrefix = "images/"

// Recorder persists an Outcome. Failures are logged by the caller only.
type Recorder interface {
	Record(ctx context.Context, requestID string, outcome Outcome) error
}

// NopRecorder discards outcomes.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, string, Outcome) error { return nil }

// Relay fans decoded entries out to the blob store.
type Relay struct {
	store storage.Storage
}

// New creates a Relay writing to store.
func New(store storage.Storage) *Relay {
	return &Relay{store: store}
}

// ObjectKey returns the blob store key for filename. Equal filenames map to
// the same key, so the last writer wins.
func ObjectKey(filename string) string {
	return KeyPrefix + filename
}

// Process uploads every entry of form concurrently and waits for all of them.
// Results keep entry order regardless of completion order.
func (r *Relay) Process(ctx context.Context, form *Form) Outcome {
	entries := form.Entries()
	results := make([]FileResult, len(entries))

	var g errgroup.Group
	for i, e := range entries {
		g.Go(func() error {
			results[i] = r.upload(ctx, e)
			return nil
		})
	}
	_ = g.Wait()

	return newOutcome(results)
}

func (r *Relay) upload(ctx context.Context, e Entry) FileResult {
	log := logger.FromContext(ctx)
	key := ObjectKey(e.OriginalFilename)
	res := FileResult{Field: e.Field, Filename: e.OriginalFilename, Key: key, Size: e.Size}

	if e.TempPath == "" {
		log.Error().Str("field", e.Field).Str("key", key).Msg("file path is undefined")
		res.Status = StatusSkipped
		res.Err = ErrMissingTempPath
		return res
	}

	if err := r.write(ctx, key, e); err != nil {
		log.Error().Err(err).Str("key", key).Msg("error during upload")
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	log.Info().Str("key", key).Int64("size", e.Size).Msg("file uploaded successfully")
	res.Status = StatusStored
	res.URL = r.store.PublicURL(key)
	return res
}

func (r *Relay) write(ctx context.Context, key string, e Entry) error {
	f, err := os.Open(e.TempPath)
	if err != nil {
		return fmt.Errorf("%w: open temp file: %w", ErrWrite, err)
	}
	defer f.Close()

	size := e.Size
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}

	if err := r.store.Upload(ctx, key, f, size, e.ContentType); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
