package intake

import (
	"context"
	"io"
	"sync"

	"github.com/imagedrop/service/internal/logger"
)

// Uploader sends a prepared multipart body to the relay and returns the
// relay's message.
type Uploader interface {
	Upload(ctx context.Context, body io.Reader, contentType string) (string, error)
}

// BatchEvent is published when a requested batch finishes preparing. Err is
// set when any member could not be prepared; such a batch never becomes
// active.
type BatchEvent struct {
	Generation uint64
	Files      []SelectedFile
	Err        error
}

// Option configures a Controller.
type Option func(*Controller)

// WithThumbnailDecoder replaces the default DataURIThumbnailer.
func WithThumbnailDecoder(d ThumbnailDecoder) Option {
	return func(c *Controller) { c.thumbs = d }
}

// WithLogger sets the logger used for submit results and dropped batches.
func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller owns the current selection and the dropzone's visual state.
//
// Each OnFilesProvided call starts a new generation. Files are prepared
// concurrently and the batch is published only after every member is ready;
// if a newer generation was requested in the meantime the older result is
// dropped.
type Controller struct {
	uploader Uploader
	thumbs   ThumbnailDecoder
	log      *logger.Logger

	mu         sync.Mutex
	files      []SelectedFile
	batch      VisualState
	active     bool
	generation uint64
	sub        *Subscription
	region     Region

	events chan BatchEvent
}

// NewController returns an idle Controller submitting through uploader.
func NewController(uploader Uploader, opts ...Option) *Controller {
	c := &Controller{
		uploader: uploader,
		thumbs:   DataURIThumbnailer{},
		log:      logger.Nop(),
		batch:    Idle,
		events:   make(chan BatchEvent, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnFilesProvided starts preparing a new batch. An empty call is ignored.
func (c *Controller) OnFilesProvided(files []Source) {
	if len(files) == 0 {
		return
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	go c.prepare(gen, files)
}

// OnDrop clears Active and provides the dropped files.
func (c *Controller) OnDrop(files []Source) {
	c.setActive(false)
	c.OnFilesProvided(files)
}

// OnPick marks the zone Active and provides the picked files.
func (c *Controller) OnPick(files []Source) {
	c.setActive(true)
	c.OnFilesProvided(files)
}

func (c *Controller) OnFocusGained() { c.setActive(true) }
func (c *Controller) OnFocusLost()   { c.setActive(false) }
func (c *Controller) OnDragEnter()   { c.setActive(true) }
func (c *Controller) OnDragLeave()   { c.setActive(false) }

// Mount subscribes to bus so that a pointer-down outside region clears
// Active. Mounting again replaces the previous subscription.
func (c *Controller) Mount(bus *PointerBus, region Region) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sub != nil {
		c.sub.Close()
	}
	c.region = region
	c.sub = bus.Subscribe(c.onPointerDown)
}

// Unmount releases the pointer subscription, if any.
func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sub != nil {
		c.sub.Close()
		c.sub = nil
	}
}

func (c *Controller) onPointerDown(ev PointerEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.region.Contains(ev.X, ev.Y) {
		c.active = false
	}
}

func (c *Controller) setActive(v bool) {
	c.mu.Lock()
	c.active = v
	c.mu.Unlock()
}

// State returns Active while focus holds, otherwise the colour of the last
// published batch, otherwise Idle.
func (c *Controller) State() VisualState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return Active
	}
	return c.batch
}

// Files returns a copy of the active batch.
func (c *Controller) Files() []SelectedFile {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]SelectedFile, len(c.files))
	copy(out, c.files)
	return out
}

// WaitBatch blocks until the next batch event or until ctx is done. Only the
// most recent unread event is buffered.
func (c *Controller) WaitBatch(ctx context.Context) (BatchEvent, error) {
	select {
	case ev := <-c.events:
		return ev, nil
	case <-ctx.Done():
		return BatchEvent{}, ctx.Err()
	}
}

type prepared struct {
	index int
	file  SelectedFile
	err   error
}

func (c *Controller) prepare(gen uint64, sources []Source) {
	results := make(chan prepared, len(sources))
	for i, src := range sources {
		go func(i int, src Source) {
			f, err := c.prepareOne(src)
			results <- prepared{index: i, file: f, err: err}
		}(i, src)
	}

	files := make([]SelectedFile, len(sources))
	var firstErr error
	for range sources {
		r := <-results
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
		files[r.index] = r.file
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.Debug().Uint64("generation", gen).Msg("dropping superseded batch")
		return
	}
	if firstErr != nil {
		c.log.Error().Err(firstErr).Int("files", len(sources)).Msg("batch discarded")
		c.publishLocked(BatchEvent{Generation: gen, Err: firstErr})
		return
	}

	c.files = files
	c.batch = batchState(files)
	c.publishLocked(BatchEvent{Generation: gen, Files: files})
}

func (c *Controller) prepareOne(src Source) (SelectedFile, error) {
	f := SelectedFile{
		Source:   src,
		MimeType: src.MimeType(),
		Name:     src.Name(),
	}
	if !f.IsImage() {
		return f, nil
	}

	thumb, err := c.thumbs.Thumbnail(src)
	if err != nil {
		return SelectedFile{}, err
	}
	f.Thumbnail = thumb
	return f, nil
}

// publishLocked replaces any unread event with ev. Callers hold c.mu.
func (c *Controller) publishLocked(ev BatchEvent) {
	select {
	case <-c.events:
	default:
	}
	c.events <- ev
}
