package intake

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/imagedrop/service/internal/adapter"
	"github.com/imagedrop/service/internal/relay"
	"github.com/imagedrop/service/internal/storage"
)

// memSource is an in-memory Source.
type memSource struct {
	name, mimeType string
	data           []byte
}

func (s memSource) Name() string                 { return s.name }
func (s memSource) MimeType() string             { return s.mimeType }
func (s memSource) Open() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(s.data)), nil }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// webpBytes is a 1x1 lossless WebP.
func webpBytes(t *testing.T) []byte {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString("UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA==")
	require.NoError(t, err)
	return data
}

func encoded(t *testing.T, encode func(io.Writer, image.Image) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

const svgDoc = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"><rect width="1" height="1"/></svg>`

// thumbnailerFunc adapts a function to ThumbnailDecoder.
type thumbnailerFunc func(Source) (string, error)

func (f thumbnailerFunc) Thumbnail(src Source) (string, error) { return f(src) }

// uploaderFunc adapts a function to Uploader.
type uploaderFunc func(ctx context.Context, body io.Reader, contentType string) (string, error)

func (f uploaderFunc) Upload(ctx context.Context, body io.Reader, contentType string) (string, error) {
	return f(ctx, body, contentType)
}

var nopUploader = uploaderFunc(func(context.Context, io.Reader, string) (string, error) { return "ok", nil })

func waitBatch(t *testing.T, c *Controller) BatchEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ev, err := c.WaitBatch(ctx)
	require.NoError(t, err)
	return ev
}

func assertNoBatch(t *testing.T, c *Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := c.WaitBatch(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestController_KeepsInputOrderUnderShuffledLatency(t *testing.T) {
	delays := map[string]time.Duration{
		"a.png": 60 * time.Millisecond,
		"b.png": 5 * time.Millisecond,
		"c.png": 30 * time.Millisecond,
		"d.png": 0,
		"e.png": 45 * time.Millisecond,
	}
	slow := thumbnailerFunc(func(src Source) (string, error) {
		time.Sleep(delays[src.Name()])
		return "data:image/png;base64,", nil
	})

	c := NewController(nopUploader, WithThumbnailDecoder(slow))
	var sources []Source
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png", "e.png"} {
		sources = append(sources, memSource{name: name, mimeType: "image/png"})
	}

	c.OnFilesProvided(sources)
	ev := waitBatch(t, c)

	require.NoError(t, ev.Err)
	require.Len(t, ev.Files, len(sources))
	for i, f := range c.Files() {
		assert.Equal(t, sources[i].Name(), f.Name)
	}
}

func TestController_VisualState(t *testing.T) {
	img := pngBytes(t)

	tests := []struct {
		name    string
		sources []Source
		want    VisualState
	}{
		{
			name: "all images",
			sources: []Source{
				memSource{name: "a.png", mimeType: "image/png", data: img},
				memSource{name: "b.png", mimeType: "image/png", data: img},
			},
			want: AllImages,
		},
		{
			name: "mixed",
			sources: []Source{
				memSource{name: "a.png", mimeType: "image/png", data: img},
				memSource{name: "notes.txt", mimeType: "text/plain", data: []byte("hi")},
			},
			want: MixedOrNonImage,
		},
		{
			name:    "non image only",
			sources: []Source{memSource{name: "doc.pdf", mimeType: "application/pdf"}},
			want:    MixedOrNonImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(nopUploader)
			c.OnFilesProvided(tt.sources)
			waitBatch(t, c)
			assert.Equal(t, tt.want, c.State())
		})
	}
}

func TestController_EmptyBatchActivatesNothing(t *testing.T) {
	c := NewController(nopUploader)

	c.OnFilesProvided(nil)

	assertNoBatch(t, c)
	assert.Equal(t, Idle, c.State())
	assert.Empty(t, c.Files())
}

func TestController_ThumbnailOnlyForImages(t *testing.T) {
	img := pngBytes(t)
	c := NewController(nopUploader)

	c.OnFilesProvided([]Source{
		memSource{name: "a.png", mimeType: "image/png", data: img},
		memSource{name: "notes.txt", mimeType: "text/plain", data: []byte("hi")},
		memSource{name: "b.png", mimeType: "image/png", data: img},
	})
	ev := waitBatch(t, c)
	require.NoError(t, ev.Err)

	for _, f := range c.Files() {
		if f.IsImage() {
			assert.True(t, strings.HasPrefix(f.Thumbnail, "data:image/png;base64,"), f.Name)
		} else {
			assert.Empty(t, f.Thumbnail, f.Name)
		}
	}
}

func TestDataURIThumbnailer_Formats(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		data     []byte
		wantErr  bool
	}{
		{name: "a.png", mimeType: "image/png", data: pngBytes(t)},
		{name: "a.webp", mimeType: "image/webp", data: webpBytes(t)},
		{name: "a.bmp", mimeType: "image/bmp", data: encoded(t, bmp.Encode)},
		{name: "a.tiff", mimeType: "image/tiff", data: encoded(t, func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) })},
		{name: "a.svg", mimeType: "image/svg+xml", data: []byte(svgDoc)},
		{name: "fake.svg", mimeType: "image/svg+xml", data: []byte("<html><body/></html>"), wantErr: true},
		{name: "empty.svg", mimeType: "image/svg+xml", data: nil, wantErr: true},
		{name: "fake.webp", mimeType: "image/webp", data: []byte("RIFF...."), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thumb, err := DataURIThumbnailer{}.Thumbnail(memSource{name: tt.name, mimeType: tt.mimeType, data: tt.data})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnreadableImage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "data:"+tt.mimeType+";base64,"+base64.StdEncoding.EncodeToString(tt.data), thumb)
		})
	}
}

func TestController_WebPBatchBecomesActive(t *testing.T) {
	c := NewController(nopUploader)

	c.OnFilesProvided([]Source{
		memSource{name: "a.webp", mimeType: "image/webp", data: webpBytes(t)},
		memSource{name: "b.webp", mimeType: "image/webp", data: webpBytes(t)},
	})
	ev := waitBatch(t, c)

	require.NoError(t, ev.Err)
	require.Len(t, c.Files(), 2)
	assert.Equal(t, AllImages, c.State())
}

func TestController_DroppedPNGAndSVGFromDisk(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]byte{
		"photo.png":  pngBytes(t),
		"photo.webp": webpBytes(t),
		"logo.svg":   []byte(svgDoc),
	}
	var paths []string
	for _, name := range []string{"photo.png", "photo.webp", "logo.svg"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, files[name], 0o600))
		paths = append(paths, p)
	}

	c := NewController(nopUploader)
	c.OnDrop(LocalFiles(paths))
	ev := waitBatch(t, c)

	require.NoError(t, ev.Err)
	got := c.Files()
	require.Len(t, got, 3)
	assert.Equal(t, "image/webp", got[1].MimeType)
	assert.Equal(t, "image/svg+xml", got[2].MimeType)
	for _, f := range got {
		assert.NotEmpty(t, f.Thumbnail, f.Name)
	}
	assert.Equal(t, AllImages, c.State())
}

func TestController_DecodeFailureDiscardsBatch(t *testing.T) {
	img := pngBytes(t)
	c := NewController(nopUploader)

	c.OnFilesProvided([]Source{memSource{name: "ok.png", mimeType: "image/png", data: img}})
	waitBatch(t, c)

	c.OnFilesProvided([]Source{
		memSource{name: "ok.png", mimeType: "image/png", data: img},
		memSource{name: "broken.png", mimeType: "image/png", data: []byte("not a png")},
	})
	ev := waitBatch(t, c)

	assert.ErrorIs(t, ev.Err, ErrUnreadableImage)
	assert.Empty(t, ev.Files)
	require.Len(t, c.Files(), 1)
	assert.Equal(t, AllImages, c.State())
}

func TestController_LatestBatchWins(t *testing.T) {
	release := make(chan struct{})
	gated := thumbnailerFunc(func(src Source) (string, error) {
		if src.Name() == "old.png" {
			<-release
		}
		return "data:image/png;base64,", nil
	})
	c := NewController(nopUploader, WithThumbnailDecoder(gated))

	c.OnFilesProvided([]Source{memSource{name: "old.png", mimeType: "image/png"}})
	c.OnFilesProvided([]Source{memSource{name: "new.txt", mimeType: "text/plain"}})

	ev := waitBatch(t, c)
	require.Len(t, ev.Files, 1)
	assert.Equal(t, "new.txt", ev.Files[0].Name)

	close(release)
	assertNoBatch(t, c)

	files := c.Files()
	require.Len(t, files, 1)
	assert.Equal(t, "new.txt", files[0].Name)
	assert.Equal(t, MixedOrNonImage, c.State())
}

func TestController_FocusAndDrag(t *testing.T) {
	c := NewController(nopUploader)
	assert.Equal(t, Idle, c.State())

	c.OnFocusGained()
	assert.Equal(t, Active, c.State())
	c.OnFocusLost()
	assert.Equal(t, Idle, c.State())

	c.OnDragEnter()
	assert.Equal(t, Active, c.State())
	c.OnDragLeave()
	assert.Equal(t, Idle, c.State())
}

func TestController_DropClearsActivePickSetsIt(t *testing.T) {
	c := NewController(nopUploader)

	c.OnDragEnter()
	c.OnDrop([]Source{memSource{name: "a.txt", mimeType: "text/plain"}})
	waitBatch(t, c)
	assert.Equal(t, MixedOrNonImage, c.State())

	c.OnPick([]Source{memSource{name: "b.txt", mimeType: "text/plain"}})
	waitBatch(t, c)
	assert.Equal(t, Active, c.State())
}

func TestController_OutsidePointerDownClearsActive(t *testing.T) {
	bus := NewPointerBus()
	c := NewController(nopUploader)
	c.Mount(bus, Region{X: 0, Y: 0, Width: 10, Height: 5})
	defer c.Unmount()

	c.OnDragEnter()
	bus.Publish(PointerEvent{X: 3, Y: 2})
	assert.Equal(t, Active, c.State(), "inside click keeps focus")

	bus.Publish(PointerEvent{X: 40, Y: 20})
	assert.Equal(t, Idle, c.State())
}

func TestController_RemountDoesNotLeak(t *testing.T) {
	bus := NewPointerBus()
	c := NewController(nopUploader)

	c.Mount(bus, Region{Width: 10, Height: 5})
	c.Mount(bus, Region{Width: 20, Height: 5})
	assert.Equal(t, 1, bus.Len())

	c.Unmount()
	c.Unmount()
	assert.Equal(t, 0, bus.Len())

	c.OnFocusGained()
	bus.Publish(PointerEvent{X: 100, Y: 100})
	assert.Equal(t, Active, c.State(), "unmounted controller ignores the bus")
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	bus := NewPointerBus()
	var mu sync.Mutex
	calls := 0
	sub := bus.Subscribe(func(PointerEvent) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	other := bus.Subscribe(func(PointerEvent) {})

	bus.Publish(PointerEvent{})
	sub.Close()
	sub.Close()
	bus.Publish(PointerEvent{})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, bus.Len())
	other.Close()
}

func TestRegion_Contains(t *testing.T) {
	r := Region{X: 2, Y: 1, Width: 4, Height: 3}

	assert.True(t, r.Contains(2, 1))
	assert.True(t, r.Contains(5, 3))
	assert.False(t, r.Contains(6, 3))
	assert.False(t, r.Contains(2, 4))
	assert.False(t, r.Contains(1, 1))
}

func TestSubmit_BuildsNumberedParts(t *testing.T) {
	img := pngBytes(t)
	type got struct {
		field, filename, contentType string
		data                         []byte
	}
	var parts []got

	up := uploaderFunc(func(_ context.Context, body io.Reader, contentType string) (string, error) {
		_, params, err := mime.ParseMediaType(contentType)
		require.NoError(t, err)
		mr := multipart.NewReader(body, params["boundary"])
		for {
			p, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			require.NoError(t, err)
			data, _ := io.ReadAll(p)
			parts = append(parts, got{p.FormName(), p.FileName(), p.Header.Get("Content-Type"), data})
		}
		return "Files uploaded successfully", nil
	})

	c := NewController(up)
	c.OnFilesProvided([]Source{
		memSource{name: "a.png", mimeType: "image/png", data: img},
		memSource{name: "notes.txt", mimeType: "text/plain", data: []byte("hello")},
	})
	waitBatch(t, c)

	require.NoError(t, c.Submit(context.Background()))
	require.Len(t, parts, 2)
	assert.Equal(t, got{"image-1", "a.png", "image/png", img}, parts[0])
	assert.Equal(t, got{"image-2", "notes.txt", "text/plain", []byte("hello")}, parts[1])

	assert.Len(t, c.Files(), 2, "selection survives a successful submit")
}

func TestSubmit_ReturnsUploaderError(t *testing.T) {
	boom := errors.New("boom")
	c := NewController(uploaderFunc(func(context.Context, io.Reader, string) (string, error) {
		return "", boom
	}))

	assert.ErrorIs(t, c.Submit(context.Background()), boom)
}

func TestBuildBody_Empty(t *testing.T) {
	body, contentType, err := BuildBody(nil)
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "--"+params["boundary"]+"--\r\n", body.String())
}

// relayServer runs the real relay handler over in-memory storage.
func relayServer(t *testing.T) (*httptest.Server, *storage.MemoryStorage) {
	t.Helper()
	store := storage.NewMemoryStorage("http://blobs.test")
	h := relay.NewHandler(relay.New(store), relay.MultipartDecoder{Dir: t.TempDir()})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/file-upload", h.Upload)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func relayClient(t *testing.T, url string) *adapter.RelayClient {
	t.Helper()
	rc, err := adapter.NewRelayClient(adapter.Config{BaseURL: url, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return rc
}

func TestSubmit_EmptyBatchIsRejectedByRelay(t *testing.T) {
	srv, store := relayServer(t)
	c := NewController(relayClient(t, srv.URL))

	err := c.Submit(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrNoFiles)
	assert.Contains(t, err.Error(), "No files provided for upload")
	assert.Empty(t, store.Keys())
}

func TestSubmit_RoundTripThroughRelay(t *testing.T) {
	srv, store := relayServer(t)
	img := pngBytes(t)
	c := NewController(relayClient(t, srv.URL))

	c.OnFilesProvided([]Source{
		memSource{name: "cat.png", mimeType: "image/png", data: img},
		memSource{name: "readme.txt", mimeType: "text/plain", data: []byte("text")},
	})
	waitBatch(t, c)
	require.NoError(t, c.Submit(context.Background()))

	assert.Equal(t, []string{"images/cat.png", "images/readme.txt"}, store.Keys())

	rc, err := store.Download(context.Background(), "images/cat.png")
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, img, stored)
}

func TestLocalFile(t *testing.T) {
	f := NewLocalFile(`  "/tmp/photos/Cat.PNG"  `)

	assert.Equal(t, "/tmp/photos/Cat.PNG", f.Path)
	assert.Equal(t, "Cat.PNG", f.Name())
	assert.Equal(t, "image/png", f.MimeType())
	assert.Equal(t, defaultMimeType, NewLocalFile("/tmp/blob.unknownext").MimeType())
	assert.Len(t, LocalFiles([]string{"a.png", " ", "b.txt"}), 2)
}
