package relay

import (
	"net/http"

	"github.com/imagedrop/service/internal/logger"
	"github.com/imagedrop/service/internal/middleware"
	"github.com/imagedrop/service/internal/response"
)

// SuccessMessage is the body message of every accepted upload.
const SuccessMessage = "Files uploaded successfully"

// Handler holds the HTTP handler for the upload endpoint.
type Handler struct {
	relay         *Relay
	decoder       Decoder
	recorder      Recorder
	reportPartial bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithRecorder persists each request's outcome.
func WithRecorder(rec Recorder) Option {
	return func(h *Handler) { h.recorder = rec }
}

// WithPartialReport answers 207 with per-file results when an entry was not stored.
func WithPartialReport(enabled bool) Option {
	return func(h *Handler) { h.reportPartial = enabled }
}

// NewHandler creates a new upload Handler.
func NewHandler(relay *Relay, decoder Decoder, opts ...Option) *Handler {
	h := &Handler{relay: relay, decoder: decoder, recorder: NopRecorder{}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type partialBody struct {
	Message string       `json:"message" example:"Files uploaded successfully"`
	Stored  int          `json:"stored" example:"1"`
	Results []resultBody `json:"results"`
}

type resultBody struct {
	FileResult
	Error string `json:"error,omitempty"`
}

// Upload godoc
//
//	@Summary		Upload images
//	@Description	Decodes a multipart body and stores every file part under images/{filename}. Individual storage failures are logged and do not change the status code unless partial reporting is enabled.
//	@Tags			uploads
//	@Accept			mpfd
//	@Produce		json
//	@Param			image-1	formData	file	true	"First file; further parts are named image-2, image-3, ..."
//	@Success		200		{object}	response.MessageBody
//	@Success		207		{object}	partialBody
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/file-upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	form, err := h.decoder.Decode(r)
	if err != nil {
		log.Error().Err(err).Msg("error parsing form data")
		status, msg := statusFromError(err)
		response.Error(w, status, msg)
		return
	}
	defer func() {
		if err := form.RemoveAll(); err != nil {
			log.Warn().Err(err).Msg("remove temp files")
		}
	}()

	if form.Len() == 0 {
		status, msg := statusFromError(ErrNoFiles)
		response.Error(w, status, msg)
		return
	}

	outcome := h.relay.Process(r.Context(), form)
	log.Info().
		Int("entries", len(outcome.Results)).
		Int("stored", outcome.Stored).
		Int("skipped", outcome.Skipped).
		Int("errors", len(outcome.Errors)).
		Msg("upload request settled")

	if err := h.recorder.Record(r.Context(), middleware.TraceIDFromContext(r.Context()), outcome); err != nil {
		log.Error().Err(err).Msg("record upload outcome")
	}

	if h.reportPartial && outcome.Partial() {
		response.JSON(w, http.StatusMultiStatus, newPartialBody(outcome))
		return
	}

	response.OK(w, SuccessMessage)
}

func newPartialBody(o Outcome) partialBody {
	body := partialBody{Message: SuccessMessage, Stored: o.Stored, Results: make([]resultBody, len(o.Results))}
	for i, res := range o.Results {
		body.Results[i] = resultBody{FileResult: res}
		if res.Err != nil {
			body.Results[i].Error = res.Err.Error()
		}
	}
	return body
}
