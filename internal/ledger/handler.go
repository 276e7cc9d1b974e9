package ledger

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/imagedrop/service/internal/logger"
	"github.com/imagedrop/service/internal/response"
)

// Handler holds HTTP handlers for ledger endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new ledger Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List godoc
//
//	@Summary		List recent uploads
//	@Description	Returns the most recent per-file upload records, newest first.
//	@Tags			uploads
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of records (default 50, max 500)"
//	@Success		200		{array}		Record
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/uploads [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "limit must be an integer")
			return
		}
		limit = n
	}

	records, err := h.svc.List(r.Context(), limit)
	if errors.Is(err, ErrDisabled) {
		response.NotFound(w, "upload ledger is not enabled")
		return
	}
	if err != nil {
		logger.FromRequest(r).Error().Err(err).Msg("list uploads")
		response.InternalError(w)
		return
	}
	if records == nil {
		records = []Record{}
	}

	response.JSON(w, http.StatusOK, records)
}
