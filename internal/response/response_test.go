package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpers(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "ok",
			write:      func(w http.ResponseWriter) { OK(w, "Files uploaded successfully") },
			wantStatus: http.StatusOK,
			wantBody:   `{"message":"Files uploaded successfully"}`,
		},
		{
			name:       "bad request",
			write:      func(w http.ResponseWriter) { BadRequest(w, "No files provided for upload") },
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"No files provided for upload"}`,
		},
		{
			name:       "internal",
			write:      InternalError,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
		{
			name:       "unauthorized",
			write:      func(w http.ResponseWriter) { Unauthorized(w, "unauthorized") },
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"unauthorized"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
