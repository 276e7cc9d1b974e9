package server

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/imagedrop/service/internal/config"
	"github.com/imagedrop/service/internal/logger"
	"github.com/imagedrop/service/internal/middleware"
	"github.com/imagedrop/service/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse()
	require.NoError(t, err)
	cfg.Storage.Driver = config.DriverMemory
	cfg.Relay.TempDir = t.TempDir()
	return cfg
}

func uploadBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	i := 1
	for name, data := range files {
		fw, err := mw.CreateFormFile("image-"+string(rune('0'+i)), name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
		i++
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestRouter_Health(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Deps{Config: testConfig(t), Logger: logger.Nop(), Store: storage.NewMemoryStorage("")}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.TraceIDHeader))
}

func TestRouter_UploadStoresFiles(t *testing.T) {
	mem := storage.NewMemoryStorage("")
	srv := httptest.NewServer(NewRouter(Deps{Config: testConfig(t), Logger: logger.Nop(), Store: mem}))
	defer srv.Close()

	body, ct := uploadBody(t, map[string][]byte{"cat.png": []byte("meow"), "notes.txt": []byte("hi")})
	resp, err := http.Post(srv.URL+"/api/file-upload", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Files uploaded successfully"}`, string(raw))
	assert.Equal(t, []string{"images/cat.png", "images/notes.txt"}, mem.Keys())
}

func TestRouter_UploadRequiresSessionWhenConfigured(t *testing.T) {
	cfg := testConfig(t)
	cfg.App.JWTSecret = "secret"
	srv := httptest.NewServer(NewRouter(Deps{Config: cfg, Logger: logger.Nop(), Store: storage.NewMemoryStorage("")}))
	defer srv.Close()

	body, ct := uploadBody(t, map[string][]byte{"cat.png": []byte("meow")})
	resp, err := http.Post(srv.URL+"/api/file-upload", ct, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	body, ct = uploadBody(t, map[string][]byte{"cat.png": []byte("meow")})
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, srv.URL+"/api/file-upload", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", ct)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_LedgerDisabled(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Deps{Config: testConfig(t), Logger: logger.Nop(), Store: storage.NewMemoryStorage("")}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/uploads")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_CORSPreflightAllowsCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.AllowedOrigins = []string{"http://app.test"}
	h := NewRouter(Deps{Config: cfg, Logger: logger.Nop(), Store: storage.NewMemoryStorage("")})

	req := httptest.NewRequest(http.MethodOptions, "/api/file-upload", nil)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
