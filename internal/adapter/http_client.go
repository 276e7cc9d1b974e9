// Package adapter talks to the upload relay over HTTP.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// SessionCookie is the cookie the relay reads the session token from.
const SessionCookie = "session"

// Config configures a RelayClient.
type Config struct {
	BaseURL    string
	UploadPath string
	Timeout    time.Duration
	// Session, when set, is sent as the session cookie on every request.
	Session string
}

// RelayClient posts multipart bodies to the relay's upload endpoint.
type RelayClient struct {
	client     *resty.Client
	uploadPath string
}

type messageBody struct {
	Message string `json:"message"`
	Stored  *int   `json:"stored,omitempty"`
}

// NewRelayClient builds a client with a cookie jar, so cookies set by the
// relay's host are sent back on later requests.
func NewRelayClient(cfg Config) (*RelayClient, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid relay address: %w", err)
	}
	if cfg.UploadPath == "" {
		cfg.UploadPath = "/api/file-upload"
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout)

	if token := strings.TrimSpace(cfg.Session); token != "" {
		client.SetCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}

	return &RelayClient{client: client, uploadPath: cfg.UploadPath}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Upload sends body as-is with the given multipart Content-Type and returns
// the relay's message. Non-2xx responses map to the package's sentinel errors.
func (c *RelayClient) Upload(ctx context.Context, body io.Reader, contentType string) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("Accept", "application/json").
		SetBody(body).
		Post(c.uploadPath)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	var mb messageBody
	if err = json.Unmarshal(resp.Body(), &mb); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if resp.StatusCode() == http.StatusMultiStatus && mb.Stored != nil {
		return fmt.Sprintf("%s (%d stored)", mb.Message, *mb.Stored), nil
	}
	return mb.Message, nil
}
