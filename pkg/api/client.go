// Package api is the typed HTTP client for the expense-control backend. The
// backend is consumed only: every request carries the session's Basic
// credential pair, responses are JSON except attachment downloads, and
// non-2xx JSON bodies follow the {message|error, details} envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Credentials supplies the Basic token at dispatch time, so a logout takes
// effect for calls issued afterwards without the client holding the pair.
type Credentials interface {
	Basic() string
}

// Client talks to one backend base URL with one credential source.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL string, creds Credentials, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// request performs a JSON round trip. body is marshalled when non-nil;
// result is decoded into when non-nil and the response has a body.
func (c *Client) request(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, result)
}

// send finishes a prepared request: auth header, correlation id, dispatch,
// envelope handling, JSON decode.
func (c *Client) send(req *http.Request, result interface{}) error {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	if basic := c.creds.Basic(); basic != "" {
		req.Header.Set("Authorization", "Basic "+basic)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"method":     req.Method,
			"path":       req.URL.Path,
			"request_id": requestID,
		}).WithError(err).Error("backend request failed")
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"method":     req.Method,
		"path":       req.URL.Path,
		"status":     resp.StatusCode,
		"request_id": requestID,
	}).Debug("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// uploadFile posts one file as a multipart body under the field name "file".
func (c *Client) uploadFile(ctx context.Context, path, filename, contentType string, content io.Reader, result interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename=%q`, filename)}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to read file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.send(req, result)
}

// Download fetches a binary stream outside the JSON path. Error bodies are
// still parsed through the JSON envelope when present.
type Download struct {
	ContentType string
	Data        []byte
}

func (c *Client) download(ctx context.Context, path string) (Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return Download{}, fmt.Errorf("failed to build download request: %w", err)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if basic := c.creds.Basic(); basic != "" {
		req.Header.Set("Authorization", "Basic "+basic)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Download{}, fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Download{}, parseError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Download{}, fmt.Errorf("failed to read download stream: %w", err)
	}
	return Download{
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
