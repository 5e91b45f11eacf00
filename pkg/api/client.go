package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/0xmhha/smartreadme/pkg/artifact"
	"github.com/0xmhha/smartreadme/pkg/logger"
	"github.com/google/uuid"
)

const maxErrorBody = 4 << 10

// Client talks to the generation backend.
type Client struct {
	baseURL    *url.URL
	config     Config
	httpClient *http.Client
	logger     logger.Logger
}

// New creates a client. Timeouts left at zero get their defaults.
func New(cfg Config, log logger.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}

	if cfg.LoginTimeout == 0 {
		cfg.LoginTimeout = 30 * time.Second
	}
	if cfg.GenerateTimeout == 0 {
		cfg.GenerateTimeout = 5 * time.Minute
	}
	if cfg.DownloadTimeout == 0 {
		cfg.DownloadTimeout = 2 * time.Minute
	}

	return &Client{
		baseURL:    base,
		config:     cfg,
		httpClient: &http.Client{},
		logger:     log.With("component", "api"),
	}, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.LoginTimeout)
	defer cancel()

	payload, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, LoginPath, nil, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.doJSON(req, LoginPath)
	if err != nil {
		return "", err
	}

	var out loginResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &ValidationError{Endpoint: LoginPath, Reason: "malformed JSON: " + err.Error()}
	}
	if out.Token == "" {
		return "", &ValidationError{Endpoint: LoginPath, Reason: "missing token"}
	}

	return out.Token, nil
}

// Generate uploads an archive as the multipart field "file" and returns the
// produced artifacts in server order.
func (c *Client) Generate(ctx context.Context, token, filename string, content io.Reader) ([]artifact.Descriptor, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.GenerateTimeout)
	defer cancel()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		part, err := form.CreateFormFile(UploadField, filename)
		if err == nil {
			_, err = io.Copy(part, content)
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, GeneratePath, nil, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set(HeaderAuthorization, "Bearer "+token)

	body, err := c.doJSON(req, GeneratePath)
	if err != nil {
		return nil, err
	}

	return parseOutputs(body)
}

// parseOutputs validates a generation reply.
func parseOutputs(body []byte) ([]artifact.Descriptor, error) {
	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &ValidationError{Endpoint: GeneratePath, Reason: "malformed JSON: " + err.Error()}
	}
	if out.Outputs == nil {
		return nil, &ValidationError{Endpoint: GeneratePath, Reason: "missing outputs"}
	}

	artifacts := *out.Outputs
	for i, a := range artifacts {
		if a.ServerPath == "" {
			return nil, &ValidationError{
				Endpoint: GeneratePath,
				Reason:   fmt.Sprintf("output %d (%q) has an empty path", i, a.DisplayName),
			}
		}
	}
	return artifacts, nil
}

// Download fetches the artifact stored at serverPath. The caller must close
// the returned body; the download timeout runs until then.
func (c *Client) Download(ctx context.Context, token, serverPath string) (io.ReadCloser, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	if serverPath == "" {
		return nil, &ValidationError{Endpoint: DownloadPath, Reason: "empty artifact path"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.DownloadTimeout)

	req, err := c.newRequest(ctx, http.MethodGet, DownloadPath, url.Values{"path": {serverPath}}, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set(HeaderAuthorization, "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%s: request failed: %w", DownloadPath, err)
	}
	if err := checkStatus(resp, DownloadPath); err != nil {
		resp.Body.Close()
		cancel()
		return nil, err
	}

	return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

// newRequest builds a request against the base URL with a fresh request ID.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("request", "method", method, "path", path, "request_id", requestID)
	return req, nil
}

// doJSON performs req and returns the body of a 2xx response.
func (c *Client) doJSON(req *http.Request, endpoint string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, endpoint); err != nil {
		c.logger.Warn("request rejected", "path", endpoint, "status", resp.StatusCode,
			"request_id", req.Header.Get(HeaderRequestID))
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", endpoint, err)
	}
	return body, nil
}

// checkStatus turns a non-2xx response into a StatusError.
func checkStatus(resp *http.Response, endpoint string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Message:    errorMessage(data),
	}
}

// errorMessage extracts a readable message from an error body.
func errorMessage(data []byte) string {
	var parsed errorResponse
	if json.Unmarshal(data, &parsed) == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return strings.TrimSpace(string(data))
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
