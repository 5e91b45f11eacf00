package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/0xmhha/smartreadme/pkg/artifact"
	"github.com/0xmhha/smartreadme/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL}, logger.Noop())
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:5134", "://bad"} {
		_, err := New(Config{BaseURL: raw}, logger.Noop())
		assert.ErrorIs(t, err, ErrInvalidBaseURL, raw)
	}
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, LoginPath, r.URL.Path)
		_, err := uuid.Parse(r.Header.Get(HeaderRequestID))
		assert.NoError(t, err)

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Email != "me@example.com" || req.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"bad credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"abc"}`))
	})

	token, err := c.Login(context.Background(), "me@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = c.Login(context.Background(), "me@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "bad credentials", statusErr.Message)
}

func TestLoginMissingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.Login(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGenerate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, GeneratePath, r.URL.Path)
		assert.Equal(t, "Bearer abc", r.Header.Get(HeaderAuthorization))

		file, header, err := r.FormFile(UploadField)
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "myproj.zip", header.Filename)
		assert.Equal(t, "archive-bytes", string(data))

		_, _ = w.Write([]byte(`{"outputs":[{"name":"README.md","path":"/o/1/README.md"},{"name":"README.pdf","path":"/o/1/README.pdf"}]}`))
	})

	artifacts, err := c.Generate(context.Background(), "abc", "myproj.zip", strings.NewReader("archive-bytes"))
	require.NoError(t, err)
	assert.Equal(t, []artifact.Descriptor{
		{DisplayName: "README.md", ServerPath: "/o/1/README.md"},
		{DisplayName: "README.pdf", ServerPath: "/o/1/README.pdf"},
	}, artifacts)
}

func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing outputs", `{}`, -1},
		{"null outputs", `{"outputs":null}`, -1},
		{"empty path", `{"outputs":[{"name":"a.md","path":""}]}`, -1},
		{"malformed", `not json`, -1},
		{"empty list", `{"outputs":[]}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				_, _ = w.Write([]byte(tt.body))
			})

			artifacts, err := c.Generate(context.Background(), "abc", "p.zip", strings.NewReader("x"))
			if tt.want < 0 {
				assert.ErrorIs(t, err, ErrInvalidResponse)
				return
			}
			require.NoError(t, err)
			assert.Len(t, artifacts, tt.want)
		})
	}
}

func TestGenerateStatusErrors(t *testing.T) {
	tests := []struct {
		status       int
		unauthorized bool
	}{
		{http.StatusUnauthorized, true},
		{http.StatusForbidden, false},
		{http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				http.Error(w, "nope", tt.status)
			})

			_, err := c.Generate(context.Background(), "abc", "p.zip", strings.NewReader("x"))
			require.Error(t, err)
			assert.Equal(t, tt.unauthorized, IsUnauthorized(err))

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.StatusCode)
		})
	}
}

func TestGenerateRequiresToken(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.Generate(context.Background(), "", "p.zip", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.False(t, called)
}

func TestGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, GenerateTimeout: 50 * time.Millisecond}, logger.Noop())
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "abc", "p.zip", strings.NewReader("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, IsUnauthorized(err))
}

func TestDownload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DownloadPath, r.URL.Path)
		assert.Equal(t, "Bearer abc", r.Header.Get(HeaderAuthorization))
		switch r.URL.Query().Get("path") {
		case "/o/1/README.pdf":
			_, _ = w.Write([]byte("%PDF-1.4"))
		case "/o/expired":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			http.NotFound(w, r)
		}
	})

	body, err := c.Download(context.Background(), "abc", "/o/1/README.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "%PDF-1.4", string(data))

	_, err = c.Download(context.Background(), "abc", "/o/expired")
	assert.True(t, IsUnauthorized(err))

	_, err = c.Download(context.Background(), "abc", "/o/missing")
	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))

	_, err = c.Download(context.Background(), "", "/o/1/README.pdf")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = c.Download(context.Background(), "abc", "")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestBaseURLWithPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/backend"+LoginPath, r.URL.Path)
		_, _ = w.Write([]byte(`{"token":"t"}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL + "/backend/"}, logger.Noop())
	require.NoError(t, err)

	token, err := c.Login(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "t", token)
}
