// Package api is the typed boundary to the README generation backend.
//
// The backend exposes three endpoints: login, generate and download. Every
// response is validated here so that callers only ever see well-formed
// artifact descriptors or a classified error. A 401 from any endpoint is
// reported as ErrUnauthorized regardless of which call produced it.
//
// Example usage:
//
//	client, err := api.New(api.Config{BaseURL: "http://localhost:5134"}, log)
//	if err != nil {
//	    return err
//	}
//	token, err := client.Login(ctx, "me@example.com", "secret")
package api

import (
	"time"

	"github.com/0xmhha/smartreadme/pkg/artifact"
)

// Endpoint paths relative to Config.BaseURL.
const (
	LoginPath    = "/api/auth/login"
	GeneratePath = "/api/readme/generate"
	DownloadPath = "/api/readme/download"
)

// Header names sent with every request.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderAuthorization = "Authorization"
)

// UploadField is the multipart form field carrying the archive.
const UploadField = "file"

// Config contains client configuration.
type Config struct {
	// BaseURL is the backend root, e.g. http://localhost:5134.
	BaseURL string

	// LoginTimeout bounds a login call (default: 30 seconds).
	LoginTimeout time.Duration

	// GenerateTimeout bounds a generation call including the upload
	// (default: 5 minutes).
	GenerateTimeout time.Duration

	// DownloadTimeout bounds a download until its body is closed
	// (default: 2 minutes).
	DownloadTimeout time.Duration
}

// loginRequest is the login payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the login reply.
type loginResponse struct {
	Token string `json:"token"`
}

// generateResponse is the generation reply. Outputs is a pointer so a
// missing field can be told apart from an empty list.
type generateResponse struct {
	Outputs *[]artifact.Descriptor `json:"outputs"`
}

// errorResponse is the optional JSON error body.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
