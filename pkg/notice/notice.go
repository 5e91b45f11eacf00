// Package notice carries user-visible feedback out of the workflow without
// tying it to a particular renderer.
//
// A Sink receives two things: short notices (success, error, info) and the
// redirect-to-login signal raised when the session is missing or expired.
package notice

import (
	"fmt"
	"io"
	"sync"
)

// Level classifies a notice.
type Level string

// Notice levels.
const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Messages shared by the workflow surfaces.
const (
	MsgNoFileSelected    = "Please select a ZIP file first."
	MsgNotAuthenticated  = "Unauthorized! Please log in again."
	MsgSessionExpired    = "Session expired. Please log in again."
	MsgGenerated         = "README generated successfully!"
	MsgGenerationFailed  = "Generation failed. Check server connection."
	MsgReset             = "Ready for a new project!"
	MsgLoginFirst        = "Please login first!"
	MsgDownloadNoSession = "Please login again."
	MsgDownloaded        = "File downloaded successfully!"
	MsgDownloadFailed    = "Download failed."
	MsgLoggedIn          = "Login successful!"
	MsgLoginFailed       = "Invalid email or password."
	MsgLoggedOut         = "Logged out."
)

// Notice is one user-visible message.
type Notice struct {
	Level   Level
	Message string
}

// Sink receives notices and navigation signals.
type Sink interface {
	Notify(n Notice)

	// RedirectToLogin asks the surface to send the user to the login flow.
	RedirectToLogin()
}

// Success builds a success notice.
func Success(msg string) Notice { return Notice{Level: LevelSuccess, Message: msg} }

// Error builds an error notice.
func Error(msg string) Notice { return Notice{Level: LevelError, Message: msg} }

// Info builds an informational notice.
func Info(msg string) Notice { return Notice{Level: LevelInfo, Message: msg} }

// Writer renders notices as single lines on a terminal.
type Writer struct {
	mu  sync.Mutex
	out io.Writer

	// LoginHint is printed when a redirect is requested.
	LoginHint string
}

// NewWriter returns a Sink writing to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out, LoginHint: "Run `smartreadme login` to sign in."}
}

// Notify implements Sink.
func (w *Writer) Notify(n Notice) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "%s %s\n", prefix(n.Level), n.Message)
}

// RedirectToLogin implements Sink.
func (w *Writer) RedirectToLogin() {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "→ %s\n", w.LoginHint)
}

func prefix(l Level) string {
	switch l {
	case LevelSuccess:
		return "✔"
	case LevelError:
		return "✖"
	default:
		return "•"
	}
}

// Recorder is a Sink that keeps everything it receives. Safe for
// concurrent use.
type Recorder struct {
	mu        sync.Mutex
	notices   []Notice
	redirects int
}

// Notify implements Sink.
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// RedirectToLogin implements Sink.
func (r *Recorder) RedirectToLogin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects++
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Redirects returns how many redirects were requested.
func (r *Recorder) Redirects() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redirects
}

// Last returns the most recent notice and whether there was one.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}
