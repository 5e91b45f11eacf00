package workflow

import (
	"github.com/0xmhha/smartreadme/pkg/logger"
	"github.com/0xmhha/smartreadme/pkg/notice"
	"github.com/0xmhha/smartreadme/pkg/session"
)

// AuthGate guards entry to the workflow surface. It only reads the session.
type AuthGate struct {
	sessions session.Store
	sink     notice.Sink
	logger   logger.Logger
}

// NewAuthGate creates a gate over sessions.
func NewAuthGate(sessions session.Store, sink notice.Sink, log logger.Logger) *AuthGate {
	return &AuthGate{sessions: sessions, sink: sink, logger: log}
}

// Check lets the caller in when a session exists. Otherwise it emits the
// login notice, signals a redirect and returns ErrLoginRequired.
func (g *AuthGate) Check() error {
	token, err := g.sessions.Read()
	if err != nil {
		g.logger.Error("failed to read session", "error", err)
	}
	if token != "" {
		return nil
	}

	g.sink.Notify(notice.Error(notice.MsgLoginFirst))
	g.sink.RedirectToLogin()
	return ErrLoginRequired
}
