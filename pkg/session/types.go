// Package session persists the bearer credential used by every
// authenticated request.
//
// At most one token exists at a time. Login writes it, logout and any
// detected authentication failure clear it, and everything else only reads
// it. The persistent implementation keeps the token in a BoltDB file under a
// well-known bucket and key.
//
// Example usage:
//
//	store, err := session.Open(session.Config{
//	    DBPath: "~/.config/smartreadme/session.db",
//	}, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.Write("eyJhbGciOi..."); err != nil {
//	    log.Fatal(err)
//	}
package session

import (
	"time"

	"github.com/0xmhha/smartreadme/pkg/notice"
)

// Store holds the session credential.
type Store interface {
	// Read returns the current token, or "" when no session exists.
	Read() (string, error)

	// Write replaces the current token. An empty token is rejected with
	// ErrEmptyToken; use Clear to remove the session.
	Write(token string) error

	// Clear removes the token. Clearing an empty store is not an error.
	Clear() error

	// Close releases underlying resources.
	Close() error
}

// Config contains persistent store configuration.
type Config struct {
	// DBPath is the BoltDB file path. A leading ~ is expanded.
	DBPath string

	// Timeout bounds how long each operation waits for the file lock
	// (default: 1 second).
	Timeout time.Duration
}

// Authenticated reports whether s currently holds a non-empty token. Read
// errors are treated as "no session".
func Authenticated(s Store) bool {
	token, err := s.Read()
	return err == nil && token != ""
}

// Expire handles an authentication failure reported by the backend: the
// token is cleared, the user is told the session expired and the surface is
// sent to login. The clear error, if any, is returned after the signals are
// delivered.
func Expire(s Store, sink notice.Sink) error {
	err := s.Clear()
	sink.Notify(notice.Error(notice.MsgSessionExpired))
	sink.RedirectToLogin()
	return err
}
