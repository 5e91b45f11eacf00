package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/0xmhha/smartreadme/pkg/logger"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketAuth = []byte("auth")
	keyToken   = []byte("token")
)

// boltStore implements Store on top of BoltDB. The file is opened for the
// length of one operation only, so several processes can share it.
type boltStore struct {
	path    string
	timeout time.Duration
	logger  logger.Logger

	mu     sync.RWMutex
	closed bool
}

// Open prepares the session database described by cfg, creating the file
// and its bucket when missing.
func Open(cfg Config, log logger.Logger) (Store, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	dbPath := expandHome(cfg.DBPath)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	s := &boltStore{path: dbPath, timeout: cfg.Timeout, logger: log}
	if err := s.update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketAuth)
		return createErr
	}); err != nil {
		return nil, fmt.Errorf("failed to create auth bucket: %w", err)
	}

	log.Debug("session store opened", "db_path", dbPath)
	return s, nil
}

// view runs fn in a read-only transaction under a shared file lock.
func (s *boltStore) view(fn func(tx *bolt.Tx) error) error {
	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: s.timeout, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to open session database: %w", err)
	}
	defer s.release(db)
	return db.View(fn)
}

// update runs fn in a read-write transaction under an exclusive file lock.
func (s *boltStore) update(fn func(tx *bolt.Tx) error) error {
	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: s.timeout})
	if err != nil {
		return fmt.Errorf("failed to open session database: %w", err)
	}
	defer s.release(db)
	return db.Update(fn)
}

func (s *boltStore) release(db *bolt.DB) {
	if err := db.Close(); err != nil {
		s.logger.Error("failed to close session database", "error", err)
	}
}

// Read implements Store.Read.
func (s *boltStore) Read() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", ErrStoreClosed
	}

	var token string
	err := s.view(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAuth)
		if b == nil {
			return nil
		}
		if v := b.Get(keyToken); v != nil {
			token = string(v)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return token, nil
}

// Write implements Store.Write.
func (s *boltStore) Write(token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	if err := s.update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketAuth)
		if err != nil {
			return err
		}
		return b.Put(keyToken, []byte(token))
	}); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info("session stored", "token", logger.Fingerprint(token))
	return nil
}

// Clear implements Store.Clear.
func (s *boltStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	if err := s.update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAuth)
		if b == nil {
			return nil
		}
		return b.Delete(keyToken)
	}); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.logger.Info("session cleared")
	return nil
}

// Close implements Store.Close. No file handle is held between operations,
// so Close only marks the store unusable.
func (s *boltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return homeDir
	}
	return filepath.Join(homeDir, path[2:])
}
