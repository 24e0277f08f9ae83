// Package credstore persists the session credentials between runs.
//
// Stores are best-effort by contract: a corrupted or partially written
// session is indistinguishable from no session, and is healed by
// clearing the backing storage.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/talodu/marketplace-client/internal/core/domain"
	"github.com/talodu/marketplace-client/pkg/logger"
)

// storedSession is the on-disk document. All three fields must be present
// for the session to be considered valid; partial state is treated as
// absent.
type storedSession struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user"`
}

// FileStore keeps the session in a single JSON file, created with
// owner-only permissions.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path. The parent directory
// is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the credential pair and user snapshot atomically
// (temp file + rename).
func (s *FileStore) Save(pair domain.TokenPair, user *domain.User) error {
	if user == nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		return fmt.Errorf("credstore: refusing to save partial session")
	}

	data, err := json.Marshal(storedSession{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	})
	if err != nil {
		return fmt.Errorf("credstore: marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("credstore: create session dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("credstore: write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("credstore: commit session: %w", err)
	}
	return nil
}

// Load reads the stored session. Missing, unreadable, or partial data
// reports absent; corrupted data is additionally cleared so the next
// load starts clean.
func (s *FileStore) Load() (domain.TokenPair, *domain.User, bool) {
	log := logger.Get()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", s.path).Msg("session file unreadable")
		}
		return domain.TokenPair{}, nil, false
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		corrupted := fmt.Errorf("%w: %v", domain.ErrStorageCorrupted, err)
		log.Warn().Err(corrupted).Str("path", s.path).Msg("clearing session file")
		_ = s.Clear()
		return domain.TokenPair{}, nil, false
	}

	if stored.AccessToken == "" || stored.RefreshToken == "" || stored.User == nil {
		log.Warn().Str("path", s.path).Msg("stored session incomplete, clearing")
		_ = s.Clear()
		return domain.TokenPair{}, nil, false
	}

	pair := domain.TokenPair{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
	}
	return pair, stored.User, true
}

// Clear removes the session file. Removing an absent file is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("credstore: clear session: %w", err)
	}
	return nil
}
