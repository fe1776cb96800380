package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"comms-metrics-backend/internal/model"
)

var ErrNoSession = errors.New("no session stored")

// Store persists the service-account session used by background jobs.
type Store interface {
	Load() (model.Session, error)
	Save(sess model.Session) error
	Path() string
}

type fileStore struct {
	filePath string
	mu       sync.RWMutex
}

func NewStore(filePath string) Store {
	return &fileStore{filePath: filePath}
}

// Load returns ErrNoSession when the file is missing, empty or holds an
// empty session.
func (s *fileStore) Load() (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("file", s.filePath).Msg("Session file not found")
			return model.Session{}, ErrNoSession
		}
		log.Error().Err(err).Str("file", s.filePath).Msg("Failed to read session file")
		return model.Session{}, err
	}
	if len(data) == 0 {
		return model.Session{}, ErrNoSession
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		log.Error().Err(err).Str("file", s.filePath).Msg("Failed to unmarshal session file")
		return model.Session{}, err
	}
	if sess.IsZero() {
		return model.Session{}, ErrNoSession
	}
	log.Debug().Str("file", s.filePath).Str("user_id", sess.UserID).Msg("Loaded session")
	return sess, nil
}

func (s *fileStore) Save(sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	tempFilePath := s.filePath + ".tmp"
	if err := os.WriteFile(tempFilePath, data, 0o600); err != nil {
		log.Error().Err(err).Str("file", tempFilePath).Msg("Failed to write temporary session file")
		return err
	}
	if err := os.Rename(tempFilePath, s.filePath); err != nil {
		log.Error().Err(err).Str("from", tempFilePath).Str("to", s.filePath).Msg("Failed to rename session file")
		_ = os.Remove(tempFilePath)
		return err
	}
	log.Debug().Str("file", s.filePath).Str("user_id", sess.UserID).Msg("Saved session")
	return nil
}

func (s *fileStore) Path() string {
	return s.filePath
}
