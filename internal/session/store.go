// internal/session/store.go
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Tokens is the persisted credential pair
type Tokens struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// ConfigData holds client preferences stored next to the tokens
type ConfigData struct {
	PageSize int `json:"pageSize,omitempty"`
}

// TokenStore persists tokens and preferences between runs
type TokenStore interface {
	Tokens() (Tokens, error)
	SaveTokens(t Tokens) error
	ClearTokens() error
	ConfigData() (ConfigData, error)
	SaveConfigData(d ConfigData) error
}

type storedState struct {
	Tokens
	ConfigData ConfigData `json:"configData"`
}

// FileTokenStore keeps the state in a JSON file readable only by its owner
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

// NewFileTokenStore uses path, creating its directory on first write
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Tokens implements TokenStore
func (s *FileTokenStore) Tokens() (Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.read()
	return st.Tokens, err
}

// SaveTokens implements TokenStore
func (s *FileTokenStore) SaveTokens(t Tokens) error {
	return s.update(func(st *storedState) { st.Tokens = t })
}

// ClearTokens implements TokenStore. Preferences survive.
func (s *FileTokenStore) ClearTokens() error {
	return s.update(func(st *storedState) { st.Tokens = Tokens{} })
}

// ConfigData implements TokenStore
func (s *FileTokenStore) ConfigData() (ConfigData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.read()
	return st.ConfigData, err
}

// SaveConfigData implements TokenStore
func (s *FileTokenStore) SaveConfigData(d ConfigData) error {
	return s.update(func(st *storedState) { st.ConfigData = d })
}

func (s *FileTokenStore) update(fn func(*storedState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.read()
	if err != nil {
		return err
	}
	fn(&st)
	return s.write(st)
}

// read returns the zero state when the file does not exist yet
func (s *FileTokenStore) read() (storedState, error) {
	var st storedState
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("failed to read session file: %w", err)
	}
	if len(raw) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return storedState{}, fmt.Errorf("corrupt session file %s: %w", s.path, err)
	}
	return st, nil
}

func (s *FileTokenStore) write(st storedState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// MemoryTokenStore is a TokenStore for tests and one-shot runs
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens Tokens
	config ConfigData
	// Err, when set, is returned by every write
	Err error
}

// Tokens implements TokenStore
func (s *MemoryTokenStore) Tokens() (Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens, nil
}

// SaveTokens implements TokenStore
func (s *MemoryTokenStore) SaveTokens(t Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.tokens = t
	return nil
}

// ClearTokens implements TokenStore
func (s *MemoryTokenStore) ClearTokens() error {
	return s.SaveTokens(Tokens{})
}

// ConfigData implements TokenStore
func (s *MemoryTokenStore) ConfigData() (ConfigData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config, nil
}

// SaveConfigData implements TokenStore
func (s *MemoryTokenStore) SaveConfigData(d ConfigData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.config = d
	return nil
}
