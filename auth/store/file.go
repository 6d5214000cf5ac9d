package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"marketfront/auth"
)

// FileSession persists the cached client token to a JSON file, a lightweight
// way to survive process restarts in CLI or single-host use.
type FileSession struct {
	mu    sync.RWMutex
	path  string
	token *auth.Token
}

// NewFileSession creates a session store persisting at the given path. A
// missing or unreadable file simply starts empty.
func NewFileSession(path string) *FileSession {
	fs := &FileSession{path: path}
	_ = fs.load()
	return fs
}

func (f *FileSession) ClientToken(ctx context.Context) (*auth.Token, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.token == nil {
		return nil, nil
	}
	token := *f.token
	return &token, nil
}

func (f *FileSession) StoreClientToken(ctx context.Context, token *auth.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *token
	f.token = &clone
	return f.save()
}

type fileSnapshot struct {
	ClientToken *auth.Token `json:"client_token,omitempty"`
}

func (f *FileSession) save() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fileSnapshot{ClientToken: f.token}, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileSession) load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var snap fileSnapshot
	if err = json.Unmarshal(data, &snap); err != nil {
		return err
	}
	f.token = snap.ClientToken
	return nil
}
