package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ghodss/yaml"
	"github.com/spf13/afero"
)

var _ Store = &fileStore{}

type credentialsFile struct {
	Token string `json:"token"`
}

// fileStore keeps the token in a YAML file readable only by the current user.
type fileStore struct {
	lock sync.Mutex
	fs   afero.Fs
	path string
}

func NewFileStore(fs afero.Fs, path string) Store {
	return &fileStore{
		fs:   fs,
		path: path,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/sitedeploy/credentials.yaml, or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sitedeploy", "credentials.yaml"), nil
}

func (f *fileStore) Token(_ context.Context) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read credentials file: %w", err)
	}

	creds := &credentialsFile{}
	err = yaml.Unmarshal(data, creds)
	if err != nil {
		return "", fmt.Errorf("parse credentials file %s: %w", f.path, err)
	}

	if len(creds.Token) == 0 {
		return "", ErrNotFound
	}

	return creds.Token, nil
}

func (f *fileStore) SetToken(_ context.Context, token string) error {
	if len(token) == 0 {
		return ErrEmptyToken
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	data, err := yaml.Marshal(&credentialsFile{Token: token})
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	err = f.fs.MkdirAll(filepath.Dir(f.path), 0o700)
	if err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}

	err = afero.WriteFile(f.fs, f.path, data, 0o600)
	if err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}

	return nil
}
