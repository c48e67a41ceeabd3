package binding

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

const StateFile = "binding.yaml"

var _ Store = &fileStore{}

// fileStore keeps the binding in the project's state directory, next to the
// files being deployed, so that it follows the project around.
type fileStore struct {
	lock sync.Mutex
	fs   afero.Fs
	path string
}

func NewFileStore(fs afero.Fs, stateDir string) Store {
	return &fileStore{
		fs:   fs,
		path: filepath.Join(stateDir, StateFile),
	}
}

func (f *fileStore) Binding(_ context.Context) (*SiteBinding, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read site binding: %w", err)
	}

	binding := &SiteBinding{}
	err = yaml.Unmarshal(data, binding)
	if err != nil {
		return nil, fmt.Errorf("parse site binding %s: %w", f.path, err)
	}

	if err := binding.Valid(); err != nil {
		return nil, fmt.Errorf("site binding %s: %w", f.path, err)
	}

	return binding, nil
}

func (f *fileStore) SaveBinding(_ context.Context, binding SiteBinding) error {
	if err := binding.Valid(); err != nil {
		return err
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	data, err := yaml.Marshal(binding)
	if err != nil {
		return fmt.Errorf("marshal site binding: %w", err)
	}

	err = f.fs.MkdirAll(filepath.Dir(f.path), 0o755)
	if err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	err = afero.WriteFile(f.fs, f.path, data, 0o644)
	if err != nil {
		return fmt.Errorf("write site binding: %w", err)
	}

	return nil
}
