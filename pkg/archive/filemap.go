package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FromFs reads every regular file below root into a FileMap, keyed by
// slash-separated paths relative to root. Directories named in exclude are
// not descended into.
func FromFs(fs afero.Fs, root string, exclude ...string) (FileMap, error) {
	skip := make(map[string]bool, len(exclude))
	for _, dir := range exclude {
		skip[filepath.Clean(dir)] = true
	}

	files := make(FileMap)

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if rel != "." && (skip[rel] || skip[info.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return fmt.Errorf("%s: read file: %w", path, err)
		}

		files[filepath.ToSlash(rel)] = string(data)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// Provider supplies a snapshot of the project's files at submission time.
type Provider interface {
	Files() (FileMap, error)
}

type fsProvider struct {
	fs      afero.Fs
	root    string
	exclude []string
}

func NewFsProvider(fs afero.Fs, root string, exclude ...string) Provider {
	return &fsProvider{
		fs:      fs,
		root:    root,
		exclude: exclude,
	}
}

func (p *fsProvider) Files() (FileMap, error) {
	return FromFs(p.fs, p.root, p.exclude...)
}

// StaticProvider serves a fixed file map.
type StaticProvider FileMap

func (p StaticProvider) Files() (FileMap, error) {
	files := make(FileMap, len(p))
	for path, content := range p {
		files[path] = content
	}
	return files, nil
}

// DefaultExcludes are never part of a deployment.
var DefaultExcludes = []string{".git", ".sitedeploy"}
