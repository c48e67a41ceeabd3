// Package archive packages a project file map into a zip archive for upload.
package archive

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/klauspost/compress/zip"
	log "github.com/sirupsen/logrus"
)

const ContentType = "application/zip"

// FileMap maps a file path to its content. Only string content is packaged;
// any other value is skipped.
type FileMap map[string]any

// Archive is a packaged file map. It serves a single submission.
type Archive struct {
	Data    []byte
	Entries []string
	Skipped []string
}

func (a *Archive) Len() int {
	return len(a.Data)
}

type PackagingError struct {
	Path string
	Err  error
}

func (e *PackagingError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("package archive: %s", e.Err)
	}
	return fmt.Sprintf("package archive: %s: %s", e.Path, e.Err)
}

func (e *PackagingError) Unwrap() error {
	return e.Err
}

// Pack writes one zip entry per path with string content, in lexical order.
// An empty file map yields a valid, empty archive.
func Pack(files FileMap) (*Archive, error) {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	buf := &bytes.Buffer{}
	writer := zip.NewWriter(buf)
	archive := &Archive{
		Entries: make([]string, 0, len(paths)),
		Skipped: make([]string, 0),
	}

	for _, path := range paths {
		content, ok := files[path].(string)
		if !ok {
			log.Debugf("Skipping %q: content is %T, not text", path, files[path])
			archive.Skipped = append(archive.Skipped, path)
			continue
		}

		entry, err := writer.Create(path)
		if err != nil {
			return nil, &PackagingError{Path: path, Err: err}
		}
		_, err = entry.Write([]byte(content))
		if err != nil {
			return nil, &PackagingError{Path: path, Err: err}
		}
		archive.Entries = append(archive.Entries, path)
	}

	err := writer.Close()
	if err != nil {
		return nil, &PackagingError{Err: err}
	}

	archive.Data = buf.Bytes()

	return archive, nil
}
