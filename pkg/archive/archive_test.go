package archive_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/nais/sitedeploy/pkg/archive"
	"github.com/stretchr/testify/assert"
)

func unpack(t *testing.T, data []byte) map[string]string {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	assert.NoError(t, err)

	files := make(map[string]string)
	for _, f := range reader.File {
		rc, err := f.Open()
		assert.NoError(t, err)
		content, err := io.ReadAll(rc)
		assert.NoError(t, err)
		rc.Close()
		files[f.Name] = string(content)
	}
	return files
}

func TestPack(t *testing.T) {
	files := archive.FileMap{
		"index.html":       "<h1>hi</h1>",
		"css/site.css":     "body {}",
		"empty.txt":        "",
		"folder":           nil,
		"binary.bin":       []byte{0x00, 0x01},
		"dir/nested/a.txt": "a",
		"number":           42,
	}

	a, err := archive.Pack(files)
	assert.NoError(t, err)
	assert.Equal(t, []string{"css/site.css", "dir/nested/a.txt", "empty.txt", "index.html"}, a.Entries)
	assert.Equal(t, []string{"binary.bin", "folder", "number"}, a.Skipped)
	assert.Equal(t, len(a.Data), a.Len())

	assert.Equal(t, map[string]string{
		"index.html":       "<h1>hi</h1>",
		"css/site.css":     "body {}",
		"empty.txt":        "",
		"dir/nested/a.txt": "a",
	}, unpack(t, a.Data))
}

func TestPackEmpty(t *testing.T) {
	for _, files := range []archive.FileMap{nil, {}, {"only": nil}} {
		a, err := archive.Pack(files)
		assert.NoError(t, err)
		assert.NotEmpty(t, a.Data)
		assert.Empty(t, unpack(t, a.Data))
	}
}

func TestPackIsDeterministic(t *testing.T) {
	files := archive.FileMap{"b": "2", "a": "1", "c": "3"}
	first, err := archive.Pack(files)
	assert.NoError(t, err)
	second, err := archive.Pack(files)
	assert.NoError(t, err)
	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, unpack(t, first.Data), unpack(t, second.Data))
}
