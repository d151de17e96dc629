package media

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("imageFile", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, fh, err := req.FormFile("imageFile")
	require.NoError(t, err)
	return fh
}

func TestSave_AllowedExtensions(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"a.png", "b.jpg", "c.JPEG", "d.gif", "e.webp"} {
		path, err := store.Save(makeFileHeader(t, name, "img-bytes"))
		assert.NoError(t, err, name)
		assert.True(t, strings.HasPrefix(path, URLBase+"/"), name)

		data, err := os.ReadFile(store.FilePath(path))
		assert.NoError(t, err)
		assert.Equal(t, "img-bytes", string(data))
	}
}

func TestSave_RejectsDisallowedExtension(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"evil.exe", "doc.pdf", "noext"} {
		_, err := store.Save(makeFileHeader(t, name, "xx"))
		assert.ErrorIs(t, err, ErrInvalidMediaType, name)
	}
}

func TestSave_FilenameNotDerivedFromUpload(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save(makeFileHeader(t, "../../../traversal.png", "xx"))
	require.NoError(t, err)

	assert.NotContains(t, path, "traversal")
	assert.NotContains(t, filepath.Base(path), "..")

	// file landed directly under the upload root
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDelete_Idempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save(makeFileHeader(t, "a.png", "xx"))
	require.NoError(t, err)

	assert.NoError(t, store.Delete(path))
	_, statErr := os.Stat(store.FilePath(path))
	assert.True(t, os.IsNotExist(statErr))

	// second delete of the same path is not an error
	assert.NoError(t, store.Delete(path))
	assert.NoError(t, store.Delete(""))
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
