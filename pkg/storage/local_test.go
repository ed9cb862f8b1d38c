package storage

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

func fileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File["file"][0]
}

func TestSaveImage(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, 5<<20, 10<<20)
	require.NoError(t, err)

	path, err := store.Save(FieldImage, fileHeader(t, "photo.JPG", "fake image bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "images/"))
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))
}

func TestSaveRejectsDisallowedExtension(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), 5<<20, 10<<20)
	require.NoError(t, err)

	_, err = store.Save(FieldImage, fileHeader(t, "malware.exe", "nope"))
	var badExt *InvalidFileError
	require.ErrorAs(t, err, &badExt)
	assert.Equal(t, ".exe", badExt.Extension)

	// PDFs are proof-only.
	_, err = store.Save(FieldImage, fileHeader(t, "receipt.pdf", "nope"))
	assert.ErrorAs(t, err, &badExt)
	_, err = store.Save(FieldProof, fileHeader(t, "receipt.pdf", "ok"))
	assert.NoError(t, err)
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), 8, 10<<20)
	require.NoError(t, err)

	_, err = store.Save(FieldImage, fileHeader(t, "big.png", "more than eight bytes"))
	var tooBig *FileTooLargeError
	require.ErrorAs(t, err, &tooBig)
	assert.Equal(t, string(FieldImage), tooBig.Field)
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, 5<<20, 10<<20)
	require.NoError(t, err)

	path, err := store.Save(FieldProof, fileHeader(t, "receipt.pdf", "proof"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(path)))
	assert.True(t, os.IsNotExist(err))

	// Removing twice is not an error.
	assert.NoError(t, store.Remove(path))
}

func TestRemoveRefusesPathTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), 5<<20, 10<<20)
	require.NoError(t, err)

	assert.Error(t, store.Remove("../etc/passwd"))
	assert.Error(t, store.Remove("/etc/passwd"))
	assert.NoError(t, store.Remove(""))
}
