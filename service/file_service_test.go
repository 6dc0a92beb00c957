package service

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	_, header, err := req.FormFile("file")
	require.NoError(t, err)
	return header
}

func TestFileService_SaveUpload(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewFileService(dir, 1024)
	require.NoError(t, err)

	path, err := svc.SaveUpload(multipartHeader(t, "My Deck (v2).PDF", []byte("%PDF-1.4 body")))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "My_Deck__v2__"))
	assert.True(t, strings.HasSuffix(path, ".pdf"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(content))
}

func TestFileService_RejectsUploads(t *testing.T) {
	svc, err := NewFileService(t.TempDir(), 8)
	require.NoError(t, err)

	_, err = svc.SaveUpload(multipartHeader(t, "deck.docx", []byte("x")))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = svc.SaveUpload(multipartHeader(t, "deck.pdf", []byte("way more than eight bytes")))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestFileService_ImportFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "acme.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF"), 0644))
	uploads := filepath.Join(t.TempDir(), "uploads")

	svc, err := NewFileService(uploads, 0)
	require.NoError(t, err)
	path, err := svc.ImportFile(src)
	require.NoError(t, err)
	assert.Equal(t, uploads, filepath.Dir(path))

	_, err = svc.ImportFile(filepath.Join(t.TempDir(), "notes.txt"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}
