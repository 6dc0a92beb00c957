package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tieubaoca/pitchdeck-be/utils"
)

var (
	ErrUnsupportedFileType = errors.New("only PDF files are allowed")
	ErrFileTooLarge        = errors.New("file too large")
)

// FileService stores deck files in the upload directory.
type FileService struct {
	uploadDir string
	maxBytes  int64
}

func NewFileService(uploadDir string, maxBytes int64) (*FileService, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FileService{
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
	}, nil
}

// SaveUpload writes an uploaded PDF as <name>_<unix>.pdf and returns its path.
func (s *FileService) SaveUpload(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, file.Filename)
	}
	if s.maxBytes > 0 && file.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, file.Size, s.maxBytes)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	originalName := strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	filename := fmt.Sprintf("%s_%d%s", sanitizeFileName(originalName), time.Now().Unix(), ext)
	destPath := filepath.Join(s.uploadDir, filename)

	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	// Guard against a lying Content-Length.
	limited := io.Reader(src)
	if s.maxBytes > 0 {
		limited = io.LimitReader(src, s.maxBytes+1)
	}
	written, err := io.Copy(dst, limited)
	if err == nil && s.maxBytes > 0 && written > s.maxBytes {
		err = ErrFileTooLarge
	}
	if err != nil {
		dst.Close()
		os.Remove(destPath)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return destPath, nil
}

// ImportFile copies a local PDF into the upload directory.
func (s *FileService) ImportFile(sourcePath string) (string, error) {
	if strings.ToLower(filepath.Ext(sourcePath)) != ".pdf" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, sourcePath)
	}
	if s.maxBytes > 0 {
		info, err := os.Stat(sourcePath)
		if err != nil {
			return "", fmt.Errorf("failed to stat source file: %w", err)
		}
		if info.Size() > s.maxBytes {
			return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, info.Size(), s.maxBytes)
		}
	}
	return utils.CopyFileWithTimestamp(sourcePath, s.uploadDir)
}

func sanitizeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, name)
	if name == "" {
		return "deck"
	}
	return name
}
