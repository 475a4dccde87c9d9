package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StorageService keeps uploaded resumes. The returned reference keeps the
// original extension so the parser can be chosen from it later.
type StorageService interface {
	EnsureReady(ctx context.Context) error
	SaveFile(ctx context.Context, file *multipart.FileHeader) (string, error)
	ReadFile(ctx context.Context, ref string) ([]byte, error)
	DeleteFile(ctx context.Context, ref string) error
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

// resumeObjectName builds a unique stored name for an upload.
func resumeObjectName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("resume_%s%s", uuid.New().String(), ext)
}

func (s *storageService) EnsureReady(_ context.Context) error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *storageService) SaveFile(_ context.Context, file *multipart.FileHeader) (string, error) {
	uniqueFilename := resumeObjectName(file.Filename)

	// Open source file
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Create destination file
	dst, err := os.Create(s.path(uniqueFilename))
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	// Copy file
	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return uniqueFilename, nil
}

func (s *storageService) ReadFile(_ context.Context, ref string) ([]byte, error) {
	data, err := os.ReadFile(s.path(ref))
	if err != nil {
		return nil, fmt.Errorf("failed to read stored resume: %w", err)
	}
	return data, nil
}

func (s *storageService) DeleteFile(_ context.Context, ref string) error {
	if err := os.Remove(s.path(ref)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// path confines ref to the upload directory.
func (s *storageService) path(ref string) string {
	return filepath.Join(s.uploadPath, filepath.Base(ref))
}
