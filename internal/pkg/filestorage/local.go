package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"thesisflow/internal/pkg/apperrors"
	"thesisflow/internal/pkg/logger"
)

// LocalStorage stores thesis documents on the local filesystem under a
// single base directory. Files get uuid names; the original filename is
// kept in the thesis row, not on disk.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a LocalStorage rooted at basePath, creating the
// directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// ValidateFile checks extension and size limits
func (ls *LocalStorage) ValidateFile(fileHeader *multipart.FileHeader) error {
	return ValidateFileHeader(fileHeader)
}

// SaveFile validates and stores the upload under basePath/subPath with a
// generated uuid filename. The returned path is relative to the storage
// root.
func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader, subPath string) (*FileInfo, error) {
	if err := ValidateFileHeader(fileHeader); err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, apperrors.NewFileStorageError("failed to open uploaded file")
	}
	defer file.Close()

	dirPath := ls.basePath
	if subPath != "" {
		dirPath = filepath.Join(ls.basePath, subPath)
		if err := os.MkdirAll(dirPath, 0o755); err != nil {
			logger.Error().Err(err).Str("path", dirPath).Msg("Failed to create subdirectory")
			return nil, apperrors.NewFileStorageError("failed to create storage subdirectory")
		}
	}

	uniqueName := uuid.New().String() + filepath.Ext(fileHeader.Filename)
	dstPath := filepath.Join(dirPath, uniqueName)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, apperrors.NewFileStorageError("failed to create destination file")
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write uploaded file")
		_ = os.Remove(dstPath)
		return nil, apperrors.NewFileStorageError("failed to save file content")
	}

	relPath := uniqueName
	if subPath != "" {
		relPath = filepath.Join(subPath, uniqueName)
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	logger.Info().
		Str("filename", fileHeader.Filename).
		Str("saved_as", relPath).
		Int64("size", written).
		Msg("File saved")

	return &FileInfo{
		Path:     relPath,
		Filename: fileHeader.Filename,
		FileSize: written,
		MimeType: mimeType,
	}, nil
}

// DeleteFile removes a stored file by its relative path. A missing file is
// treated as already deleted.
func (ls *LocalStorage) DeleteFile(relPath string) error {
	if relPath == "" {
		return nil
	}
	physicalPath := ls.FullPath(relPath)
	if physicalPath == "" {
		return fmt.Errorf("invalid file path: %s", relPath)
	}

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}
	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FullPath resolves a stored relative path against the storage root. Paths
// escaping the root resolve to "".
func (ls *LocalStorage) FullPath(relPath string) string {
	cleaned := filepath.Clean(relPath)
	if cleaned == "." || filepath.IsAbs(cleaned) {
		return ""
	}
	for _, part := range strings.Split(cleaned, string(filepath.Separator)) {
		if part == ".." {
			return ""
		}
	}
	return filepath.Join(ls.basePath, cleaned)
}
