package filestorage

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"thesisflow/internal/pkg/apperrors"
)

// MaxFileSize is the upload limit for thesis documents (20 MB)
const MaxFileSize = 20 << 20

// allowedExtensions lists the document types accepted for thesis uploads
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".tex":  true,
}

// FileInfo describes a stored file
type FileInfo struct {
	Path     string // path relative to the storage root
	Filename string // original filename
	FileSize int64  // size in bytes
	MimeType string // MIME type as declared in the upload
}

// FileStorage defines the interface for thesis document storage
type FileStorage interface {
	// ValidateFile checks extension and size limits without storing anything
	ValidateFile(fileHeader *multipart.FileHeader) error

	// SaveFile validates and stores an upload under the given subdirectory,
	// returning the stored file's metadata
	SaveFile(fileHeader *multipart.FileHeader, subPath string) (*FileInfo, error)

	// DeleteFile removes a stored file; deleting a missing file is not an
	// error
	DeleteFile(relPath string) error

	// FullPath resolves a stored relative path to a filesystem path
	FullPath(relPath string) string
}

// ValidateFileHeader checks the upload against the extension whitelist and
// size limit. Exposed so services can reject a bad file before doing any
// other work.
func ValidateFileHeader(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil {
		return apperrors.NewValidationError("no file provided")
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return apperrors.NewValidationError(
			fmt.Sprintf("file type %s is not allowed (pdf, doc, docx, txt, tex)", ext))
	}
	if fileHeader.Size > MaxFileSize {
		return apperrors.NewValidationError(
			fmt.Sprintf("file exceeds the %d MB limit", MaxFileSize>>20))
	}
	return nil
}
