package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/krishkalaria12/snap-upload/apperror"
)

// NameFunc turns the client-supplied file name into the name used on disk.
type NameFunc func(originalName, mediaType string) string

// StoredFile describes a file that was fully written to the storage directory.
type StoredFile struct {
	Filename string
	Path     string
	Size     int64
}

// Local writes uploads into a single flat directory.
type Local struct {
	dir     string
	maxSize int64
	name    NameFunc
}

func NewLocal(dir string, maxSize int64) (*Local, error) {
	if err := EnsureDir(dir); err != nil {
		return nil, err
	}
	return &Local{
		dir:     dir,
		maxSize: maxSize,
		name:    GenerateFilename,
	}, nil
}

// WithNameFunc replaces the naming strategy. Intended for tests.
func (l *Local) WithNameFunc(fn NameFunc) *Local {
	l.name = fn
	return l
}

func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) MaxSize() int64 {
	return l.maxSize
}

// Save streams src into a new file. A source larger than the configured
// maximum aborts the write, and the partial file is removed.
func (l *Local) Save(src io.Reader, originalName, mediaType string) (stored *StoredFile, retErr error) {
	filename := l.name(originalName, mediaType)
	path := filepath.Join(l.dir, filename)

	out, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, apperror.Internal("Failed to save file", fmt.Errorf("failed to create file: %w", err))
	}

	defer func() {
		if closeErr := out.Close(); closeErr != nil && retErr == nil {
			retErr = apperror.Internal("Failed to save file", fmt.Errorf("failed to close file: %w", closeErr))
		}
		if retErr != nil {
			if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
				retErr = errors.Join(retErr, rmErr)
			}
			stored = nil
		}
	}()

	written, err := io.Copy(out, io.LimitReader(src, l.maxSize+1))
	if err != nil {
		return nil, apperror.Internal("Failed to save file", fmt.Errorf("failed to write data: %w", err))
	}
	if written > l.maxSize {
		return nil, FileTooLarge(l.maxSize)
	}

	return &StoredFile{
		Filename: filename,
		Path:     path,
		Size:     written,
	}, nil
}

// FileTooLarge is the validation error returned for oversized uploads.
func FileTooLarge(maxSize int64) *apperror.Error {
	return apperror.Validationf("File too large. Maximum size is %dMB", maxSize/(1024*1024))
}

// GenerateFilename produces image-<unix millis>-<random>.<ext>. The
// extension is taken from the original name and falls back to one derived
// from the media type.
func GenerateFilename(originalName, mediaType string) string {
	return fmt.Sprintf("image-%d-%s%s", time.Now().UnixMilli(), randomSuffix(), Extension(originalName, mediaType))
}

func randomSuffix() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:12]
}

// Extension returns the lower-cased extension of the base of originalName,
// or the default extension for mediaType when the name has none.
func Extension(originalName, mediaType string) string {
	base := filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	if ext != "" && ext != "." && !strings.ContainsAny(ext, "/\\\x00") {
		return ext
	}
	if def, ok := AllowedMediaTypes[NormalizeMediaType(mediaType)]; ok {
		return def
	}
	return ""
}
