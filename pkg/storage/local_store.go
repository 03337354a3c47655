package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type ArtifactClass string

const (
	ClassImage ArtifactClass = "image"
	ClassAudio ArtifactClass = "audio"
)

var (
	ErrTooLarge        = errors.New("artifact exceeds the configured size limit")
	ErrEmpty           = errors.New("artifact is empty")
	ErrUnsupportedType = errors.New("artifact type is not allowed for this class")
)

// Extension allow-lists per artifact class. DICOM rides along with the
// images because radiology exports both.
var allowedExtensions = map[ArtifactClass]map[string]bool{
	ClassImage: {".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".dicom": true, ".dcm": true},
	ClassAudio: {".mp3": true, ".wav": true, ".ogg": true, ".m4a": true, ".webm": true},
}

var mimeByExtension = map[string]string{
	".jpeg":  "image/jpeg",
	".jpg":   "image/jpeg",
	".png":   "image/png",
	".gif":   "image/gif",
	".dicom": "application/dicom",
	".dcm":   "application/dicom",
	".mp3":   "audio/mpeg",
	".wav":   "audio/wav",
	".ogg":   "audio/ogg",
	".m4a":   "audio/mp4",
	".webm":  "audio/webm",
}

type SavedArtifact struct {
	Path     string
	Name     string
	Size     int64
	MIMEType string
}

// LocalStore writes artifacts under <baseDir>/images and <baseDir>/audio
// with collision-resistant names. The directory is served statically by the
// HTTP layer.
type LocalStore struct {
	baseDir string
	maxSize int64
}

func NewLocalStore(baseDir string, maxSize int64) *LocalStore {
	return &LocalStore{
		baseDir: baseDir,
		maxSize: maxSize,
	}
}

// Validate rejects an artifact before anything is persisted.
func (s *LocalStore) Validate(class ArtifactClass, originalName string, size int64) error {
	if size <= 0 {
		return ErrEmpty
	}
	if size > s.maxSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, size, s.maxSize)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[class][ext] {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return nil
}

// Save validates and writes the artifact, returning its stored location.
func (s *LocalStore) Save(class ArtifactClass, originalName string, data []byte) (*SavedArtifact, error) {
	if err := s.Validate(class, originalName, int64(len(data))); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	dir := filepath.Join(s.baseDir, subdirFor(class))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}

	path := filepath.Join(dir, uuid.New().String()+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write artifact: %w", err)
	}

	return &SavedArtifact{
		Path:     path,
		Name:     originalName,
		Size:     int64(len(data)),
		MIMEType: mimeByExtension[ext],
	}, nil
}

// SaveDocument writes a generated document (no allow-list, trusted input)
// under the reports directory.
func (s *LocalStore) SaveDocument(name string, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, "reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return path, nil
}

// Read loads a stored artifact back, e.g. to inline it into an AI request.
func (s *LocalStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Remove deletes an artifact; used to roll back when the record insert
// fails after the file was written.
func (s *LocalStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	return os.Remove(path)
}

// MIMETypeOf resolves the stored MIME type from an artifact path.
func MIMETypeOf(path string) string {
	return mimeByExtension[strings.ToLower(filepath.Ext(path))]
}

func subdirFor(class ArtifactClass) string {
	if class == ClassAudio {
		return "audio"
	}
	return "images"
}
