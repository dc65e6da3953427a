// Package storage holds the on-disk blob store for request
// attachments.  Requests carry only an opaque reference; the bytes
// live outside the database so large photos never bloat table rows.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrAttachmentNotFound is returned when a reference does not resolve
// to a stored blob.
var ErrAttachmentNotFound = errors.New("attachment not found")

// AttachmentStore writes uploaded files under a base directory keyed
// by a generated reference.  The reference is what gets stored on the
// service request; it carries the original extension so downloads can
// set a sensible content type.
type AttachmentStore struct {
	baseDir string
}

// NewAttachmentStore creates the base directory if needed and returns
// a store rooted at it.
func NewAttachmentStore(baseDir string) (*AttachmentStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}
	return &AttachmentStore{baseDir: baseDir}, nil
}

// Save streams the upload to disk and returns the new reference.  The
// original filename only contributes its extension; the name itself is
// never trusted.
func (s *AttachmentStore) Save(filename string, src io.Reader) (string, error) {
	ref := uuid.NewString()
	if ext := sanitizeExt(filename); ext != "" {
		ref += ext
	}
	f, err := os.OpenFile(filepath.Join(s.baseDir, ref), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, src); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return ref, nil
}

// Open returns a reader over the stored blob.  The caller closes it.
func (s *AttachmentStore) Open(ref string) (io.ReadCloser, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrAttachmentNotFound
	}
	return f, err
}

// resolve validates a reference and maps it to its on-disk path.  A
// reference is a UUID plus optional extension; anything else (path
// separators, dot-dot) is rejected before touching the filesystem.
func (s *AttachmentStore) resolve(ref string) (string, error) {
	base := ref
	if i := strings.IndexByte(ref, '.'); i >= 0 {
		base = ref[:i]
	}
	if _, err := uuid.Parse(base); err != nil {
		return "", ErrAttachmentNotFound
	}
	if filepath.Base(ref) != ref {
		return "", ErrAttachmentNotFound
	}
	return filepath.Join(s.baseDir, ref), nil
}

// sanitizeExt extracts a short, alphanumeric extension from the
// original filename, or "" when none qualifies.
func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || len(ext) > 8 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
