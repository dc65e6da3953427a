package storage

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store, err := NewAttachmentStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewAttachmentStore returned error: %v", err)
	}

	ref, err := store.Save("broken-projector.jpg", strings.NewReader("fake image bytes"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if !strings.HasSuffix(ref, ".jpg") {
		t.Errorf("reference %q should keep the extension", ref)
	}

	rc, err := store.Open(ref)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read returned error: %v", err)
	}
	if string(data) != "fake image bytes" {
		t.Fatalf("read back %q", data)
	}
}

func TestOpenRejectsBadReferences(t *testing.T) {
	store, err := NewAttachmentStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewAttachmentStore returned error: %v", err)
	}

	for _, ref := range []string{
		"../../etc/passwd",
		"not-a-uuid.png",
		"",
		"123e4567-e89b-12d3-a456-426614174000.png", // valid shape, nothing stored
	} {
		if _, err := store.Open(ref); !errors.Is(err, ErrAttachmentNotFound) {
			t.Errorf("Open(%q) error = %v, want ErrAttachmentNotFound", ref, err)
		}
	}
}

func TestSaveDropsSuspiciousExtensions(t *testing.T) {
	store, err := NewAttachmentStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewAttachmentStore returned error: %v", err)
	}
	ref, err := store.Save("weird.name.with/.slash", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if strings.ContainsAny(ref, "/\\") {
		t.Fatalf("reference %q must not contain path separators", ref)
	}
}
