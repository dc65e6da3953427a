package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openfms/facility-desk/internal/storage"
)

// AttachmentHandler serves upload and download of request photos.
// Uploads return an opaque reference the client then sends with the
// request body; the handler never trusts client-supplied paths.
type AttachmentHandler struct {
	Store *storage.AttachmentStore
}

func NewAttachmentHandler(store *storage.AttachmentStore) *AttachmentHandler {
	return &AttachmentHandler{Store: store}
}

// maxAttachmentBytes caps a single upload at 10 MiB.
const maxAttachmentBytes = 10 << 20

// Upload accepts one multipart file under the "file" field and returns
// its storage reference.
// POST /v1/attachments
func (h *AttachmentHandler) Upload(c echo.Context) error {
	if _, ok := actor(c); !ok {
		return unauthorized(c)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file field required"})
	}
	if fh.Size > maxAttachmentBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file too large"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable upload"})
	}
	defer src.Close()

	ref, err := h.Store.Save(fh.Filename, io.LimitReader(src, maxAttachmentBytes))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store attachment failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"attachment_ref": ref})
}

// Download streams a stored attachment back to the client.
// GET /v1/attachments/:ref
func (h *AttachmentHandler) Download(c echo.Context) error {
	if _, ok := actor(c); !ok {
		return unauthorized(c)
	}
	ref := c.Param("ref")

	f, err := h.Store.Open(ref)
	if err != nil {
		if errors.Is(err, storage.ErrAttachmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "attachment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "open attachment failed"})
	}
	defer f.Close()

	return c.Stream(http.StatusOK, "application/octet-stream", f)
}
