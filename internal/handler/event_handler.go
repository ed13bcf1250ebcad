package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/events-api/internal/dto"
	"github.com/noah-isme/events-api/internal/models"
	"github.com/noah-isme/events-api/internal/service"
	appErrors "github.com/noah-isme/events-api/pkg/errors"
	"github.com/noah-isme/events-api/pkg/response"
)

type eventService interface {
	Get(ctx context.Context, rawID string) (*models.Event, error)
	List(ctx context.Context, limitText, pageText string) (*dto.EventPage, error)
	Create(ctx context.Context, form dto.RawEventForm, upload *service.ImageUpload) (*models.Event, error)
	Update(ctx context.Context, rawID string, form dto.RawEventForm, upload *service.ImageUpload) (*models.Event, error)
	Delete(ctx context.Context, rawID string) (string, error)
}

const defaultMaxUploadBytes = 5 * 1024 * 1024

// EventHandler manages the event HTTP endpoints.
type EventHandler struct {
	service        eventService
	maxUploadBytes int64
}

// NewEventHandler constructs the handler. maxUploadBytes bounds how much of
// an upload is ever buffered.
func NewEventHandler(service eventService, maxUploadBytes int64) *EventHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &EventHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// GetEvents serves GET /events, dispatching on query parameters: ?id= for a
// point read, ?type=latest for the paged list.
func (h *EventHandler) GetEvents(c *gin.Context) {
	if id := c.Query("id"); id != "" {
		event, err := h.service.Get(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, event, nil)
		return
	}

	if c.Query("type") == "latest" {
		page, err := h.service.List(c.Request.Context(), c.Query("limit"), c.Query("page"))
		if err != nil {
			response.Error(c, err)
			return
		}
		pagination := page.Pagination
		response.JSON(c, http.StatusOK, page.Events, &pagination)
		return
	}

	response.Error(c, appErrors.Clone(appErrors.ErrValidation, "provide either id or type=latest"))
}

// CreateEvent serves POST /events with a multipart form and one image file.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	form := collectEventForm(c)
	upload, err := h.imageUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	event, err := h.service.Create(c.Request.Context(), form, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// UpdateEvent serves PUT /events/:id with a partial multipart form; the
// image file is optional and its absence keeps the previous value.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	form := collectEventForm(c)
	upload, err := h.imageUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	event, err := h.service.Update(c.Request.Context(), c.Param("id"), form, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// DeleteEvent serves DELETE /events/:id.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id, "message": "event deleted"}, nil)
}

// collectEventForm reads the textual multipart fields, keeping absent and
// present-but-empty distinguishable.
func collectEventForm(c *gin.Context) dto.RawEventForm {
	return dto.RawEventForm{
		UID:         formValue(c, "uid"),
		Name:        formValue(c, "name"),
		Tagline:     formValue(c, "tagline"),
		Schedule:    formValue(c, "schedule"),
		Description: formValue(c, "description"),
		Moderator:   formValue(c, "moderator"),
		Category:    formValue(c, "category"),
		SubCategory: formValue(c, "sub_category"),
		RigorRank:   formValue(c, "rigor_rank"),
		Attendees:   formValue(c, "attendees"),
	}
}

func formValue(c *gin.Context, key string) *string {
	value, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &value
}

// imageUpload extracts the optional image file into the upload side channel
// the service consumes. A missing file is not an error here; the create
// pipeline decides whether one is required. The size ceiling is enforced
// against the part header before a single byte is read, so an oversize
// upload is never buffered.
func (h *EventHandler) imageUpload(c *gin.Context) (*service.ImageUpload, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}
	if fileHeader.Size > h.maxUploadBytes {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge,
			fmt.Sprintf("file exceeds %d bytes limit", h.maxUploadBytes))
	}
	src, err := fileHeader.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open uploaded file")
	}
	defer src.Close() //nolint:errcheck

	// Buffered so the reader outlives the multipart temp file; the ceiling
	// check above caps the allocation.
	buf, err := io.ReadAll(src)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer uploaded file")
	}

	return &service.ImageUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  bytes.NewReader(buf),
	}, nil
}
