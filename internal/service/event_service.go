package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/events-api/internal/dto"
	"github.com/noah-isme/events-api/internal/models"
	appErrors "github.com/noah-isme/events-api/pkg/errors"
	"github.com/noah-isme/events-api/pkg/storage"
)

type eventStore interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	Count(ctx context.Context) (int, error)
	ListLatest(ctx context.Context, limit, offset int) ([]models.Event, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Event, error)
	Delete(ctx context.Context, id string) error
}

type imageStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
}

// ImageUpload carries upload metadata and a rewindable reader. The content
// type is never taken from the request; it is sniffed from the bytes.
type ImageUpload struct {
	Filename string
	Size     int64
	Content  io.ReadSeeker
}

// EventServiceConfig holds upload policy parameters.
type EventServiceConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
}

// EventService orchestrates the event pipelines: upload policy, field
// normalization, validation, timestamp stamping, persistence and cache
// maintenance.
type EventService struct {
	repo    eventStore
	storage imageStorage
	cache   *CacheService
	logger  *zap.Logger
	cfg     EventServiceConfig
	mimeSet map[string]struct{}
	now     func() time.Time
}

// NewEventService constructs the service with defaults.
func NewEventService(repo eventStore, store imageStorage, cache *CacheService, logger *zap.Logger, cfg EventServiceConfig) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 5 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &EventService{
		repo:    repo,
		storage: store,
		cache:   cache,
		logger:  logger,
		cfg:     cfg,
		mimeSet: mimeSet,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Get returns one event by its external identifier.
func (s *EventService) Get(ctx context.Context, rawID string) (*models.Event, error) {
	id, err := DecodeEventID(rawID)
	if err != nil {
		return nil, err
	}

	key := "events:id:" + id
	var cached models.Event
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	s.cache.Set(ctx, key, event)
	return event, nil
}

// List returns the latest events page, schedule descending.
func (s *EventService) List(ctx context.Context, limitText, pageText string) (*dto.EventPage, error) {
	window, err := ResolvePagination(limitText, pageText)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("events:list:%d:%d", window.Page, window.Limit)
	var cached dto.EventPage
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count events")
	}
	events, err := s.repo.ListLatest(ctx, window.Limit, window.Offset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}

	totalPages := (total + window.Limit - 1) / window.Limit
	page := &dto.EventPage{
		Events: events,
		Pagination: models.Pagination{
			Page:        window.Page,
			Limit:       window.Limit,
			TotalEvents: total,
			TotalPages:  totalPages,
			HasNextPage: window.Page < totalPages,
			HasPrevPage: window.Page > 1,
		},
	}

	s.cache.Set(ctx, key, page)
	return page, nil
}

// Create persists a new event. The image is required and is checked before
// general field validation runs.
func (s *EventService) Create(ctx context.Context, form dto.RawEventForm, upload *ImageUpload) (*models.Event, error) {
	if upload == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Event image is required")
	}

	imagePath, err := s.saveImage(upload)
	if err != nil {
		return nil, err
	}

	rec, err := NormalizeEvent(form, ModeCreate)
	if err != nil {
		_ = s.storage.Delete(imagePath)
		return nil, err
	}
	rec.ImagePath = imagePath
	if err := ValidateEvent(rec, ModeCreate); err != nil {
		_ = s.storage.Delete(imagePath)
		return nil, err
	}

	uid := models.DefaultCreatorUID
	if rec.UID.Set && rec.UID.Valid {
		uid = rec.UID.Value
	}

	now := s.now()
	event := &models.Event{
		Type:        models.EventType,
		UID:         uid,
		Name:        *rec.Name,
		Tagline:     *rec.Tagline,
		Schedule:    rec.Schedule.Value,
		Description: *rec.Description,
		Image:       imagePath,
		Moderator:   *rec.Moderator,
		Category:    *rec.Category,
		SubCategory: *rec.SubCategory,
		RigorRank:   rec.RigorRank.Value,
		Attendees:   pq.StringArray(rec.Attendees),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		_ = s.storage.Delete(imagePath)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}

	s.cache.Invalidate(ctx, "events:*")
	s.logger.Info("event created", zap.String("event_id", event.ID))
	return event, nil
}

// Update applies a partial merge: only supplied fields change. Absent image
// keeps the previous value.
func (s *EventService) Update(ctx context.Context, rawID string, form dto.RawEventForm, upload *ImageUpload) (*models.Event, error) {
	id, err := DecodeEventID(rawID)
	if err != nil {
		return nil, err
	}
	if form.Empty() && upload == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "No update data provided")
	}

	rec, err := NormalizeEvent(form, ModeUpdate)
	if err != nil {
		return nil, err
	}
	if err := ValidateEvent(rec, ModeUpdate); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if rec.UID.Set {
		fields["uid"] = rec.UID.Value
	}
	if rec.Name != nil {
		fields["name"] = *rec.Name
	}
	if rec.Tagline != nil {
		fields["tagline"] = *rec.Tagline
	}
	if rec.Schedule.Set {
		fields["schedule"] = rec.Schedule.Value
	}
	if rec.Description != nil {
		fields["description"] = *rec.Description
	}
	if rec.Moderator != nil {
		fields["moderator"] = *rec.Moderator
	}
	if rec.Category != nil {
		fields["category"] = *rec.Category
	}
	if rec.SubCategory != nil {
		fields["sub_category"] = *rec.SubCategory
	}
	if rec.RigorRank.Set {
		fields["rigor_rank"] = rec.RigorRank.Value
	}
	if rec.AttendeesSet {
		fields["attendees"] = pq.StringArray(rec.Attendees)
	}

	if upload != nil {
		imagePath, err := s.saveImage(upload)
		if err != nil {
			return nil, err
		}
		// The replaced file stays on disk: losing a referenced image is
		// worse than leaking an orphan.
		fields["image"] = imagePath
	}

	fields["updated_at"] = s.now()

	event, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}

	s.cache.Invalidate(ctx, "events:*")
	s.logger.Info("event updated", zap.String("event_id", event.ID))
	return event, nil
}

// Delete removes the event record. The referenced image file is left on
// disk on purpose. Returns the canonical identifier of the removed event.
func (s *EventService) Delete(ctx context.Context, rawID string) (string, error) {
	id, err := DecodeEventID(rawID)
	if err != nil {
		return "", err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}

	s.cache.Invalidate(ctx, "events:*")
	s.logger.Info("event deleted", zap.String("event_id", id))
	return id, nil
}

// saveImage enforces the upload policy and persists the file under a
// collision-resistant name.
func (s *EventService) saveImage(upload *ImageUpload) (string, error) {
	if upload.Content == nil || upload.Size <= 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "Event image is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return "", appErrors.Clone(appErrors.ErrPayloadTooLarge,
			fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}

	mimeType, err := s.detectMime(upload)
	if err != nil {
		return "", err
	}
	if _, allowed := s.mimeSet[strings.ToLower(mimeType)]; !allowed {
		return "", appErrors.Clone(appErrors.ErrValidation, "file type not allowed")
	}

	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	filename := storage.GenerateFilename("event", upload.Filename)
	path, err := s.storage.SaveStream(filename, upload.Content)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist event image")
	}
	return path, nil
}

// detectMime sniffs the content type from the first bytes. The allowlist is
// checked against the sniffed type, never the client-declared part header.
func (s *EventService) detectMime(upload *ImageUpload) (string, error) {
	header := make([]byte, 512)
	n, err := upload.Content.Read(header)
	if err != nil && err != io.EOF {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect file")
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	if n == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	return http.DetectContentType(header[:n]), nil
}
