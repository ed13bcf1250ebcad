package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/events-api/internal/dto"
	"github.com/noah-isme/events-api/internal/models"
	appErrors "github.com/noah-isme/events-api/pkg/errors"
)

type eventRepoStub struct {
	created          *models.Event
	createErr        error
	getEvent         *models.Event
	getErr           error
	count            int
	countErr         error
	listEvents       []models.Event
	listErr          error
	updated          *models.Event
	updateErr        error
	lastUpdateID     string
	lastUpdateFields map[string]interface{}
	deleteErr        error
	deletedID        string
}

func (s *eventRepoStub) Create(ctx context.Context, event *models.Event) error {
	if s.createErr != nil {
		return s.createErr
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	s.created = event
	return nil
}

func (s *eventRepoStub) GetByID(ctx context.Context, id string) (*models.Event, error) {
	return s.getEvent, s.getErr
}

func (s *eventRepoStub) Count(ctx context.Context) (int, error) {
	return s.count, s.countErr
}

func (s *eventRepoStub) ListLatest(ctx context.Context, limit, offset int) ([]models.Event, error) {
	return s.listEvents, s.listErr
}

func (s *eventRepoStub) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Event, error) {
	s.lastUpdateID = id
	s.lastUpdateFields = fields
	return s.updated, s.updateErr
}

func (s *eventRepoStub) Delete(ctx context.Context, id string) error {
	s.deletedID = id
	return s.deleteErr
}

type storageStub struct {
	saved   []string
	deleted []string
	saveErr error
}

func (s *storageStub) SaveStream(filename string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.saved = append(s.saved, filename)
	return filename, nil
}

func (s *storageStub) Delete(filename string) error {
	s.deleted = append(s.deleted, filename)
	return nil
}

func newTestService(repo *eventRepoStub, store *storageStub) *EventService {
	svc := NewEventService(repo, store, NewCacheService(nil, nil, 0, nil, false), nil, EventServiceConfig{})
	svc.now = func() time.Time { return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) }
	return svc
}

func testUpload() *ImageUpload {
	content := append([]byte("\x89PNG\r\n\x1a\n"), []byte("fake image bytes")...)
	return &ImageUpload{
		Filename: "poster.png",
		Size:     int64(len(content)),
		Content:  bytes.NewReader(content),
	}
}

func fakeCreateForm() dto.RawEventForm {
	return dto.RawEventForm{
		Name:        strPtr(gofakeit.Sentence(3)),
		Tagline:     strPtr(gofakeit.Sentence(2)),
		Schedule:    strPtr("2026-10-10T18:00:00Z"),
		Description: strPtr(gofakeit.Paragraph(1, 2, 5, " ")),
		Moderator:   strPtr(gofakeit.Name()),
		Category:    strPtr("tech"),
		SubCategory: strPtr("meetup"),
		RigorRank:   strPtr("4"),
	}
}

func TestCreateRequiresImage(t *testing.T) {
	svc := newTestService(&eventRepoStub{}, &storageStub{})

	_, err := svc.Create(context.Background(), fakeCreateForm(), nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "Event image is required", appErr.Message)
}

func TestCreateStampsDefaults(t *testing.T) {
	repo := &eventRepoStub{}
	store := &storageStub{}
	svc := newTestService(repo, store)

	event, err := svc.Create(context.Background(), fakeCreateForm(), testUpload())
	require.NoError(t, err)
	require.NotNil(t, repo.created)

	assert.Equal(t, models.EventType, event.Type)
	assert.Equal(t, models.DefaultCreatorUID, event.UID)
	assert.Equal(t, 4, event.RigorRank)
	assert.NotEmpty(t, event.Image)
	assert.Len(t, store.saved, 1)
	assert.Equal(t, []string{}, []string(event.Attendees))
	assert.Equal(t, svc.now(), event.CreatedAt)
	assert.Equal(t, event.CreatedAt, event.UpdatedAt)
}

func TestCreateHonorsSubmittedUID(t *testing.T) {
	repo := &eventRepoStub{}
	svc := newTestService(repo, &storageStub{})

	form := fakeCreateForm()
	form.UID = strPtr("42")
	event, err := svc.Create(context.Background(), form, testUpload())
	require.NoError(t, err)
	assert.Equal(t, 42, event.UID)
}

func TestCreateValidationFailureCleansUpImage(t *testing.T) {
	store := &storageStub{}
	svc := newTestService(&eventRepoStub{}, store)

	form := fakeCreateForm()
	form.RigorRank = strPtr("not a number")
	_, err := svc.Create(context.Background(), form, testUpload())
	require.Error(t, err)
	assert.Equal(t, store.saved, store.deleted, "orphaned upload must be removed")
}

func TestCreateRejectsOversizeUpload(t *testing.T) {
	svc := newTestService(&eventRepoStub{}, &storageStub{})

	upload := testUpload()
	upload.Size = 50 * 1024 * 1024
	_, err := svc.Create(context.Background(), fakeCreateForm(), upload)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestCreateRejectsNonImageContent(t *testing.T) {
	store := &storageStub{}
	svc := newTestService(&eventRepoStub{}, store)

	// A .png filename on executable bytes: the sniffed type decides, so the
	// label does not get the payload past the allowlist.
	content := []byte("MZ\x90\x00 definitely not an image")
	upload := &ImageUpload{
		Filename: "poster.png",
		Size:     int64(len(content)),
		Content:  bytes.NewReader(content),
	}
	_, err := svc.Create(context.Background(), fakeCreateForm(), upload)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Empty(t, store.saved)
}

func TestGetMalformedIDIsClientError(t *testing.T) {
	svc := newTestService(&eventRepoStub{}, &storageStub{})

	_, err := svc.Get(context.Background(), "not-an-id")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestGetNonexistentIsNotFound(t *testing.T) {
	svc := newTestService(&eventRepoStub{getErr: sql.ErrNoRows}, &storageStub{})

	_, err := svc.Get(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestListPaginationMetadata(t *testing.T) {
	events := make([]models.Event, 5)
	for i := range events {
		events[i] = models.Event{ID: fmt.Sprintf("event-%d", i)}
	}
	svc := newTestService(&eventRepoStub{count: 47, listEvents: events}, &storageStub{})

	page, err := svc.List(context.Background(), "5", "2")
	require.NoError(t, err)
	assert.Equal(t, 47, page.Pagination.TotalEvents)
	assert.Equal(t, 10, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNextPage)
	assert.True(t, page.Pagination.HasPrevPage)
	assert.Len(t, page.Events, 5)
}

func TestListFirstAndLastPageFlags(t *testing.T) {
	svc := newTestService(&eventRepoStub{count: 12}, &storageStub{})

	page, err := svc.List(context.Background(), "10", "1")
	require.NoError(t, err)
	assert.True(t, page.Pagination.HasNextPage)
	assert.False(t, page.Pagination.HasPrevPage)

	page, err = svc.List(context.Background(), "10", "2")
	require.NoError(t, err)
	assert.False(t, page.Pagination.HasNextPage)
	assert.True(t, page.Pagination.HasPrevPage)
}

func TestUpdateRejectsEmptyBody(t *testing.T) {
	svc := newTestService(&eventRepoStub{}, &storageStub{})

	_, err := svc.Update(context.Background(), uuid.NewString(), dto.RawEventForm{}, nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "No update data provided", appErr.Message)
}

func TestUpdatePartialMerge(t *testing.T) {
	repo := &eventRepoStub{updated: &models.Event{ID: uuid.NewString(), Name: "renamed"}}
	svc := newTestService(repo, &storageStub{})

	_, err := svc.Update(context.Background(), repo.updated.ID, dto.RawEventForm{Name: strPtr("renamed")}, nil)
	require.NoError(t, err)

	assert.Equal(t, repo.updated.ID, repo.lastUpdateID)
	assert.Contains(t, repo.lastUpdateFields, "name")
	assert.Contains(t, repo.lastUpdateFields, "updated_at")
	assert.NotContains(t, repo.lastUpdateFields, "image", "absent file keeps the previous image")
	assert.NotContains(t, repo.lastUpdateFields, "attendees")
	assert.NotContains(t, repo.lastUpdateFields, "created_at")
}

func TestUpdateWithOnlyFile(t *testing.T) {
	repo := &eventRepoStub{updated: &models.Event{ID: uuid.NewString()}}
	svc := newTestService(repo, &storageStub{})

	_, err := svc.Update(context.Background(), repo.updated.ID, dto.RawEventForm{}, testUpload())
	require.NoError(t, err)
	assert.Contains(t, repo.lastUpdateFields, "image")
}

func TestUpdateNonexistentIsNotFound(t *testing.T) {
	svc := newTestService(&eventRepoStub{updateErr: sql.ErrNoRows}, &storageStub{})

	_, err := svc.Update(context.Background(), uuid.NewString(), dto.RawEventForm{Name: strPtr("x")}, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestDeleteNeverRemovesImage(t *testing.T) {
	repo := &eventRepoStub{}
	store := &storageStub{}
	svc := newTestService(repo, store)

	id := uuid.NewString()
	removed, err := svc.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, removed)
	assert.Equal(t, id, repo.deletedID)
	assert.Empty(t, store.deleted)
}

func TestDeleteNonexistentIsNotFound(t *testing.T) {
	svc := newTestService(&eventRepoStub{deleteErr: sql.ErrNoRows}, &storageStub{})

	_, err := svc.Delete(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}
