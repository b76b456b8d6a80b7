package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ktsujino/inventory-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: "file::memory:"}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{}, &model.Category{}, &model.Product{},
		&model.Item{}, &model.Image{}, &model.ItemImage{},
	); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	return db
}

func seedImage(t *testing.T, db *gorm.DB, uuid string) *model.Image {
	t.Helper()
	img := &model.Image{
		UUID:              uuid,
		ImagePath:         "base" + uuid,
		OriginalExtension: "jpg",
		Status:            model.ImageStatusDraft,
		UserID:            1,
	}
	require.NoError(t, db.Create(img).Error)
	return img
}

func seedItem(t *testing.T, db *gorm.DB, shortID string) *model.Item {
	t.Helper()
	item := &model.Item{UUID: "uuid-" + shortID, ShortID: shortID, UserID: 1, Name: "thing " + shortID}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestApplyAttachmentsIncrementsAndFlipsStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewImageRepository(db)
	ctx := context.Background()

	img := seedImage(t, db, "img-1")
	item := seedItem(t, db, "it1")

	err := repo.ApplyAttachments(ctx, item.ID, nil, []Attachment{{ImageID: img.ID, SortOrder: 1}})
	require.NoError(t, err)

	got, err := repo.FindByUUID(ctx, "img-1")
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.UsageCount)
	assert.Equal(t, model.ImageStatusUsed, got.Status)

	links, err := repo.ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, 1, links[0].SortOrder)
	assert.Equal(t, "img-1", links[0].Image.UUID)
}

func TestApplyAttachmentsIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewImageRepository(db)
	ctx := context.Background()

	img := seedImage(t, db, "img-1")
	item := seedItem(t, db, "it1")

	for i := 0; i < 2; i++ {
		err := repo.ApplyAttachments(ctx, item.ID, nil, []Attachment{{ImageID: img.ID, SortOrder: 1}})
		require.NoError(t, err)
	}

	got, err := repo.FindByUUID(ctx, "img-1")
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.UsageCount, "second attach must not double-increment")

	links, err := repo.ListByItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, links, 1, "second attach must not duplicate the relation")
}

func TestApplyAttachmentsDetachFloorsAtZero(t *testing.T) {
	db := newTestDB(t)
	repo := NewImageRepository(db)
	ctx := context.Background()

	img := seedImage(t, db, "img-1")
	itemA := seedItem(t, db, "ita")
	itemB := seedItem(t, db, "itb")

	require.NoError(t, repo.ApplyAttachments(ctx, itemA.ID, nil, []Attachment{{ImageID: img.ID, SortOrder: 1}}))
	require.NoError(t, repo.ApplyAttachments(ctx, itemB.ID, nil, []Attachment{{ImageID: img.ID, SortOrder: 1}}))

	got, _ := repo.FindByUUID(ctx, "img-1")
	require.Equal(t, uint(2), got.UsageCount)

	// Detach from both: count must land at exactly 0 and status back to draft.
	require.NoError(t, repo.ApplyAttachments(ctx, itemA.ID, []uint64{img.ID}, nil))
	got, _ = repo.FindByUUID(ctx, "img-1")
	assert.Equal(t, uint(1), got.UsageCount)
	assert.Equal(t, model.ImageStatusUsed, got.Status)

	require.NoError(t, repo.ApplyAttachments(ctx, itemB.ID, []uint64{img.ID}, nil))
	got, _ = repo.FindByUUID(ctx, "img-1")
	assert.Equal(t, uint(0), got.UsageCount)
	assert.Equal(t, model.ImageStatusDraft, got.Status)

	// Detaching a relation that no longer exists must not go negative.
	require.NoError(t, repo.ApplyAttachments(ctx, itemB.ID, []uint64{img.ID}, nil))
	got, _ = repo.FindByUUID(ctx, "img-1")
	assert.Equal(t, uint(0), got.UsageCount)
}

func TestListByUserFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewImageRepository(db)
	ctx := context.Background()

	draft := seedImage(t, db, "img-draft")
	used := seedImage(t, db, "img-used")
	item := seedItem(t, db, "it1")
	require.NoError(t, repo.ApplyAttachments(ctx, item.ID, nil, []Attachment{{ImageID: used.ID, SortOrder: 1}}))

	statusDraft := model.ImageStatusDraft
	got, err := repo.ListByUser(ctx, 1, ImageFilter{Status: &statusDraft})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, draft.UUID, got[0].UUID)

	hasItems := true
	got, err = repo.ListByUser(ctx, 1, ImageFilter{HasItems: &hasItems})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, used.UUID, got[0].UUID)

	noItems := false
	got, err = repo.ListByUser(ctx, 1, ImageFilter{HasItems: &noItems})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, draft.UUID, got[0].UUID)
}

func TestListOrphanDrafts(t *testing.T) {
	db := newTestDB(t)
	repo := NewImageRepository(db)
	ctx := context.Background()

	orphan := seedImage(t, db, "img-orphan")
	attached := seedImage(t, db, "img-attached")
	item := seedItem(t, db, "it1")
	require.NoError(t, repo.ApplyAttachments(ctx, item.ID, nil, []Attachment{{ImageID: attached.ID, SortOrder: 1}}))

	// Nothing qualifies yet: the orphan is too fresh.
	got, err := repo.ListOrphanDrafts(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repo.ListOrphanDrafts(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, orphan.UUID, got[0].UUID)
}
