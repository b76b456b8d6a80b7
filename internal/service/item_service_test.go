package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ktsujino/inventory-backend/internal/model"
	"github.com/ktsujino/inventory-backend/internal/repository"
	"github.com/ktsujino/inventory-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type itemFixture struct {
	db        *gorm.DB
	store     *storage.Memory
	items     ItemService
	images    ImageService
	imageRepo repository.ImageRepository
}

func newItemFixture(t *testing.T) *itemFixture {
	t.Helper()
	db := newTestDB(t)
	store := storage.NewMemory()
	imageRepo := repository.NewImageRepository(db)
	log := zap.NewNop().Sugar()
	return &itemFixture{
		db:        db,
		store:     store,
		items:     NewItemService(repository.NewItemRepository(db), imageRepo, log),
		images:    NewImageService(imageRepo, store, DefaultImageOptions(), log),
		imageRepo: imageRepo,
	}
}

func (f *itemFixture) uploadN(t *testing.T, n int) []string {
	t.Helper()
	uuids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		img, err := f.images.Upload(context.Background(), 1, fmt.Sprintf("p%d.jpg", i), testJPEG(t, 40, 40))
		require.NoError(t, err)
		uuids = append(uuids, img.UUID)
	}
	return uuids
}

func datePtr(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestCreateDerivesUsedDiscarded(t *testing.T) {
	f := newItemFixture(t)

	item, err := f.items.Create(context.Background(), 1, ItemInput{
		Name:        "old kettle",
		DiscardedAt: datePtr("2026-01-24"),
		UsedAt:      datePtr("2026-01-23"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUsedDiscarded, item.Status())
	assert.Len(t, item.ShortID, 10)
}

func TestTimelineValidation(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		in        ItemInput
		wantField string
	}{
		{"received before purchased", ItemInput{
			PurchasedAt: datePtr("2026-02-01"), ReceivedAt: datePtr("2026-01-01"),
		}, "received_at"},
		{"used before received", ItemInput{
			ReceivedAt: datePtr("2026-03-01"), UsedAt: datePtr("2026-02-01"),
		}, "used_at"},
		{"discarded before used", ItemInput{
			UsedAt: datePtr("2026-03-01"), DiscardedAt: datePtr("2026-02-01"),
		}, "discarded_at"},
		{"used before purchased with received absent", ItemInput{
			PurchasedAt: datePtr("2026-03-01"), UsedAt: datePtr("2026-02-01"),
		}, "used_at"},
		{"discarded in the future", ItemInput{
			DiscardedAt: datePtr("2027-01-01"),
		}, "discarded_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTimeline(&tt.in, now)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}

	ok := ItemInput{
		PurchasedAt: datePtr("2026-01-01"),
		ReceivedAt:  datePtr("2026-01-05"),
		UsedAt:      datePtr("2026-02-01"),
		DiscardedAt: datePtr("2026-08-01"),
	}
	assert.NoError(t, validateTimeline(&ok, now))

	// Pairs are only enforced when both sides are present.
	sparse := ItemInput{UsedAt: datePtr("2026-02-01")}
	assert.NoError(t, validateTimeline(&sparse, now))
}

func TestParseDateCanonical(t *testing.T) {
	plain, err := ParseDate("2026-01-23")
	require.NoError(t, err)
	stamped, err := ParseDate("2026-01-23T18:30:00+09:00")
	require.NoError(t, err)
	assert.True(t, plain.Equal(*stamped), "date and date-time strings must compare equivalently")

	empty, err := ParseDate("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = ParseDate("yesterday")
	assert.Error(t, err)
}

func TestAttachAssignsSortOrder(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	uuids := f.uploadN(t, 3)

	item, err := f.items.Create(ctx, 1, ItemInput{Name: "camera"}, []ImageRef{
		{UUID: uuids[0], Status: ImageRefNew},
		{UUID: uuids[1], Status: ImageRefNew},
		{UUID: uuids[2], Status: ImageRefNew},
	})
	require.NoError(t, err)
	require.Len(t, item.Images, 3)
	for i, link := range item.Images {
		assert.Equal(t, i+1, link.SortOrder)
		assert.Equal(t, uuids[i], link.Image.UUID)
		assert.Equal(t, model.ImageStatusUsed, link.Image.Status)
		assert.Equal(t, uint(1), link.Image.UsageCount)
	}
}

func TestAttachIsIdempotent(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	uuids := f.uploadN(t, 1)

	item, err := f.items.Create(ctx, 1, ItemInput{Name: "camera"}, []ImageRef{{UUID: uuids[0], Status: ImageRefNew}})
	require.NoError(t, err)

	// Attaching the same uuid as "new" again must not double-count.
	item, err = f.items.Update(ctx, 1, item.ShortID, ItemInput{Name: "camera"}, []ImageRef{{UUID: uuids[0], Status: ImageRefNew}})
	require.NoError(t, err)
	require.Len(t, item.Images, 1)
	assert.Equal(t, uint(1), item.Images[0].Image.UsageCount)
}

func TestAttachCapRejectsTenthImage(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	uuids := f.uploadN(t, 10)

	refs := make([]ImageRef, 0, 9)
	for _, u := range uuids[:9] {
		refs = append(refs, ImageRef{UUID: u, Status: ImageRefNew})
	}
	item, err := f.items.Create(ctx, 1, ItemInput{Name: "shelf"}, refs)
	require.NoError(t, err)
	require.Len(t, item.Images, 9)

	// Nine kept plus a tenth new one: the whole batch is rejected.
	refs = refs[:0]
	for _, u := range uuids[:9] {
		refs = append(refs, ImageRef{UUID: u, Status: ImageRefOriginal})
	}
	refs = append(refs, ImageRef{UUID: uuids[9], Status: ImageRefNew})
	_, err = f.items.Update(ctx, 1, item.ShortID, ItemInput{Name: "shelf"}, refs)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "images", vErr.Field)

	// The image set is unchanged after the rejected call.
	item, err = f.items.Get(ctx, 1, item.ShortID)
	require.NoError(t, err)
	assert.Len(t, item.Images, 9)
	tenth, err := f.images.Get(ctx, 1, uuids[9])
	require.NoError(t, err)
	assert.Equal(t, uint(0), tenth.UsageCount)
	assert.Equal(t, model.ImageStatusDraft, tenth.Status)
}

func TestAttachCapCountsUnlistedImages(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	uuids := f.uploadN(t, 10)

	refs := make([]ImageRef, 0, 9)
	for _, u := range uuids[:9] {
		refs = append(refs, ImageRef{UUID: u, Status: ImageRefNew})
	}
	item, err := f.items.Create(ctx, 1, ItemInput{Name: "shelf"}, refs)
	require.NoError(t, err)
	require.Len(t, item.Images, 9)

	// A partial batch naming only the tenth image must still count the nine
	// attachments it leaves untouched.
	_, err = f.items.Update(ctx, 1, item.ShortID, ItemInput{Name: "shelf"},
		[]ImageRef{{UUID: uuids[9], Status: ImageRefNew}})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "images", vErr.Field)

	item, err = f.items.Get(ctx, 1, item.ShortID)
	require.NoError(t, err)
	assert.Len(t, item.Images, 9)

	// Swapping one out in the same batch keeps the count at nine and passes.
	item, err = f.items.Update(ctx, 1, item.ShortID, ItemInput{Name: "shelf"}, []ImageRef{
		{UUID: uuids[0], Status: ImageRefRemoved},
		{UUID: uuids[9], Status: ImageRefNew},
	})
	require.NoError(t, err)
	assert.Len(t, item.Images, 9)
}

func TestRejectedCreateLeavesNoItem(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	uuids := f.uploadN(t, 10)

	refs := make([]ImageRef, 0, 10)
	for _, u := range uuids {
		refs = append(refs, ImageRef{UUID: u, Status: ImageRefNew})
	}
	_, err := f.items.Create(ctx, 1, ItemInput{Name: "ghost"}, refs)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "images", vErr.Field)

	items, total, err := f.items.List(ctx, 1, 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
	for _, u := range uuids {
		img, err := f.images.Get(ctx, 1, u)
		require.NoError(t, err)
		assert.Equal(t, uint(0), img.UsageCount)
	}
}

func TestDetachRoundTripReturnsToDraft(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	uuids := f.uploadN(t, 1)

	itemA, err := f.items.Create(ctx, 1, ItemInput{Name: "a"}, []ImageRef{{UUID: uuids[0], Status: ImageRefNew}})
	require.NoError(t, err)
	itemB, err := f.items.Create(ctx, 1, ItemInput{Name: "b"}, []ImageRef{{UUID: uuids[0], Status: ImageRefNew}})
	require.NoError(t, err)

	img, err := f.images.Get(ctx, 1, uuids[0])
	require.NoError(t, err)
	require.Equal(t, uint(2), img.UsageCount)

	_, err = f.items.Update(ctx, 1, itemA.ShortID, ItemInput{Name: "a"}, []ImageRef{{UUID: uuids[0], Status: ImageRefRemoved}})
	require.NoError(t, err)
	_, err = f.items.Update(ctx, 1, itemB.ShortID, ItemInput{Name: "b"}, []ImageRef{{UUID: uuids[0], Status: ImageRefRemoved}})
	require.NoError(t, err)

	img, err = f.images.Get(ctx, 1, uuids[0])
	require.NoError(t, err)
	assert.Equal(t, uint(0), img.UsageCount)
	assert.Equal(t, model.ImageStatusDraft, img.Status)
}

func TestAttachSkipsUnknownAndForeignUUIDs(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	uuids := f.uploadN(t, 1)

	foreign, err := f.images.Upload(ctx, 2, "other.jpg", testJPEG(t, 40, 40))
	require.NoError(t, err)

	item, err := f.items.Create(ctx, 1, ItemInput{Name: "bag"}, []ImageRef{
		{UUID: uuids[0], Status: ImageRefNew},
		{UUID: "00000000-0000-0000-0000-000000000000", Status: ImageRefNew},
		{UUID: foreign.UUID, Status: ImageRefNew},
	})
	require.NoError(t, err, "unresolvable uuids must not fail the batch")
	require.Len(t, item.Images, 1)
	assert.Equal(t, uuids[0], item.Images[0].Image.UUID)
}

func TestDeleteItemDetachesImages(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	uuids := f.uploadN(t, 2)

	item, err := f.items.Create(ctx, 1, ItemInput{Name: "box"}, []ImageRef{
		{UUID: uuids[0], Status: ImageRefNew},
		{UUID: uuids[1], Status: ImageRefNew},
	})
	require.NoError(t, err)

	require.NoError(t, f.items.Delete(ctx, 1, item.ShortID))

	_, err = f.items.Get(ctx, 1, item.ShortID)
	assert.ErrorIs(t, err, ErrNotFound)
	for _, u := range uuids {
		img, err := f.images.Get(ctx, 1, u)
		require.NoError(t, err)
		assert.Equal(t, uint(0), img.UsageCount)
		assert.Equal(t, model.ImageStatusDraft, img.Status)
	}
}

func TestGetForbiddenForOtherUser(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()

	item, err := f.items.Create(ctx, 1, ItemInput{Name: "mine"}, nil)
	require.NoError(t, err)

	_, err = f.items.Get(ctx, 2, item.ShortID)
	assert.ErrorIs(t, err, ErrForbidden)
}
