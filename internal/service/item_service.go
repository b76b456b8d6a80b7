package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ktsujino/inventory-backend/internal/model"
	"github.com/ktsujino/inventory-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxItemImages caps the number of active images per item.
const MaxItemImages = 9

// ImageRef is one entry of an attach/detach batch.
type ImageRef struct {
	UUID   string
	Status string // "new" | "original" | "removed"
}

const (
	ImageRefNew      = "new"
	ImageRefOriginal = "original"
	ImageRefRemoved  = "removed"
)

// ItemInput carries the writable item fields.
type ItemInput struct {
	Name           string
	Description    string
	Location       string
	Price          *uint
	Barcode        string
	SerialNumber   string
	ProductID      *uint64
	PurchasedAt    *time.Time
	ReceivedAt     *time.Time
	UsedAt         *time.Time
	DiscardedAt    *time.Time
	ExpirationDate *time.Time
}

type ItemService interface {
	Create(ctx context.Context, userID uint64, in ItemInput, images []ImageRef) (*model.Item, error)
	Get(ctx context.Context, userID uint64, shortID string) (*model.Item, error)
	List(ctx context.Context, userID uint64, limit, offset int) ([]model.Item, int64, error)
	Update(ctx context.Context, userID uint64, shortID string, in ItemInput, images []ImageRef) (*model.Item, error)
	Delete(ctx context.Context, userID uint64, shortID string) error
}

type itemService struct {
	repo      repository.ItemRepository
	imageRepo repository.ImageRepository
	log       *zap.SugaredLogger
}

func NewItemService(repo repository.ItemRepository, imageRepo repository.ImageRepository, log *zap.SugaredLogger) ItemService {
	return &itemService{repo: repo, imageRepo: imageRepo, log: log}
}

func (s *itemService) Create(ctx context.Context, userID uint64, in ItemInput, images []ImageRef) (*model.Item, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	item := &model.Item{
		UUID:           uuid.NewString(),
		ShortID:        newShortID(),
		UserID:         userID,
		Name:           in.Name,
		Description:    in.Description,
		Location:       in.Location,
		Price:          in.Price,
		Barcode:        in.Barcode,
		SerialNumber:   in.SerialNumber,
		ProductID:      in.ProductID,
		PurchasedAt:    in.PurchasedAt,
		ReceivedAt:     in.ReceivedAt,
		UsedAt:         in.UsedAt,
		DiscardedAt:    in.DiscardedAt,
		ExpirationDate: in.ExpirationDate,
	}
	// Resolve and validate the image batch before the row exists, so a
	// rejected batch leaves nothing behind.
	var plan *imagePlan
	if len(images) > 0 {
		var err error
		plan, err = s.planImageRefs(ctx, userID, item, nil, images)
		if err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	if plan != nil && !plan.empty() {
		if err := s.imageRepo.ApplyAttachments(ctx, item.ID, plan.detach, plan.attach); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, userID, item.ShortID)
}

func (s *itemService) Get(ctx context.Context, userID uint64, shortID string) (*model.Item, error) {
	item, err := s.repo.FindByShortID(ctx, shortID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if item.UserID != userID {
		return nil, ErrForbidden
	}
	return item, nil
}

func (s *itemService) List(ctx context.Context, userID uint64, limit, offset int) ([]model.Item, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *itemService) Update(ctx context.Context, userID uint64, shortID string, in ItemInput, images []ImageRef) (*model.Item, error) {
	item, err := s.Get(ctx, userID, shortID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	// The image batch runs first: the cap check must reject the whole request
	// before any field mutation lands.
	if images != nil {
		links, err := s.imageRepo.ListByItem(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		plan, err := s.planImageRefs(ctx, userID, item, links, images)
		if err != nil {
			return nil, err
		}
		if !plan.empty() {
			if err := s.imageRepo.ApplyAttachments(ctx, item.ID, plan.detach, plan.attach); err != nil {
				return nil, err
			}
		}
	}
	item.Name = in.Name
	item.Description = in.Description
	item.Location = in.Location
	item.Price = in.Price
	item.Barcode = in.Barcode
	item.SerialNumber = in.SerialNumber
	item.ProductID = in.ProductID
	item.PurchasedAt = in.PurchasedAt
	item.ReceivedAt = in.ReceivedAt
	item.UsedAt = in.UsedAt
	item.DiscardedAt = in.DiscardedAt
	item.ExpirationDate = in.ExpirationDate
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, shortID)
}

func (s *itemService) Delete(ctx context.Context, userID uint64, shortID string) error {
	item, err := s.Get(ctx, userID, shortID)
	if err != nil {
		return err
	}
	// Detach everything first so usage counts fall and drafts become eligible
	// for the cleanup pass.
	links, err := s.imageRepo.ListByItem(ctx, item.ID)
	if err != nil {
		return err
	}
	if len(links) > 0 {
		detach := make([]uint64, 0, len(links))
		for _, l := range links {
			detach = append(detach, l.ImageID)
		}
		if err := s.imageRepo.ApplyAttachments(ctx, item.ID, detach, nil); err != nil {
			return err
		}
	}
	return s.repo.Delete(ctx, item)
}

// imagePlan is a resolved attach/detach batch, ready to apply.
type imagePlan struct {
	detach []uint64
	attach []repository.Attachment
}

func (p *imagePlan) empty() bool {
	return len(p.detach) == 0 && len(p.attach) == 0
}

// planImageRefs resolves an attach/detach batch against the item's current
// links. Unresolvable UUIDs are skipped, not fatal: bulk edits favor partial
// success, but each skip is logged so client bugs stay visible. The cap check
// counts every attachment that survives the batch, including ones the batch
// never mentions, so a partial batch cannot push an item past the limit.
func (s *itemService) planImageRefs(ctx context.Context, userID uint64, item *model.Item, links []model.ItemImage, refs []ImageRef) (*imagePlan, error) {
	attachedByUUID := make(map[string]*model.ItemImage, len(links))
	maxSort := 0
	for i := range links {
		attachedByUUID[links[i].Image.UUID] = &links[i]
		if links[i].SortOrder > maxSort {
			maxSort = links[i].SortOrder
		}
	}

	plan := &imagePlan{}
	detaching := make(map[uint64]bool)
	attaching := make(map[string]bool)
	for _, ref := range refs {
		switch ref.Status {
		case ImageRefRemoved:
			if link, ok := attachedByUUID[ref.UUID]; ok && !detaching[link.ImageID] {
				detaching[link.ImageID] = true
				plan.detach = append(plan.detach, link.ImageID)
			}
		case ImageRefOriginal:
			// Already attached and staying that way.
		case ImageRefNew:
			if _, ok := attachedByUUID[ref.UUID]; ok {
				// Already attached; attaching again must not double-count.
				continue
			}
			if attaching[ref.UUID] {
				continue
			}
			img, err := s.imageRepo.FindByUUID(ctx, ref.UUID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					s.log.Warnw("skipping unknown image in attach batch", "item", item.ShortID, "uuid", ref.UUID)
					continue
				}
				return nil, err
			}
			if img.UserID != userID {
				s.log.Warnw("skipping foreign image in attach batch", "item", item.ShortID, "uuid", ref.UUID)
				continue
			}
			attaching[ref.UUID] = true
			maxSort++
			plan.attach = append(plan.attach, repository.Attachment{ImageID: img.ID, SortOrder: maxSort})
		default:
			return nil, newValidationError("images", "unknown image status %q", ref.Status)
		}
	}

	active := len(links) - len(plan.detach) + len(plan.attach)
	if active > MaxItemImages {
		return nil, newValidationError("images", "an item can hold at most %d images", MaxItemImages)
	}
	return plan, nil
}

func validateInput(in *ItemInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return newValidationError("name", "name is required")
	}
	if len(in.Name) > 120 {
		return newValidationError("name", "name must be 120 characters or less")
	}
	return validateTimeline(in, time.Now())
}

// validateTimeline enforces purchased <= received <= used <= discarded <= today.
// Every ordered pair with both sides present is checked; with received_at
// absent an adjacent-only check would let purchased_at > used_at through.
func validateTimeline(in *ItemInput, now time.Time) error {
	today := now
	fields := []struct {
		name string
		at   *time.Time
	}{
		{"purchased_at", in.PurchasedAt},
		{"received_at", in.ReceivedAt},
		{"used_at", in.UsedAt},
		{"discarded_at", in.DiscardedAt},
	}
	for i, f := range fields {
		if f.at == nil {
			continue
		}
		if f.at.After(today) {
			return newValidationError(f.name, "%s must not be in the future", f.name)
		}
		for j := 0; j < i; j++ {
			earlier := fields[j]
			if earlier.at != nil && f.at.Before(*earlier.at) {
				return newValidationError(f.name, "%s must not be before %s", f.name, earlier.name)
			}
		}
	}
	return nil
}

// ParseDate parses a date or date-time string into a canonical date so string
// and typed inputs compare equivalently.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	return nil, errors.New("invalid date: " + s)
}

func newShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
