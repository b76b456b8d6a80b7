package service

import (
	"context"
	"errors"
	"image"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ktsujino/inventory-backend/internal/imaging"
	"github.com/ktsujino/inventory-backend/internal/model"
	"github.com/ktsujino/inventory-backend/internal/repository"
	"github.com/ktsujino/inventory-backend/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ImageOptions holds the derivative and URL knobs for the image lifecycle.
type ImageOptions struct {
	PreviewMaxWidth  int
	PreviewMaxHeight int
	PreviewQuality   int
	ThumbMaxWidth    int
	ThumbMaxHeight   int
	ThumbQuality     int
	SignedURLTTL     time.Duration
	// MaxEncoders bounds concurrent derivative encoding; it is a latency
	// guard, not a correctness requirement.
	MaxEncoders int
}

func DefaultImageOptions() ImageOptions {
	return ImageOptions{
		PreviewMaxWidth:  600,
		PreviewMaxHeight: 800,
		PreviewQuality:   80,
		ThumbMaxWidth:    300,
		ThumbMaxHeight:   400,
		ThumbQuality:     60,
		SignedURLTTL:     15 * time.Minute,
		MaxEncoders:      4,
	}
}

// ImageURLs carries the time-limited signed URLs of the three stored variants.
type ImageURLs struct {
	Original string
	Preview  string
	Thumb    string
}

type ImageService interface {
	Upload(ctx context.Context, userID uint64, filename string, data []byte) (*model.Image, error)
	Get(ctx context.Context, userID uint64, imageUUID string) (*model.Image, error)
	List(ctx context.Context, userID uint64, filter repository.ImageFilter) ([]model.Image, error)
	Delete(ctx context.Context, userID uint64, imageUUID string) error
	// CleanupOrphans deletes draft images that no item references and that
	// were last touched before minAge ago. Invoked by the maintenance job.
	CleanupOrphans(ctx context.Context, minAge time.Duration) (int, error)
	URLs(image *model.Image) (ImageURLs, error)
}

type imageService struct {
	repo  repository.ImageRepository
	store storage.Storage
	opts  ImageOptions
	log   *zap.SugaredLogger
	sem   chan struct{}
}

func NewImageService(repo repository.ImageRepository, store storage.Storage, opts ImageOptions, log *zap.SugaredLogger) ImageService {
	if opts.MaxEncoders <= 0 {
		opts.MaxEncoders = 1
	}
	return &imageService{
		repo:  repo,
		store: store,
		opts:  opts,
		log:   log,
		sem:   make(chan struct{}, opts.MaxEncoders),
	}
}

func (s *imageService) Upload(ctx context.Context, userID uint64, filename string, data []byte) (*model.Image, error) {
	if len(data) == 0 {
		return nil, newValidationError("image", "file is empty")
	}

	img, err := imaging.Decode(data)
	if err != nil {
		return nil, newValidationError("image", "%v", err)
	}

	rec := &model.Image{
		UUID: uuid.NewString(),
		// Random basename so original filenames can neither collide nor
		// smuggle path segments into object paths.
		ImagePath:         strings.ReplaceAll(uuid.NewString(), "-", ""),
		OriginalExtension: extensionFor(filename, data),
		Status:            model.ImageStatusDraft,
		UsageCount:        0,
		UserID:            userID,
	}

	var written []string
	fail := func(err error) (*model.Image, error) {
		// No partial artifacts survive a failed upload.
		for _, path := range written {
			if derr := s.store.Delete(ctx, path); derr != nil && !errors.Is(derr, storage.ErrNotFound) {
				s.log.Warnw("failed to clean up partial upload", "path", path, "error", derr)
			}
		}
		return nil, err
	}

	if err := s.store.Put(ctx, rec.OriginalPath(), data, imaging.ContentType(rec.OriginalExtension)); err != nil {
		return fail(err)
	}
	written = append(written, rec.OriginalPath())

	preview, err := s.encodeVariant(img, s.opts.PreviewMaxWidth, s.opts.PreviewMaxHeight, s.opts.PreviewQuality)
	if err != nil {
		return fail(err)
	}
	if err := s.store.Put(ctx, rec.PreviewPath(), preview, "image/webp"); err != nil {
		return fail(err)
	}
	written = append(written, rec.PreviewPath())

	thumb, err := s.encodeVariant(img, s.opts.ThumbMaxWidth, s.opts.ThumbMaxHeight, s.opts.ThumbQuality)
	if err != nil {
		return fail(err)
	}
	if err := s.store.Put(ctx, rec.ThumbPath(), thumb, "image/webp"); err != nil {
		return fail(err)
	}
	written = append(written, rec.ThumbPath())

	if err := s.repo.Create(ctx, rec); err != nil {
		return fail(err)
	}

	s.log.Infow("image uploaded", "uuid", rec.UUID, "user", userID, "ext", rec.OriginalExtension)
	return rec, nil
}

func (s *imageService) encodeVariant(img image.Image, maxW, maxH, quality int) ([]byte, error) {
	s.sem <- struct{}{}
	defer func() { <-s.sem }()
	return imaging.EncodeWebP(imaging.Fit(img, maxW, maxH), quality)
}

func (s *imageService) Get(ctx context.Context, userID uint64, imageUUID string) (*model.Image, error) {
	img, err := s.repo.FindByUUID(ctx, imageUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if img.UserID != userID {
		return nil, ErrForbidden
	}
	return img, nil
}

func (s *imageService) List(ctx context.Context, userID uint64, filter repository.ImageFilter) ([]model.Image, error) {
	return s.repo.ListByUser(ctx, userID, filter)
}

func (s *imageService) Delete(ctx context.Context, userID uint64, imageUUID string) error {
	img, err := s.Get(ctx, userID, imageUUID)
	if err != nil {
		return err
	}
	return s.deleteImage(ctx, img)
}

func (s *imageService) deleteImage(ctx context.Context, img *model.Image) error {
	if img.UsageCount > 0 {
		return ErrImageInUse
	}
	// Re-check the join table: usage_count says zero, but the relation is the
	// source of truth for "no item references remain".
	links, err := s.repo.CountItemLinks(ctx, img.ID)
	if err != nil {
		return err
	}
	if links > 0 {
		return ErrImageInUse
	}

	for _, path := range []string{img.OriginalPath(), img.PreviewPath(), img.ThumbPath()} {
		if err := s.store.Delete(ctx, path); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return err
		}
	}
	return s.repo.Delete(ctx, img)
}

func (s *imageService) CleanupOrphans(ctx context.Context, minAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-minAge)
	orphans, err := s.repo.ListOrphanDrafts(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for i := range orphans {
		img := &orphans[i]
		if err := s.deleteImage(ctx, img); err != nil {
			// Transient storage errors are left for the next pass.
			s.log.Warnw("orphan cleanup failed", "uuid", img.UUID, "error", err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		s.log.Infow("orphan images cleaned", "deleted", deleted, "candidates", len(orphans))
	}
	return deleted, nil
}

func (s *imageService) URLs(img *model.Image) (ImageURLs, error) {
	original, err := s.store.SignedURL(img.OriginalPath(), s.opts.SignedURLTTL)
	if err != nil {
		return ImageURLs{}, err
	}
	preview, err := s.store.SignedURL(img.PreviewPath(), s.opts.SignedURLTTL)
	if err != nil {
		return ImageURLs{}, err
	}
	thumb, err := s.store.SignedURL(img.ThumbPath(), s.opts.SignedURLTTL)
	if err != nil {
		return ImageURLs{}, err
	}
	return ImageURLs{Original: original, Preview: preview, Thumb: thumb}, nil
}

// extensionFor returns the lower-cased extension from the client filename,
// falling back to the sniffed content type when the name carries none.
func extensionFor(filename string, data []byte) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext != "" {
		return ext
	}
	exts, _ := mime.ExtensionsByType(http.DetectContentType(data))
	if len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	return "bin"
}
