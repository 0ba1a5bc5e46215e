package listing

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/homescope/homescope-api/internal/pkg/storage"
)

// PhotoLimit caps photos per listing
const PhotoLimit = 20

// WakeChannel is the Redis channel the image worker subscribes to.
const WakeChannel = "photos:confirmed"

var allowedMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Service handles listing business logic
type Service struct {
	repo    Repository
	storage *storage.R2Storage
	rdb     *redis.Client
}

// NewService creates listing service
func NewService(repo Repository, st *storage.R2Storage, rdb *redis.Client) *Service {
	return &Service{repo: repo, storage: st, rdb: rdb}
}

// Create stores a new draft listing owned by accountID.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, req *CreateRequest) (*Listing, error) {
	now := time.Now()
	l := &Listing{
		ID:          uuid.New(),
		AccountID:   accountID,
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		PriceCents:  req.PriceCents,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		AreaSqft:    req.AreaSqft,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	return l, nil
}

// Get returns a listing with its photos.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Listing, []Photo, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	photos, err := s.repo.ListPhotos(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return l, photos, nil
}

// ListActive returns publicly visible listings.
func (s *Service) ListActive(ctx context.Context, limit, offset int) ([]Listing, int, error) {
	return s.repo.ListActive(ctx, limit, offset)
}

// ListMine returns the caller's own listings, drafts included.
func (s *Service) ListMine(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Listing, error) {
	return s.repo.ListByAccount(ctx, accountID, limit, offset)
}

// Update modifies a listing. Only the owner may update.
func (s *Service) Update(ctx context.Context, accountID, id uuid.UUID, req *UpdateRequest) (*Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.AccountID != accountID {
		return nil, ErrNotListingOwner
	}

	l.Title = req.Title
	l.Description = req.Description
	l.Address = req.Address
	l.Latitude = req.Latitude
	l.Longitude = req.Longitude
	l.PriceCents = req.PriceCents
	l.Bedrooms = req.Bedrooms
	l.Bathrooms = req.Bathrooms
	l.AreaSqft = req.AreaSqft
	l.Status = Status(req.Status)

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Delete removes a listing and schedules its photos for deletion from R2.
func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l.AccountID != accountID {
		return ErrNotListingOwner
	}

	photos, err := s.repo.ListPhotos(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Object cleanup happens off the request path
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, p := range photos {
			if err := s.storage.Delete(ctx, p.Key); err != nil {
				log.Warn().Err(err).Str("key", p.Key).Msg("Failed to delete photo object")
			}
		}
	}()

	return nil
}

// PresignPhoto creates a presigned PUT URL so the browser uploads the
// image straight to R2, skipping our server.
func (s *Service) PresignPhoto(ctx context.Context, accountID, listingID uuid.UUID, req *PresignRequest) (*storage.PresignResult, error) {
	l, err := s.repo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.AccountID != accountID {
		return nil, ErrNotListingOwner
	}

	ext, ok := allowedMimeTypes[req.ContentType]
	if !ok {
		return nil, ErrInvalidMimeType
	}

	count, err := s.repo.CountPhotos(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if count >= PhotoLimit {
		return nil, ErrPhotoLimitReached
	}

	if e := strings.ToLower(path.Ext(req.Filename)); e == ".jpg" || e == ".jpeg" || e == ".png" || e == ".webp" {
		ext = e
	}
	key := fmt.Sprintf("listings/%s/%s%s", listingID, uuid.New(), ext)

	return s.storage.PresignPut(ctx, key, req.ContentType, req.Size)
}

// ConfirmPhoto registers an uploaded object as a listing photo. The call
// is idempotent by key so a retried confirm returns the existing row.
func (s *Service) ConfirmPhoto(ctx context.Context, accountID, listingID uuid.UUID, req *ConfirmPhotoRequest) (*Photo, error) {
	l, err := s.repo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.AccountID != accountID {
		return nil, ErrNotListingOwner
	}

	exists, err := s.storage.Exists(ctx, req.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to verify upload: %w", err)
	}
	if !exists {
		return nil, ErrUploadNotVerified
	}

	if existing, err := s.repo.GetPhotoByKey(ctx, req.Key); err == nil {
		return existing, nil
	}

	count, err := s.repo.CountPhotos(ctx, listingID)
	if err != nil {
		return nil, err
	}

	p := &Photo{
		ID:            uuid.New(),
		ListingID:     listingID,
		Key:           req.Key,
		URL:           s.storage.PublicURL(req.Key),
		ContentType:   req.ContentType,
		SortOrder:     count,
		IsCover:       count == 0,
		ProcessStatus: ProcessPending,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.CreatePhoto(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to register photo: %w", err)
	}

	if s.rdb != nil {
		if err := s.rdb.Publish(ctx, WakeChannel, p.ID.String()).Err(); err != nil {
			log.Warn().Err(err).Msg("Failed to wake image worker")
		}
	}

	return p, nil
}

// DeletePhoto removes a photo row and its R2 object.
func (s *Service) DeletePhoto(ctx context.Context, accountID, listingID, photoID uuid.UUID) error {
	l, err := s.repo.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if l.AccountID != accountID {
		return ErrNotListingOwner
	}

	p, err := s.repo.GetPhotoByID(ctx, photoID)
	if err != nil {
		return err
	}
	if p.ListingID != listingID {
		return ErrPhotoNotFound
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.storage.Delete(ctx, p.Key); err != nil {
			log.Warn().Err(err).Str("key", p.Key).Msg("Failed to delete photo object")
		}
	}()

	return s.repo.DeletePhoto(ctx, photoID)
}
