package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeListingRepo struct {
	listings map[uuid.UUID]*Listing
	photos   map[uuid.UUID]*Photo
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{
		listings: make(map[uuid.UUID]*Listing),
		photos:   make(map[uuid.UUID]*Photo),
	}
}

func (f *fakeListingRepo) Create(ctx context.Context, l *Listing) error {
	cp := *l
	f.listings[l.ID] = &cp
	return nil
}

func (f *fakeListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, ErrListingNotFound
	}
	return l, nil
}

func (f *fakeListingRepo) ListActive(ctx context.Context, limit, offset int) ([]Listing, int, error) {
	out := make([]Listing, 0)
	for _, l := range f.listings {
		if l.Status == StatusActive {
			out = append(out, *l)
		}
	}
	return out, len(out), nil
}

func (f *fakeListingRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Listing, error) {
	out := make([]Listing, 0)
	for _, l := range f.listings {
		if l.AccountID == accountID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeListingRepo) Update(ctx context.Context, l *Listing) error {
	if _, ok := f.listings[l.ID]; !ok {
		return ErrListingNotFound
	}
	cp := *l
	f.listings[l.ID] = &cp
	return nil
}

func (f *fakeListingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.listings[id]; !ok {
		return ErrListingNotFound
	}
	delete(f.listings, id)
	return nil
}

func (f *fakeListingRepo) CreatePhoto(ctx context.Context, p *Photo) error {
	cp := *p
	f.photos[p.ID] = &cp
	return nil
}

func (f *fakeListingRepo) GetPhotoByID(ctx context.Context, id uuid.UUID) (*Photo, error) {
	p, ok := f.photos[id]
	if !ok {
		return nil, ErrPhotoNotFound
	}
	return p, nil
}

func (f *fakeListingRepo) GetPhotoByKey(ctx context.Context, key string) (*Photo, error) {
	for _, p := range f.photos {
		if p.Key == key {
			return p, nil
		}
	}
	return nil, ErrPhotoNotFound
}

func (f *fakeListingRepo) ListPhotos(ctx context.Context, listingID uuid.UUID) ([]Photo, error) {
	out := make([]Photo, 0)
	for _, p := range f.photos {
		if p.ListingID == listingID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeListingRepo) CountPhotos(ctx context.Context, listingID uuid.UUID) (int, error) {
	count := 0
	for _, p := range f.photos {
		if p.ListingID == listingID {
			count++
		}
	}
	return count, nil
}

func (f *fakeListingRepo) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.photos[id]; !ok {
		return ErrPhotoNotFound
	}
	delete(f.photos, id)
	return nil
}

func seedListing(repo *fakeListingRepo, accountID uuid.UUID) *Listing {
	l := &Listing{
		ID:         uuid.New(),
		AccountID:  accountID,
		Title:      "Cozy bungalow",
		Address:    "12 Maple St",
		PriceCents: 35000000,
		Status:     StatusDraft,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	repo.listings[l.ID] = l
	return l
}

func TestCreateStartsAsDraft(t *testing.T) {
	repo := newFakeListingRepo()
	svc := NewService(repo, nil, nil)

	l, err := svc.Create(context.Background(), uuid.New(), &CreateRequest{
		Title:      "Cozy bungalow",
		Address:    "12 Maple St",
		Latitude:   40.7,
		Longitude:  -74.0,
		PriceCents: 35000000,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if l.Status != StatusDraft {
		t.Fatalf("expected new listing to be draft, got %q", l.Status)
	}
}

func TestUpdateRejectsNonOwner(t *testing.T) {
	repo := newFakeListingRepo()
	svc := NewService(repo, nil, nil)

	owner := uuid.New()
	l := seedListing(repo, owner)

	_, err := svc.Update(context.Background(), uuid.New(), l.ID, &UpdateRequest{
		Title:      "Hijacked",
		Address:    l.Address,
		Latitude:   1,
		Longitude:  1,
		PriceCents: 1,
		Status:     string(StatusActive),
	})
	if !errors.Is(err, ErrNotListingOwner) {
		t.Fatalf("expected ErrNotListingOwner, got %v", err)
	}
	if repo.listings[l.ID].Title != "Cozy bungalow" {
		t.Fatal("non-owner update must not change the listing")
	}
}

func TestPresignPhotoRejectsBadMime(t *testing.T) {
	repo := newFakeListingRepo()
	svc := NewService(repo, nil, nil)

	owner := uuid.New()
	l := seedListing(repo, owner)

	_, err := svc.PresignPhoto(context.Background(), owner, l.ID, &PresignRequest{
		Filename:    "house.gif",
		ContentType: "image/gif",
		Size:        1024,
	})
	if !errors.Is(err, ErrInvalidMimeType) {
		t.Fatalf("expected ErrInvalidMimeType, got %v", err)
	}
}

func TestPresignPhotoRejectsNonOwner(t *testing.T) {
	repo := newFakeListingRepo()
	svc := NewService(repo, nil, nil)

	l := seedListing(repo, uuid.New())

	_, err := svc.PresignPhoto(context.Background(), uuid.New(), l.ID, &PresignRequest{
		Filename:    "house.jpg",
		ContentType: "image/jpeg",
		Size:        1024,
	})
	if !errors.Is(err, ErrNotListingOwner) {
		t.Fatalf("expected ErrNotListingOwner, got %v", err)
	}
}

func TestPresignPhotoEnforcesLimit(t *testing.T) {
	repo := newFakeListingRepo()
	svc := NewService(repo, nil, nil)

	owner := uuid.New()
	l := seedListing(repo, owner)

	for i := 0; i < PhotoLimit; i++ {
		p := &Photo{ID: uuid.New(), ListingID: l.ID, Key: uuid.NewString()}
		repo.photos[p.ID] = p
	}

	_, err := svc.PresignPhoto(context.Background(), owner, l.ID, &PresignRequest{
		Filename:    "one-more.jpg",
		ContentType: "image/jpeg",
		Size:        1024,
	})
	if !errors.Is(err, ErrPhotoLimitReached) {
		t.Fatalf("expected ErrPhotoLimitReached, got %v", err)
	}
}
