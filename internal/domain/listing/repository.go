package listing

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines listing data access
type Repository interface {
	Create(ctx context.Context, l *Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	ListActive(ctx context.Context, limit, offset int) ([]Listing, int, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Listing, error)
	Update(ctx context.Context, l *Listing) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreatePhoto(ctx context.Context, p *Photo) error
	GetPhotoByID(ctx context.Context, id uuid.UUID) (*Photo, error)
	GetPhotoByKey(ctx context.Context, key string) (*Photo, error)
	ListPhotos(ctx context.Context, listingID uuid.UUID) ([]Photo, error)
	CountPhotos(ctx context.Context, listingID uuid.UUID) (int, error)
	DeletePhoto(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates listing repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, l *Listing) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO listings (id, account_id, title, description, address, latitude, longitude,
		                      price_cents, bedrooms, bathrooms, area_sqft, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, l.ID, l.AccountID, l.Title, l.Description, l.Address, l.Latitude, l.Longitude,
		l.PriceCents, l.Bedrooms, l.Bathrooms, l.AreaSqft, l.Status, l.CreatedAt, l.UpdatedAt)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var l Listing
	err := r.db.GetContext(ctx, &l, `
		SELECT id, account_id, title, description, address, latitude, longitude,
		       price_cents, bedrooms, bathrooms, area_sqft, status, created_at, updated_at
		FROM listings
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *repository) ListActive(ctx context.Context, limit, offset int) ([]Listing, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM listings WHERE status = 'active'
	`); err != nil {
		return nil, 0, err
	}

	listings := make([]Listing, 0)
	err := r.db.SelectContext(ctx, &listings, `
		SELECT id, account_id, title, description, address, latitude, longitude,
		       price_cents, bedrooms, bathrooms, area_sqft, status, created_at, updated_at
		FROM listings
		WHERE status = 'active'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	listings := make([]Listing, 0)
	err := r.db.SelectContext(ctx, &listings, `
		SELECT id, account_id, title, description, address, latitude, longitude,
		       price_cents, bedrooms, bathrooms, area_sqft, status, created_at, updated_at
		FROM listings
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *repository) Update(ctx context.Context, l *Listing) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE listings
		SET title = $2, description = $3, address = $4, latitude = $5, longitude = $6,
		    price_cents = $7, bedrooms = $8, bathrooms = $9, area_sqft = $10,
		    status = $11, updated_at = now()
		WHERE id = $1
	`, l.ID, l.Title, l.Description, l.Address, l.Latitude, l.Longitude,
		l.PriceCents, l.Bedrooms, l.Bathrooms, l.AreaSqft, l.Status)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *repository) CreatePhoto(ctx context.Context, p *Photo) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO listing_photos (id, listing_id, key, url, content_type, sort_order, is_cover,
		                            process_status, process_attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9)
	`, p.ID, p.ListingID, p.Key, p.URL, p.ContentType, p.SortOrder, p.IsCover, p.ProcessStatus, p.CreatedAt)
	return err
}

func (r *repository) GetPhotoByID(ctx context.Context, id uuid.UUID) (*Photo, error) {
	var p Photo
	err := r.db.GetContext(ctx, &p, `
		SELECT id, listing_id, key, url, content_type, sort_order, is_cover,
		       process_status, process_attempts, process_error, width, height, created_at
		FROM listing_photos
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetPhotoByKey(ctx context.Context, key string) (*Photo, error) {
	var p Photo
	err := r.db.GetContext(ctx, &p, `
		SELECT id, listing_id, key, url, content_type, sort_order, is_cover,
		       process_status, process_attempts, process_error, width, height, created_at
		FROM listing_photos
		WHERE key = $1
	`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListPhotos(ctx context.Context, listingID uuid.UUID) ([]Photo, error) {
	photos := make([]Photo, 0)
	err := r.db.SelectContext(ctx, &photos, `
		SELECT id, listing_id, key, url, content_type, sort_order, is_cover,
		       process_status, process_attempts, process_error, width, height, created_at
		FROM listing_photos
		WHERE listing_id = $1
		ORDER BY sort_order ASC, created_at ASC
	`, listingID)
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *repository) CountPhotos(ctx context.Context, listingID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM listing_photos WHERE listing_id = $1
	`, listingID)
	return count, err
}

func (r *repository) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM listing_photos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPhotoNotFound
	}
	return nil
}
