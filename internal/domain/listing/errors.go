package listing

import "errors"

var (
	ErrListingNotFound   = errors.New("listing not found")
	ErrNotListingOwner   = errors.New("not the listing owner")
	ErrPhotoNotFound     = errors.New("photo not found")
	ErrPhotoLimitReached = errors.New("photo limit reached")
	ErrUploadNotVerified = errors.New("upload not found in storage")
	ErrInvalidMimeType   = errors.New("unsupported image type")
)
