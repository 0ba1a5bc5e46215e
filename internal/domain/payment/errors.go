package payment

import "errors"

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrUnknownPackage   = errors.New("unknown credit package")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)
