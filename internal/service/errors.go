package service

import "errors"

var (
	ErrPaymentVerification = errors.New("payment signature verification failed")
	ErrOrderFinalized      = errors.New("order is already delivered or cancelled")
	ErrInvalidStatus       = errors.New("unknown order status")
	ErrNotOwner            = errors.New("order belongs to a different buyer")
)
