package errors

import "errors"

var (
	ErrNotFound = errors.New("shipment not found")

	ErrInvalidID = errors.New("invalid shipment ID format")
)
