package supplier

import "errors"

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSupplierNotFound   = errors.New("supplier not found")
)
