package material

import "errors"

var (
	ErrMaterialNotFound = errors.New("raw material not found")
	ErrNotOwner         = errors.New("raw material belongs to another supplier")
)
