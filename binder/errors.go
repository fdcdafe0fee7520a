package binder

import "errors"

var (
	ErrUnresolvedSymbol    = errors.New("unresolved symbol")
	ErrDuplicateDefinition = errors.New("duplicate definition")
	ErrInvalidPad          = errors.New("invalid pad")
	ErrInvalidName         = errors.New("invalid identifier")
	ErrNoChipFamily        = errors.New("no chip family matches the build")
	ErrOwnership           = errors.New("peripheral ownership violated")
)
