package builder

import "errors"

var (
	ErrConfigError          = errors.New("configuration error occurred")
	ErrBindingError         = errors.New("binding error occurred")
	ErrUnexpectedOutputPath = errors.New("unexpected output path provided")
)
