package project

import "errors"

var (
	ErrDuplicateVariable  = errors.New("duplicate variable")
	ErrNeedsConfiguration = errors.New("variable needs configuration")
	ErrNoData             = errors.New("variable has no data")
)
