package common

import "errors"

var (
	ErrorInvalidValue       = errors.New("invalid value")
	ErrorInvalidConfig      = errors.New("invalid config")
	ErrorInvalidBinCount    = errors.New("invalid bin count")
	ErrorInvalidNormalRange = errors.New("invalid normal range")
	ErrorInvalidDataRange   = errors.New("invalid data range")
	ErrorEmptyDistribution  = errors.New("empty distribution")
	ErrorNoBins             = errors.New("no bins")
	ErrorUnknownVariable    = errors.New("unknown variable")
	ErrorAnchorNotPreserved = errors.New("anchor not preserved")
)
