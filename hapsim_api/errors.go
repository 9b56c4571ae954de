package hapsim_api

import "errors"

// Load-time validation errors, wrapped with the file and line they were found on
var (
	ErrMalformedIdentity = errors.New("malformed variant identity")
	ErrMultiallelic      = errors.New("multiallelic variant")
	ErrFrequencyRange    = errors.New("frequency outside [0,1]")
	ErrCorrelationRange  = errors.New("correlation outside [-1,1]")
	ErrUnknownVariant    = errors.New("unknown variant rank")
	ErrSelfPair          = errors.New("LD observation pairs a variant with itself")
	ErrDuplicateVariant  = errors.New("duplicate variant")
	ErrMissingColumn     = errors.New("missing column")
	ErrInvalidConfig     = errors.New("invalid configuration")
)
