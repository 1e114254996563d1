package utils

import "errors"

var (
	// ErrConfiguration marks an invalid setup found at or before construction
	ErrConfiguration = errors.New("configuration error")
	// ErrNonConvergence marks an iterative solve that did not reach its tolerance
	ErrNonConvergence = errors.New("numerical non-convergence")
)
