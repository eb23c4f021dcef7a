package domain

import "errors"

var (
	// ErrNoQuestions is returned when the supply cannot produce any
	// questions, even after the unfiltered fallback.
	ErrNoQuestions = errors.New("no questions available")
	// ErrMatchNotFound indicates the persisted match row is missing.
	ErrMatchNotFound = errors.New("match not found")
)
