package services

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the services wraps exactly one of them so
// callers can classify failures with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrDependency = errors.New("dependency failure")
)

var (
	ErrStoryContentLength = fmt.Errorf("%w: story must be between 100 and 1000 characters", ErrValidation)
	ErrSelfGratitude      = fmt.Errorf("%w: gratitude must be addressed to someone else", ErrValidation)
	ErrReceiverRequired   = fmt.Errorf("%w: receiver is required", ErrValidation)
	ErrEmptySearchQuery   = fmt.Errorf("%w: search query is required", ErrValidation)
	ErrNoContacts         = fmt.Errorf("%w: no contacts found in input", ErrValidation)
	ErrInvalidContactsCSV = fmt.Errorf("%w: contacts file is not valid CSV", ErrValidation)
	ErrMissingSubject     = fmt.Errorf("%w: identity subject is required", ErrValidation)

	ErrStoryNotFound = fmt.Errorf("%w: gratitude story not found", ErrNotFound)
	ErrUserNotFound  = fmt.Errorf("%w: user not found", ErrNotFound)

	ErrNotStoryReceiver = fmt.Errorf("%w: you can only confirm gratitude directed to you", ErrForbidden)

	ErrStoryAlreadyResolved = fmt.Errorf("%w: gratitude story was already confirmed or rejected", ErrConflict)
	ErrEmailTaken           = fmt.Errorf("%w: email belongs to another account", ErrConflict)
)

func dependencyError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDependency, operation, err)
}
