package domain

import "errors"

// ErrDocumentNotFound is returned when a page ID cannot be found in the store.
var ErrDocumentNotFound = errors.New("document not found")

// ErrInvalidTree is returned when a component tree breaks a structural rule.
var ErrInvalidTree = errors.New("invalid component tree")

// ErrUnknownAction is returned when an action or instruction type is not recognized.
var ErrUnknownAction = errors.New("unknown action")

// ErrInvalidPageID is returned when a page ID is empty.
var ErrInvalidPageID = errors.New("invalid page id")
