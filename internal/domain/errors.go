package domain

import "errors"

// Store lifecycle errors
var (
	ErrStoreNotInitialized = errors.New("store is not initialized")
	ErrStoreClosed         = errors.New("store is closed")
)

// Lookup and integrity errors
var (
	ErrHeroNotFound      = errors.New("hero not found")
	ErrTeamNotFound      = errors.New("team not found")
	ErrReferenceNotFound = errors.New("referenced team or hero does not exist")
	ErrCorruptRecord     = errors.New("stored record is corrupt")
)

// Validation errors
var (
	ErrInvalidTeamName = errors.New("team name must not be empty")
)

// Catalog errors
var (
	ErrCatalogUnavailable = errors.New("catalog could not be fetched")
	ErrCatalogMalformed   = errors.New("catalog payload is malformed")
)
