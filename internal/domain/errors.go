package domain

import "errors"

var (
	// ErrIngredientNotFound is returned when a catalog lookup finds no record
	ErrIngredientNotFound = errors.New("ingredient not found in catalog")

	// ErrCacheMiss is returned when a normalized text has no match record
	ErrCacheMiss = errors.New("match cache miss")

	// ErrEmptyMention is returned when a mention normalizes to the empty string
	ErrEmptyMention = errors.New("mention normalizes to empty string")
)
