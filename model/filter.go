package model

import (
	"fmt"
	"strings"
)

const (
	// AllLanguages is the sentinel of the language filter, always part of the vocabulary
	AllLanguages = "All"

	// UnknownLanguage is displayed for repositories without primary language
	UnknownLanguage = "Unknown"
)

type SortKey string

const (
	SortByStars    SortKey = "stars"
	SortByCreated  SortKey = "created"
	SortByUpdated  SortKey = "updated"
	SortByActivity SortKey = "activity"
)

// SortKeys in the order of the sort select box
var SortKeys = []SortKey{SortByStars, SortByCreated, SortByActivity, SortByUpdated}

// Label is the text shown in the sort select box
func (k SortKey) Label() string {
	switch k {
	case SortByStars:
		return "Most Stars"
	case SortByCreated:
		return "Date Created"
	case SortByUpdated:
		return "Last Updated"
	default:
		return "Most Activity"
	}
}

// ParseSortKey is case insensitive and rejects unknown keys
func ParseSortKey(value string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(value)))

	for _, k := range SortKeys {
		if k == key {
			return k, nil
		}
	}

	return "", fmt.Errorf("INVALID_SORT_KEY")
}

// Filters is the mutable filter state of a browsing session
type Filters struct {
	Language string  `json:"language"`
	SortBy   SortKey `json:"sortBy"`
}

// DefaultFilters shows every repository, most recently pushed first
func DefaultFilters() Filters {
	return Filters{
		Language: AllLanguages,
		SortBy:   SortByActivity,
	}
}

// FilterQuery is bound from the query string or a json body
// empty fields keep the current value
type FilterQuery struct {
	Language string `form:"language" json:"language"`
	SortBy   string `form:"sort" json:"sortBy"`
}

// IsEmpty reports whether the query changes nothing
func (q FilterQuery) IsEmpty() bool {
	return strings.TrimSpace(q.Language) == "" && strings.TrimSpace(q.SortBy) == ""
}

// ApplyTo merges the query on top of the current filters
// the language is not validated here because the vocabulary lives in the store
func (q FilterQuery) ApplyTo(current Filters) (Filters, error) {
	next := current

	if language := strings.TrimSpace(q.Language); language != "" {
		next.Language = language
	}

	if sortBy := strings.TrimSpace(q.SortBy); sortBy != "" {
		key, err := ParseSortKey(sortBy)
		if err != nil {
			return current, err
		}
		next.SortBy = key
	}

	return next, nil
}
