package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
)

// Repository is one card of the portfolio
// the list is fetched once per page load and never mutated afterwards
type Repository struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	HTMLURL     string         `json:"htmlUrl"`
	Description *string        `json:"description,omitempty"`
	Language    *string        `json:"language,omitempty"` // primary language reported by github, nil for empty repositories
	Languages   map[string]int `json:"languages"`          // language name -> bytes, nil when enrichment never ran
	Stars       int            `json:"stars"`
	Forks       int            `json:"forks"`
	OpenIssues  int            `json:"openIssues"`
	Owner       string         `json:"owner"`
	CreatedAt   time.Time      `json:"createdAt"`
	PushedAt    time.Time      `json:"pushedAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	Readme      *string        `json:"readme,omitempty"`
	LaunchURL   *string        `json:"launchUrl,omitempty"`
}

// RepositoryEnrichment is the result of the per repository enrichment requests
type RepositoryEnrichment struct {
	RepositoryID string
	Languages    map[string]int
	Readme       *string
}

// LanguageShare is a single entry of the language breakdown overlay
type LanguageShare struct {
	Name    string `json:"name"`
	Bytes   int    `json:"bytes"`
	Percent string `json:"percent"`

	// Selectable is set when the language can be picked in the language filter
	Selectable bool `json:"selectable"`
}

// PrimaryLanguage returns the language label or "Unknown"
func (r Repository) PrimaryLanguage() string {
	if r.Language == nil || *r.Language == "" {
		return UnknownLanguage
	}

	return *r.Language
}

// HasLanguage checks the byte map keys only
func (r Repository) HasLanguage(language string) bool {
	_, found := r.Languages[language]
	return found
}

// TotalBytes sums all language bytes, negative values are ignored
func (r Repository) TotalBytes() int {
	total := 0
	for _, bytes := range r.Languages {
		if bytes > 0 {
			total += bytes
		}
	}

	return total
}

// Percent formats the share of a language in the repository, "0%" when unknown
func (r Repository) Percent(language string) string {
	total := r.TotalBytes()
	bytes := r.Languages[language]

	if total == 0 || bytes <= 0 {
		return "0%"
	}

	return fmt.Sprintf("%.1f%%", float64(bytes)/float64(total)*100)
}

// LanguageShares returns the breakdown ordered by bytes then name
func (r Repository) LanguageShares() []LanguageShare {
	shares := make([]LanguageShare, 0, len(r.Languages))

	for name, bytes := range r.Languages {
		shares = append(shares, LanguageShare{
			Name:    name,
			Bytes:   bytes,
			Percent: r.Percent(name),
		})
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Bytes != shares[j].Bytes {
			return shares[i].Bytes > shares[j].Bytes
		}
		return shares[i].Name < shares[j].Name
	})

	return shares
}

// TitleName capitalizes the first letter of every word of the name
func (r Repository) TitleName() string {
	runes := []rune(r.Name)

	for i := range runes {
		if i == 0 || unicode.IsSpace(runes[i-1]) {
			runes[i] = unicode.ToUpper(runes[i])
		}
	}

	return string(runes)
}

// DescriptionOrDefault is used by the card body
func (r Repository) DescriptionOrDefault() string {
	if r.Description == nil || strings.TrimSpace(*r.Description) == "" {
		return "No description available."
	}

	return *r.Description
}

// UpdatedLabel formats the last update date shown under the title
func (r Repository) UpdatedLabel() string {
	if r.UpdatedAt.IsZero() {
		return "Unknown"
	}

	return r.UpdatedAt.Format("Jan 2, 2006")
}
