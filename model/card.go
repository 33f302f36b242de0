package model

// RepositoryCard is a repository as rendered in the grid of a session
type RepositoryCard struct {
	Repository

	DisplayLanguage string `json:"displayLanguage"`
	DisplayPercent  string `json:"displayPercent"`
	Icon            string `json:"icon,omitempty"` // empty when no icon could be resolved
	Starred         bool   `json:"starred"`
}

// LanguageOption is an entry of the language filter
type LanguageOption struct {
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
	Selected bool   `json:"selected"`
}

// SortOption is an entry of the sort select box
type SortOption struct {
	Key      SortKey `json:"key"`
	Label    string  `json:"label"`
	Selected bool    `json:"selected"`
}

// SortOptions lists every sort key, marking the active one
func SortOptions(active SortKey) []SortOption {
	options := make([]SortOption, 0, len(SortKeys))
	for _, k := range SortKeys {
		options = append(options, SortOption{Key: k, Label: k.Label(), Selected: k == active})
	}

	return options
}
