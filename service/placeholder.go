package service

import (
	"time"

	"github.com/portfolio-site/showcase/model"
)

// PlaceholderRepositories is served whenever the real list is unavailable
// so the grid always has one card to render
func PlaceholderRepositories() []model.Repository {
	description := "This is a dummy description of the repository."
	language := "JavaScript"
	readme := "This is a dummy README content."

	return []model.Repository{
		{
			ID:          "dummy-id-123456",
			Name:        "dummy-repo-name",
			HTMLURL:     "https://github.com/dummy/dummy-repo",
			Description: &description,
			Language:    &language,
			Languages:   map[string]int{"JavaScript": 100},
			Stars:       0,
			Forks:       0,
			OpenIssues:  0,
			Owner:       "dummy-owner",
			CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			PushedAt:    time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2025, 1, 1, 2, 0, 0, 0, time.UTC),
			Readme:      &readme,
		},
	}
}
