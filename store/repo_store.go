// Package store holds the repository list of a page load and the
// filtered, sorted view derived from it.
package store

import (
	"sort"

	"github.com/portfolio-site/showcase/model"
)

// RepoStore is immutable once built
type RepoStore struct {
	repos     []model.Repository
	byID      map[string]int
	languages []string
}

func NewRepoStore(repos []model.Repository) *RepoStore {
	s := &RepoStore{
		repos: make([]model.Repository, len(repos)),
		byID:  make(map[string]int, len(repos)),
	}

	copy(s.repos, repos)

	for i, r := range s.repos {
		s.byID[r.ID] = i
	}

	s.languages = buildVocabulary(s.repos)
	return s
}

// buildVocabulary returns "All" followed by the distinct primary languages sorted ascending
func buildVocabulary(repos []model.Repository) []string {
	seen := make(map[string]struct{})
	langs := make([]string, 0)

	for _, r := range repos {
		if r.Language == nil || *r.Language == "" {
			continue
		}

		if _, found := seen[*r.Language]; !found {
			seen[*r.Language] = struct{}{}
			langs = append(langs, *r.Language)
		}
	}

	sort.Strings(langs)
	return append([]string{model.AllLanguages}, langs...)
}

// Repos returns the list in source order, callers must not modify it
func (s *RepoStore) Repos() []model.Repository {
	return s.repos
}

// Languages returns the vocabulary of the language filter
func (s *RepoStore) Languages() []string {
	return s.languages
}

// HasLanguage reports whether the language can be selected in the filter
func (s *RepoStore) HasLanguage(language string) bool {
	for _, l := range s.languages {
		if l == language {
			return true
		}
	}

	return false
}

func (s *RepoStore) Find(id string) (*model.Repository, bool) {
	i, found := s.byID[id]
	if !found {
		return nil, false
	}

	return &s.repos[i], true
}

// FindByName returns the first repository with the given name
func (s *RepoStore) FindByName(name string) (*model.Repository, bool) {
	for i := range s.repos {
		if s.repos[i].Name == name {
			return &s.repos[i], true
		}
	}

	return nil, false
}

// StarCounts maps repository name to its star count
func (s *RepoStore) StarCounts() map[string]int {
	counts := make(map[string]int, len(s.repos))
	for _, r := range s.repos {
		counts[r.Name] = r.Stars
	}

	return counts
}
