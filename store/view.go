package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/portfolio-site/showcase/model"
)

// View is the filter state of one browsing session and everything derived from it
// derived values are memoized on the filters, hover or star updates never recompute them
type View struct {
	store *RepoStore

	mu      sync.Mutex
	filters model.Filters

	visible        []model.Repository
	visibleFilters model.Filters
	visibleValid   bool

	displayLanguage         map[string]string
	displayLanguageFilter   string
	displayLanguageComputed bool

	starred     map[string]bool
	starsLoaded bool
}

func NewView(store *RepoStore) *View {
	return &View{
		store:   store,
		filters: model.DefaultFilters(),
		starred: map[string]bool{},
	}
}

func (v *View) Store() *RepoStore {
	return v.store
}

func (v *View) Filters() model.Filters {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.filters
}

// SetFilters replaces the filter state, the selected language must belong to the vocabulary
func (v *View) SetFilters(filters model.Filters) error {
	if !v.store.HasLanguage(filters.Language) {
		return fmt.Errorf("UNKNOWN_LANGUAGE")
	}

	if _, err := model.ParseSortKey(string(filters.SortBy)); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.filters = filters
	return nil
}

// ApplyQuery merges a partial filter query into the current filters
func (v *View) ApplyQuery(query model.FilterQuery) (model.Filters, error) {
	next, err := query.ApplyTo(v.Filters())
	if err != nil {
		return v.Filters(), err
	}

	if err := v.SetFilters(next); err != nil {
		return v.Filters(), err
	}

	return next, nil
}

// VisibleRepos returns the filtered and sorted repositories
// the returned slice is shared between calls with the same filters and must not be modified
func (v *View) VisibleRepos() []model.Repository {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.visibleValid && v.visibleFilters == v.filters {
		return v.visible
	}

	v.visible = FilterAndSort(v.store.Repos(), v.filters)
	v.visibleFilters = v.filters
	v.visibleValid = true

	return v.visible
}

// DisplayLanguages maps repository name to the language shown on its card
// it only depends on the selected language, not on the sort key
func (v *View) DisplayLanguages() map[string]string {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.displayLanguageComputed && v.displayLanguageFilter == v.filters.Language {
		return v.displayLanguage
	}

	languages := make(map[string]string, len(v.store.Repos()))
	for _, r := range v.store.Repos() {
		languages[r.Name] = DisplayLanguage(r, v.filters.Language)
	}

	v.displayLanguage = languages
	v.displayLanguageFilter = v.filters.Language
	v.displayLanguageComputed = true

	return v.displayLanguage
}

// SetStarred replaces the star map with the given repository names
func (v *View) SetStarred(names []string) {
	starred := make(map[string]bool, len(names))
	for _, name := range names {
		starred[name] = true
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.starred = starred
	v.starsLoaded = true
}

// MarkStarsLoaded records a finished refresh that could not populate the map
func (v *View) MarkStarsLoaded() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.starsLoaded = true
}

// IsStarred treats absent entries as not starred
func (v *View) IsStarred(name string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.starred[name]
}

func (v *View) StarsLoaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.starsLoaded
}

// DisplayLanguage picks the filter language when the repository uses it,
// otherwise its primary language
func DisplayLanguage(repo model.Repository, filterLanguage string) string {
	if repo.HasLanguage(filterLanguage) {
		return filterLanguage
	}

	return repo.PrimaryLanguage()
}

// Matches is the language filter predicate
// the byte map wins when present, the primary language is only used without enrichment
// a failed enrichment leaves an empty map, which counts as absent
func Matches(repo model.Repository, language string) bool {
	if language == model.AllLanguages {
		return true
	}

	if len(repo.Languages) > 0 {
		return repo.HasLanguage(language)
	}

	return repo.Language != nil && *repo.Language == language
}

// FilterAndSort never modifies repos
func FilterAndSort(repos []model.Repository, filters model.Filters) []model.Repository {
	list := make([]model.Repository, 0, len(repos))

	for _, r := range repos {
		if Matches(r, filters.Language) {
			list = append(list, r)
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return sortValue(list[i], filters.SortBy) > sortValue(list[j], filters.SortBy)
	})

	return list
}

// sortValue returns the descending sort field, missing timestamps count as the zero time
func sortValue(r model.Repository, key model.SortKey) int64 {
	switch key {
	case model.SortByStars:
		return int64(r.Stars)
	case model.SortByCreated:
		return unixOrZero(r.CreatedAt)
	case model.SortByUpdated:
		return unixOrZero(r.UpdatedAt)
	default:
		return unixOrZero(r.PushedAt)
	}
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixNano()
}
