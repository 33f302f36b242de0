package controller

import (
	"github.com/portfolio-site/showcase/icon"
	"github.com/portfolio-site/showcase/model"
	"github.com/portfolio-site/showcase/store"
)

// buildCards annotates the visible repositories of a view for rendering
func buildCards(view *store.View, icons *icon.Resolver) []model.RepositoryCard {
	visible := view.VisibleRepos()
	displayLanguages := view.DisplayLanguages()
	cards := make([]model.RepositoryCard, 0, len(visible))

	for _, r := range visible {
		language, found := displayLanguages[r.Name]
		if !found {
			language = model.UnknownLanguage
		}

		cards = append(cards, model.RepositoryCard{
			Repository:      r,
			DisplayLanguage: language,
			DisplayPercent:  r.Percent(language),
			Icon:            icons.GetIcon(language),
			Starred:         view.IsStarred(r.Name),
		})
	}

	return cards
}

func buildLanguageOptions(view *store.View, icons *icon.Resolver) []model.LanguageOption {
	languages := view.Store().Languages()
	selected := view.Filters().Language
	options := make([]model.LanguageOption, 0, len(languages))

	for _, l := range languages {
		options = append(options, model.LanguageOption{
			Name:     l,
			Icon:     icons.GetIcon(l),
			Selected: l == selected,
		})
	}

	return options
}
