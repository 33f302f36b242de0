package service

import (
	"context"

	"github.com/google/go-github/v66/github"
	"github.com/portfolio-site/showcase/model"
	log "github.com/sirupsen/logrus"
)

// CheckAuthentication validates a visitor token against github
// it fails closed: any error means not authenticated
func (s githubService) CheckAuthentication(ctx context.Context, token string) model.AuthStatus {
	if token == "" {
		return model.AuthStatus{Authenticated: false}
	}

	user, _, err := s.githubClient.WithAuthToken(token).Users.Get(ctx, "")
	if err != nil {
		log.WithError(err).Debug("visitor token rejected by github")
		return model.AuthStatus{Authenticated: false}
	}

	return model.AuthStatus{
		Authenticated: true,
		Username:      user.GetLogin(),
	}
}

// FetchStarredRepositories lists the repositories starred by the visitor owning the token
// an empty, non authed list is returned on any failure
func (s githubService) FetchStarredRepositories(ctx context.Context, token string) model.StarredList {
	notAuthed := model.StarredList{Authed: false, Repos: []model.StarredRepository{}}

	if token == "" {
		return notAuthed
	}

	starred, _, err := s.githubClient.WithAuthToken(token).Activity.ListStarred(ctx, "", &github.ActivityListStarredOptions{
		ListOptions: github.ListOptions{
			Page:    1,
			PerPage: 100,
		},
	})

	if err != nil {
		log.WithError(err).Debug("unable to fetch starred repositories")
		return notAuthed
	}

	list := model.StarredList{Authed: true, Repos: make([]model.StarredRepository, 0, len(starred))}
	for _, s := range starred {
		if name := s.GetRepository().GetName(); name != "" {
			list.Repos = append(list.Repos, model.StarredRepository{Name: name})
		}
	}

	return list
}
