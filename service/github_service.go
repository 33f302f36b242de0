package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/portfolio-site/showcase/config"
	"github.com/portfolio-site/showcase/model"

	"github.com/remeh/sizedwaitgroup"
	log "github.com/sirupsen/logrus"

	"golang.org/x/time/rate"
)

type GithubService interface {
	FetchRepositories(ctx context.Context) []model.Repository
	EnrichRepositories(ctx context.Context, repos []model.Repository) []model.Repository
	FetchEnrichmentForSingleRepository(ctx context.Context, r model.Repository, swg *sizedwaitgroup.SizedWaitGroup, ch chan<- model.RepositoryEnrichment) error

	CheckAuthentication(ctx context.Context, token string) model.AuthStatus
	FetchStarredRepositories(ctx context.Context, token string) model.StarredList

	HandleRequestErrors(err error) error
}

type githubService struct {
	githubClient      *github.Client // unauthenticated, visitor tokens are applied on top of it
	ownerClient       *github.Client
	githubRateLimiter *rate.Limiter
	config            config.Config
}

// the local rate limiter only tracks the owner token
// visitor requests (auth check, starred list) are made with the visitor token and their own quota
func NewGithubService(config config.Config, githubClient *github.Client, rateLimiter *rate.Limiter) GithubService {
	ownerClient := githubClient
	if config.Github.Token != "" {
		ownerClient = githubClient.WithAuthToken(config.Github.Token)
	}

	return githubService{
		githubClient:      githubClient,
		ownerClient:       ownerClient,
		githubRateLimiter: rateLimiter,
		config:            config,
	}
}

// FetchRepositories lists the owner repositories, enriched with languages and readme
// it never fails: missing credentials or any listing error return the placeholder repository
func (s githubService) FetchRepositories(ctx context.Context) []model.Repository {
	if !s.config.Github.HasCredentials() {
		log.Info("github username or token not configured, serving placeholder repository")
		return PlaceholderRepositories()
	}

	if !s.githubRateLimiter.Allow() {
		log.Warning("the Github rate limit has been reached, serving placeholder repository")
		return PlaceholderRepositories()
	}

	log.WithField("owner", s.config.Github.Username).Info("fetch repositories from github")

	repos, _, err := s.ownerClient.Repositories.ListByUser(
		ctx,
		s.config.Github.Username,
		&github.RepositoryListByUserOptions{
			Type:      "owner",
			Sort:      "pushed",
			Direction: "desc",
			ListOptions: github.ListOptions{
				Page:    1,
				PerPage: 100,
			},
		},
	)

	if err != nil {
		log.WithError(s.HandleRequestErrors(err)).Warning("unable to list repositories, serving placeholder repository")
		return PlaceholderRepositories()
	}

	repositories := make([]model.Repository, 0, len(repos))

	for _, r := range repos {
		if r == nil || r.ID == nil || r.Name == nil {
			log.Debug("repository found with invalid information. skipped")
			continue
		}

		repositories = append(repositories, toRepository(r))
	}

	if len(repositories) == 0 {
		log.Info("no repository found for owner, serving placeholder repository")
		return PlaceholderRepositories()
	}

	// one readme request per repository, one languages request when github reports a language
	requestsToMake := 0
	for _, r := range repositories {
		requestsToMake++
		if r.Language != nil {
			requestsToMake++
		}
	}

	// without enough requests, cards are rendered without breakdown rather than partially
	if !s.githubRateLimiter.AllowN(time.Now(), requestsToMake) {
		log.WithField("requestsToMake", requestsToMake).Warning("not enought requests in rate limiter to enrich repositories")
		return repositories
	}

	return s.EnrichRepositories(ctx, repositories)
}

func toRepository(r *github.Repository) model.Repository {
	repo := model.Repository{
		ID:          strconv.FormatInt(r.GetID(), 10),
		Name:        r.GetName(),
		HTMLURL:     r.GetHTMLURL(),
		Description: r.Description,
		Language:    r.Language,
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		OpenIssues:  r.GetOpenIssuesCount(),
		Owner:       r.GetOwner().GetLogin(),
		CreatedAt:   r.GetCreatedAt().Time,
		PushedAt:    r.GetPushedAt().Time,
		UpdatedAt:   r.GetUpdatedAt().Time,
	}

	if homepage := r.GetHomepage(); homepage != "" {
		repo.LaunchURL = &homepage
	}

	if repo.Owner == "" {
		repo.Owner = r.GetOwner().GetName()
	}

	return repo
}

// EnrichRepositories fetches languages and readme of every repository in parallel
// a failed request leaves an empty language map or no readme for that repository only
func (s githubService) EnrichRepositories(ctx context.Context, repos []model.Repository) []model.Repository {
	swg := sizedwaitgroup.New(s.config.Tasks.MaxParallelTasksAllowed)

	// collect results in a channel and assign them once all tasks are finished
	results := make(chan model.RepositoryEnrichment, len(repos))

	for _, r := range repos {
		swg.Add()
		go func(r model.Repository) {
			if err := s.FetchEnrichmentForSingleRepository(ctx, r, &swg, results); err != nil {
				log.WithError(err).WithField("repository", r.Name).Debug("repository enrichment incomplete")
			}
		}(r)
	}

	log.Debug("waiting for all threads for enriching repositories to be finished")
	swg.Wait()
	log.Debug("all threads for enriching repositories finished")

	close(results)

	enrichments := make(map[string]model.RepositoryEnrichment, len(repos))
	for result := range results {
		enrichments[result.RepositoryID] = result
	}

	enriched := make([]model.Repository, len(repos))
	copy(enriched, repos)

	for i := range enriched {
		if result, found := enrichments[enriched[i].ID]; found {
			enriched[i].Languages = result.Languages
			enriched[i].Readme = result.Readme
		} else {
			enriched[i].Languages = map[string]int{}
		}
	}

	return enriched
}

// FetchEnrichmentForSingleRepository always sends one result to the channel, even on failure
// the returned error is the first failure, for logging only
// note: the rate limit is checked by the caller
func (s githubService) FetchEnrichmentForSingleRepository(ctx context.Context, r model.Repository, swg *sizedwaitgroup.SizedWaitGroup, ch chan<- model.RepositoryEnrichment) error {
	defer swg.Done()

	var firstErr error
	result := model.RepositoryEnrichment{
		RepositoryID: r.ID,
		Languages:    map[string]int{},
	}

	// repositories without most used language have no languages at all, save the request
	if r.Language != nil {
		languages, _, err := s.ownerClient.Repositories.ListLanguages(ctx, r.Owner, r.Name)
		if err != nil {
			firstErr = s.HandleRequestErrors(err)
		} else if languages != nil {
			result.Languages = languages
		}
	}

	readme, _, err := s.ownerClient.Repositories.GetReadme(ctx, r.Owner, r.Name, nil)
	if err != nil {
		if firstErr == nil {
			firstErr = s.HandleRequestErrors(err)
		}
	} else if content, err := readme.GetContent(); err == nil && content != "" {
		result.Readme = &content
	}

	ch <- result
	return firstErr
}

// HandleRequestErrors manage errors including github rate limit errors at the same location
// If error is a rate limit error, this function will update the local rate limiter to consume all available requests
// this can help us to keep the local rate limiter up to date
func (s githubService) HandleRequestErrors(err error) error {
	if _, ok := err.(*github.RateLimitError); ok {
		if !s.githubRateLimiter.AllowN(time.Now(), s.githubRateLimiter.Burst()) {
			return fmt.Errorf("RATE_LIMITER_ERROR")
		}

		log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
		return fmt.Errorf("RATE_LIMIT_REACHED")
	}

	if errResponse, ok := err.(*github.ErrorResponse); ok && errResponse.Response != nil && errResponse.Response.StatusCode == 404 {
		return fmt.Errorf("NOT_FOUND")
	}

	log.WithError(err).Debug("error catched when fetching data from github")
	return fmt.Errorf("FETCH_ERROR")
}
