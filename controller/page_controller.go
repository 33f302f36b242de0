package controller

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/showcase/config"
	"github.com/portfolio-site/showcase/icon"
	"github.com/portfolio-site/showcase/model"
	"github.com/portfolio-site/showcase/session"
	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Templates parses the embedded pages, router.SetHTMLTemplate expects the result
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templatesFS, "templates/*.tmpl"))
}

type PageController interface {
	Index(c *gin.Context)
	Launch(c *gin.Context)
	Support(c *gin.Context)
}

type pageController struct {
	sessions *session.Manager
	icons    *icon.Resolver
	config   config.Config
}

func NewPageController(config config.Config, sessions *session.Manager, icons *icon.Resolver) PageController {
	return pageController{
		sessions: sessions,
		icons:    icons,
		config:   config,
	}
}

type indexPage struct {
	Filters     model.Filters
	Languages   []model.LanguageOption
	SortOptions []model.SortOption
	Cards       []model.RepositoryCard
	SupportPath string
}

// Index mounts a fresh repository state for the session and renders the grid
func (s pageController) Index(c *gin.Context) {
	sess := s.sessions.Remount(c)
	view := sess.View()

	var filterQuery model.FilterQuery
	if err := c.ShouldBindQuery(&filterQuery); err == nil && !filterQuery.IsEmpty() {
		if _, err := view.ApplyQuery(filterQuery); err != nil {
			log.WithError(err).Debug("ignoring invalid filters in page query")
		}
	}

	filters := view.Filters()

	c.HTML(http.StatusOK, "index.tmpl", indexPage{
		Filters:     filters,
		Languages:   buildLanguageOptions(view, s.icons),
		SortOptions: model.SortOptions(filters.SortBy),
		Cards:       buildCards(view, s.icons),
		SupportPath: s.config.API.SupportPath,
	})
}

// Launch redirects to the homepage of a repository, or to the support page when it has none
func (s pageController) Launch(c *gin.Context) {
	name := c.Param("name")
	repoStore := session.FromContext(c).View().Store()

	repo, found := repoStore.Find(name)
	if !found {
		repo, found = repoStore.FindByName(name)
	}

	if !found || repo.LaunchURL == nil || *repo.LaunchURL == "" {
		c.Redirect(http.StatusFound, s.config.API.SupportPath)
		return
	}

	c.Redirect(http.StatusFound, *repo.LaunchURL)
}

func (s pageController) Support(c *gin.Context) {
	c.HTML(http.StatusOK, "support.tmpl", gin.H{
		"Owner": s.config.Github.Username,
	})
}
