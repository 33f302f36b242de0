package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/showcase/config"
	"github.com/portfolio-site/showcase/icon"
	"github.com/portfolio-site/showcase/model"
	"github.com/portfolio-site/showcase/session"
)

type APIController interface {
	GetRepositories(c *gin.Context)
	UpdateFilters(c *gin.Context)
	GetLanguages(c *gin.Context)
	GetIcon(c *gin.Context)
}

type apiController struct {
	icons  *icon.Resolver
	config config.Config
}

func NewAPIController(config config.Config, icons *icon.Resolver) APIController {
	return apiController{
		icons:  icons,
		config: config,
	}
}

type repositoriesResponse struct {
	Filters   model.Filters          `json:"filters"`
	Languages []string               `json:"languages"`
	Repos     []model.RepositoryCard `json:"repos"`
}

// GetRepositories returns the visible cards, the query may update the filters first
func (s apiController) GetRepositories(c *gin.Context) {
	var filterQuery model.FilterQuery
	if err := c.ShouldBindQuery(&filterQuery); err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError(errInvalidRequest))
		return
	}

	view := session.FromContext(c).View()

	if !filterQuery.IsEmpty() {
		if _, err := view.ApplyQuery(filterQuery); err != nil {
			c.JSON(http.StatusBadRequest, model.NewAPIError(err))
			return
		}
	}

	c.JSON(http.StatusOK, repositoriesResponse{
		Filters:   view.Filters(),
		Languages: view.Store().Languages(),
		Repos:     buildCards(view, s.icons),
	})
}

func (s apiController) UpdateFilters(c *gin.Context) {
	var filterQuery model.FilterQuery
	if err := c.ShouldBindJSON(&filterQuery); err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError(errInvalidRequest))
		return
	}

	view := session.FromContext(c).View()

	filters, err := view.ApplyQuery(filterQuery)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError(err))
		return
	}

	c.JSON(http.StatusOK, filters)
}

func (s apiController) GetLanguages(c *gin.Context) {
	view := session.FromContext(c).View()

	c.JSON(http.StatusOK, gin.H{
		"languages": buildLanguageOptions(view, s.icons),
		"sort":      model.SortOptions(view.Filters().SortBy),
	})
}

// GetIcon reads the icon cache only, unknown languages are reported as not checked
func (s apiController) GetIcon(c *gin.Context) {
	language := c.Param("language")
	iconURL, checked := s.icons.Lookup(language)

	response := gin.H{
		"language": language,
		"url":      nil,
		"checked":  checked,
	}

	if iconURL != "" {
		response["url"] = iconURL
	}

	c.JSON(http.StatusOK, response)
}
