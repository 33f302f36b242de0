package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/showcase/model"
	"github.com/portfolio-site/showcase/popup"
	"github.com/portfolio-site/showcase/session"
)

// UIController drives the hover preview and the language overlay of the grid
type UIController interface {
	Hover(c *gin.Context)
	Leave(c *gin.Context)
	Scroll(c *gin.Context)
	GetPopup(c *gin.Context)
	OpenMessage(c *gin.Context)
	CloseMessage(c *gin.Context)
	SelectMessageLanguage(c *gin.Context)
}

type uiController struct{}

func NewUIController() UIController {
	return uiController{}
}

type hoverRequest struct {
	RepoID    string     `json:"repoId" binding:"required"`
	Target    popup.Rect `json:"target"`
	Container popup.Rect `json:"container"`
}

type messageRequest struct {
	RepoID string `json:"repoId" binding:"required"`
}

type selectLanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

func (s uiController) Hover(c *gin.Context) {
	var request hoverRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError(errInvalidRequest))
		return
	}

	sess := session.FromContext(c)

	repo, found := sess.View().Store().Find(request.RepoID)
	if !found {
		c.JSON(http.StatusNotFound, model.NewAPIError(errRepositoryNotFound))
		return
	}

	sess.Tracker().Enter(*repo, request.Target, request.Container)
	c.JSON(http.StatusOK, sess.Tracker().Snapshot())
}

func (s uiController) Leave(c *gin.Context) {
	tracker := session.FromContext(c).Tracker()
	tracker.Leave()

	c.JSON(http.StatusOK, tracker.Snapshot())
}

func (s uiController) Scroll(c *gin.Context) {
	tracker := session.FromContext(c).Tracker()
	tracker.Scroll()

	c.JSON(http.StatusOK, tracker.Snapshot())
}

func (s uiController) GetPopup(c *gin.Context) {
	c.JSON(http.StatusOK, session.FromContext(c).Tracker().Snapshot())
}

// OpenMessage opens the language breakdown, ignored when the card is not hovered
func (s uiController) OpenMessage(c *gin.Context) {
	var request messageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError(errInvalidRequest))
		return
	}

	sess := session.FromContext(c)

	repo, found := sess.View().Store().Find(request.RepoID)
	if !found {
		c.JSON(http.StatusNotFound, model.NewAPIError(errRepositoryNotFound))
		return
	}

	sess.Tracker().OpenMessage(*repo, sess.View().Store().HasLanguage)
	c.JSON(http.StatusOK, sess.Tracker().Snapshot())
}

func (s uiController) CloseMessage(c *gin.Context) {
	tracker := session.FromContext(c).Tracker()
	tracker.CloseMessage()

	c.JSON(http.StatusOK, tracker.Snapshot())
}

// SelectMessageLanguage filters the grid by a language picked in the overlay
func (s uiController) SelectMessageLanguage(c *gin.Context) {
	var request selectLanguageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError(errInvalidRequest))
		return
	}

	sess := session.FromContext(c)
	sess.Tracker().Leave()

	filters := sess.View().Filters()
	filters.Language = request.Language

	if err := sess.View().SetFilters(filters); err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError(err))
		return
	}

	c.JSON(http.StatusOK, sess.View().Filters())
}
