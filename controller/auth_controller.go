package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/showcase/config"
	"github.com/portfolio-site/showcase/service"
	"github.com/portfolio-site/showcase/session"
)

type AuthController interface {
	IsAuthenticated(c *gin.Context)
	Logout(c *gin.Context)
	GetStarredList(c *gin.Context)
	RefreshStars(c *gin.Context)
}

type authController struct {
	githubService service.GithubService
	sessions      *session.Manager
	config        config.Config
}

func NewAuthController(config config.Config, githubService service.GithubService, sessions *session.Manager) AuthController {
	return authController{
		githubService: githubService,
		sessions:      sessions,
		config:        config,
	}
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
}

// IsAuthenticated validates the visitor token cookie, never cached
func (s authController) IsAuthenticated(c *gin.Context) {
	noStore(c)

	token, _ := c.Cookie(session.TokenCookieName)
	c.JSON(http.StatusOK, s.githubService.CheckAuthentication(c.Request.Context(), token))
}

// Logout expires the token cookie, the path must match the one used by the login flow
// the browsing session goes too, its star map was built with the token
func (s authController) Logout(c *gin.Context) {
	c.SetCookie(session.TokenCookieName, "", -1, "/", "", false, true)
	s.sessions.End(c)

	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s authController) GetStarredList(c *gin.Context) {
	noStore(c)

	token, _ := c.Cookie(session.TokenCookieName)
	c.JSON(http.StatusOK, s.githubService.FetchStarredRepositories(c.Request.Context(), token))
}

// RefreshStars reloads the star map of the current session
// star counts come with it so the badges can be refreshed without a page load
func (s authController) RefreshStars(c *gin.Context) {
	noStore(c)

	sess := session.FromContext(c)
	token, _ := c.Cookie(session.TokenCookieName)

	s.sessions.RefreshStars(c.Request.Context(), sess, token)

	view := sess.View()
	starred := make([]string, 0)
	for _, r := range view.Store().Repos() {
		if view.IsStarred(r.Name) {
			starred = append(starred, r.Name)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"loaded":     view.StarsLoaded(),
		"starred":    starred,
		"starCounts": view.Store().StarCounts(),
	})
}
