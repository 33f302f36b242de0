package controller

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/showcase/config"
	"github.com/portfolio-site/showcase/icon"
	"github.com/portfolio-site/showcase/logger"
	"github.com/portfolio-site/showcase/service"
	"github.com/portfolio-site/showcase/session"
)

// SetupRouter defines all routes of the site
func SetupRouter(cfg config.Config, githubService service.GithubService, icons *icon.Resolver, sessions *session.Manager) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(Templates())

	router.Use(
		gin.Recovery(),
		logger.RequestLogger(),
		cors.New(cors.Config{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders:     []string{"Content-Type, Content-Length, Accept-Encoding, Host, accept, Origin, Cache-Control, X-Requested-With"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
	)

	pageController := NewPageController(cfg, sessions, icons)
	apiController := NewAPIController(cfg, icons)
	authController := NewAuthController(cfg, githubService, sessions)
	uiController := NewUIController()

	router.GET(cfg.API.SupportPath, pageController.Support)

	// page loads are the only routes allowed to create a session and fetch repositories
	site := router.Group("", sessions.Middleware())
	{
		site.GET("/", pageController.Index)
	}

	// token based, no session needed
	github := router.Group("/api/github")
	{
		github.GET("/is_authenticated", authController.IsAuthenticated)
		github.POST("/logout", authController.Logout)
		github.GET("/starred-list", authController.GetStarredList)
	}

	// session must have been created by a page load
	api := router.Group("", sessions.RequireSession())
	{
		api.GET("/repos/:name/launch", pageController.Launch)

		api.GET("/api/repos", apiController.GetRepositories)
		api.PUT("/api/filters", apiController.UpdateFilters)
		api.GET("/api/languages", apiController.GetLanguages)
		api.GET("/api/icons/:language", apiController.GetIcon)
		api.POST("/api/stars/refresh", authController.RefreshStars)

		api.POST("/api/ui/hover", uiController.Hover)
		api.POST("/api/ui/leave", uiController.Leave)
		api.POST("/api/ui/scroll", uiController.Scroll)
		api.GET("/api/ui/popup", uiController.GetPopup)
		api.POST("/api/ui/message", uiController.OpenMessage)
		api.DELETE("/api/ui/message", uiController.CloseMessage)
		api.POST("/api/ui/message/select", uiController.SelectMessageLanguage)
	}

	return router
}
