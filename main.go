package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v66/github"
	"github.com/portfolio-site/showcase/config"
	"github.com/portfolio-site/showcase/controller"
	"github.com/portfolio-site/showcase/icon"
	"github.com/portfolio-site/showcase/logger"
	"github.com/portfolio-site/showcase/service"
	"github.com/portfolio-site/showcase/session"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// unauthenticated github quota, used when the real limits cannot be loaded
const defaultGithubRateLimit = 60

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("unable to load configuration, will use default values")

		cfg = config.GetDefault()
		config.ApplyEnvironment(cfg)
	}

	// configure logger
	logger.Setup(*cfg)

	// setup github client
	// we do here and pass the client to Github service to easily improve tests with mock client
	// the owner token is applied by the service, visitor tokens are applied per request
	githubClient := github.NewClient(nil)

	if cfg.Github.BaseURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(cfg.Github.BaseURL, "/") + "/")
		if err != nil {
			log.WithError(err).Error("invalid github base url, will use api.github.com")
		} else {
			githubClient.BaseURL = baseURL
		}
	}

	rateLimiter := setupRateLimiter(*cfg, githubClient)

	// setup services, in dependency order
	githubService := service.NewGithubService(*cfg, githubClient, rateLimiter)

	iconResolver := icon.NewResolver(*cfg, icon.NewDefaultSource(cfg.Icons), &http.Client{})

	sessionManager, err := session.NewManager(*cfg, githubService, iconResolver)
	if err != nil {
		log.WithError(err).Fatal("unable to create session manager")
	}

	// setup server and define all routes
	gin.SetMode(gin.ReleaseMode)
	router := controller.SetupRouter(*cfg, githubService, iconResolver, sessionManager)

	server := &http.Server{
		Addr:    ":" + cfg.API.ListenPort,
		Handler: router,
	}

	// start with configuration
	go func() {
		log.Info("server listening on port " + cfg.API.ListenPort)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("error while starting server")
		}
	}()

	// wait for interrupt signal to gracefully shut down the server with a timeout of 15 seconds.
	// kill default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("SIGINT, SIGTERM received, will shut down server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	} else {
		log.Info("Application stopped gracefully !")
	}

	// stop the preview timers of every remaining session
	sessionManager.Close()
}

// setupRateLimiter seeds the local limiter with the rate limits of the owner token
// consume X tokens according to the number of remaining tokens
// this help us to have a right rate limiter even if external requests are made
func setupRateLimiter(cfg config.Config, githubClient *github.Client) *rate.Limiter {
	client := githubClient
	if cfg.Github.Token != "" {
		log.Debug("will load rate limits with owner authorization token")
		client = githubClient.WithAuthToken(cfg.Github.Token)
	}

	log.Debug("loading current rate limit from github")

	rateLimits, _, err := client.RateLimit.Get(context.Background())
	if err != nil || rateLimits == nil || rateLimits.Core == nil {
		log.WithError(err).Warning("unable to load current github rate limits, will use unauthenticated quota")
		return rate.NewLimiter(rate.Every(time.Hour/defaultGithubRateLimit), defaultGithubRateLimit)
	}

	log.WithFields(log.Fields{
		"totalAvailable":    rateLimits.Core.Limit,
		"remainingRequests": rateLimits.Core.Remaining,
	}).Debug("will setup local rate limiter with rate limits infos from github")

	limit := rateLimits.Core.Limit
	if limit < 1 {
		limit = defaultGithubRateLimit
	}

	rateLimiter := rate.NewLimiter(rate.Every(time.Hour/time.Duration(limit)), limit)

	if used := limit - rateLimits.Core.Remaining; used > 0 && !rateLimiter.AllowN(time.Now(), used) {
		log.Warning("unable to consume already used github requests on local rate limiter")
	}

	return rateLimiter
}
