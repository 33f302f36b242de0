package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/portfolio-site/showcase/config"
	"github.com/portfolio-site/showcase/icon"
	"github.com/portfolio-site/showcase/model"
	"github.com/portfolio-site/showcase/popup"
	"github.com/portfolio-site/showcase/service"
	"github.com/portfolio-site/showcase/store"
	log "github.com/sirupsen/logrus"
)

const (
	contextKey = "session"
	createdKey = "sessionCreated"

	// TokenCookieName holds the visitor github token set by the login flow
	TokenCookieName = "gh_token"
)

// Manager creates sessions and keeps them while they are used
// sessions idle for longer than the configured ttl are evicted and torn down
type Manager struct {
	config        config.Config
	githubService service.GithubService
	icons         *icon.Resolver
	sessions      *ristretto.Cache[string, *Session]
}

func NewManager(cfg config.Config, githubService service.GithubService, icons *icon.Resolver) (*Manager, error) {
	maxSessions := cfg.Sessions.MaxSessions
	if maxSessions < 1 {
		maxSessions = 1
	}

	sessions, err := ristretto.NewCache(&ristretto.Config[string, *Session]{
		NumCounters: maxSessions * 10,
		MaxCost:     maxSessions,
		BufferItems: 64,
		// one session costs one unit, MaxCost is a session count
		IgnoreInternalCost: true,
		OnEvict: func(item *ristretto.Item[*Session]) {
			if item.Value != nil {
				log.WithField("session", item.Value.ID).Debug("session evicted")
				item.Value.Close()
			}
		},
	})

	if err != nil {
		return nil, err
	}

	return &Manager{
		config:        cfg,
		githubService: githubService,
		icons:         icons,
		sessions:      sessions,
	}, nil
}

// Get returns a live session and extends its idle ttl
func (m *Manager) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}

	sess, found := m.sessions.Get(id)
	if !found || sess == nil {
		return nil, false
	}

	m.sessions.SetWithTTL(id, sess, 1, m.config.Sessions.IdleTTL())
	return sess, true
}

// Create builds and mounts a new session
func (m *Manager) Create(ctx context.Context, token string) *Session {
	sess := &Session{ID: uuid.NewString()}
	m.Mount(ctx, sess, token)

	if !m.sessions.SetWithTTL(sess.ID, sess, 1, m.config.Sessions.IdleTTL()) {
		log.WithField("session", sess.ID).Warning("session dropped by the cache, it will be recreated on next request")
	}

	m.sessions.Wait()
	return sess
}

// Mount is a page load: the repository list is fetched again and the state is rebuilt
// in dependency order, repositories, icons of their vocabulary, stars, then hover state
func (m *Manager) Mount(ctx context.Context, sess *Session, token string) {
	repoStore := store.NewRepoStore(m.githubService.FetchRepositories(ctx))
	view := store.NewView(repoStore)

	m.icons.LoadIconsForLanguages(ctx, repoStore.Languages())

	sess.mount(view, popup.NewTracker(m.config.UI.ScrollQuietPeriod()))
	m.RefreshStars(ctx, sess, token)

	log.WithFields(log.Fields{
		"session":      sess.ID,
		"repositories": len(repoStore.Repos()),
		"languages":    len(repoStore.Languages()) - 1,
	}).Debug("session mounted")
}

// RefreshStars reloads the star map, best effort
func (m *Manager) RefreshStars(ctx context.Context, sess *Session, token string) {
	view := sess.View()
	if view == nil {
		return
	}

	starred := m.githubService.FetchStarredRepositories(ctx, token)
	if !starred.Authed {
		view.MarkStarsLoaded()
		return
	}

	view.SetStarred(starred.Names())
}

// Delete removes a session and tears it down
func (m *Manager) Delete(id string) {
	if sess, found := m.sessions.Get(id); found && sess != nil {
		sess.Close()
	}

	m.sessions.Del(id)
	m.sessions.Wait()
}

// Close evicts every session
func (m *Manager) Close() {
	m.sessions.Clear()
	m.sessions.Close()
}

// Middleware attaches the visitor session to the request, creating one when needed
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(m.config.Sessions.CookieName)

		sess, found := m.Get(id)
		if !found {
			token, _ := c.Cookie(TokenCookieName)
			sess = m.Create(c.Request.Context(), token)
			c.Set(createdKey, true)
		}

		m.setCookie(c, sess.ID)
		c.Set(contextKey, sess)
		c.Next()
	}
}

// RequireSession attaches the session of the cookie and never creates one
// only page loads fetch repositories, other routes answer 404 until the visitor loaded a page
func (m *Manager) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(m.config.Sessions.CookieName)

		sess, found := m.Get(id)
		if !found {
			c.AbortWithStatusJSON(http.StatusNotFound, model.NewAPIError(fmt.Errorf("SESSION_NOT_FOUND")))
			return
		}

		c.Set(contextKey, sess)
		c.Next()
	}
}

// End deletes the session of the cookie and expires the cookie, requests without one are left untouched
func (m *Manager) End(c *gin.Context) {
	id, err := c.Cookie(m.config.Sessions.CookieName)
	if err != nil || id == "" {
		return
	}

	m.Delete(id)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.config.Sessions.CookieName, "", -1, "/", "", false, true)
}

// Remount handles a full page load for the current session
// a session created by this very request is already fresh
func (m *Manager) Remount(c *gin.Context) *Session {
	sess := FromContext(c)
	if c.GetBool(createdKey) {
		return sess
	}

	token, _ := c.Cookie(TokenCookieName)

	m.Mount(c.Request.Context(), sess, token)
	return sess
}

func (m *Manager) setCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.config.Sessions.CookieName, id, int(m.config.Sessions.IdleTTL().Seconds()), "/", "", false, true)
}

// FromContext returns the session attached by the middleware
// a handler registered without the middleware is a wiring mistake and panics
func FromContext(c *gin.Context) *Session {
	value, found := c.Get(contextKey)
	if !found {
		panic("session.FromContext must be used behind session middleware")
	}

	sess, ok := value.(*Session)
	if !ok || sess == nil {
		panic("session.FromContext found an invalid session in context")
	}

	return sess
}
