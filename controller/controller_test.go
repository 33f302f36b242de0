package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v66/github"
	"github.com/portfolio-site/showcase/config"
	"github.com/portfolio-site/showcase/icon"
	"github.com/portfolio-site/showcase/model"
	"github.com/portfolio-site/showcase/popup"
	"github.com/portfolio-site/showcase/session"
	"github.com/remeh/sizedwaitgroup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGithubService struct {
	repos   []model.Repository
	starred model.StarredList
	fetches int32
}

func (f *fakeGithubService) FetchRepositories(_ context.Context) []model.Repository {
	atomic.AddInt32(&f.fetches, 1)
	return f.repos
}

func (f *fakeGithubService) EnrichRepositories(_ context.Context, repos []model.Repository) []model.Repository {
	return repos
}

func (f *fakeGithubService) FetchEnrichmentForSingleRepository(_ context.Context, _ model.Repository, swg *sizedwaitgroup.SizedWaitGroup, _ chan<- model.RepositoryEnrichment) error {
	swg.Done()
	return nil
}

func (f *fakeGithubService) CheckAuthentication(_ context.Context, token string) model.AuthStatus {
	if token == "" {
		return model.AuthStatus{}
	}
	return model.AuthStatus{Authenticated: true, Username: "visitor"}
}

func (f *fakeGithubService) FetchStarredRepositories(_ context.Context, token string) model.StarredList {
	if token == "" {
		return model.StarredList{Repos: []model.StarredRepository{}}
	}
	return f.starred
}

func (f *fakeGithubService) HandleRequestErrors(err error) error {
	return err
}

// goOnlySource only knows an icon for Go, served by the icon server of the test
type goOnlySource struct {
	baseURL string
}

func (s goOnlySource) CandidateURLs(language string) []string {
	if language != "Go" {
		return nil
	}
	return []string{s.baseURL + "/go.svg"}
}

type testServer struct {
	router  *gin.Engine
	github  *fakeGithubService
	cookies []*http.Cookie
	iconURL string
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)

	iconServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/go.svg" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(iconServer.Close)

	cfg := config.GetDefault()
	cfg.Github.Username = "owner"

	fake := &fakeGithubService{
		repos: []model.Repository{
			{
				ID: "1", Name: "api", Language: github.String("Go"),
				Description: github.String("backend"),
				Languages:   map[string]int{"Go": 75, "Shell": 25},
				Stars:       3,
				LaunchURL:   github.String("https://api.example.com"),
			},
			{
				ID: "2", Name: "web", Language: github.String("TypeScript"),
				Languages: map[string]int{"TypeScript": 100},
				Stars:     10,
			},
		},
		starred: model.StarredList{Authed: true, Repos: []model.StarredRepository{{Name: "api"}}},
	}

	resolver := icon.NewResolver(*cfg, goOnlySource{baseURL: iconServer.URL}, iconServer.Client())

	manager, err := session.NewManager(*cfg, fake, resolver)
	require.NoError(t, err)
	t.Cleanup(manager.Close)

	return &testServer{
		router:  SetupRouter(*cfg, fake, resolver, manager),
		github:  fake,
		iconURL: iconServer.URL + "/go.svg",
	}
}

// do sends the request with the cookies of previous responses, like a browser would
func (s *testServer) do(t *testing.T, method string, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, cookie := range s.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "portfolio_session" {
			s.setCookie(cookie)
		}
	}

	return rec
}

// open loads the grid page, which creates the browsing session
func (s *testServer) open(t *testing.T) {
	rec := s.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func (s *testServer) fetches() int32 {
	return atomic.LoadInt32(&s.github.fetches)
}

func (s *testServer) setCookie(cookie *http.Cookie) {
	for i, c := range s.cookies {
		if c.Name == cookie.Name {
			s.cookies[i] = cookie
			return
		}
	}

	s.cookies = append(s.cookies, cookie)
}

func (s *testServer) cookiesNamed(name string) []*http.Cookie {
	found := make([]*http.Cookie, 0)
	for _, c := range s.cookies {
		if c.Name == name {
			found = append(found, c)
		}
	}
	return found
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), target))
}

func TestIndexPage(t *testing.T) {
	server := newTestServer(t)

	rec := server.do(t, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Api")
	assert.Contains(t, rec.Body.String(), "Web")
	assert.Contains(t, rec.Body.String(), server.iconURL)
	require.Len(t, server.cookies, 1)
	assert.True(t, server.cookies[0].HttpOnly)

	rec = server.do(t, http.MethodGet, "/?language=TypeScript&sort=stars", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "data-id=\"1\"")
	assert.Contains(t, rec.Body.String(), "data-id=\"2\"")

	// invalid filters are ignored on page loads
	rec = server.do(t, http.MethodGet, "/?sort=random", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetRepositories(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		expectedCode  int
		expectedNames []string
		expectedError string
	}{
		{name: "Default filters sort by activity", query: "", expectedCode: http.StatusOK, expectedNames: []string{"api", "web"}},
		{name: "Sort by stars", query: "?sort=stars", expectedCode: http.StatusOK, expectedNames: []string{"web", "api"}},
		{name: "Filter by language", query: "?language=Go", expectedCode: http.StatusOK, expectedNames: []string{"api"}},
		{name: "Invalid sort key", query: "?sort=random", expectedCode: http.StatusBadRequest, expectedError: "INVALID_SORT_KEY"},
		{name: "Unknown language", query: "?language=Cobol", expectedCode: http.StatusBadRequest, expectedError: "UNKNOWN_LANGUAGE"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := newTestServer(t)
			server.open(t)

			rec := server.do(t, http.MethodGet, "/api/repos"+test.query, nil)
			require.Equal(t, test.expectedCode, rec.Code)

			if test.expectedError != "" {
				var apiError model.APIError
				decode(t, rec, &apiError)
				assert.Equal(t, test.expectedError, apiError.Code)
				return
			}

			var response repositoriesResponse
			decode(t, rec, &response)

			names := make([]string, 0, len(response.Repos))
			for _, card := range response.Repos {
				names = append(names, card.Name)
			}

			assert.Equal(t, test.expectedNames, names)
			assert.Equal(t, []string{"All", "Go", "TypeScript"}, response.Languages)
		})
	}
}

func TestRepositoryCards(t *testing.T) {
	server := newTestServer(t)
	server.open(t)

	rec := server.do(t, http.MethodGet, "/api/repos?language=Go", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var response repositoriesResponse
	decode(t, rec, &response)
	require.Len(t, response.Repos, 1)

	card := response.Repos[0]
	assert.Equal(t, "Go", card.DisplayLanguage)
	assert.Equal(t, "75.0%", card.DisplayPercent)
	assert.Equal(t, server.iconURL, card.Icon)
	assert.False(t, card.Starred)
}

func TestFiltersPersistInSession(t *testing.T) {
	server := newTestServer(t)
	server.open(t)

	rec := server.do(t, http.MethodPut, "/api/filters", map[string]string{"language": "TypeScript", "sortBy": "stars"})
	require.Equal(t, http.StatusOK, rec.Code)

	var filters model.Filters
	decode(t, rec, &filters)
	assert.Equal(t, model.Filters{Language: "TypeScript", SortBy: model.SortByStars}, filters)

	rec = server.do(t, http.MethodGet, "/api/repos", nil)

	var response repositoriesResponse
	decode(t, rec, &response)
	assert.Equal(t, filters, response.Filters)
	require.Len(t, response.Repos, 1)
	assert.Equal(t, "web", response.Repos[0].Name)

	rec = server.do(t, http.MethodPut, "/api/filters", map[string]string{"language": "Cobol"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = server.do(t, http.MethodGet, "/api/repos", nil)
	decode(t, rec, &response)
	assert.Equal(t, filters, response.Filters)
}

func TestGetLanguagesAndIcons(t *testing.T) {
	server := newTestServer(t)
	server.open(t)

	rec := server.do(t, http.MethodGet, "/api/languages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Languages []model.LanguageOption `json:"languages"`
		Sort      []model.SortOption     `json:"sort"`
	}
	decode(t, rec, &response)

	require.Len(t, response.Languages, 3)
	assert.True(t, response.Languages[0].Selected)
	assert.Equal(t, server.iconURL, response.Languages[1].Icon)
	assert.Empty(t, response.Languages[2].Icon)
	assert.Len(t, response.Sort, 4)

	var iconResponse struct {
		Language string  `json:"language"`
		URL      *string `json:"url"`
		Checked  bool    `json:"checked"`
	}

	rec = server.do(t, http.MethodGet, "/api/icons/Go", nil)
	decode(t, rec, &iconResponse)
	require.NotNil(t, iconResponse.URL)
	assert.Equal(t, server.iconURL, *iconResponse.URL)
	assert.True(t, iconResponse.Checked)

	rec = server.do(t, http.MethodGet, "/api/icons/TypeScript", nil)
	decode(t, rec, &iconResponse)
	assert.Nil(t, iconResponse.URL)
	assert.True(t, iconResponse.Checked)

	rec = server.do(t, http.MethodGet, "/api/icons/Cobol", nil)
	decode(t, rec, &iconResponse)
	assert.Nil(t, iconResponse.URL)
	assert.False(t, iconResponse.Checked)
}

func TestAuthEndpoints(t *testing.T) {
	server := newTestServer(t)

	rec := server.do(t, http.MethodGet, "/api/github/is_authenticated", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())

	server.setCookie(&http.Cookie{Name: session.TokenCookieName, Value: "visitor-token"})

	rec = server.do(t, http.MethodGet, "/api/github/is_authenticated", nil)
	assert.JSONEq(t, `{"authenticated":true,"username":"visitor"}`, rec.Body.String())

	rec = server.do(t, http.MethodGet, "/api/github/starred-list", nil)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"authed":true,"repos":[{"name":"api"}]}`, rec.Body.String())

	rec = server.do(t, http.MethodPost, "/api/github/logout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// token routes never mount a session
	assert.Empty(t, server.cookiesNamed("portfolio_session"))
	assert.Equal(t, int32(0), server.fetches())
}

func TestAPIRequiresPageLoad(t *testing.T) {
	server := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{method: http.MethodGet, path: "/api/repos"},
		{method: http.MethodGet, path: "/api/languages"},
		{method: http.MethodPost, path: "/api/stars/refresh"},
		{method: http.MethodGet, path: "/api/ui/popup"},
		{method: http.MethodGet, path: "/repos/api/launch"},
	}

	for _, p := range paths {
		rec := server.do(t, p.method, p.path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, p.path)

		var apiError model.APIError
		decode(t, rec, &apiError)
		assert.Equal(t, "SESSION_NOT_FOUND", apiError.Code, p.path)
	}

	assert.Equal(t, int32(0), server.fetches())

	server.open(t)
	assert.Equal(t, int32(1), server.fetches())

	rec := server.do(t, http.MethodGet, "/api/repos", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), server.fetches())
}

func TestLogout(t *testing.T) {
	server := newTestServer(t)
	server.open(t)

	rec := server.do(t, http.MethodPost, "/api/github/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "no-store, no-cache, must-revalidate, proxy-revalidate", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	assert.Equal(t, "0", rec.Header().Get("Expires"))

	var tokenCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.TokenCookieName {
			tokenCookie = cookie
		}
	}

	require.NotNil(t, tokenCookie)
	assert.Empty(t, tokenCookie.Value)
	assert.Equal(t, "/", tokenCookie.Path)
	assert.True(t, tokenCookie.MaxAge < 0)

	// the session built with the token is gone, the next page load starts over
	rec = server.do(t, http.MethodGet, "/api/repos", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	server.open(t)
	assert.Equal(t, int32(2), server.fetches())
}

func TestRefreshStars(t *testing.T) {
	server := newTestServer(t)
	server.open(t)

	rec := server.do(t, http.MethodPost, "/api/stars/refresh", nil)
	assert.JSONEq(t, `{"loaded":true,"starred":[],"starCounts":{"api":3,"web":10}}`, rec.Body.String())

	server.setCookie(&http.Cookie{Name: session.TokenCookieName, Value: "visitor-token"})

	rec = server.do(t, http.MethodPost, "/api/stars/refresh", nil)
	assert.JSONEq(t, `{"loaded":true,"starred":["api"],"starCounts":{"api":3,"web":10}}`, rec.Body.String())

	rec = server.do(t, http.MethodGet, "/api/repos", nil)

	var response repositoriesResponse
	decode(t, rec, &response)
	for _, card := range response.Repos {
		assert.Equal(t, card.Name == "api", card.Starred, card.Name)
	}
}

func TestHoverPreview(t *testing.T) {
	server := newTestServer(t)
	server.open(t)

	hover := gin.H{
		"repoId":    "1",
		"target":    popup.Rect{Top: 90, Left: 50, Width: 200, Height: 100},
		"container": popup.Rect{Top: 100, Left: 0, Width: 800, Height: 400},
	}

	rec := server.do(t, http.MethodPost, "/api/ui/hover", hover)
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot popup.Snapshot
	decode(t, rec, &snapshot)
	assert.Equal(t, "hovering", snapshot.State)
	assert.True(t, snapshot.Visible)
	require.NotNil(t, snapshot.Position)
	assert.GreaterOrEqual(t, snapshot.Position.Top, 110.0)
	assert.Equal(t, 34.0, snapshot.Position.Left)
	require.NotNil(t, snapshot.Repo)
	assert.Equal(t, "api", snapshot.Repo.Name)

	rec = server.do(t, http.MethodGet, "/api/ui/popup", nil)
	decode(t, rec, &snapshot)
	assert.True(t, snapshot.Visible)

	rec = server.do(t, http.MethodPost, "/api/ui/leave", nil)
	snapshot = popup.Snapshot{}
	decode(t, rec, &snapshot)
	assert.Equal(t, "idle", snapshot.State)
	assert.False(t, snapshot.Visible)
	assert.Nil(t, snapshot.Repo)

	hover["repoId"] = "404"
	rec = server.do(t, http.MethodPost, "/api/ui/hover", hover)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = server.do(t, http.MethodPost, "/api/ui/hover", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScrollHidesPreview(t *testing.T) {
	server := newTestServer(t)
	server.open(t)

	server.do(t, http.MethodPost, "/api/ui/hover", gin.H{"repoId": "2"})

	rec := server.do(t, http.MethodPost, "/api/ui/scroll", nil)

	var snapshot popup.Snapshot
	decode(t, rec, &snapshot)
	assert.True(t, snapshot.Scrolling)
	assert.False(t, snapshot.Visible)
	assert.Equal(t, "idle", snapshot.State)
}

func TestLanguageMessage(t *testing.T) {
	server := newTestServer(t)
	server.open(t)

	// not hovered, the overlay stays closed
	rec := server.do(t, http.MethodPost, "/api/ui/message", gin.H{"repoId": "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot popup.Snapshot
	decode(t, rec, &snapshot)
	assert.Nil(t, snapshot.Message)

	server.do(t, http.MethodPost, "/api/ui/hover", gin.H{"repoId": "1"})

	rec = server.do(t, http.MethodPost, "/api/ui/message", gin.H{"repoId": "1"})
	decode(t, rec, &snapshot)
	require.NotNil(t, snapshot.Message)
	assert.Equal(t, "api", snapshot.Message.RepoName)
	require.Len(t, snapshot.Message.Languages, 2)
	assert.Equal(t, "Go", snapshot.Message.Languages[0].Name)
	assert.Equal(t, "75.0%", snapshot.Message.Languages[0].Percent)
	assert.True(t, snapshot.Message.Languages[0].Selectable)
	assert.Equal(t, "Shell", snapshot.Message.Languages[1].Name)
	assert.False(t, snapshot.Message.Languages[1].Selectable)

	rec = server.do(t, http.MethodDelete, "/api/ui/message", nil)
	snapshot = popup.Snapshot{}
	decode(t, rec, &snapshot)
	assert.Nil(t, snapshot.Message)
	assert.Equal(t, "hovering", snapshot.State)

	rec = server.do(t, http.MethodPost, "/api/ui/message/select", gin.H{"language": "Go"})
	require.Equal(t, http.StatusOK, rec.Code)

	var filters model.Filters
	decode(t, rec, &filters)
	assert.Equal(t, "Go", filters.Language)

	rec = server.do(t, http.MethodGet, "/api/ui/popup", nil)
	snapshot = popup.Snapshot{}
	decode(t, rec, &snapshot)
	assert.Equal(t, "idle", snapshot.State)

	// Shell only appears in byte maps, it is not part of the vocabulary
	rec = server.do(t, http.MethodPost, "/api/ui/message/select", gin.H{"language": "Shell"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var apiError model.APIError
	decode(t, rec, &apiError)
	assert.Equal(t, "UNKNOWN_LANGUAGE", apiError.Code)
	assert.Equal(t, "language is not the primary language of any repository", apiError.Message)
}

func TestLaunchAndSupport(t *testing.T) {
	server := newTestServer(t)
	server.open(t)

	rec := server.do(t, http.MethodGet, "/repos/api/launch", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://api.example.com", rec.Header().Get("Location"))

	rec = server.do(t, http.MethodGet, "/repos/web/launch", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/support", rec.Header().Get("Location"))

	rec = server.do(t, http.MethodGet, "/repos/missing/launch", nil)
	assert.Equal(t, "/support", rec.Header().Get("Location"))

	rec = server.do(t, http.MethodGet, "/support", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "owner")
}
