// Package icon resolves language names to reachable icon urls.
// Results, including misses, are cached for the lifetime of the process.
package icon

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/portfolio-site/showcase/config"
	"github.com/portfolio-site/showcase/model"
	"github.com/remeh/sizedwaitgroup"
	log "github.com/sirupsen/logrus"
)

type Resolver struct {
	source       Source
	httpClient   *http.Client
	probeTimeout time.Duration
	maxParallel  int

	mu       sync.Mutex
	cache    map[string]string // empty value is a negative entry
	inflight map[string]chan struct{}
}

func NewResolver(cfg config.Config, source Source, httpClient *http.Client) *Resolver {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	maxParallel := cfg.Tasks.MaxParallelTasksAllowed
	if maxParallel < 1 {
		maxParallel = 1
	}

	return &Resolver{
		source:       source,
		httpClient:   httpClient,
		probeTimeout: cfg.Icons.ProbeTimeout(),
		maxParallel:  maxParallel,
		cache:        make(map[string]string),
		inflight:     make(map[string]chan struct{}),
	}
}

// GetIcon reads the cache only, "" means unknown or unavailable
func (r *Resolver) GetIcon(language string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cache[language]
}

// Lookup distinguishes a negative entry from a language never checked
func (r *Resolver) Lookup(language string) (iconURL string, checked bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	iconURL, checked = r.cache[language]
	return iconURL, checked
}

// Icons returns the cached url of every given language
func (r *Resolver) Icons(languages []string) map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	icons := make(map[string]string, len(languages))
	for _, l := range languages {
		icons[l] = r.cache[l]
	}

	return icons
}

// LoadIconsForLanguages probes every language not cached yet, in parallel,
// and returns once each of them has an entry
// languages already probed, or being probed by another caller, are not probed again
func (r *Resolver) LoadIconsForLanguages(ctx context.Context, languages []string) {
	toProbe := make([]string, 0, len(languages))
	toWait := make([]chan struct{}, 0)

	r.mu.Lock()
	for _, language := range languages {
		if language == "" || language == model.AllLanguages {
			continue
		}

		if _, cached := r.cache[language]; cached {
			continue
		}

		if ch, found := r.inflight[language]; found {
			toWait = append(toWait, ch)
			continue
		}

		r.inflight[language] = make(chan struct{})
		toProbe = append(toProbe, language)
	}
	r.mu.Unlock()

	if len(toProbe) == 0 && len(toWait) == 0 {
		return
	}

	log.WithFields(log.Fields{
		"languages": toProbe,
		"waiting":   len(toWait),
	}).Debug("loading language icons")

	// probes outlive the request that triggered them, the entries are shared
	probeCtx := context.WithoutCancel(ctx)
	swg := sizedwaitgroup.New(r.maxParallel)

	for _, language := range toProbe {
		swg.Add()
		go func(language string) {
			defer swg.Done()
			r.store(language, r.findFirstWorkingURL(probeCtx, r.source.CandidateURLs(language)))
		}(language)
	}

	swg.Wait()

	for _, ch := range toWait {
		<-ch
	}
}

func (r *Resolver) store(language string, iconURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache[language] = iconURL

	if ch, found := r.inflight[language]; found {
		close(ch)
		delete(r.inflight, language)
	}

	if iconURL == "" {
		log.WithField("language", language).Debug("no icon available for language")
	}
}

// findFirstWorkingURL checks all candidates at once and keeps the first one,
// in candidate order, that answered with a 2xx status
func (r *Resolver) findFirstWorkingURL(ctx context.Context, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	results := make([]bool, len(candidates))
	swg := sizedwaitgroup.New(len(candidates))

	for i, candidate := range candidates {
		swg.Add()
		go func(i int, candidate string) {
			defer swg.Done()
			results[i] = r.exists(ctx, candidate)
		}(i, candidate)
	}

	swg.Wait()

	for i, ok := range results {
		if ok {
			return candidates[i]
		}
	}

	return ""
}

// exists performs a HEAD request, any error or timeout counts as missing
func (r *Resolver) exists(ctx context.Context, iconURL string) bool {
	if iconURL == "" {
		return false
	}

	if r.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.probeTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, iconURL, nil)
	if err != nil {
		return false
	}

	res, err := r.httpClient.Do(req)
	if err != nil {
		log.WithError(err).WithField("url", iconURL).Debug("icon probe failed")
		return false
	}
	defer res.Body.Close()

	return res.StatusCode >= 200 && res.StatusCode < 300
}
