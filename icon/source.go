package icon

import (
	"net/url"
	"strings"

	"github.com/portfolio-site/showcase/config"
)

// Source builds the candidate icon urls of a language, most preferred first
// it never performs network calls
type Source interface {
	CandidateURLs(language string) []string
}

// DefaultSource serves devicon svg files first and falls back to simple-icons
type DefaultSource struct {
	DeviconBaseURL     string
	SimpleIconsBaseURL string
}

func NewDefaultSource(cfg config.IconsConfig) DefaultSource {
	return DefaultSource{
		DeviconBaseURL:     strings.TrimSuffix(cfg.DeviconBaseURL, "/"),
		SimpleIconsBaseURL: strings.TrimSuffix(cfg.SimpleIconsBaseURL, "/"),
	}
}

// slugs lists the languages whose icon name differs from the lowercase language name
var slugs = map[string]string{
	"c++":              "cplusplus",
	"c#":               "csharp",
	"f#":               "fsharp",
	"html":             "html5",
	"css":              "css3",
	"shell":            "bash",
	"jupyter notebook": "jupyter",
	"vue":              "vuejs",
	"objective-c":      "objectivec",
	"dockerfile":       "docker",
	"hcl":              "terraform",
	"scss":             "sass",
	"vim script":       "vim",
}

// Slug normalizes a github language name to an icon name
func Slug(language string) string {
	name := strings.ToLower(strings.TrimSpace(language))

	if slug, found := slugs[name]; found {
		return slug
	}

	return strings.NewReplacer(" ", "", "+", "plus", "#", "sharp").Replace(name)
}

func (s DefaultSource) CandidateURLs(language string) []string {
	slug := Slug(language)
	if slug == "" {
		return []string{}
	}

	escaped := url.PathEscape(slug)
	candidates := make([]string, 0, 3)

	if s.DeviconBaseURL != "" {
		candidates = append(candidates,
			s.DeviconBaseURL+"/"+escaped+"/"+escaped+"-original.svg",
			s.DeviconBaseURL+"/"+escaped+"/"+escaped+"-plain.svg",
		)
	}

	if s.SimpleIconsBaseURL != "" {
		candidates = append(candidates, s.SimpleIconsBaseURL+"/"+escaped)
	}

	return candidates
}
