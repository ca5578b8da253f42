// Package videoid extracts YouTube video ids from ids and URLs.
package videoid

import (
	"net/url"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

	shortsPath = regexp.MustCompile(`/shorts/([a-zA-Z0-9_-]{11})`)
	embedPath  = regexp.MustCompile(`/(?:embed|v)/([a-zA-Z0-9_-]{11})`)

	// Last resort on inputs url.Parse rejects or misreads
	fallbackPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/v/([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
	}
)

// Valid reports whether id is a syntactically valid video id
func Valid(id string) bool {
	return validation.Validate(id, validation.Required, validation.Match(idPattern)) == nil
}

// Extract returns the video id carried by input, or "" if there is none.
// Accepted forms: a bare id, youtu.be/ID, youtube.com/watch?v=ID, /embed/ID, /v/ID
// and /shorts/ID, including the youtube-nocookie.com host.
func Extract(input string) string {
	input = strings.TrimSpace(input)

	if Valid(input) {
		return input
	}

	if id := fromURL(input); id != "" {
		return id
	}

	for _, pattern := range fallbackPatterns {
		if m := pattern.FindStringSubmatch(input); m != nil {
			return m[1]
		}
	}

	return ""
}

func fromURL(input string) string {
	u, err := url.Parse(input)
	if err != nil || u.Host == "" {
		return ""
	}

	if strings.Contains(u.Host, "youtu.be") {
		id := strings.TrimPrefix(u.Path, "/")
		if Valid(id) {
			return id
		}
	}

	if !strings.Contains(u.Host, "youtube.com") && !strings.Contains(u.Host, "youtube-nocookie.com") {
		return ""
	}

	if m := shortsPath.FindStringSubmatch(u.Path); m != nil {
		return m[1]
	}
	if m := embedPath.FindStringSubmatch(u.Path); m != nil {
		return m[1]
	}
	if v := u.Query().Get("v"); Valid(v) {
		return v
	}

	return ""
}
