package render

import (
	"regexp"
	"strings"
)

var (
	soundRE = regexp.MustCompile(`\[sound:(.*?)\]`)
	// Bare image sources only: a src value containing a slash already
	// points somewhere and is left alone, which also makes a second
	// resolver pass a no-op.
	imgSrcRE = regexp.MustCompile(`(?i)(<img\s+[^>]*src=["'])([^"'/]+)(["'][^>]*>)`)
)

// ResolveMedia rewrites bare media references in rendered markup into
// full URLs under baseURL. [sound:name] tags become audio elements and
// path-less <img> sources get prefixed; data URIs and absolute URLs are
// passed through. Safe to call on already-resolved markup.
func ResolveMedia(markup, baseURL string) string {
	if markup == "" {
		return ""
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	markup = soundRE.ReplaceAllStringFunc(markup, func(m string) string {
		name := soundRE.FindStringSubmatch(m)[1]
		return `<audio controls src="` + baseURL + "/" + name + `"></audio>`
	})

	return imgSrcRE.ReplaceAllStringFunc(markup, func(m string) string {
		parts := imgSrcRE.FindStringSubmatch(m)
		name := parts[2]
		if strings.HasPrefix(name, "data:") || strings.HasPrefix(name, "http") {
			return m
		}
		return parts[1] + baseURL + "/" + name + parts[3]
	})
}
