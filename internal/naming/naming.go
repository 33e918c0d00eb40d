package naming

import (
	"net/url"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FromURL derives the original name recorded for an image imported by URL:
// the basename of the URL path. Relative references resolve against a fixed
// base so bare paths like "a/b.png" behave the same as full URLs.
func FromURL(rawURL string) string {
	return path.Base(urlPath(rawURL))
}

// PathFromURL derives the original name recorded for batch entries that keep
// the full URL path, such as objects imported from bucket storage where the
// bucket and key distinguish otherwise identical basenames.
func PathFromURL(rawURL string) string {
	return urlPath(rawURL)
}

func urlPath(rawURL string) string {
	base, err := url.Parse("https://base.invalid")
	if err != nil {
		return rawURL
	}
	ref, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}
	resolved := base.ResolveReference(ref)
	if resolved.Path == "" {
		return "/"
	}
	return resolved.Path
}

// Ext returns the filename extension, including the dot, of an original name.
func Ext(name string) string {
	return path.Ext(name)
}

// DisplayName renders an original name as a human-facing title: extension
// stripped, separators collapsed to spaces, title-cased.
func DisplayName(originalName string) string {
	if originalName == "" {
		return "Untitled Image"
	}
	base := path.Base(originalName)
	base = strings.TrimSuffix(base, path.Ext(base))
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Untitled Image"
	}
	return cases.Title(language.Und).String(title)
}
