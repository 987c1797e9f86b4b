package render

import (
	"crypto/md5"
	"html/template"
	"maps"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var avatarPalette = []string{
	"avatar-blue", "avatar-green", "avatar-purple", "avatar-pink",
	"avatar-indigo", "avatar-red", "avatar-teal", "avatar-orange",
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"renderMarkdown": Markdown,
		"articleHTML":    ArticleHTML,
		"dict":           dict,
		"add":            func(a, b int) int { return a + b },
		"sub":            func(a, b int) int { return a - b },
		"initials":       initials,
		"avatarColors":   avatarColor,
		"formatTime":     formatTime,
		"isoTime":        func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
		"assetURL":       func(filename string) string { return "/static/" + filename },
		"pageURL":        pageURL,
	}
}

// dict builds a map from alternating keys and values so a component can
// receive several arguments. It returns nil on an odd count or a non-string key.
func dict(values ...any) map[string]any {
	if len(values)%2 != 0 {
		return nil
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil
		}
		m[key] = values[i+1]
	}
	return m
}

// initials returns the first rune of the name, upper-cased. Hangul
// nicknames are common, so this works on runes, not bytes.
func initials(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// avatarColor picks a stable palette class for a user
func avatarColor(name string) string {
	if name == "" {
		return "avatar-gray"
	}
	hash := md5.Sum([]byte(strings.ToLower(name)))
	return avatarPalette[int(hash[0])%len(avatarPalette)]
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

// pageURL keeps the current search parameters and replaces page
func pageURL(path string, query url.Values, page int) string {
	q := maps.Clone(query)
	if q == nil {
		q = url.Values{}
	}
	q.Set("page", strconv.Itoa(page))
	return path + "?" + q.Encode()
}
