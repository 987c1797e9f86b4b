package textutil

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// hashtagRegex matches a '#' followed by letters, digits or underscores.
// Letters include any Unicode letter, so #부트 and #日本 are tags; a hyphen
// or other punctuation ends the tag.
var hashtagRegex = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// ExtractHashtags parses hashtags from text content.
// Returns a sorted list of unique tag names without the leading '#'.
// Tags are case-sensitive.
func ExtractHashtags(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	matches := hashtagRegex.FindAllStringSubmatch(text, -1)

	tagMap := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		if len(match) > 1 {
			tagMap[match[1]] = struct{}{}
		}
	}

	tags := make([]string, 0, len(tagMap))
	for tag := range tagMap {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return tags
}

// htmlHashtagRegex finds hashtags in the text of rendered HTML. A tag must
// start the text or follow whitespace so that URL fragments and entities
// such as &#39; are left alone.
var htmlHashtagRegex = regexp.MustCompile(`(^|\s)#([\p{L}\p{N}_]+)`)

// noLinkElements hold text whose hashtags stay plain: links cannot nest and
// code is shown as written.
var noLinkElements = map[string]bool{"a": true, "code": true, "pre": true}

// LinkHashtags rewrites hashtags in sanitized HTML into links to searchURL,
// which receives the tag name as its searchValue query parameter. Text
// inside a, code and pre elements is left unchanged; everything else is
// copied through byte for byte.
func LinkHashtags(htmlText, searchURL string) string {
	if !strings.Contains(htmlText, "#") {
		return htmlText
	}

	var b strings.Builder
	b.Grow(len(htmlText))
	z := html.NewTokenizer(strings.NewReader(htmlText))
	depth := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return b.String()
		}
		// TagName lowercases the token in place, so copy it first.
		raw := string(z.Raw())
		switch tt {
		case html.TextToken:
			if depth == 0 {
				raw = linkText(raw, searchURL)
			}
		case html.StartTagToken:
			if name, _ := z.TagName(); noLinkElements[string(name)] {
				depth++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); noLinkElements[string(name)] && depth > 0 {
				depth--
			}
		}
		b.WriteString(raw)
	}
}

func linkText(text, searchURL string) string {
	if !strings.Contains(text, "#") {
		return text
	}
	return htmlHashtagRegex.ReplaceAllStringFunc(text, func(m string) string {
		sub := htmlHashtagRegex.FindStringSubmatch(m)
		prefix, tag := sub[1], sub[2]
		href := searchURL + "?searchValue=" + url.QueryEscape(tag)
		return prefix + `<a class="hashtag" href="` + html.EscapeString(href) + `">#` + tag + `</a>`
	})
}
