package render

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"

	"github.com/devilmonastery/projectboard/internal/pkg/textutil"
)

// HashtagSearchPath is the page hashtag links point at
const HashtagSearchPath = "/articles/search-hashtag"

// policy is shared; bluemonday policies are safe for concurrent use once built.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	// Links to other sites open in a new tab and get rel="noopener".
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Markdown converts markdown text to safe HTML for use in templates
func Markdown(markdown string) template.HTML {
	unsafe := blackfriday.Run([]byte(markdown))
	return template.HTML(policy.SanitizeBytes(unsafe))
}

// ArticleHTML renders article content as Markdown and turns its hashtags
// into links to the hashtag search page. Linking runs after sanitising, so
// the anchors it adds are the only markup not vetted by the policy.
func ArticleHTML(content string) template.HTML {
	return template.HTML(textutil.LinkHashtags(string(Markdown(content)), HashtagSearchPath))
}
