package textutil

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty string", text: "", want: []string{}},
		{name: "blank string", text: "   ", want: []string{}},
		{name: "bare hash", text: "#", want: []string{}},
		{name: "bare hash with spaces", text: "  #   ", want: []string{}},
		{name: "no hashtags", text: "java", want: []string{}},
		{name: "trailing hash", text: "java#", want: []string{}},
		{name: "hash inside word", text: "ja#va", want: []string{"va"}},
		{name: "single hashtag", text: "#java", want: []string{"java"}},
		{name: "underscore", text: "#java_spring", want: []string{"java_spring"}},
		{name: "hyphen ends tag", text: "#java-spring", want: []string{"java"}},
		{name: "leading underscore", text: "#_java_spring__", want: []string{"_java_spring__"}},
		{name: "leading hyphen", text: "#-java-spring", want: []string{}},
		{name: "adjacent hashtags", text: "#java#spring", want: []string{"java", "spring"}},
		{name: "spaced hashtags", text: "   #java     #spring   ", want: []string{"java", "spring"}},
		{name: "hangul", text: "#java#spring#부트", want: []string{"java", "spring", "부트"}},
		{name: "punctuation separated", text: "#java,#spring;#부트", want: []string{"java", "spring", "부트"}},
		{name: "mixed separators", text: "   #java,? #spring  ...  #부트 ", want: []string{"java", "spring", "부트"}},
		{name: "duplicates", text: "#java#spring#java#부트#java", want: []string{"java", "spring", "부트"}},
		{name: "case sensitive", text: "#Go #go", want: []string{"Go", "go"}},
		{name: "numbers", text: "Version #v1 and #test123", want: []string{"test123", "v1"}},
		{name: "tags inside long text", text: "아주 긴 글~~~~~~#java~~~~~~~#스프링~~~~~~~~", want: []string{"java", "스프링"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractHashtags(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractHashtags(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestLinkHashtagsKeepsMarkup(t *testing.T) {
	in := `<p>Hello <strong>World</strong> &amp; it&#39;s <img src="/a.png" alt="x"/> fine</p>`
	if got := LinkHashtags(in+" #", "/s"); got != in+" #" {
		t.Errorf("LinkHashtags() = %q, want input unchanged", got)
	}
}

func TestLinkHashtags(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		contains    []string
		notContains []string
	}{
		{
			name:     "tag in paragraph",
			html:     "<p>hello #java world</p>",
			contains: []string{`<a class="hashtag" href="/articles/search-hashtag?searchValue=java">#java</a>`},
		},
		{
			name:     "tag at start of element",
			html:     "<p>#부트</p>",
			contains: []string{`searchValue=%EB%B6%80%ED%8A%B8">#부트</a>`},
		},
		{
			name:        "entity is not a tag",
			html:        "<p>it&#39;s fine</p>",
			notContains: []string{"<a"},
		},
		{
			name:        "url fragment is not a tag",
			html:        `<a href="/page#section">link</a>`,
			notContains: []string{"searchValue"},
		},
		{
			name:        "tag that is already a link",
			html:        `<p><a href="https://example.com" rel="nofollow">#java</a></p>`,
			contains:    []string{`<a href="https://example.com" rel="nofollow">#java</a>`},
			notContains: []string{"hashtag"},
		},
		{
			name:        "inline code",
			html:        "<p>try <code>#notatag</code></p>",
			notContains: []string{"<a"},
		},
		{
			name:        "code block",
			html:        "<pre><code>#include &lt;stdio.h&gt;\n#define N 1\n</code></pre>",
			notContains: []string{"<a"},
		},
		{
			name:        "tags after the link closes",
			html:        `<p><a href="/x">#one</a> and #two <code>#three</code> #four</p>`,
			contains:    []string{"searchValue=two", "searchValue=four"},
			notContains: []string{"searchValue=one", "searchValue=three"},
		},
		{
			name:     "tag after inline element",
			html:     "<p><em>hi</em>#go</p>",
			contains: []string{`<em>hi</em><a class="hashtag" href="/articles/search-hashtag?searchValue=go">#go</a>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LinkHashtags(tt.html, "/articles/search-hashtag")
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("LinkHashtags() = %q, want it to contain %q", got, want)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(got, unwanted) {
					t.Errorf("LinkHashtags() = %q, should not contain %q", got, unwanted)
				}
			}
		})
	}
}
