package resolve

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractEmbedSrc pulls the src attribute out of a pasted iframe snippet.
// Uses DOM parsing instead of regexes on raw HTML, so attribute order,
// quoting style, and surrounding markup don't matter. When the snippet
// contains several iframes the first src wins.
func ExtractEmbedSrc(markup string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", false
	}

	src, ok := doc.Find("iframe").First().Attr("src")
	src = strings.TrimSpace(src)
	if !ok || src == "" {
		return "", false
	}
	return src, true
}
