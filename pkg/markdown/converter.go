package markdown

import (
	"html"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	paragraphPattern = regexp.MustCompile(`(?s)<p>(.*?)</p>`)
	breakPattern     = regexp.MustCompile(`<br\s*/?>`)
	headingPattern   = regexp.MustCompile(`</h[1-6]>`)
	tagPattern       = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(?:\s[^>]*)?/?>`)
	spacePattern     = regexp.MustCompile(`[ \t]+\n`)
	newlinePattern   = regexp.MustCompile(`\n{3,}`)
)

// ToPlainText strips markdown formatting from a generated answer, keeping list
// items as "- " lines and paragraph breaks as blank lines
func ToPlainText(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}

	// Smartypants would rewrite quotes and dashes the model wrote
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{Flags: blackfriday.UseXHTML})
	out := string(blackfriday.Run([]byte(markdown),
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
		blackfriday.WithRenderer(renderer)))

	out = paragraphPattern.ReplaceAllString(out, "$1\n\n")
	out = breakPattern.ReplaceAllString(out, "\n")
	out = headingPattern.ReplaceAllString(out, "\n\n")

	// Lists become dash lines
	out = strings.ReplaceAll(out, "<li>", "- ")
	out = strings.ReplaceAll(out, "</li>\n", "\n")
	out = strings.ReplaceAll(out, "</li>", "\n")
	out = strings.ReplaceAll(out, "<hr>", "")
	out = strings.ReplaceAll(out, "<hr />", "")

	out = tagPattern.ReplaceAllString(out, "")
	out = html.UnescapeString(out)

	out = spacePattern.ReplaceAllString(out, "\n")
	out = newlinePattern.ReplaceAllString(out, "\n\n")

	return strings.TrimSpace(out)
}
